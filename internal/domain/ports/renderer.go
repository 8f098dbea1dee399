package ports

import (
	"context"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// SlideView is a slide prepared for the HTML preview. Shape boxes are
// percentages of the slide size.
type SlideView struct {
	Index  int         `json:"index"`
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Layout string      `json:"layout"`
	Shapes []ShapeView `json:"shapes"`
	Notes  string      `json:"notes,omitempty"`
}

// ShapeView is one positioned element of a SlideView
type ShapeView struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Role     string  `json:"role,omitempty"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	HTML     string  `json:"html,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

// DeckRenderer renders decks for the browser preview
type DeckRenderer interface {
	RenderDeck(ctx context.Context, deck *entities.Deck) ([]byte, error)
	RenderSlides(deck *entities.Deck) ([]SlideView, error)
}
