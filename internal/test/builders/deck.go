package builders

import (
	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck *entities.Deck
	err  error
}

// NewDeckBuilder creates a new deck builder on the standard template
func NewDeckBuilder() *DeckBuilder {
	deck := entities.NewDeck(entities.DefaultTemplate())
	deck.Title = "Test Deck"
	deck.Author = "Test Author"
	return &DeckBuilder{deck: deck}
}

// WithTemplate switches the template. Call it before adding slides.
func (b *DeckBuilder) WithTemplate(tmpl *entities.Template) *DeckBuilder {
	b.deck.Template = tmpl
	return b
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithAuthor sets the deck author
func (b *DeckBuilder) WithAuthor(author string) *DeckBuilder {
	b.deck.Author = author
	return b
}

// WithTitleSlide adds a title slide
func (b *DeckBuilder) WithTitleSlide(title, subtitle string) *DeckBuilder {
	slide := b.add(entities.LayoutTitle, title)
	if slide != nil && subtitle != "" {
		slide.Shapes[1].Text.SetText(subtitle)
	}
	return b
}

// WithTextSlide adds a title and content slide. Body lines become level-0
// paragraphs; use WithParagraph for nesting.
func (b *DeckBuilder) WithTextSlide(title, body string) *DeckBuilder {
	slide := b.add(entities.LayoutTitleAndContent, title)
	if slide != nil {
		slide.Shapes[1].Text.SetText(body)
	}
	return b
}

// WithTwoContentSlide adds a two content slide with text on both sides
func (b *DeckBuilder) WithTwoContentSlide(title, left, right string) *DeckBuilder {
	slide := b.add(entities.LayoutTwoContent, title)
	if slide != nil {
		slide.Shapes[1].Text.SetText(left)
		slide.Shapes[2].Text.SetText(right)
	}
	return b
}

// WithParagraph appends a paragraph to the body of the last slide
func (b *DeckBuilder) WithParagraph(text string, level int) *DeckBuilder {
	if len(b.deck.Slides) == 0 {
		return b
	}
	slide := b.deck.Slides[len(b.deck.Slides)-1]
	if len(slide.Shapes) > 1 {
		slide.Shapes[1].Text.AddParagraph(text, level)
	}
	return b
}

// WithPicture adds a picture to the last slide
func (b *DeckBuilder) WithPicture(pic *entities.Picture, left, top, width int64) *DeckBuilder {
	if len(b.deck.Slides) == 0 {
		return b
	}
	b.deck.Slides[len(b.deck.Slides)-1].AddPicture(pic, left, top, width)
	return b
}

// WithNotes sets the notes of the slide at index
func (b *DeckBuilder) WithNotes(index int, notes string) *DeckBuilder {
	if index >= 0 && index < len(b.deck.Slides) {
		b.deck.Slides[index].Notes = notes
	}
	return b
}

// Build returns the deck. It panics if a layout lookup failed, which only
// happens when a test picks a template without the standard layouts.
func (b *DeckBuilder) Build() *entities.Deck {
	if b.err != nil {
		panic(b.err)
	}
	return b.deck
}

func (b *DeckBuilder) add(layoutIndex int, title string) *entities.Slide {
	layout, err := b.deck.Template.Layout(layoutIndex)
	if err != nil {
		b.err = err
		return nil
	}
	slide := b.deck.AddSlide(layout)
	if shape, err := slide.Title(); err == nil {
		shape.Text.SetText(title)
	}
	return slide
}

// Common decks for testing

// MinimalDeck creates a deck with a single title slide
func MinimalDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Minimal").
		WithTitleSlide("Minimal", "").
		Build()
}

// OutlineDeck creates a deck with a nested outline body
func OutlineDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Outline").
		WithTitleSlide("Outline", "nested bullets").
		WithTextSlide("Agenda", "Point A").
		WithParagraph("Sub A1", 0).
		WithParagraph("Sub A2", 1).
		WithParagraph("", 0).
		WithParagraph("Point B", 0).
		Build()
}
