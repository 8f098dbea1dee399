package entities

import (
	"fmt"
	"strings"
)

// SourceLayout is the slide kind requested by a deck source
type SourceLayout string

const (
	SourceLayoutAuto       SourceLayout = ""
	SourceLayoutTitle      SourceLayout = "title"
	SourceLayoutText       SourceLayout = "text"
	SourceLayoutTwoContent SourceLayout = "two-content"
	SourceLayoutImage      SourceLayout = "image"
)

// ParseSourceLayout parses a Layout directive value
func ParseSourceLayout(value string) (SourceLayout, error) {
	switch l := SourceLayout(strings.ToLower(strings.TrimSpace(value))); l {
	case SourceLayoutAuto, SourceLayoutTitle, SourceLayoutText, SourceLayoutTwoContent, SourceLayoutImage:
		return l, nil
	case "two", "columns":
		return SourceLayoutTwoContent, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want title, text, two-content or image)", value)
	}
}

// DeckSource describes a whole deck written as a markdown file
type DeckSource struct {
	Title    string
	Author   string
	Template string
	Slides   []SourceSlide
}

// SourceSlide is one slide of a deck source
type SourceSlide struct {
	Index  int
	Title  string
	Layout SourceLayout

	// Body is the outline text below the title
	Body string
	// Columns holds the two bodies of a two-content slide
	Columns []string
	// Images lists image references in the body, resolved to paths
	Images []string

	Notes string
}

// EffectiveLayout resolves SourceLayoutAuto. A body that is a single image
// becomes an image slide, a leading slide with at most one body line
// becomes a title slide, and everything else is a text slide.
func (s SourceSlide) EffectiveLayout() SourceLayout {
	if s.Layout != SourceLayoutAuto {
		return s.Layout
	}
	if len(s.Columns) == 2 {
		return SourceLayoutTwoContent
	}
	body := strings.TrimSpace(s.Body)
	if len(s.Images) == 1 && body == "" {
		return SourceLayoutImage
	}
	if s.Index == 0 && !strings.Contains(body, "\n") && len(s.Images) == 0 {
		return SourceLayoutTitle
	}
	return SourceLayoutText
}
