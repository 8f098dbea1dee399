package entities

import "fmt"

// Figure is an in-memory chart that can materialize itself as a PNG file
type Figure interface {
	// SavePNG renders the figure to path
	SavePNG(path string) error
	// DPI reports the figure resolution
	DPI() float64
}

// PayloadKind tags the variant held by a Payload
type PayloadKind int

const (
	// PayloadText is markdown outline text
	PayloadText PayloadKind = iota
	// PayloadPath is an image file on disk
	PayloadPath
	// PayloadFigure is an in-memory figure
	PayloadFigure
)

// String returns the string representation of PayloadKind
func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadPath:
		return "path"
	case PayloadFigure:
		return "figure"
	default:
		return "unknown"
	}
}

// Payload is content poured into a placeholder: a figure, an image path or
// outline text. Build one with FigurePayload, PathPayload or TextPayload.
type Payload struct {
	kind   PayloadKind
	value  string
	figure Figure
}

// TextPayload wraps outline text
func TextPayload(text string) Payload {
	return Payload{kind: PayloadText, value: text}
}

// PathPayload wraps an image path. The path must exist after home expansion.
func PathPayload(path string) Payload {
	return Payload{kind: PayloadPath, value: path}
}

// FigurePayload wraps a renderable figure
func FigurePayload(fig Figure) Payload {
	return Payload{kind: PayloadFigure, figure: fig}
}

// Kind returns the variant tag
func (p Payload) Kind() PayloadKind { return p.kind }

// Text returns the outline text of a text payload
func (p Payload) Text() string { return p.value }

// Path returns the image path of a path payload
func (p Payload) Path() string { return p.value }

// Figure returns the figure of a figure payload
func (p Payload) Figure() Figure { return p.figure }

// String describes the payload for error messages
func (p Payload) String() string {
	switch p.kind {
	case PayloadFigure:
		return fmt.Sprintf("figure(%T)", p.figure)
	default:
		return fmt.Sprintf("%s(%q)", p.kind, p.value)
	}
}
