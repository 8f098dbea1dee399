package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// EMUPerInch is the number of English Metric Units in one inch
const EMUPerInch int64 = 914400

// Geometry is a shape bounding box in EMU
type Geometry struct {
	Left   int64 `json:"left"`
	Top    int64 `json:"top"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Deck is the in-memory presentation document. It owns all slides and shapes.
type Deck struct {
	// Title and Author are written to the document properties
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`

	// Template supplies slide size and layouts
	Template *Template `json:"-"`

	Slides []*Slide `json:"slides"`
}

// NewDeck creates an empty deck for the given template
func NewDeck(tmpl *Template) *Deck {
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}
	return &Deck{Template: tmpl}
}

// NewSlide builds a detached slide from the layout's placeholders
func NewSlide(layout Layout) *Slide {
	slide := &Slide{
		ID:         uuid.NewString(),
		Layout:     layout.Index,
		LayoutName: layout.Name,
	}
	for _, ph := range layout.Placeholders {
		ref := ph.Ref()
		slide.Shapes = append(slide.Shapes, &Shape{
			Kind:        ShapeText,
			Name:        ph.Name,
			Placeholder: &ref,
			Geometry:    ph.Geometry,
			Text:        &TextFrame{},
		})
	}
	return slide
}

// AddSlide appends a slide built from the layout's placeholders
func (d *Deck) AddSlide(layout Layout) *Slide {
	return d.AppendSlide(NewSlide(layout))
}

// AppendSlide appends a slide built elsewhere and returns it
func (d *Deck) AppendSlide(slide *Slide) *Slide {
	d.Slides = append(d.Slides, slide)
	return slide
}

// IndexOf returns the position of the slide in the deck, or -1
func (d *Deck) IndexOf(slide *Slide) int {
	for i, s := range d.Slides {
		if s == slide {
			return i
		}
	}
	return -1
}

// SlideCount returns the total number of slides
func (d *Deck) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Slide is a single slide and the shapes poured into it
type Slide struct {
	ID         string   `json:"id"`
	Layout     int      `json:"layout"`
	LayoutName string   `json:"layout_name,omitempty"`
	Shapes     []*Shape `json:"shapes"`

	// Notes is the notes-page text, paragraphs joined by "\n"
	Notes string `json:"notes,omitempty"`
}

// HasNotes returns true if the slide carries notes text
func (s *Slide) HasNotes() bool {
	return strings.TrimSpace(s.Notes) != ""
}

// Title returns the title placeholder shape
func (s *Slide) Title() (*Shape, error) {
	for _, shape := range s.Shapes {
		if shape.Placeholder != nil && shape.Placeholder.Type.IsTitle() {
			return shape, nil
		}
	}
	return nil, fmt.Errorf("%w: title on slide %s", ErrPlaceholderNotFound, s.ID)
}

// TitleText returns the title text, or "" when the slide has no title
func (s *Slide) TitleText() string {
	shape, err := s.Title()
	if err != nil || shape.Text == nil {
		return ""
	}
	return shape.Text.Text()
}

// Placeholder returns the placeholder shape with the given index
func (s *Slide) Placeholder(idx int) (*Shape, error) {
	for _, shape := range s.Shapes {
		if shape.Placeholder != nil && shape.Placeholder.Index == idx {
			return shape, nil
		}
	}
	return nil, fmt.Errorf("%w: index %d on slide %s", ErrPlaceholderNotFound, idx, s.ID)
}

// ShapeByName returns the first shape with the given name
func (s *Slide) ShapeByName(name string) (*Shape, error) {
	for _, shape := range s.Shapes {
		if shape.Name == name {
			return shape, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on slide %s", ErrShapeNotFound, name, s.ID)
}

// Element resolves an element descriptor: a placeholder index ("1"),
// "ph:<index>", or a shape name.
func (s *Slide) Element(descriptor string) (*Shape, error) {
	d := strings.TrimSpace(descriptor)
	if idx, err := strconv.Atoi(strings.TrimPrefix(d, "ph:")); err == nil {
		return s.Placeholder(idx)
	}
	return s.ShapeByName(d)
}

// AddPicture inserts a picture at (left, top) scaled to width
func (s *Slide) AddPicture(pic *Picture, left, top, width int64) *Shape {
	shape := &Shape{
		Kind:     ShapePicture,
		Name:     fmt.Sprintf("Picture %d", len(s.Shapes)+1),
		Geometry: PictureGeometry(pic, left, top, width),
		Picture:  pic,
	}
	s.Shapes = append(s.Shapes, shape)
	return shape
}

// PictureGeometry returns the box of a picture placed at (left, top) with
// the given width. Height follows the picture's aspect ratio.
func PictureGeometry(pic *Picture, left, top, width int64) Geometry {
	height := width
	if pic.PixelWidth > 0 {
		height = width * int64(pic.PixelHeight) / int64(pic.PixelWidth)
	}
	return Geometry{Left: left, Top: top, Width: width, Height: height}
}

// ShapeKind tells text shapes and pictures apart
type ShapeKind int

const (
	// ShapeText is a text-capable shape (placeholder or text box)
	ShapeText ShapeKind = iota
	// ShapePicture is an inserted image
	ShapePicture
)

// String returns the string representation of ShapeKind
func (k ShapeKind) String() string {
	switch k {
	case ShapeText:
		return "text"
	case ShapePicture:
		return "picture"
	default:
		return "unknown"
	}
}

// Shape is a positioned element on a slide
type Shape struct {
	Kind        ShapeKind       `json:"kind"`
	Name        string          `json:"name,omitempty"`
	Placeholder *PlaceholderRef `json:"placeholder,omitempty"`
	Geometry    Geometry        `json:"geometry"`
	Text        *TextFrame      `json:"text,omitempty"`
	Picture     *Picture        `json:"-"`
}

// IsEmpty returns true for text shapes with no visible text
func (s *Shape) IsEmpty() bool {
	if s.Kind != ShapeText {
		return false
	}
	return s.Text == nil || strings.TrimSpace(s.Text.Text()) == ""
}

// TextFrame holds the paragraphs of a text shape
type TextFrame struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Paragraph is one line of a text frame. Level is a nesting depth, not spacing.
type Paragraph struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// SetText replaces all paragraphs with a single level-0 paragraph
func (tf *TextFrame) SetText(text string) {
	tf.Paragraphs = []Paragraph{{Text: text}}
}

// AddParagraph appends a paragraph at the given nesting level
func (tf *TextFrame) AddParagraph(text string, level int) {
	tf.Paragraphs = append(tf.Paragraphs, Paragraph{Text: text, Level: level})
}

// Text returns the paragraphs joined by newlines
func (tf *TextFrame) Text() string {
	lines := make([]string, len(tf.Paragraphs))
	for i, p := range tf.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// Picture is an image embedded in the deck
type Picture struct {
	Data        []byte `json:"-"`
	MIMEType    string `json:"mime_type"`
	PixelWidth  int    `json:"pixel_width"`
	PixelHeight int    `json:"pixel_height"`

	// Source is the file the picture was read from, if any
	Source string `json:"source,omitempty"`
}
