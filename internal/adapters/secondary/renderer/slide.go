package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// SlideRenderer turns deck slides into positioned HTML fragments. Paragraph
// text is treated as inline markdown.
type SlideRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewSlideRenderer creates a new slide renderer
func NewSlideRenderer() *SlideRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
			extension.Typographer,
		),
	)

	return &SlideRenderer{
		md:     md,
		policy: newInlinePolicy(),
	}
}

// newInlinePolicy allows the inline markup paragraph text can produce
func newInlinePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "b", "em", "i", "del", "s", "code", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}

// ImageURL is the preview path serving a picture shape
func ImageURL(slideIndex, shapeIndex int) string {
	return fmt.Sprintf("/media/%d/%d", slideIndex, shapeIndex)
}

// RenderSlides renders every slide of the deck
func (r *SlideRenderer) RenderSlides(deck *entities.Deck) ([]ports.SlideView, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}
	tmpl := deck.Template
	if tmpl == nil {
		tmpl = entities.DefaultTemplate()
	}

	views := make([]ports.SlideView, 0, len(deck.Slides))
	for i, slide := range deck.Slides {
		view, err := r.RenderSlide(slide, i, tmpl)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", i+1, err)
		}
		views = append(views, view)
	}
	return views, nil
}

// RenderSlide renders one slide at position index
func (r *SlideRenderer) RenderSlide(slide *entities.Slide, index int, tmpl *entities.Template) (ports.SlideView, error) {
	if slide == nil {
		return ports.SlideView{}, errors.New("slide cannot be nil")
	}

	view := ports.SlideView{
		Index:  index,
		ID:     slide.ID,
		Title:  slide.TitleText(),
		Layout: slide.LayoutName,
		Notes:  slide.Notes,
	}

	for n, shape := range slide.Shapes {
		sv := ports.ShapeView{
			Name:   shape.Name,
			Kind:   shape.Kind.String(),
			Left:   percent(shape.Geometry.Left, tmpl.SlideWidth),
			Top:    percent(shape.Geometry.Top, tmpl.SlideHeight),
			Width:  percent(shape.Geometry.Width, tmpl.SlideWidth),
			Height: percent(shape.Geometry.Height, tmpl.SlideHeight),
		}
		if shape.Placeholder != nil {
			sv.Role = string(shape.Placeholder.Type)
		}

		switch shape.Kind {
		case entities.ShapePicture:
			sv.ImageURL = ImageURL(index, n)
		default:
			if shape.IsEmpty() {
				continue
			}
			html, err := r.renderText(shape)
			if err != nil {
				return ports.SlideView{}, fmt.Errorf("shape %q: %w", shape.Name, err)
			}
			sv.HTML = html
		}
		view.Shapes = append(view.Shapes, sv)
	}

	return view, nil
}

// renderText emits one div per paragraph, indented by level
func (r *SlideRenderer) renderText(shape *entities.Shape) (string, error) {
	bulleted := shape.Placeholder != nil && shape.Placeholder.Type.IsBody()

	var b strings.Builder
	for _, p := range shape.Text.Paragraphs {
		class := "para"
		if bulleted && strings.TrimSpace(p.Text) != "" {
			class += " bullet"
		}
		fmt.Fprintf(&b, `<div class="%s level-%d">`, class, min(p.Level, 8))
		inline, err := r.inline(p.Text)
		if err != nil {
			return "", err
		}
		if inline == "" {
			inline = "&nbsp;"
		}
		b.WriteString(inline)
		b.WriteString("</div>")
	}
	return b.String(), nil
}

// inline converts one paragraph of markdown without block wrapping
func (r *SlideRenderer) inline(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return strings.TrimSpace(r.policy.Sanitize(out)), nil
}

func percent(v, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(v) * 100 / float64(total)
}
