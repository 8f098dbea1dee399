package entities

import (
	"fmt"
	"strings"
)

// Layout indices the slide operations rely on
const (
	LayoutTitle           = 0
	LayoutTitleAndContent = 1
	LayoutTwoContent      = 3
)

// Standard and widescreen slide sizes in EMU
const (
	StandardSlideWidth   int64 = 9144000
	WidescreenSlideWidth int64 = 12192000
	SlideHeight          int64 = 6858000
)

// PlaceholderType is the OOXML placeholder type
type PlaceholderType string

const (
	PlaceholderTitle       PlaceholderType = "title"
	PlaceholderCenterTitle PlaceholderType = "ctrTitle"
	PlaceholderSubtitle    PlaceholderType = "subTitle"
	PlaceholderBody        PlaceholderType = "body"
	PlaceholderObject      PlaceholderType = "obj"
	PlaceholderPicture     PlaceholderType = "pic"
)

// IsTitle returns true for title and centered-title placeholders
func (t PlaceholderType) IsTitle() bool {
	return t == PlaceholderTitle || t == PlaceholderCenterTitle
}

// IsBody returns true for placeholders that render bulleted outlines
func (t PlaceholderType) IsBody() bool {
	return t == PlaceholderBody || t == PlaceholderObject
}

// PlaceholderRef identifies the layout placeholder a shape was created from
type PlaceholderRef struct {
	Index int             `json:"index"`
	Type  PlaceholderType `json:"type"`
}

// PlaceholderSpec is a placeholder declared by a layout
type PlaceholderSpec struct {
	Index    int
	Type     PlaceholderType
	Name     string
	Geometry Geometry
}

// Ref returns the reference stored on shapes created from this spec
func (p PlaceholderSpec) Ref() PlaceholderRef {
	return PlaceholderRef{Index: p.Index, Type: p.Type}
}

// Layout is a slide layout with its placeholders
type Layout struct {
	Index        int
	Name         string
	Placeholders []PlaceholderSpec
}

// Template is an ordered set of layouts sharing a slide size
type Template struct {
	Name        string
	SlideWidth  int64
	SlideHeight int64
	Layouts     []Layout
}

// Layout returns the layout at the given index
func (t *Template) Layout(index int) (Layout, error) {
	if index < 0 || index >= len(t.Layouts) {
		return Layout{}, fmt.Errorf("%w: %d (template %q has %d layouts)", ErrLayoutNotFound, index, t.Name, len(t.Layouts))
	}
	return t.Layouts[index], nil
}

// TemplateByName returns a built-in template
func TemplateByName(name string) (*Template, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "default":
		return DefaultTemplate(), nil
	case "widescreen", "16:9":
		return WidescreenTemplate(), nil
	default:
		return nil, fmt.Errorf("unknown template: %s", name)
	}
}

// TemplateNames lists the built-in template names
func TemplateNames() []string {
	return []string{"standard", "widescreen"}
}

func geom(left, top, width, height int64) Geometry {
	return Geometry{Left: left, Top: top, Width: width, Height: height}
}

var titleBar = PlaceholderSpec{Index: 0, Type: PlaceholderTitle, Name: "Title 1", Geometry: geom(457200, 274638, 8229600, 1143000)}

// DefaultTemplate returns the standard 4:3 template with the nine default layouts
func DefaultTemplate() *Template {
	return &Template{
		Name:        "standard",
		SlideWidth:  StandardSlideWidth,
		SlideHeight: SlideHeight,
		Layouts: []Layout{
			{Index: 0, Name: "Title Slide", Placeholders: []PlaceholderSpec{
				{Index: 0, Type: PlaceholderCenterTitle, Name: "Title 1", Geometry: geom(685800, 2130425, 7772400, 1470025)},
				{Index: 1, Type: PlaceholderSubtitle, Name: "Subtitle 2", Geometry: geom(1371600, 3886200, 6400800, 1752600)},
			}},
			{Index: 1, Name: "Title and Content", Placeholders: []PlaceholderSpec{
				titleBar,
				{Index: 1, Type: PlaceholderObject, Name: "Content Placeholder 2", Geometry: geom(457200, 1600200, 8229600, 4525963)},
			}},
			{Index: 2, Name: "Section Header", Placeholders: []PlaceholderSpec{
				{Index: 0, Type: PlaceholderTitle, Name: "Title 1", Geometry: geom(722313, 4406900, 7772400, 1362075)},
				{Index: 1, Type: PlaceholderBody, Name: "Text Placeholder 2", Geometry: geom(722313, 2906713, 7772400, 1500187)},
			}},
			{Index: 3, Name: "Two Content", Placeholders: []PlaceholderSpec{
				titleBar,
				{Index: 1, Type: PlaceholderObject, Name: "Content Placeholder 2", Geometry: geom(457200, 1600200, 4038600, 4525963)},
				{Index: 2, Type: PlaceholderObject, Name: "Content Placeholder 3", Geometry: geom(4648200, 1600200, 4038600, 4525963)},
			}},
			{Index: 4, Name: "Comparison", Placeholders: []PlaceholderSpec{
				titleBar,
				{Index: 1, Type: PlaceholderBody, Name: "Text Placeholder 2", Geometry: geom(457200, 1535113, 4040188, 639762)},
				{Index: 2, Type: PlaceholderObject, Name: "Content Placeholder 3", Geometry: geom(457200, 2174875, 4040188, 3951288)},
				{Index: 3, Type: PlaceholderBody, Name: "Text Placeholder 4", Geometry: geom(4645025, 1535113, 4041775, 639762)},
				{Index: 4, Type: PlaceholderObject, Name: "Content Placeholder 5", Geometry: geom(4645025, 2174875, 4041775, 3951288)},
			}},
			{Index: 5, Name: "Title Only", Placeholders: []PlaceholderSpec{titleBar}},
			{Index: 6, Name: "Blank"},
			{Index: 7, Name: "Content with Caption", Placeholders: []PlaceholderSpec{
				{Index: 0, Type: PlaceholderTitle, Name: "Title 1", Geometry: geom(457200, 273050, 3008313, 1162050)},
				{Index: 1, Type: PlaceholderObject, Name: "Content Placeholder 2", Geometry: geom(3575050, 273050, 5111750, 5853113)},
				{Index: 2, Type: PlaceholderBody, Name: "Text Placeholder 3", Geometry: geom(457200, 1435100, 3008313, 4691063)},
			}},
			{Index: 8, Name: "Picture with Caption", Placeholders: []PlaceholderSpec{
				{Index: 0, Type: PlaceholderTitle, Name: "Title 1", Geometry: geom(1792288, 4800600, 5486400, 566738)},
				{Index: 1, Type: PlaceholderPicture, Name: "Picture Placeholder 2", Geometry: geom(1792288, 612775, 5486400, 4114800)},
				{Index: 2, Type: PlaceholderBody, Name: "Text Placeholder 3", Geometry: geom(1792288, 5367338, 5486400, 804862)},
			}},
		},
	}
}

// WidescreenTemplate returns the 16:9 template. Layouts are the standard
// ones stretched horizontally.
func WidescreenTemplate() *Template {
	t := DefaultTemplate()
	t.Name = "widescreen"
	t.SlideWidth = WidescreenSlideWidth
	for i := range t.Layouts {
		phs := make([]PlaceholderSpec, len(t.Layouts[i].Placeholders))
		for j, ph := range t.Layouts[i].Placeholders {
			ph.Geometry.Left = ph.Geometry.Left * WidescreenSlideWidth / StandardSlideWidth
			ph.Geometry.Width = ph.Geometry.Width * WidescreenSlideWidth / StandardSlideWidth
			phs[j] = ph
		}
		t.Layouts[i].Placeholders = phs
	}
	return t
}
