package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeck_AddSlide(t *testing.T) {
	deck := NewDeck(nil)
	require.NotNil(t, deck.Template)
	assert.Equal(t, "standard", deck.Template.Name)

	layout, err := deck.Template.Layout(LayoutTwoContent)
	require.NoError(t, err)

	slide := deck.AddSlide(layout)
	assert.NotEmpty(t, slide.ID)
	assert.Equal(t, LayoutTwoContent, slide.Layout)
	assert.Equal(t, "Two Content", slide.LayoutName)
	require.Len(t, slide.Shapes, 3)
	for _, shape := range slide.Shapes {
		assert.Equal(t, ShapeText, shape.Kind)
		assert.True(t, shape.IsEmpty())
		require.NotNil(t, shape.Placeholder)
	}

	assert.Equal(t, 1, deck.SlideCount())
	assert.Equal(t, 0, deck.IndexOf(slide))
	assert.Equal(t, -1, deck.IndexOf(&Slide{}))

	var none *Deck
	assert.Zero(t, none.SlideCount())
}

func TestSlide_Lookup(t *testing.T) {
	deck := NewDeck(DefaultTemplate())
	layout, err := deck.Template.Layout(LayoutTitleAndContent)
	require.NoError(t, err)
	slide := deck.AddSlide(layout)

	title, err := slide.Title()
	require.NoError(t, err)
	title.Text.SetText("Agenda")
	assert.Equal(t, "Agenda", slide.TitleText())

	body, err := slide.Placeholder(1)
	require.NoError(t, err)
	assert.Equal(t, "Content Placeholder 2", body.Name)

	tests := []struct {
		descriptor string
		want       *Shape
		err        error
	}{
		{descriptor: "0", want: title},
		{descriptor: "ph:1", want: body},
		{descriptor: " Content Placeholder 2 ", want: body},
		{descriptor: "7", err: ErrPlaceholderNotFound},
		{descriptor: "Chart", err: ErrShapeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := slide.Element(tt.descriptor)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestSlide_TitleMissing(t *testing.T) {
	deck := NewDeck(nil)
	layout, err := deck.Template.Layout(6)
	require.NoError(t, err)
	slide := deck.AddSlide(layout)

	_, err = slide.Title()
	assert.ErrorIs(t, err, ErrPlaceholderNotFound)
	assert.Equal(t, "", slide.TitleText())
}

func TestSlide_AddPicture(t *testing.T) {
	tests := []struct {
		name   string
		pic    Picture
		height int64
	}{
		{name: "landscape", pic: Picture{PixelWidth: 400, PixelHeight: 200}, height: 2000},
		{name: "portrait", pic: Picture{PixelWidth: 100, PixelHeight: 300}, height: 12000},
		{name: "unknown size", pic: Picture{}, height: 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slide := &Slide{}
			shape := slide.AddPicture(&tt.pic, 100, 200, 4000)

			// position and width always match the target box
			assert.Equal(t, int64(100), shape.Geometry.Left)
			assert.Equal(t, int64(200), shape.Geometry.Top)
			assert.Equal(t, int64(4000), shape.Geometry.Width)
			assert.Equal(t, tt.height, shape.Geometry.Height)
			assert.Equal(t, ShapePicture, shape.Kind)
			assert.False(t, shape.IsEmpty())
		})
	}
}

func TestTextFrame(t *testing.T) {
	tf := &TextFrame{}
	tf.SetText("Lead")
	tf.AddParagraph("child", 1)
	tf.AddParagraph("", 0)

	assert.Equal(t, "Lead\nchild\n", tf.Text())
	assert.Equal(t, Paragraph{Text: "child", Level: 1}, tf.Paragraphs[1])

	tf.SetText("reset")
	assert.Len(t, tf.Paragraphs, 1)
}

func TestTemplates(t *testing.T) {
	standard, err := TemplateByName("")
	require.NoError(t, err)
	assert.Len(t, standard.Layouts, 9)
	for i, layout := range standard.Layouts {
		assert.Equal(t, i, layout.Index)
	}

	_, err = standard.Layout(9)
	assert.ErrorIs(t, err, ErrLayoutNotFound)
	_, err = standard.Layout(-1)
	assert.ErrorIs(t, err, ErrLayoutNotFound)

	wide, err := TemplateByName("Widescreen")
	require.NoError(t, err)
	assert.Equal(t, WidescreenSlideWidth, wide.SlideWidth)

	stdBody := standard.Layouts[LayoutTitleAndContent].Placeholders[1].Geometry
	wideBody := wide.Layouts[LayoutTitleAndContent].Placeholders[1].Geometry
	assert.Greater(t, wideBody.Width, stdBody.Width)
	assert.Equal(t, stdBody.Top, wideBody.Top)
	assert.Equal(t, stdBody.Height, wideBody.Height)

	// scaling must not leak into the shared standard geometry
	assert.Equal(t, int64(8229600), DefaultTemplate().Layouts[LayoutTitleAndContent].Placeholders[0].Geometry.Width)

	_, err = TemplateByName("letter")
	assert.Error(t, err)
}

type stubFigure struct{ dpi float64 }

func (f stubFigure) SavePNG(string) error { return nil }
func (f stubFigure) DPI() float64         { return f.dpi }

func TestPayload(t *testing.T) {
	text := TextPayload("hello")
	assert.Equal(t, PayloadText, text.Kind())
	assert.Equal(t, "hello", text.Text())
	assert.Equal(t, `text("hello")`, text.String())

	path := PathPayload("~/chart.png")
	assert.Equal(t, PayloadPath, path.Kind())
	assert.Equal(t, "~/chart.png", path.Path())

	fig := FigurePayload(stubFigure{dpi: 72})
	assert.Equal(t, PayloadFigure, fig.Kind())
	assert.Equal(t, 72.0, fig.Figure().DPI())
	assert.Contains(t, fig.String(), "figure(")
}

func TestContentError(t *testing.T) {
	err := error(&ContentError{Payload: PathPayload("missing.png"), Reason: "not a figure or existing file"})

	assert.ErrorIs(t, err, ErrContent)
	assert.Contains(t, err.Error(), "missing.png")

	var ce *ContentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, PayloadPath, ce.Payload.Kind())
}

func TestReport_Warnings(t *testing.T) {
	report := &Report{Diagnostics: []Diagnostic{
		{Severity: SeverityInfo, Code: "saved"},
		{Severity: SeverityWarning, Code: DiagnosticLowDPI},
	}}

	assert.True(t, report.HasWarnings())
	assert.Equal(t, DiagnosticLowDPI, report.Warnings()[0].Code)
	assert.False(t, (&Report{}).HasWarnings())
}
