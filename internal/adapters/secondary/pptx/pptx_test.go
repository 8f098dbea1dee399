package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
	"github.com/fredcamaral/powerbook/internal/domain/services"
	"github.com/fredcamaral/powerbook/internal/test/builders"
)

type stubInspector struct{}

func (stubInspector) Inspect(data []byte) (*entities.Picture, error) {
	return &entities.Picture{Data: data, MIMEType: "image/png", PixelWidth: 40, PixelHeight: 30}, nil
}

func zipParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const (
	testNS   = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	testRels = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
)

// handBuiltPackage mirrors a deck saved by an office suite: real
// placeholders, a named layout, a picture and a notes page.
func handBuiltPackage(t *testing.T) []byte {
	return zipParts(t, map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"docProps/core.xml":   `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Quarterly</dc:title><dc:creator>Ada</dc:creator></cp:coreProperties>`,
		"ppt/presentation.xml": `<p:presentation ` + testNS + `><p:sldIdLst><p:sldId id="257" r:id="rId3"/><p:sldId id="256" r:id="rId2"/></p:sldIdLst>` +
			`<p:sldSz cx="12192000" cy="6858000"/></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": testRels +
			`<Relationship Id="rId2" Type="` + relTypeSlide + `" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId3" Type="` + relTypeSlide + `" Target="slides/slide2.xml"/></Relationships>`,
		"ppt/slides/slide1.xml": `<p:sld ` + testNS + `><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/><a:p><a:r><a:t>Results</a:t></a:r></a:p></p:txBody></p:sp>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Content Placeholder 2"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>` +
			`<p:spPr><a:xfrm><a:off x="10" y="20"/><a:ext cx="300" cy="400"/></a:xfrm></p:spPr>` +
			`<p:txBody><a:bodyPr/><a:p><a:r><a:t>Revenue</a:t></a:r></a:p><a:p><a:pPr lvl="1"/><a:r><a:t>up </a:t></a:r><a:r><a:t>12%</a:t></a:r></a:p></p:txBody></p:sp>` +
			`<p:pic><p:nvPicPr><p:cNvPr id="4" name="Chart"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
			`<p:blipFill><a:blip r:embed="rId5"/></p:blipFill><p:spPr><a:xfrm><a:off x="1" y="2"/><a:ext cx="3" cy="4"/></a:xfrm></p:spPr></p:pic>` +
			`</p:spTree></p:cSld></p:sld>`,
		"ppt/slides/_rels/slide1.xml.rels": testRels +
			`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout2.xml"/>` +
			`<Relationship Id="rId5" Type="` + relTypeImage + `" Target="../media/image1.png"/>` +
			`<Relationship Id="rId6" Type="` + relTypeNotesSlide + `" Target="../notesSlides/notesSlide1.xml"/></Relationships>`,
		"ppt/slides/slide2.xml": `<p:sld ` + testNS + `><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="ctrTitle"/></p:nvPr></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/><a:p><a:r><a:t>Welcome</a:t></a:r></a:p></p:txBody></p:sp>` +
			`</p:spTree></p:cSld></p:sld>`,
		"ppt/slideLayouts/slideLayout2.xml": `<p:sldLayout ` + testNS + `><p:cSld name="Title and Content"><p:spTree>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` +
			`<p:spPr><a:xfrm><a:off x="5" y="6"/><a:ext cx="7" cy="8"/></a:xfrm></p:spPr></p:sp>` +
			`</p:spTree></p:cSld></p:sldLayout>`,
		"ppt/media/image1.png": "png-bytes",
		"ppt/notesSlides/notesSlide1.xml": `<p:notes ` + testNS + `><p:cSld><p:spTree>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>` +
			`<p:txBody><a:bodyPr/><a:p><a:r><a:t>first</a:t></a:r></a:p><a:p><a:r><a:t>second</a:t></a:r></a:p></p:txBody></p:sp>` +
			`</p:spTree></p:cSld></p:notes>`,
	})
}

func TestReader_Read(t *testing.T) {
	deck, err := NewReader(stubInspector{}, nil).Read(handBuiltPackage(t))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly", deck.Title)
	assert.Equal(t, "Ada", deck.Author)
	assert.Equal(t, "widescreen", deck.Template.Name)

	// slide id list order wins over file numbering
	require.Len(t, deck.Slides, 2)
	assert.Equal(t, "Welcome", deck.Slides[0].TitleText())
	assert.Equal(t, entities.LayoutTitle, deck.Slides[0].Layout)

	slide := deck.Slides[1]
	assert.Equal(t, entities.LayoutTitleAndContent, slide.Layout)
	assert.Equal(t, "Title and Content", slide.LayoutName)
	assert.Equal(t, "Results", slide.TitleText())
	assert.Equal(t, "first\nsecond", slide.Notes)

	title, err := slide.Title()
	require.NoError(t, err)
	assert.Equal(t, entities.Geometry{Left: 5, Top: 6, Width: 7, Height: 8}, title.Geometry)

	body, err := slide.Placeholder(1)
	require.NoError(t, err)
	assert.Equal(t, entities.PlaceholderObject, body.Placeholder.Type)
	assert.Equal(t, entities.Geometry{Left: 10, Top: 20, Width: 300, Height: 400}, body.Geometry)
	assert.Equal(t, []entities.Paragraph{{Text: "Revenue"}, {Text: "up 12%", Level: 1}}, body.Text.Paragraphs)

	pic, err := slide.ShapeByName("Chart")
	require.NoError(t, err)
	assert.Equal(t, entities.ShapePicture, pic.Kind)
	assert.Equal(t, 40, pic.Picture.PixelWidth)
	assert.Equal(t, "image1.png", pic.Picture.Source)
}

func TestReader_ReadInvalid(t *testing.T) {
	_, err := NewReader(stubInspector{}, nil).Read([]byte("not a zip"))
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := ports.NewRealFileSystem()
	store := NewStore(fs, stubInspector{}, nil)
	path := filepath.Join(t.TempDir(), "deck.pptx")

	deck := builders.NewDeckBuilder().
		WithTemplate(entities.WidescreenTemplate()).
		WithTitle("Round trip").
		WithAuthor("Grace").
		WithTitleSlide("Hello", "world").
		WithTextSlide("Agenda", "Point A").
		WithParagraph("Sub A", 1).
		WithParagraph("", 0).
		WithParagraph("Point B", 0).
		WithTwoContentSlide("Compare", "left", "").
		WithNotes(1, "remember\nthis").
		Build()

	require.NoError(t, store.Save(ctx, deck, path))
	loaded, err := store.Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, "Round trip", loaded.Title)
	assert.Equal(t, "Grace", loaded.Author)
	assert.Equal(t, entities.WidescreenSlideWidth, loaded.Template.SlideWidth)
	require.Len(t, loaded.Slides, 3)

	assert.Equal(t, entities.LayoutTitle, loaded.Slides[0].Layout)
	assert.Equal(t, "Hello", loaded.Slides[0].TitleText())

	agenda := loaded.Slides[1]
	assert.Equal(t, entities.LayoutTitleAndContent, agenda.Layout)
	assert.Equal(t, "remember\nthis", agenda.Notes)
	body, err := agenda.Placeholder(1)
	require.NoError(t, err)
	assert.Equal(t, []entities.Paragraph{
		{Text: "Point A"},
		{Text: "Sub A", Level: 1},
		{Text: ""},
		{Text: "Point B"},
	}, body.Text.Paragraphs)

	compare := loaded.Slides[2]
	assert.Equal(t, entities.LayoutTwoContent, compare.Layout)
	right, err := compare.Placeholder(2)
	require.NoError(t, err)
	assert.True(t, right.IsEmpty())
	assert.False(t, compare.HasNotes())
}

func TestStore_SaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(ports.NewRealFileSystem(), stubInspector{}, nil)
	err := store.Save(ctx, builders.MinimalDeck(), filepath.Join(t.TempDir(), "x.pptx"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPackagePaths(t *testing.T) {
	assert.Equal(t, "ppt/slides/_rels/slide1.xml.rels", relsPath("ppt/slides/slide1.xml"))
	assert.Equal(t, "ppt/media/image1.png", resolveTarget("ppt/slides/slide1.xml", "../media/image1.png"))
	assert.Equal(t, "ppt/slides/slide1.xml", resolveTarget("ppt/presentation.xml", "/ppt/slides/slide1.xml"))
	assert.Equal(t, "notesMasters/notesMaster1.xml", relativeTarget("ppt/presentation.xml", "ppt/notesMasters/notesMaster1.xml"))
	assert.Equal(t, "../slides/slide2.xml", relativeTarget("ppt/notesSlides/notesSlide1.xml", "ppt/slides/slide2.xml"))

	rels := &relationships{Rels: []relationship{{ID: "rId2"}}}
	assert.Equal(t, "rId3", rels.add(relTypeSlide, "x"))
	assert.Equal(t, "rId4", rels.add(relTypeSlide, "y"))
}

func TestLinkNotesMaster(t *testing.T) {
	pkg, err := readPackage(zipParts(t, map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"ppt/presentation.xml": `<p:presentation ` + testNS + `><p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": testRels +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>` +
			`<Relationship Id="rId2" Type="` + relTypeSlide + `" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId3" Type="` + relTypeTheme + `" Target="theme/theme1.xml"/></Relationships>`,
		"ppt/theme/theme1.xml":  `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office"/>`,
		"ppt/slides/slide1.xml": `<p:sld ` + testNS + `><p:cSld><p:spTree/></p:cSld></p:sld>`,
		"ppt/slides/_rels/slide1.xml.rels": testRels +
			`<Relationship Id="rId1" Type="` + relTypeNotesSlide + `" Target="../notesSlides/notesSlide1.xml"/></Relationships>`,
		"ppt/notesSlides/notesSlide1.xml": `<p:notes ` + testNS + `><p:cSld><p:spTree/></p:cSld></p:notes>`,
		"ppt/notesSlides/_rels/notesSlide1.xml.rels": testRels +
			`<Relationship Id="rId1" Type="` + relTypeSlide + `" Target="../slides/slide1.xml"/></Relationships>`,
	}))
	require.NoError(t, err)

	require.NoError(t, linkNotesMaster(pkg))
	// a second pass leaves the links alone
	require.NoError(t, linkNotesMaster(pkg))

	assert.True(t, pkg.has(notesMasterPart))
	assert.True(t, pkg.has("ppt/theme/theme2.xml"))
	assert.False(t, pkg.has("ppt/theme/theme3.xml"))
	assert.Contains(t, string(pkg.get(presentationPart)), `</p:sldMasterIdLst><p:notesMasterIdLst><p:notesMasterId r:id="rId4"/>`)
	assert.Contains(t, string(pkg.get(contentTypesPart)), `/ppt/notesMasters/notesMaster1.xml`)

	rels, err := pkg.rels("ppt/notesSlides/notesSlide1.xml")
	require.NoError(t, err)
	rel, ok := rels.byType(relTypeNotesMaster)
	require.True(t, ok)
	assert.Equal(t, "../notesMasters/notesMaster1.xml", rel.Target)
	assert.Len(t, rels.Rels, 2)

	t.Run("no notes", func(t *testing.T) {
		plain, err := readPackage(zipParts(t, map[string]string{
			"ppt/presentation.xml": `<p:presentation ` + testNS + `/>`,
		}))
		require.NoError(t, err)
		require.NoError(t, linkNotesMaster(plain))
		assert.False(t, plain.has(notesMasterPart))
	})
}

func TestAddTextStyles(t *testing.T) {
	pkg, err := readPackage(zipParts(t, map[string]string{
		slideMasterPart: `<p:sldMaster ` + testNS + `><p:cSld/><p:sldLayoutIdLst/></p:sldMaster>`,
	}))
	require.NoError(t, err)

	addTextStyles(pkg)
	master := string(pkg.get(slideMasterPart))
	assert.True(t, strings.HasSuffix(master, `</p:txStyles></p:sldMaster>`))
	assert.Contains(t, master, `<p:sldLayoutIdLst/><p:txStyles>`)
	assert.Contains(t, master, `<a:lvl2pPr marL="685800" indent="-342900">`)
	assert.Contains(t, master, `<a:lvl9pPr marL="3086100" indent="-342900">`)

	addTextStyles(pkg)
	assert.Equal(t, master, string(pkg.get(slideMasterPart)))
}

// outlineDeck builds its body from indented markdown the way a session does
func outlineDeck(t *testing.T) *entities.Deck {
	t.Helper()
	deck := builders.NewDeckBuilder().
		WithTitle("Outline").
		WithTextSlide("Agenda", "").
		WithNotes(0, "say hi\nthen <leave>").
		Build()

	body, err := deck.Slides[0].Placeholder(1)
	require.NoError(t, err)
	b := services.NewSlideBuilder(ports.NewRealFileSystem(), nil, services.BuilderOptions{TempDir: t.TempDir()}, nil)
	require.NoError(t, b.PopulateText(body, "Point A\n- Sub A1\n    - Sub A2\n\nPoint B"))
	return deck
}

func TestWriter_SlideMarkup(t *testing.T) {
	data, err := NewWriter(nil).Write(outlineDeck(t))
	require.NoError(t, err)
	pkg, err := readPackage(data)
	require.NoError(t, err)

	slide := string(pkg.get("ppt/slides/slide1.xml"))
	assert.Contains(t, slide, `<p:ph type="title" idx="0"/>`)
	assert.Contains(t, slide, `<p:ph type="obj" idx="1"/>`)
	assert.Equal(t, 1, strings.Count(slide, `lvl="1"`), "only Sub A2 is nested")
	assert.NotContains(t, slide, `lvl="2"`)
	assert.Contains(t, slide, `<a:buChar char="•"/>`)
	assert.Contains(t, slide, `<a:buChar char="–"/>`)
	assert.Contains(t, slide, `<a:buNone/>`)
	assert.Contains(t, slide, `<a:t>Sub A2</a:t>`)
	assert.NotContains(t, slide, "\u00a0")
	assert.NotContains(t, slide, "• Point")

	notes := string(pkg.get("ppt/notesSlides/notesSlide1.xml"))
	assert.Contains(t, notes, `<p:ph type="body" idx="1"/>`)
	assert.Contains(t, notes, "then &lt;leave&gt;")

	notesRels, err := pkg.rels("ppt/notesSlides/notesSlide1.xml")
	require.NoError(t, err)
	rel, ok := notesRels.byType(relTypeNotesMaster)
	require.True(t, ok)
	assert.Equal(t, "../notesMasters/notesMaster1.xml", rel.Target)

	slideRels, err := pkg.rels("ppt/slides/slide1.xml")
	require.NoError(t, err)
	_, ok = slideRels.byType(relTypeNotesSlide)
	assert.True(t, ok)

	assert.Contains(t, string(pkg.get(slideMasterPart)), `<p:bodyStyle><a:lvl1pPr marL="342900"`)

	deck, err := NewReader(stubInspector{}, nil).Read(data)
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, entities.LayoutTitleAndContent, deck.Slides[0].Layout)
	assert.Equal(t, "say hi\nthen <leave>", deck.Slides[0].Notes)
	body, err := deck.Slides[0].Placeholder(1)
	require.NoError(t, err)
	assert.Equal(t, []entities.Paragraph{
		{Text: "Point A"},
		{Text: "Sub A1"},
		{Text: "Sub A2", Level: 1},
		{Text: ""},
		{Text: "Point B"},
	}, body.Text.Paragraphs)
}

func TestStore_RoundTripLiteralText(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ports.NewRealFileSystem(), stubInspector{}, nil)
	path := filepath.Join(t.TempDir(), "literal.pptx")

	const nbsp = "\u00a0\u00a0\u00a0\u00a0"
	deck := builders.NewDeckBuilder().
		WithTextSlide("• Title", nbsp+"indented by hand").
		WithParagraph("• literal bullet", 0).
		WithParagraph(nbsp+nbsp+"deep", 1).
		Build()

	require.NoError(t, store.Save(ctx, deck, path))
	loaded, err := store.Load(ctx, path)
	require.NoError(t, err)

	require.Len(t, loaded.Slides, 1)
	assert.Equal(t, "• Title", loaded.Slides[0].TitleText())
	body, err := loaded.Slides[0].Placeholder(1)
	require.NoError(t, err)
	assert.Equal(t, []entities.Paragraph{
		{Text: nbsp + "indented by hand"},
		{Text: "• literal bullet"},
		{Text: nbsp + nbsp + "deep", Level: 1},
	}, body.Text.Paragraphs)
}
