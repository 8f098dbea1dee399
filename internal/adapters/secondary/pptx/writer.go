package pptx

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// bulletGlyphs cycle with the nesting level of body paragraphs
var bulletGlyphs = []string{"•", "–", "•", "–", "»"}

var slideSizeRe = regexp.MustCompile(`<p:sldSz\b[^>]*/>`)

// Writer encodes decks as .pptx packages
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a new writer
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Write renders the whole deck
func (w *Writer) Write(deck *entities.Deck) ([]byte, error) {
	p := ppt.New()
	p.GetDocumentProperties().Title = deck.Title
	p.GetDocumentProperties().Creator = deck.Author

	for i, slide := range deck.Slides {
		target := p.GetActiveSlide()
		if i > 0 {
			target = p.CreateSlide()
		}
		w.writeSlide(target, slide)
	}

	pw, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("creating pptx writer: %w", err)
	}
	var buf bytes.Buffer
	if err := pw.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing pptx: %w", err)
	}

	return w.finalize(buf.Bytes(), deck)
}

func (w *Writer) writeSlide(target *ppt.Slide, slide *entities.Slide) {
	for _, shape := range slide.Shapes {
		switch shape.Kind {
		case entities.ShapePicture:
			if shape.Picture == nil || len(shape.Picture.Data) == 0 {
				continue
			}
			img := target.CreateDrawingShape()
			img.SetImageData(shape.Picture.Data, shape.Picture.MIMEType)
			img.SetName(shape.Name)
			img.SetOffsetX(shape.Geometry.Left).SetOffsetY(shape.Geometry.Top)
			img.SetWidth(shape.Geometry.Width).SetHeight(shape.Geometry.Height)
		default:
			writeTextShape(target, shape, slide.Layout == entities.LayoutTitle)
		}
	}
	if slide.HasNotes() {
		target.SetNotes(slide.Notes)
	}
}

// writeTextShape writes placeholder shapes as <p:ph> shapes so office
// suites keep their identity; other text becomes a plain text box.
func writeTextShape(target *ppt.Slide, shape *entities.Shape, titleSlide bool) {
	var box *ppt.RichTextShape
	var phType entities.PlaceholderType
	if ref := shape.Placeholder; ref != nil {
		phType = ref.Type
		ph := target.CreatePlaceholderShape(ppt.PlaceholderType(ref.Type))
		ph.SetPlaceholderIndex(ref.Index)
		box = &ph.RichTextShape
	} else {
		box = target.CreateRichTextShape()
	}
	box.SetName(shape.Name)
	box.SetOffsetX(shape.Geometry.Left).SetOffsetY(shape.Geometry.Top)
	box.SetWidth(shape.Geometry.Width).SetHeight(shape.Geometry.Height)

	if shape.Text == nil {
		return
	}
	for i, para := range shape.Text.Paragraphs {
		p := box.GetActiveParagraph()
		if i > 0 {
			p = box.CreateParagraph()
		}
		p.GetAlignment().Level = para.Level
		if titleSlide && (phType.IsTitle() || phType == entities.PlaceholderSubtitle) {
			p.GetAlignment().SetHorizontal(ppt.HorizontalCenter)
		}
		p.SetBullet(bulletFor(phType, para.Level))

		p.CreateTextRun(para.Text).GetFont().
			SetSize(fontSize(phType, para.Level)).
			SetBold(phType.IsTitle())
	}
}

// bulletFor gives body placeholders a bullet character per level and
// turns bullets off everywhere else
func bulletFor(phType entities.PlaceholderType, level int) *ppt.Bullet {
	if !phType.IsBody() {
		return &ppt.Bullet{Type: ppt.BulletTypeNone}
	}
	return ppt.NewBullet().SetCharBullet(bulletGlyphs[level%len(bulletGlyphs)])
}

func fontSize(phType entities.PlaceholderType, level int) int {
	switch {
	case phType == entities.PlaceholderCenterTitle:
		return 44
	case phType.IsTitle():
		return 40
	case phType == entities.PlaceholderSubtitle:
		return 32
	case level == 0:
		return 28
	case level == 1:
		return 24
	case level == 2:
		return 20
	default:
		return 18
	}
}

// finalize applies what the generator cannot express: the template slide
// size, level indentation on the slide master and the notes master.
func (w *Writer) finalize(data []byte, deck *entities.Deck) ([]byte, error) {
	pkg, err := readPackage(data)
	if err != nil {
		return nil, err
	}

	if pres := pkg.get(presentationPart); pres != nil && deck.Template != nil {
		size := fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/>`, deck.Template.SlideWidth, deck.Template.SlideHeight)
		pkg.put(presentationPart, slideSizeRe.ReplaceAll(pres, []byte(size)))
	}
	addTextStyles(pkg)

	if err := linkNotesMaster(pkg); err != nil {
		return nil, fmt.Errorf("writing notes master: %w", err)
	}

	out, err := pkg.bytes()
	if err != nil {
		return nil, err
	}
	w.logger.Debug("Wrote presentation package",
		slog.Int("slides", deck.SlideCount()),
		slog.Int("bytes", len(out)),
	)
	return out, nil
}
