package pptx

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// Reader decodes .pptx packages into decks
type Reader struct {
	inspector ports.ImageInspector
	logger    *slog.Logger
}

// NewReader creates a new reader. The inspector supplies picture pixel sizes.
func NewReader(inspector ports.ImageInspector, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{inspector: inspector, logger: logger}
}

// Read decodes a whole package
func (r *Reader) Read(data []byte) (*entities.Deck, error) {
	pkg, err := readPackage(data)
	if err != nil {
		return nil, err
	}

	tmpl, err := r.template(pkg)
	if err != nil {
		return nil, err
	}
	deck := entities.NewDeck(tmpl)

	if core := pkg.get(corePropsPart); core != nil {
		var props corePropsXML
		if err := xml.Unmarshal(core, &props); err == nil {
			deck.Title = props.Title
			deck.Author = props.Creator
		}
	}

	parts, err := pkg.slideParts()
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		slide, err := r.readSlide(pkg, part, tmpl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", part, err)
		}
		deck.AppendSlide(slide)
	}

	r.logger.Debug("Read presentation package",
		slog.Int("slides", deck.SlideCount()),
		slog.String("template", tmpl.Name),
	)
	return deck, nil
}

// template picks the built-in template matching the package's slide size
func (r *Reader) template(pkg *opcPackage) (*entities.Template, error) {
	tmpl := entities.DefaultTemplate()
	data := pkg.get(presentationPart)
	if data == nil {
		return tmpl, nil
	}

	var pres presentationXML
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	if pres.SlideSize.Cx == entities.WidescreenSlideWidth {
		tmpl = entities.WidescreenTemplate()
	}
	if pres.SlideSize.Cx > 0 && pres.SlideSize.Cy > 0 {
		tmpl.SlideWidth = pres.SlideSize.Cx
		tmpl.SlideHeight = pres.SlideSize.Cy
	}
	return tmpl, nil
}

func parseSlideXML(data []byte) (*slideXML, error) {
	var s slideXML
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// flatten lists the shapes and pictures of a tree in document order
func flatten(node *treeNode, out []*treeNode) []*treeNode {
	for i := range node.Children {
		child := &node.Children[i]
		switch child.XMLName.Local {
		case "sp", "pic":
			out = append(out, child)
		case "grpSp":
			out = flatten(child, out)
		}
	}
	return out
}

func (r *Reader) readSlide(pkg *opcPackage, part string, tmpl *entities.Template) (*entities.Slide, error) {
	doc, err := parseSlideXML(pkg.get(part))
	if err != nil {
		return nil, fmt.Errorf("parsing slide: %w", err)
	}
	rels, err := pkg.rels(part)
	if err != nil {
		return nil, err
	}

	var layoutDoc *slideXML
	if rel, ok := rels.byType(relTypeSlideLayout); ok {
		if data := pkg.get(resolveTarget(part, rel.Target)); data != nil {
			layoutDoc, _ = parseSlideXML(data)
		}
	}

	slide := &entities.Slide{ID: uuid.NewString()}

	for _, node := range flatten(&doc.CSld.SpTree, nil) {
		props := node.props()
		shape := &entities.Shape{}
		if props != nil {
			shape.Name = props.CNvPr.Name
			if props.Ph != nil {
				shape.Placeholder = placeholderRef(props.Ph)
			}
		}
		if node.SpPr != nil && node.SpPr.Xfrm != nil {
			shape.Geometry = geometryOf(node.SpPr.Xfrm)
		} else if shape.Placeholder != nil {
			shape.Geometry = inheritedGeometry(layoutDoc, shape.Placeholder)
		}

		switch node.XMLName.Local {
		case "pic":
			pic, err := r.readPicture(pkg, part, rels, node)
			if err != nil {
				return nil, err
			}
			if pic == nil {
				continue
			}
			shape.Kind = entities.ShapePicture
			shape.Picture = pic
		default:
			shape.Kind = entities.ShapeText
			shape.Text = readTextFrame(node.TxBody)
		}
		slide.Shapes = append(slide.Shapes, shape)
	}

	assignLayout(slide, tmpl, layoutName(layoutDoc))
	for _, shape := range slide.Shapes {
		if shape.Placeholder != nil && shape.Geometry == (entities.Geometry{}) {
			shape.Geometry = templateGeometry(tmpl, slide.Layout, shape.Placeholder.Index)
		}
	}

	notes, err := readNotes(pkg, part, rels)
	if err != nil {
		return nil, err
	}
	slide.Notes = notes

	return slide, nil
}

func layoutName(layoutDoc *slideXML) string {
	if layoutDoc == nil {
		return ""
	}
	return layoutDoc.CSld.Name
}

func geometryOf(x *xfrmXML) entities.Geometry {
	return entities.Geometry{Left: x.Off.X, Top: x.Off.Y, Width: x.Ext.Cx, Height: x.Ext.Cy}
}

func placeholderRef(ph *phXML) *entities.PlaceholderRef {
	ref := &entities.PlaceholderRef{Type: entities.PlaceholderType(ph.Type)}
	if ref.Type == "" {
		ref.Type = entities.PlaceholderObject
	}
	if ph.Idx != nil {
		ref.Index = *ph.Idx
	}
	return ref
}

// inheritedGeometry finds the placeholder geometry declared by the slide layout
func inheritedGeometry(layoutDoc *slideXML, ref *entities.PlaceholderRef) entities.Geometry {
	if layoutDoc == nil {
		return entities.Geometry{}
	}
	for _, node := range flatten(&layoutDoc.CSld.SpTree, nil) {
		props := node.props()
		if props == nil || props.Ph == nil || node.SpPr == nil || node.SpPr.Xfrm == nil {
			continue
		}
		candidate := placeholderRef(props.Ph)
		if candidate.Index == ref.Index || (candidate.Type.IsTitle() && ref.Type.IsTitle()) {
			return geometryOf(node.SpPr.Xfrm)
		}
	}
	return entities.Geometry{}
}

func templateGeometry(tmpl *entities.Template, layoutIndex, phIndex int) entities.Geometry {
	layout, err := tmpl.Layout(layoutIndex)
	if err != nil {
		return entities.Geometry{}
	}
	for _, ph := range layout.Placeholders {
		if ph.Index == phIndex {
			return ph.Geometry
		}
	}
	return entities.Geometry{}
}

// assignLayout maps a slide onto a template layout. A layout declaring
// exactly the slide's placeholders wins, then one with the slide layout's
// name, then the smallest layout declaring all of them.
func assignLayout(slide *entities.Slide, tmpl *entities.Template, name string) {
	if idx, ok := signatureLayout(tmpl, slide.Shapes); ok {
		slide.Layout = idx
		slide.LayoutName = tmpl.Layouts[idx].Name
		return
	}

	for _, layout := range tmpl.Layouts {
		if name != "" && strings.EqualFold(layout.Name, name) && coversPlaceholders(layout, slide.Shapes) {
			slide.Layout = layout.Index
			slide.LayoutName = layout.Name
			return
		}
	}

	best := -1
	for _, layout := range tmpl.Layouts {
		if !coversPlaceholders(layout, slide.Shapes) {
			continue
		}
		if best < 0 || len(layout.Placeholders) < len(tmpl.Layouts[best].Placeholders) {
			best = layout.Index
		}
	}
	if best < 0 {
		best = blankLayout(tmpl)
	}
	slide.Layout = best
	slide.LayoutName = tmpl.Layouts[best].Name
}

// signatureLayout finds the layout whose placeholder (type, index) pairs are
// exactly those of the shapes
func signatureLayout(tmpl *entities.Template, shapes []*entities.Shape) (int, bool) {
	have := make(map[entities.PlaceholderRef]bool)
	for _, shape := range shapes {
		if shape.Placeholder != nil {
			have[*shape.Placeholder] = true
		}
	}
	for _, layout := range tmpl.Layouts {
		if len(layout.Placeholders) != len(have) {
			continue
		}
		match := true
		for _, ph := range layout.Placeholders {
			if !have[ph.Ref()] {
				match = false
				break
			}
		}
		if match {
			return layout.Index, true
		}
	}
	return 0, false
}

// coversPlaceholders reports whether the layout declares every placeholder
// the shapes refer to. Title kinds must agree.
func coversPlaceholders(layout entities.Layout, shapes []*entities.Shape) bool {
	for _, shape := range shapes {
		if shape.Placeholder == nil {
			continue
		}
		found := false
		for _, ph := range layout.Placeholders {
			if ph.Index != shape.Placeholder.Index {
				continue
			}
			if ph.Type.IsTitle() || shape.Placeholder.Type.IsTitle() {
				found = ph.Type == shape.Placeholder.Type
			} else {
				found = true
			}
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func blankLayout(tmpl *entities.Template) int {
	for _, layout := range tmpl.Layouts {
		if len(layout.Placeholders) == 0 {
			return layout.Index
		}
	}
	return 0
}

// readTextFrame reads paragraphs with their pPr@lvl depth
func readTextFrame(body *txBody) *entities.TextFrame {
	tf := &entities.TextFrame{}
	if body == nil {
		return tf
	}

	for _, p := range body.Paragraphs {
		var sb strings.Builder
		for _, item := range p.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				sb.WriteString(item.T)
			case "br":
				sb.WriteString("\n")
			}
		}
		level := 0
		if p.PPr != nil && p.PPr.Lvl != nil {
			level = *p.PPr.Lvl
		}
		tf.Paragraphs = append(tf.Paragraphs, entities.Paragraph{Text: sb.String(), Level: level})
	}

	if len(tf.Paragraphs) == 1 && tf.Paragraphs[0].Text == "" {
		tf.Paragraphs = nil
	}
	return tf
}

func (r *Reader) readPicture(pkg *opcPackage, part string, rels *relationships, node *treeNode) (*entities.Picture, error) {
	if node.BlipFill == nil || node.BlipFill.Blip.Embed == "" {
		return nil, nil
	}
	rel, ok := rels.byID(node.BlipFill.Blip.Embed)
	if !ok || rel.TargetMode == "External" {
		return nil, nil
	}
	target := resolveTarget(part, rel.Target)
	data := pkg.get(target)
	if data == nil {
		r.logger.Warn("Picture part is missing", slog.String("part", target))
		return nil, nil
	}

	if r.inspector != nil {
		if pic, err := r.inspector.Inspect(data); err == nil {
			pic.Source = path.Base(target)
			return pic, nil
		}
	}
	return &entities.Picture{
		Data:     data,
		MIMEType: mimetype.Detect(data).String(),
		Source:   path.Base(target),
	}, nil
}

// readNotes returns the body text of the slide's notes page
func readNotes(pkg *opcPackage, part string, rels *relationships) (string, error) {
	rel, ok := rels.byType(relTypeNotesSlide)
	if !ok {
		return "", nil
	}
	data := pkg.get(resolveTarget(part, rel.Target))
	if data == nil {
		return "", nil
	}
	doc, err := parseSlideXML(data)
	if err != nil {
		return "", fmt.Errorf("parsing notes: %w", err)
	}

	for _, node := range flatten(&doc.CSld.SpTree, nil) {
		props := node.props()
		if props == nil || props.Ph == nil || props.Ph.Type != string(entities.PlaceholderBody) {
			continue
		}
		tf := readTextFrame(node.TxBody)
		return tf.Text(), nil
	}
	return "", nil
}
