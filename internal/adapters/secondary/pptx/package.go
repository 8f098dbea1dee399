package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Relationship types used by presentation packages
const (
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

	presentationPart = "ppt/presentation.xml"
	contentTypesPart = "[Content_Types].xml"
	corePropsPart    = "docProps/core.xml"
)

// opcPackage is an unpacked zip package with its original part order
type opcPackage struct {
	order []string
	parts map[string][]byte
}

func readPackage(data []byte) (*opcPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}

	pkg := &opcPackage{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
		}
		pkg.put(f.Name, content)
	}
	return pkg, nil
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

func (p *opcPackage) get(name string) []byte {
	return p.parts[name]
}

func (p *opcPackage) put(name string, data []byte) {
	if !p.has(name) {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

func (p *opcPackage) bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("writing part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// relsPath returns the relationships part of a part, "ppt/slides/slide1.xml"
// -> "ppt/slides/_rels/slide1.xml.rels"
func relsPath(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target relative to its source part
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relativeTarget returns the target of part as seen from source
func relativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	up := strings.Repeat("../", len(from)-i)
	return up + strings.Join(to[i:], "/")
}

func (p *opcPackage) rels(part string) (*relationships, error) {
	data := p.get(relsPath(part))
	rels := &relationships{}
	if data == nil {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("parsing relationships of %s: %w", part, err)
	}
	return rels, nil
}

func (p *opcPackage) putRels(part string, rels *relationships) error {
	rels.XMLName = xml.Name{Space: relationshipsNS, Local: "Relationships"}
	out, err := xml.Marshal(rels)
	if err != nil {
		return fmt.Errorf("encoding relationships of %s: %w", part, err)
	}
	p.put(relsPath(part), append([]byte(xml.Header), out...))
	return nil
}

// byID returns the relationship with the given id
func (r *relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

// byType returns the first relationship of the given type
func (r *relationships) byType(relType string) (relationship, bool) {
	for _, rel := range r.Rels {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationship{}, false
}

// add appends a relationship with a fresh id and returns the id
func (r *relationships) add(relType, target string) string {
	used := make(map[string]bool, len(r.Rels))
	for _, rel := range r.Rels {
		used[rel.ID] = true
	}
	n := len(r.Rels) + 1
	id := "rId" + strconv.Itoa(n)
	for used[id] {
		n++
		id = "rId" + strconv.Itoa(n)
	}
	r.Rels = append(r.Rels, relationship{ID: id, Type: relType, Target: target})
	return id
}

var slideFileRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// slideParts returns the slide parts in presentation order. It follows the
// presentation's slide id list and falls back to file numbering.
func (p *opcPackage) slideParts() ([]string, error) {
	if data := p.get(presentationPart); data != nil {
		var pres presentationXML
		if err := xml.Unmarshal(data, &pres); err != nil {
			return nil, fmt.Errorf("parsing presentation: %w", err)
		}
		rels, err := p.rels(presentationPart)
		if err != nil {
			return nil, err
		}

		var parts []string
		for _, id := range pres.SlideIDs {
			rel, ok := rels.byID(id.RID)
			if !ok {
				continue
			}
			part := resolveTarget(presentationPart, rel.Target)
			if p.has(part) {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts, nil
		}
	}

	type numbered struct {
		name string
		num  int
	}
	var files []numbered
	for _, name := range p.order {
		if m := slideFileRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			files = append(files, numbered{name: name, num: n})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })

	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = f.name
	}
	return parts, nil
}

// addOverride registers a content type for a part
func (p *opcPackage) addOverride(part, contentType string) {
	types := string(p.get(contentTypesPart))
	partName := "/" + part
	if types == "" || strings.Contains(types, `PartName="`+partName+`"`) {
		return
	}
	override := fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentType)
	types = strings.Replace(types, "</Types>", override+"</Types>", 1)
	p.put(contentTypesPart, []byte(types))
}
