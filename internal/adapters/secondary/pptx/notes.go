package pptx

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	notesMasterPart = "ppt/notesMasters/notesMaster1.xml"

	contentTypeNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	contentTypeTheme       = "application/vnd.openxmlformats-officedocument.theme+xml"

	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	groupProps = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`
)

const notesMasterXML = `<p:notesMaster ` + nsDecl + `><p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` +
	groupProps +
	`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg" idx="2"/></p:nvPr></p:nvSpPr>` +
	`<p:spPr><a:xfrm><a:off x="1143000" y="685800"/><a:ext cx="4572000" cy="3429000"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:sp>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" sz="quarter" idx="3"/></p:nvPr></p:nvSpPr>` +
	`<p:spPr><a:xfrm><a:off x="685800" y="4343400"/><a:ext cx="5486400" cy="4114800"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>` +
	`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`</p:notesMaster>`

var notesSlideRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide\d+\.xml$`)

// linkNotesMaster adds the notes master the generator leaves out and points
// each of its notes slides at it. Packages without notes are left alone.
func linkNotesMaster(pkg *opcPackage) error {
	var notesParts []string
	for _, name := range pkg.order {
		if notesSlideRe.MatchString(name) {
			notesParts = append(notesParts, name)
		}
	}
	if len(notesParts) == 0 {
		return nil
	}

	if err := ensureNotesMaster(pkg); err != nil {
		return err
	}
	for _, part := range notesParts {
		rels, err := pkg.rels(part)
		if err != nil {
			return err
		}
		if _, ok := rels.byType(relTypeNotesMaster); ok {
			continue
		}
		rels.add(relTypeNotesMaster, relativeTarget(part, notesMasterPart))
		if err := pkg.putRels(part, rels); err != nil {
			return err
		}
	}
	return nil
}

// ensureNotesMaster creates the notes master with its own theme copy and
// registers it with the presentation.
func ensureNotesMaster(pkg *opcPackage) error {
	if pkg.has(notesMasterPart) {
		return nil
	}

	presRels, err := pkg.rels(presentationPart)
	if err != nil {
		return err
	}

	masterRels := &relationships{}
	if rel, ok := presRels.byType(relTypeTheme); ok {
		source := resolveTarget(presentationPart, rel.Target)
		themePart := nextPartName(pkg, "ppt/theme/theme", ".xml")
		pkg.put(themePart, pkg.get(source))
		pkg.addOverride(themePart, contentTypeTheme)
		masterRels.add(relTypeTheme, relativeTarget(notesMasterPart, themePart))
	}

	pkg.put(notesMasterPart, []byte(xml.Header+notesMasterXML))
	pkg.addOverride(notesMasterPart, contentTypeNotesMaster)
	if err := pkg.putRels(notesMasterPart, masterRels); err != nil {
		return err
	}

	rID := presRels.add(relTypeNotesMaster, relativeTarget(presentationPart, notesMasterPart))
	if err := pkg.putRels(presentationPart, presRels); err != nil {
		return err
	}

	pres := string(pkg.get(presentationPart))
	list := fmt.Sprintf(`<p:notesMasterIdLst><p:notesMasterId r:id="%s"/></p:notesMasterIdLst>`, rID)
	switch {
	case strings.Contains(pres, "</p:sldMasterIdLst>"):
		pres = strings.Replace(pres, "</p:sldMasterIdLst>", "</p:sldMasterIdLst>"+list, 1)
	case strings.Contains(pres, "<p:sldIdLst"):
		pres = strings.Replace(pres, "<p:sldIdLst", list+"<p:sldIdLst", 1)
	default:
		return fmt.Errorf("presentation has no master list")
	}
	pkg.put(presentationPart, []byte(pres))
	return nil
}

func nextPartName(pkg *opcPackage, prefix, ext string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s%d%s", prefix, n, ext)
		if !pkg.has(name) {
			return name
		}
	}
}
