package pptx

import (
	"fmt"
	"strings"
)

const (
	slideMasterPart = "ppt/slideMasters/slideMaster1.xml"

	levelIndentEMU = 342900
	maxLevels      = 9
)

// addTextStyles gives the slide master per-level body margins so paragraph
// lvl attributes indent visibly. Masters that already carry styles are kept.
func addTextStyles(pkg *opcPackage) {
	master := string(pkg.get(slideMasterPart))
	if master == "" || strings.Contains(master, "<p:txStyles") {
		return
	}
	end := strings.LastIndex(master, "</p:sldMaster>")
	if end < 0 {
		return
	}
	pkg.put(slideMasterPart, []byte(master[:end]+textStylesXML()+master[end:]))
}

func textStylesXML() string {
	var b strings.Builder
	b.WriteString(`<p:txStyles>`)
	b.WriteString(`<p:titleStyle><a:lvl1pPr algn="l"><a:buNone/><a:defRPr sz="4000"/></a:lvl1pPr></p:titleStyle>`)
	b.WriteString(`<p:bodyStyle>`)
	for n := 1; n <= maxLevels; n++ {
		fmt.Fprintf(&b, `<a:lvl%dpPr marL="%d" indent="-%d"><a:defRPr/></a:lvl%dpPr>`,
			n, levelIndentEMU*n, levelIndentEMU, n)
	}
	b.WriteString(`</p:bodyStyle>`)
	b.WriteString(`<p:otherStyle><a:lvl1pPr><a:defRPr/></a:lvl1pPr></p:otherStyle>`)
	b.WriteString(`</p:txStyles>`)
	return b.String()
}
