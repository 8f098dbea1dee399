package pptx

import "encoding/xml"

type presentationXML struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	SlideSize struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type corePropsXML struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// slideXML covers slides, slide layouts and notes slides
type slideXML struct {
	CSld struct {
		Name   string   `xml:"name,attr"`
		SpTree treeNode `xml:"spTree"`
	} `xml:"cSld"`
}

// treeNode is any element of a shape tree. Shapes, pictures and groups are
// told apart by XMLName; group members land in Children.
type treeNode struct {
	XMLName  xml.Name
	NvSpPr   *nvProps   `xml:"nvSpPr"`
	NvPicPr  *nvProps   `xml:"nvPicPr"`
	SpPr     *spPr      `xml:"spPr"`
	TxBody   *txBody    `xml:"txBody"`
	BlipFill *blipFill  `xml:"blipFill"`
	Children []treeNode `xml:",any"`
}

func (n *treeNode) props() *nvProps {
	if n.NvSpPr != nil {
		return n.NvSpPr
	}
	return n.NvPicPr
}

type nvProps struct {
	CNvPr struct {
		ID   int    `xml:"id,attr"`
		Name string `xml:"name,attr"`
	} `xml:"cNvPr"`
	Ph *phXML `xml:"nvPr>ph"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  *int   `xml:"idx,attr"`
}

type spPr struct {
	Xfrm *xfrmXML `xml:"xfrm"`
}

type xfrmXML struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

type txBody struct {
	Paragraphs []paragraphXML `xml:"p"`
}

type paragraphXML struct {
	PPr *struct {
		Lvl *int `xml:"lvl,attr"`
	} `xml:"pPr"`
	Items []textItem `xml:",any"`
}

// textItem is a run, a field or a line break
type textItem struct {
	XMLName xml.Name
	T       string `xml:"t"`
}

type blipFill struct {
	Blip struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	} `xml:"blip"`
}
