package docx

import (
	"encoding/xml"
	"strings"
)

// XML namespaces used in DOCX files
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsWStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsRels    = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsMC      = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// Relationship types, matched by suffix so strict and transitional
// variants both resolve.
const (
	relOfficeDocument = "/officeDocument"
	relStyles         = "/styles"
	relNumbering      = "/numbering"
	relTheme          = "/theme"
	relComments       = "/comments"

	relCommentsType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	contentTypeComments = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
)

// isW reports whether name is in the WordprocessingML main namespace.
func isW(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == nsW || name.Space == nsWStrict)
}

// isMC reports whether name is a markup-compatibility element.
func isMC(name xml.Name, local string) bool {
	return name.Local == local && name.Space == nsMC
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style         *valXML            `xml:"pStyle"`
	NumPr         *numberingPropsXML `xml:"numPr"`
	Justification *valXML            `xml:"jc"`
	Spacing       *spacingXML        `xml:"spacing"`
	Indent        *indentXML         `xml:"ind"`
	OutlineLvl    *valXML            `xml:"outlineLvl"`
	SectPr        *sectPrXML         `xml:"sectPr"`
}

// valXML is the common single-attribute element (<w:x w:val="..."/>).
type valXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  *valXML `xml:"ilvl"`
	NumID *valXML `xml:"numId"`
}

// spacingXML represents paragraph spacing.
type spacingXML struct {
	Before   string `xml:"before,attr"`   // twips
	After    string `xml:"after,attr"`    // twips
	Line     string `xml:"line,attr"`     // 240ths of a line, or twips
	LineRule string `xml:"lineRule,attr"` // auto, exact, atLeast
}

// indentXML represents paragraph indentation. start/end are the strict names
// of left/right.
type indentXML struct {
	Left      string `xml:"left,attr"`
	Start     string `xml:"start,attr"`
	Right     string `xml:"right,attr"`
	End       string `xml:"end,attr"`
	FirstLine string `xml:"firstLine,attr"`
	Hanging   string `xml:"hanging,attr"`
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style    *valXML  `xml:"rStyle"`
	Bold     *boolXML `xml:"b"`
	Italic   *boolXML `xml:"i"`
	FontSize *valXML  `xml:"sz"`
	Font     *fontXML `xml:"rFonts"`
}

// boolXML represents an on/off property. A bare element means on.
type boolXML struct {
	Val string `xml:"val,attr"`
}

func (b *boolXML) value() bool {
	switch strings.ToLower(b.Val) {
	case "0", "false", "off":
		return false
	default:
		return true
	}
}

// fontXML represents font settings.
type fontXML struct {
	ASCII      string `xml:"ascii,attr"`
	HAnsi      string `xml:"hAnsi,attr"`
	CS         string `xml:"cs,attr"`
	EastAsia   string `xml:"eastAsia,attr"`
	ASCIITheme string `xml:"asciiTheme,attr"`
	HAnsiTheme string `xml:"hAnsiTheme,attr"`
}

// textXML represents text content (<w:t>).
type textXML struct {
	Space string `xml:"space,attr"`
	Value string `xml:",chardata"`
}

// sectPrXML represents section properties.
type sectPrXML struct {
	PgSz  *pgSzXML  `xml:"pgSz"`
	PgMar *pgMarXML `xml:"pgMar"`
}

// pgSzXML represents the page size, in twips.
type pgSzXML struct {
	W      string `xml:"w,attr"`
	H      string `xml:"h,attr"`
	Orient string `xml:"orient,attr"`
}

// pgMarXML represents page margins, in twips.
type pgMarXML struct {
	Top    string `xml:"top,attr"`
	Bottom string `xml:"bottom,attr"`
	Left   string `xml:"left,attr"`
	Right  string `xml:"right,attr"`
}
