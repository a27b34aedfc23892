// Package testdocx builds small word-processing packages in memory for tests.
package testdocx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	NSMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
)

// Doc describes a package. Empty parts are omitted.
type Doc struct {
	Body      string // children of <w:body>
	Styles    string // children of <w:styles>
	Numbering string // children of <w:numbering>
	Comments  string // children of <w:comments>, for a package already annotated

	ThemeMajor string
	ThemeMinor string

	// NoDocumentRels omits word/_rels/document.xml.rels; parts are then found
	// at their conventional locations.
	NoDocumentRels bool

	// Extra parts added verbatim.
	Extra map[string]string
}

// Bytes returns the zip package.
func (d Doc) Bytes() []byte {
	parts := map[string]string{
		"[Content_Types].xml": d.contentTypes(),
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="` + relBase + `officeDocument" Target="word/document.xml"/></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + NSMain + `" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` + d.Body + `</w:body></w:document>`,
	}

	var rels []string
	if d.Styles != "" {
		parts["word/styles.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + NSMain + `">` + d.Styles + `</w:styles>`
		rels = append(rels, rel(len(rels)+1, "styles", "styles.xml"))
	}
	if d.Numbering != "" {
		parts["word/numbering.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="` + NSMain + `">` + d.Numbering + `</w:numbering>`
		rels = append(rels, rel(len(rels)+1, "numbering", "numbering.xml"))
	}
	if d.ThemeMajor != "" || d.ThemeMinor != "" {
		parts["word/theme/theme1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements><a:fontScheme name="Office">` +
			`<a:majorFont><a:latin typeface="` + d.ThemeMajor + `"/></a:majorFont>` +
			`<a:minorFont><a:latin typeface="` + d.ThemeMinor + `"/></a:minorFont>` +
			`</a:fontScheme></a:themeElements></a:theme>`
		rels = append(rels, rel(len(rels)+1, "theme", "theme/theme1.xml"))
	}
	if d.Comments != "" {
		parts["word/comments.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="` + NSMain + `">` + d.Comments + `</w:comments>`
		rels = append(rels, rel(len(rels)+1, "comments", "comments.xml"))
	}
	if !d.NoDocumentRels {
		parts["word/_rels/document.xml.rels"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + strings.Join(rels, "") + `</Relationships>`
	}
	for name, data := range d.Extra {
		parts[name] = data
	}

	return Zip(parts)
}

func (d Doc) contentTypes() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	if d.Comments != "" {
		sb.WriteString(`<Override PartName="/word/comments.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"/>`)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func rel(n int, kind, target string) string {
	return fmt.Sprintf(`<Relationship Id="rId%d" Type="%s%s" Target="%s"/>`, n, relBase, kind, target)
}

// Zip writes the parts into a zip archive in name order.
func Zip(parts map[string]string) []byte {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// P renders a paragraph. pPr holds the children of <w:pPr>.
func P(pPr string, runs ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	if pPr != "" {
		sb.WriteString("<w:pPr>" + pPr + "</w:pPr>")
	}
	for _, r := range runs {
		sb.WriteString(r)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// R renders a run. rPr holds the children of <w:rPr>.
func R(rPr, text string) string {
	var sb strings.Builder
	sb.WriteString("<w:r>")
	if rPr != "" {
		sb.WriteString("<w:rPr>" + rPr + "</w:rPr>")
	}
	sb.WriteString(`<w:t xml:space="preserve">` + text + `</w:t></w:r>`)
	return sb.String()
}

// Font renders run props for a typeface and a size in points.
func Font(name string, points float64) string {
	return fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/>`, name, name, int(points*2))
}

// SectPr renders section properties with margins in twips.
func SectPr(top, bottom, left, right int) string {
	return fmt.Sprintf(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="%d" w:bottom="%d" w:left="%d" w:right="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
		top, bottom, left, right)
}

// DefaultStyles declares a Normal style and built-in Heading1 and Heading2.
const DefaultStyles = `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:asciiTheme="minorHAnsi" w:hAnsiTheme="minorHAnsi"/><w:sz w:val="22"/></w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:sz w:val="26"/></w:rPr></w:style>`

// ReadPart returns the content of one part of a zip package.
func ReadPart(data []byte, name string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		return string(b), err
	}
	return "", fmt.Errorf("part %s not found", name)
}
