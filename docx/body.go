package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/tsawler/docfmt/model"
)

// bodyParser walks document.xml token by token. Unmarshaling the whole body
// would lose the order of paragraphs and tables and the byte offsets needed
// to place comment markers, so the walker records both as it goes.
type bodyParser struct {
	part string
	d    *xml.Decoder

	tableDepth int
	paraIndex  int
	alt        altContent

	sections []model.Section
	current  model.Section
}

func parseBody(part string, data []byte) ([]model.Section, error) {
	bp := &bodyParser{
		part: part,
		d:    xml.NewDecoder(bytes.NewReader(data)),
	}
	if err := bp.run(); err != nil {
		return nil, err
	}
	return bp.sections, nil
}

// token returns the next token and the offset at which it starts.
func (bp *bodyParser) token() (xml.Token, int, error) {
	off := int(bp.d.InputOffset())
	tok, err := bp.d.Token()
	return tok, off, err
}

func (bp *bodyParser) syntaxErr(err error) error {
	return decodeErr(bp.part, "malformed XML", err)
}

func (bp *bodyParser) run() error {
	sawBody := false
	for {
		tok, _, err := bp.token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bp.syntaxErr(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "body"):
				sawBody = true
			case isW(t.Name, "p"):
				p, sect, err := bp.parseParagraph()
				if err != nil {
					return err
				}
				bp.current.Paragraphs = append(bp.current.Paragraphs, p)
				if sect != nil {
					bp.closeSection(sect)
				}
			case isW(t.Name, "tbl"):
				bp.tableDepth++
			case isMC(t.Name, "AlternateContent"):
				bp.alt.open()
			case isMC(t.Name, "Choice"), isMC(t.Name, "Fallback"):
				if !bp.alt.take() {
					if err := bp.d.Skip(); err != nil {
						return bp.syntaxErr(err)
					}
				}
			case isW(t.Name, "sectPr"):
				var sect sectPrXML
				if err := bp.d.DecodeElement(&sect, &t); err != nil {
					return bp.syntaxErr(err)
				}
				bp.closeSection(&sect)
			}
		case xml.EndElement:
			switch {
			case isW(t.Name, "tbl") && bp.tableDepth > 0:
				bp.tableDepth--
			case isMC(t.Name, "AlternateContent"):
				bp.alt.close()
			}
		}
	}

	if !sawBody {
		return decodeErrf(bp.part, "no document body")
	}
	if len(bp.current.Paragraphs) > 0 || len(bp.sections) == 0 {
		bp.closeSection(nil)
	}
	return nil
}

// altContent tracks open mc:AlternateContent elements. Only the first branch
// of each is read, so content present in both Choice and Fallback is seen
// once.
type altContent []bool

func (a *altContent) open() { *a = append(*a, false) }

func (a *altContent) close() {
	if n := len(*a); n > 0 {
		*a = (*a)[:n-1]
	}
}

// take reports whether the branch starting now should be read.
func (a *altContent) take() bool {
	n := len(*a)
	if n == 0 {
		return true
	}
	if (*a)[n-1] {
		return false
	}
	(*a)[n-1] = true
	return true
}

func (bp *bodyParser) closeSection(sect *sectPrXML) {
	s := bp.current
	s.Index = len(bp.sections)
	convertSection(sect, &s)
	for i := range s.Paragraphs {
		s.Paragraphs[i].Section = s.Index
	}
	bp.sections = append(bp.sections, s)
	bp.current = model.Section{}
}

// parseParagraph consumes a <w:p> element after its start tag.
// It returns the section properties when the paragraph ends a section.
func (bp *bodyParser) parseParagraph() (model.Paragraph, *sectPrXML, error) {
	p := model.Paragraph{
		Index:   bp.paraIndex,
		InTable: bp.tableDepth > 0,
	}
	bp.paraIndex++

	var sect *sectPrXML
	contentStart := int(bp.d.InputOffset())
	depth := 0

	for {
		tok, off, err := bp.token()
		if err != nil {
			return p, nil, bp.syntaxErr(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isW(t.Name, "pPr"):
				var ppr paragraphPropsXML
				if err := bp.d.DecodeElement(&ppr, &t); err != nil {
					return p, nil, bp.syntaxErr(err)
				}
				if ppr.Style != nil {
					p.Style = ppr.Style.Val
				}
				p.Props = convertParagraphProps(&ppr)
				sect = ppr.SectPr
				contentStart = int(bp.d.InputOffset())
			case isW(t.Name, "r"):
				r, err := bp.parseRun(off)
				if err != nil {
					return p, nil, err
				}
				r.Index = len(p.Runs)
				p.Runs = append(p.Runs, r)
			case isW(t.Name, "del"), isW(t.Name, "moveFrom"):
				if err := bp.d.Skip(); err != nil {
					return p, nil, bp.syntaxErr(err)
				}
			case isMC(t.Name, "AlternateContent"):
				bp.alt.open()
				depth++
			case isMC(t.Name, "Choice"), isMC(t.Name, "Fallback"):
				if !bp.alt.take() {
					if err := bp.d.Skip(); err != nil {
						return p, nil, bp.syntaxErr(err)
					}
					continue
				}
				depth++
			default:
				// hyperlink, ins, smartTag, sdt, fldSimple...: descend into it
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				if isMC(t.Name, "AlternateContent") {
					bp.alt.close()
				}
				depth--
				continue
			}
			// A self-closing <w:p/> yields its end token without consuming
			// input, leaving nothing to anchor to.
			if off != int(bp.d.InputOffset()) {
				p.Source = model.Span{Start: contentStart, End: off}
			}
			return p, sect, nil
		}
	}
}

// parseRun consumes a <w:r> element whose start tag began at start.
func (bp *bodyParser) parseRun(start int) (model.Run, error) {
	r := model.Run{}
	var text strings.Builder
	depth := 0

	for {
		tok, _, err := bp.token()
		if err != nil {
			return r, bp.syntaxErr(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
				continue
			}
			switch {
			case isW(t.Name, "rPr"):
				var rpr runPropsXML
				if err := bp.d.DecodeElement(&rpr, &t); err != nil {
					return r, bp.syntaxErr(err)
				}
				if rpr.Style != nil {
					r.Style = rpr.Style.Val
				}
				r.Props = convertRunProps(&rpr)
			case isW(t.Name, "t"):
				var tx textXML
				if err := bp.d.DecodeElement(&tx, &t); err != nil {
					return r, bp.syntaxErr(err)
				}
				text.WriteString(tx.Value)
			case isW(t.Name, "tab"), isW(t.Name, "ptab"):
				text.WriteByte('\t')
				depth++
			case isW(t.Name, "br"), isW(t.Name, "cr"):
				text.WriteByte('\n')
				depth++
			case isW(t.Name, "noBreakHyphen"):
				text.WriteByte('-')
				depth++
			default:
				// drawing, pict, AlternateContent, object, delText, fldChar...
				if err := bp.d.Skip(); err != nil {
					return r, bp.syntaxErr(err)
				}
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				continue
			}
			r.Text = text.String()
			r.Source = model.Span{Start: start, End: int(bp.d.InputOffset())}
			return r, nil
		}
	}
}
