package model

import (
	"fmt"
	"strings"
	"time"
)

// Document is a decoded word-processing document.
type Document struct {
	Sections  []Section
	Styles    *StyleTable
	Numbering *NumberingTable
	Defaults  Defaults
	Theme     ThemeFonts

	// Comments holds annotations added after load. It is empty for a freshly
	// decoded document.
	Comments []Comment
}

// Orientation of a page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Margins are page margins. A nil side was not stated by the document.
type Margins struct {
	Top    *Length
	Bottom *Length
	Left   *Length
	Right  *Length
}

// Page is the page size of a section.
type Page struct {
	Width       *Length
	Height      *Length
	Orientation Orientation
}

// Section is a run of paragraphs sharing page geometry.
type Section struct {
	Index      int
	Margins    Margins
	Page       Page
	Paragraphs []Paragraph
}

// Span is a byte range [Start, End) inside the main document part.
type Span struct {
	Start int
	End   int
}

// IsZero reports whether the span was never recorded.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Paragraph is a block of runs.
type Paragraph struct {
	Index   int // document order, across sections
	Section int
	Style   string // "" means the default paragraph style
	Props   ParagraphProps
	Runs    []Run
	InTable bool

	// Source spans the paragraph content (after its properties, up to the
	// closing tag). Zero for paragraphs with no content element.
	Source Span
}

// Run is a span of text with uniform character formatting.
type Run struct {
	Index  int
	Style  string
	Props  RunProps
	Text   string
	Source Span
}

// Comment is an annotation attached to an element.
type Comment struct {
	Anchor   ElementRef
	Author   string
	Initials string
	Date     time.Time
	Text     string
}

// Text returns the concatenated text of the runs.
func (p *Paragraph) Text() string {
	if len(p.Runs) == 1 {
		return p.Runs[0].Text
	}
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// HasVisibleText reports whether the paragraph holds any non-space text.
func (p *Paragraph) HasVisibleText() bool {
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) != "" {
			return true
		}
	}
	return false
}

// Ref returns the reference of the paragraph.
func (p *Paragraph) Ref() ElementRef {
	return ElementRef{Kind: KindParagraph, Section: p.Section, Paragraph: p.Index}
}

// RunRef returns the reference of run i of the paragraph.
func (p *Paragraph) RunRef(i int) ElementRef {
	return ElementRef{Kind: KindRun, Section: p.Section, Paragraph: p.Index, Run: i}
}

// Paragraphs returns pointers to every paragraph in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for si := range d.Sections {
		s := &d.Sections[si]
		for pi := range s.Paragraphs {
			out = append(out, &s.Paragraphs[pi])
		}
	}
	return out
}

// Paragraph returns the paragraph with the given global index. Decoded
// documents number paragraphs consecutively, so the lookup costs one step
// per section; other numberings fall back to a scan.
func (d *Document) Paragraph(index int) (*Paragraph, bool) {
	for si := range d.Sections {
		ps := d.Sections[si].Paragraphs
		if len(ps) == 0 {
			continue
		}
		if i := index - ps[0].Index; i >= 0 && i < len(ps) && ps[i].Index == index {
			return &ps[i], true
		}
	}
	for si := range d.Sections {
		ps := d.Sections[si].Paragraphs
		for pi := range ps {
			if ps[pi].Index == index {
				return &ps[pi], true
			}
		}
	}
	return nil, false
}

// Text returns the text of every paragraph joined by newlines.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Paragraphs() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// Validate checks that every style and numbering reference made by the
// document resolves. Style chains were already checked by NewStyleTable.
func (d *Document) Validate() error {
	for _, st := range d.Styles.Styles() {
		if err := d.checkNumbering(st.Paragraph, fmt.Sprintf("style %q", st.ID)); err != nil {
			return err
		}
	}

	for _, p := range d.Paragraphs() {
		if p.Style != "" && !d.Styles.Has(p.Style) {
			return newDanglingError(fmt.Sprintf("paragraph %d", p.Index), p.Style)
		}
		if err := d.checkNumbering(p.Props, fmt.Sprintf("paragraph %d", p.Index)); err != nil {
			return err
		}
		for _, r := range p.Runs {
			if r.Style != "" && !d.Styles.Has(r.Style) {
				return newDanglingError(fmt.Sprintf("run %d of paragraph %d", r.Index, p.Index), r.Style)
			}
		}
	}
	return nil
}

func (d *Document) checkNumbering(pp ParagraphProps, subject string) error {
	if !pp.IsListItem() {
		return nil
	}
	if !d.Numbering.Has(*pp.NumID) {
		return newDanglingError(subject, "numbering "+*pp.NumID)
	}
	return nil
}

// Clone returns a copy of d that shares the immutable style, numbering and
// paragraph data but owns its Comments slice.
func (d *Document) Clone() *Document {
	c := *d
	c.Comments = append([]Comment(nil), d.Comments...)
	return &c
}
