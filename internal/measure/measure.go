// Package measure reads the value of each rule category off a document
// element, in the units rules are written in. A false result means the
// document does not state the value anywhere in its formatting chain.
package measure

import (
	"fmt"
	"math"
	"strings"

	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
)

// Round rounds to two decimals, the precision rules are written in.
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Font returns the effective typeface of a run.
func Font(doc *model.Document, p *model.Paragraph, r *model.Run) (rules.Value, bool) {
	rp := doc.EffectiveRun(p, r)
	if rp.Font == nil || strings.TrimSpace(*rp.Font) == "" {
		return rules.Value{}, false
	}
	return rules.Text(strings.TrimSpace(*rp.Font)), true
}

// FontSize returns the effective size of a run in points.
func FontSize(doc *model.Document, p *model.Paragraph, r *model.Run) (rules.Value, bool) {
	rp := doc.EffectiveRun(p, r)
	if rp.Size == nil {
		return rules.Value{}, false
	}
	return rules.Number(Round(rp.Size.Points())), true
}

// Indentation returns the first-line indent of a paragraph in centimeters.
// A hanging indent is negative.
func Indentation(pp model.ParagraphProps) (rules.Value, bool) {
	if pp.IndentFirstLine == nil {
		return rules.Value{}, false
	}
	return rules.Number(Round(pp.IndentFirstLine.Centimeters())), true
}

// LineSpacing returns the line spacing as a multiple of single spacing. A
// fixed line height has no multiple and is reported as text, e.g. "18pt
// exact", so it never satisfies a numeric constraint.
func LineSpacing(pp model.ParagraphProps) (rules.Value, bool) {
	if pp.LineSpacing == nil {
		return rules.Value{}, false
	}
	if m, ok := pp.LineSpacing.Multiplier(); ok {
		return rules.Number(Round(m)), true
	}
	return rules.Text(fmt.Sprintf("%gpt %s", Round(pp.LineSpacing.Points()), pp.LineSpacing.Rule)), true
}

// Alignment returns the paragraph justification. The bidi-aware values
// start and end are reported as left and right.
func Alignment(pp model.ParagraphProps) (rules.Value, bool) {
	if pp.Alignment == nil || *pp.Alignment == "" {
		return rules.Value{}, false
	}
	return rules.Text(NormalizeAlignment(*pp.Alignment)), true
}

// NormalizeAlignment maps justification values to the names rules use.
func NormalizeAlignment(v string) string {
	switch v {
	case "start":
		return "left"
	case "end":
		return "right"
	case "justify", "justified":
		return "both"
	}
	return v
}

// Margin returns one page margin of a section in centimeters.
func Margin(s *model.Section, c rules.Category) (rules.Value, bool) {
	var l *model.Length
	switch c {
	case rules.MarginTop:
		l = s.Margins.Top
	case rules.MarginBottom:
		l = s.Margins.Bottom
	case rules.MarginLeft:
		l = s.Margins.Left
	case rules.MarginRight:
		l = s.Margins.Right
	}
	if l == nil {
		return rules.Value{}, false
	}
	return rules.Number(Round(l.Centimeters())), true
}

// DefaultMargin returns the margin a word processor applies when a section
// states none.
func DefaultMargin(c rules.Category) rules.Value {
	l := model.DefaultMarginTop
	switch c {
	case rules.MarginBottom:
		l = model.DefaultMarginBottom
	case rules.MarginLeft:
		l = model.DefaultMarginLeft
	case rules.MarginRight:
		l = model.DefaultMarginRight
	}
	return rules.Number(Round(l.Centimeters()))
}

// MarginCategories lists the margin categories in reporting order.
var MarginCategories = []rules.Category{rules.MarginTop, rules.MarginBottom, rules.MarginLeft, rules.MarginRight}

// HasText reports whether a run carries visible text.
func HasText(r *model.Run) bool {
	return strings.TrimSpace(r.Text) != ""
}

// SectionAnchor returns the index of the paragraph a section reference is
// anchored at: its first paragraph, or for an empty section the paragraph
// that follows it.
func SectionAnchor(doc *model.Document, section int) int {
	n := 0
	for i := 0; i < section && i < len(doc.Sections); i++ {
		n += len(doc.Sections[i].Paragraphs)
	}
	if section < len(doc.Sections) && len(doc.Sections[section].Paragraphs) > 0 {
		return doc.Sections[section].Paragraphs[0].Index
	}
	return n
}
