// Package validate checks a document against a rule set.
//
// Validation is read-only: it walks the resolved formatting of every
// section, paragraph and run and reports one Violation per element whose
// value fails a constraint. Values a document never states are checked at
// the word processor's built-in fallback (Calibri, 11 pt, left aligned,
// single spacing, no indent, default page margins), since that is what a
// reader sees.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tsawler/docfmt/internal/measure"
	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
)

// Violation is one element failing one constraint.
type Violation struct {
	Element  model.ElementRef
	Category rules.Category
	Expected rules.Constraint
	Actual   rules.Value
	Severity rules.Severity

	// Level is the heading level for HeadingStyle violations, 0 otherwise.
	Level int
}

func (v Violation) String() string {
	if v.Category == rules.HeadingStyle {
		return fmt.Sprintf("%s: %s (level %d): expected %s, got %s", v.Element, v.Category, v.Level, v.Expected, v.Actual)
	}
	return fmt.Sprintf("%s: %s: expected %s, got %s", v.Element, v.Category, v.Expected, v.Actual)
}

type violationJSON struct {
	Element   string         `json:"element"`
	Section   *int           `json:"section,omitempty"`
	Paragraph int            `json:"paragraph"`
	Run       *int           `json:"run,omitempty"`
	Category  rules.Category `json:"category"`
	Level     int            `json:"level,omitempty"`
	Expected  string         `json:"expected"`
	Actual    string         `json:"actual"`
	Severity  rules.Severity `json:"severity"`
}

// MarshalJSON renders the violation for reports. Indexes are zero-based;
// element is the human-readable position.
func (v Violation) MarshalJSON() ([]byte, error) {
	out := violationJSON{
		Element:   v.Element.String(),
		Paragraph: v.Element.Paragraph,
		Category:  v.Category,
		Level:     v.Level,
		Expected:  v.Expected.String(),
		Actual:    v.Actual.String(),
		Severity:  v.Severity,
	}
	switch v.Element.Kind {
	case model.KindSection:
		section := v.Element.Section
		out.Section = &section
	case model.KindRun:
		run := v.Element.Run
		out.Run = &run
	}
	return json.Marshal(out)
}

// Validate returns the violations of schema in doc in document order. An
// empty schema yields none.
func Validate(doc *model.Document, schema *rules.Schema) []Violation {
	if doc == nil || schema.IsEmpty() {
		return nil
	}
	c := &checker{doc: doc, schema: schema}
	c.sections()
	for _, p := range doc.Paragraphs() {
		c.paragraph(p)
	}
	sort.SliceStable(c.out, func(i, j int) bool {
		return c.out[i].Element.Less(c.out[j].Element)
	})
	return c.out
}

type checker struct {
	doc    *model.Document
	schema *rules.Schema
	out    []Violation
}

func (c *checker) check(ref model.ElementRef, cat rules.Category, actual rules.Value) {
	con, ok := c.schema.EffectiveConstraint(cat)
	if !ok || con.Satisfied(actual) {
		return
	}
	c.out = append(c.out, Violation{
		Element:  ref,
		Category: cat,
		Expected: con,
		Actual:   actual,
		Severity: con.Severity,
	})
}

func (c *checker) sections() {
	for i := range c.doc.Sections {
		s := &c.doc.Sections[i]
		ref := model.SectionRef(i, measure.SectionAnchor(c.doc, i))
		for _, cat := range measure.MarginCategories {
			v, ok := measure.Margin(s, cat)
			if !ok {
				v = measure.DefaultMargin(cat)
			}
			c.check(ref, cat, v)
		}
	}
}

func (c *checker) paragraph(p *model.Paragraph) {
	if !p.HasVisibleText() {
		return
	}
	level := c.doc.HeadingLevel(p)

	fontCat, sizeCat := rules.BodyFont, rules.BodyFontSize
	if level > 0 {
		fontCat, sizeCat = rules.HeadingFont, rules.HeadingFontSize
	}
	for i := range p.Runs {
		r := &p.Runs[i]
		if !measure.HasText(r) {
			continue
		}
		ref := p.RunRef(i)
		font, ok := measure.Font(c.doc, p, r)
		if !ok {
			font = rules.Text(model.FallbackFont)
		}
		c.check(ref, fontCat, font)

		size, ok := measure.FontSize(c.doc, p, r)
		if !ok {
			size = rules.Number(model.FallbackSize.Points())
		}
		c.check(ref, sizeCat, size)
	}

	if level > 0 {
		c.headingStyle(p, level)
		return
	}
	if p.InTable {
		return
	}

	pp := c.doc.EffectiveParagraph(p)
	if !pp.IsListItem() {
		v, ok := measure.Indentation(pp)
		if !ok {
			v = rules.Number(0)
		}
		c.check(p.Ref(), rules.Indentation, v)
	}

	spacing, ok := measure.LineSpacing(pp)
	if !ok {
		spacing = rules.Number(1)
	}
	c.check(p.Ref(), rules.LineSpacing, spacing)

	align, ok := measure.Alignment(pp)
	if !ok {
		align = rules.Text(model.FallbackAlignment)
	}
	c.check(p.Ref(), rules.Alignment, align)
}

// headingStyle accepts either the style id or its display name.
func (c *checker) headingStyle(p *model.Paragraph, level int) {
	con, ok := c.schema.HeadingStyle(level)
	if !ok {
		return
	}
	id := c.doc.ParagraphStyleID(p)
	if con.Satisfied(rules.Text(id)) {
		return
	}
	if st, ok := c.doc.Styles.Get(id); ok && st.Name != "" && con.Satisfied(rules.Text(st.Name)) {
		return
	}
	c.out = append(c.out, Violation{
		Element:  p.Ref(),
		Category: rules.HeadingStyle,
		Expected: con,
		Actual:   rules.Text(id),
		Severity: con.Severity,
		Level:    level,
	})
}
