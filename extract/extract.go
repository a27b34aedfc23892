// Package extract infers a rule set from an exemplar document.
//
// For every category the most frequent observed value becomes an exact
// constraint. Ties go to the value seen first in document order, so the
// result depends only on the document. Categories the document never
// states, such as heading fonts in a document without headings, are left
// out of the rule set instead of being defaulted.
package extract

import (
	"github.com/tsawler/docfmt/internal/measure"
	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
)

// tally counts values in first-seen order.
type tally struct {
	order  []rules.Value
	counts map[rules.Value]int
}

func (t *tally) add(v rules.Value, ok bool) {
	if !ok {
		return
	}
	if t.counts == nil {
		t.counts = make(map[rules.Value]int)
	}
	if _, seen := t.counts[v]; !seen {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

// mode returns the most frequent value; the earliest wins a tie.
func (t *tally) mode() (rules.Value, bool) {
	var best rules.Value
	bestCount := 0
	for _, v := range t.order {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best, bestCount > 0
}

// Extract derives a rule set from doc.
func Extract(doc *model.Document) *rules.Schema {
	samples := make(map[rules.Category]*tally)
	sample := func(c rules.Category) *tally {
		t, ok := samples[c]
		if !ok {
			t = &tally{}
			samples[c] = t
		}
		return t
	}
	headingStyles := make(map[int]*tally)

	for _, p := range doc.Paragraphs() {
		if !p.HasVisibleText() {
			continue
		}
		level := doc.HeadingLevel(p)

		fontCat, sizeCat := rules.BodyFont, rules.BodyFontSize
		if level > 0 {
			fontCat, sizeCat = rules.HeadingFont, rules.HeadingFontSize
		}
		for i := range p.Runs {
			r := &p.Runs[i]
			if !measure.HasText(r) {
				continue
			}
			sample(fontCat).add(measure.Font(doc, p, r))
			sample(sizeCat).add(measure.FontSize(doc, p, r))
		}

		if level > 0 {
			if id := doc.ParagraphStyleID(p); id != "" {
				t, ok := headingStyles[level]
				if !ok {
					t = &tally{}
					headingStyles[level] = t
				}
				t.add(rules.Text(id), true)
			}
			continue
		}

		if p.InTable {
			continue
		}
		pp := doc.EffectiveParagraph(p)
		if !pp.IsListItem() {
			sample(rules.Indentation).add(measure.Indentation(pp))
		}
		if v, ok := measure.LineSpacing(pp); ok && v.IsNumber {
			sample(rules.LineSpacing).add(v, true)
		}
		sample(rules.Alignment).add(measure.Alignment(pp))
	}

	for i := range doc.Sections {
		s := &doc.Sections[i]
		for _, c := range measure.MarginCategories {
			sample(c).add(measure.Margin(s, c))
		}
	}

	constraints := make(map[rules.Category]rules.Constraint, len(samples))
	for c, t := range samples {
		if v, ok := t.mode(); ok {
			constraints[c] = rules.Exact(v)
		}
	}
	styles := make(map[int]rules.Constraint, len(headingStyles))
	for lvl, t := range headingStyles {
		if v, ok := t.mode(); ok {
			styles[lvl] = rules.Exact(v)
		}
	}
	return rules.New("", constraints, styles)
}
