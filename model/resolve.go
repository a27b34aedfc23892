package model

import (
	"strings"
)

// ParagraphStyleID returns the id of the style governing p: its own style, or
// the default paragraph style when it names none.
func (d *Document) ParagraphStyleID(p *Paragraph) string {
	if p.Style != "" {
		return p.Style
	}
	if st, ok := d.Styles.DefaultParagraphStyle(); ok {
		return st.ID
	}
	return ""
}

// EffectiveRun resolves the formatting of run r inside paragraph p. A field is
// nil only when no level of the chain states it. Theme font references are
// resolved to typeface names.
func (d *Document) EffectiveRun(p *Paragraph, r *Run) RunProps {
	charStyle := r.Style
	if charStyle == "" {
		if st, ok := d.Styles.DefaultCharacterStyle(); ok {
			charStyle = st.ID
		}
	}

	rp := r.Props.
		Inherit(d.Styles.RunProps(charStyle)).
		Inherit(d.Styles.RunProps(d.ParagraphStyleID(p))).
		Inherit(d.Defaults.Run)

	if rp.Font == nil && rp.FontTheme != nil {
		if name := d.Theme.Resolve(*rp.FontTheme); name != "" {
			rp.Font = &name
		}
	}
	return rp
}

// EffectiveParagraph resolves the formatting of paragraph p: direct props,
// then the list level it belongs to, then its style chain, then the document
// defaults.
func (d *Document) EffectiveParagraph(p *Paragraph) ParagraphProps {
	styled := d.Styles.ParagraphProps(d.ParagraphStyleID(p))
	base := styled.Inherit(d.Defaults.Paragraph)

	own := p.Props.Inherit(base)
	if own.IsListItem() {
		ilvl := 0
		if own.NumLevel != nil {
			ilvl = *own.NumLevel
		}
		if lvl, ok := d.Numbering.Level(*own.NumID, ilvl); ok {
			return p.Props.Inherit(lvl).Inherit(base)
		}
	}
	return own
}

// HeadingLevel returns 1..9 for a heading paragraph and 0 for body text.
// The effective outline level wins; otherwise built-in heading style ids
// and names are recognised.
func (d *Document) HeadingLevel(p *Paragraph) int {
	pp := d.EffectiveParagraph(p)
	if pp.OutlineLevel != nil {
		if lvl := *pp.OutlineLevel; lvl >= 0 && lvl <= 8 {
			return lvl + 1
		}
	}

	id := d.ParagraphStyleID(p)
	if lvl := builtInHeadingLevel(id); lvl > 0 {
		return lvl
	}
	if st, ok := d.Styles.Get(id); ok {
		return builtInHeadingLevel(st.Name)
	}
	return 0
}

// builtInHeadingLevel maps the built-in heading style ids and names
// ("Heading1", "heading 1", "Title", ...) to a level.
func builtInHeadingLevel(name string) int {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))

	headingMap := map[string]int{
		"heading1": 1, "heading2": 2, "heading3": 3,
		"heading4": 4, "heading5": 5, "heading6": 6,
		"heading7": 7, "heading8": 8, "heading9": 9,
		"title": 1, "subtitle": 2,
	}
	return headingMap[key]
}
