// Package annotate turns violations into comments on a document.
//
// Apply never edits text or runs. It returns a copy of the document with
// one comment per violation, ordered by the position of the commented
// element, and the package codec writes those comments out when the
// document is saved.
package annotate

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
	"github.com/tsawler/docfmt/validate"
)

// Defaults for the comment author.
const (
	DefaultAuthor   = "docfmt"
	DefaultInitials = "DF"
)

// Options controls how comments are written.
type Options struct {
	Author   string
	Initials string

	// Language is the BCP 47 tag comments are written in, usually the
	// language of the rule set. Unsupported languages get English.
	Language string

	// Now stamps the comments. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Author == "" {
		o.Author = DefaultAuthor
	}
	if o.Initials == "" {
		o.Initials = initials(o.Author)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func initials(author string) string {
	if author == DefaultAuthor {
		return DefaultInitials
	}
	var sb strings.Builder
	for _, f := range strings.Fields(author) {
		sb.WriteRune([]rune(f)[0])
	}
	return strings.ToUpper(sb.String())
}

// Apply returns a copy of doc carrying a comment for every violation. doc
// itself is not modified.
func Apply(doc *model.Document, vs []validate.Violation, opts Options) *model.Document {
	out := doc.Clone()
	if len(vs) == 0 {
		return out
	}
	opts = opts.withDefaults()
	p := Printer(opts.Language)
	date := opts.Now().UTC().Truncate(time.Second)

	sorted := append([]validate.Violation(nil), vs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Element.Less(sorted[j].Element)
	})

	for _, v := range sorted {
		out.Comments = append(out.Comments, model.Comment{
			Anchor:   v.Element,
			Author:   opts.Author,
			Initials: opts.Initials,
			Date:     date,
			Text:     Message(p, v),
		})
	}
	sort.SliceStable(out.Comments, func(i, j int) bool {
		return out.Comments[i].Anchor.Less(out.Comments[j].Anchor)
	})
	return out
}

// Message renders a violation as comment text, e.g.
// "[error] body font: expected Times New Roman, found Arial".
func Message(p *message.Printer, v validate.Violation) string {
	var label string
	if v.Category == rules.HeadingStyle {
		label = p.Sprintf(msgHeadingStyle, v.Level)
	} else {
		label = p.Sprintf(labels[v.Category])
	}
	sev := v.Severity
	if sev == "" {
		sev = v.Expected.Severity
	}
	return p.Sprintf(msgViolation,
		p.Sprintf(severities[sev]),
		label,
		expected(p, v.Category, v.Expected),
		value(p, v.Category, v.Actual),
	)
}

func expected(p *message.Printer, c rules.Category, con rules.Constraint) string {
	switch con.Kind {
	case rules.KindOneOf:
		parts := make([]string, len(con.Values))
		for i, v := range con.Values {
			parts[i] = value(p, c, v)
		}
		return p.Sprintf(msgOneOf, strings.Join(parts, ", "))
	case rules.KindRange:
		switch {
		case con.Min != nil && con.Max != nil:
			return p.Sprintf(msgBetween, value(p, c, rules.Number(*con.Min)), value(p, c, rules.Number(*con.Max)))
		case con.Min != nil:
			return p.Sprintf(msgAtLeast, value(p, c, rules.Number(*con.Min)))
		case con.Max != nil:
			return p.Sprintf(msgAtMost, value(p, c, rules.Number(*con.Max)))
		}
	}
	if len(con.Values) == 1 {
		return value(p, c, con.Values[0])
	}
	return con.String()
}

func value(p *message.Printer, c rules.Category, v rules.Value) string {
	if !v.IsNumber {
		if v.Text == "" {
			return p.Sprintf(msgNotStated)
		}
		if c == rules.Alignment {
			if key, ok := alignments[v.Text]; ok {
				return p.Sprintf(key)
			}
		}
		return v.Text
	}
	switch {
	case c == rules.LineSpacing:
		return p.Sprintf(msgTimes, v.String())
	case c.Unit() == "pt":
		return p.Sprintf(msgPoints, v.String())
	case c.Unit() == "cm":
		return p.Sprintf(msgCentimeters, v.String())
	}
	return v.String()
}
