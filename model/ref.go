package model

import "fmt"

// ElementKind is the kind of element an ElementRef names.
type ElementKind int

const (
	KindSection ElementKind = iota
	KindParagraph
	KindRun
)

func (k ElementKind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindParagraph:
		return "paragraph"
	case KindRun:
		return "run"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// ElementRef names a section, a paragraph or a run.
//
// Paragraph is the global paragraph index. For a section ref it is the index
// of the paragraph the section is anchored at (its first paragraph), so that
// section refs sort in document order too.
type ElementRef struct {
	Kind      ElementKind
	Section   int
	Paragraph int
	Run       int
}

// SectionRef returns a reference to a section anchored at its first
// paragraph.
func SectionRef(section, firstParagraph int) ElementRef {
	return ElementRef{Kind: KindSection, Section: section, Paragraph: firstParagraph}
}

// Less orders refs by document position. A section sorts before the
// paragraph it is anchored at, a paragraph before its runs.
func (r ElementRef) Less(o ElementRef) bool {
	if r.Paragraph != o.Paragraph {
		return r.Paragraph < o.Paragraph
	}
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	if r.Kind == KindSection {
		return r.Section < o.Section
	}
	return r.Run < o.Run
}

func (r ElementRef) String() string {
	switch r.Kind {
	case KindSection:
		return fmt.Sprintf("section %d", r.Section+1)
	case KindParagraph:
		return fmt.Sprintf("paragraph %d", r.Paragraph+1)
	default:
		return fmt.Sprintf("paragraph %d, run %d", r.Paragraph+1, r.Run+1)
	}
}
