package model

import "fmt"

// AbstractNum is a list definition: the paragraph props of each of its levels.
type AbstractNum struct {
	ID     string
	Levels map[int]ParagraphProps
}

// Num binds a numId used by paragraphs to an abstract definition.
// Overrides replace individual level props of the abstract definition.
type Num struct {
	ID            string
	AbstractNumID string
	Overrides     map[int]ParagraphProps
}

// NumberingTable resolves numId + level to the paragraph props of that list
// level.
type NumberingTable struct {
	levels map[string]map[int]ParagraphProps
}

// NewNumberingTable links every num to its abstract definition. A num that
// names a missing abstract definition is an IntegrityError.
func NewNumberingTable(abstracts []AbstractNum, nums []Num) (*NumberingTable, error) {
	byID := make(map[string]AbstractNum, len(abstracts))
	for _, a := range abstracts {
		byID[a.ID] = a
	}

	nt := &NumberingTable{levels: make(map[string]map[int]ParagraphProps, len(nums))}
	for _, n := range nums {
		a, ok := byID[n.AbstractNumID]
		if !ok {
			return nil, newDanglingError(fmt.Sprintf("numbering %q", n.ID), n.AbstractNumID)
		}
		lv := make(map[int]ParagraphProps, len(a.Levels))
		for ilvl, p := range a.Levels {
			lv[ilvl] = p
		}
		for ilvl, p := range n.Overrides {
			lv[ilvl] = p.Inherit(lv[ilvl])
		}
		nt.levels[n.ID] = lv
	}
	return nt, nil
}

// Has reports whether numID is defined.
func (nt *NumberingTable) Has(numID string) bool {
	if nt == nil {
		return false
	}
	_, ok := nt.levels[numID]
	return ok
}

// Level returns the paragraph props of a list level.
func (nt *NumberingTable) Level(numID string, ilvl int) (ParagraphProps, bool) {
	if nt == nil {
		return ParagraphProps{}, false
	}
	lv, ok := nt.levels[numID]
	if !ok {
		return ParagraphProps{}, false
	}
	p, ok := lv[ilvl]
	return p, ok
}
