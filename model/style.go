package model

import "fmt"

// StyleType is the kind of element a style applies to.
type StyleType string

const (
	StyleTypeParagraph StyleType = "paragraph"
	StyleTypeCharacter StyleType = "character"
	StyleTypeTable     StyleType = "table"
	StyleTypeNumbering StyleType = "numbering"
)

// Style is a named formatting template.
type Style struct {
	ID        string
	Name      string
	Type      StyleType
	BasedOn   string // parent style id, "" for a root style
	Default   bool   // default style for its type
	Paragraph ParagraphProps
	Run       RunProps
}

const noParent = -1

// StyleTable stores styles in a flat slice. Parents are referenced by index
// and the inherited props of every style are computed once at construction.
type StyleTable struct {
	styles   []Style
	parent   []int
	byID     map[string]int
	flatPara []ParagraphProps
	flatRun  []RunProps

	defaultParagraph int
	defaultCharacter int
}

// NewStyleTable builds the table, resolving every basedOn reference. It fails
// with an IntegrityError when a parent is missing or a chain loops back on
// itself. When two styles share an id the first one wins, as word processors
// do.
func NewStyleTable(styles []Style) (*StyleTable, error) {
	st := &StyleTable{
		byID:             make(map[string]int, len(styles)),
		defaultParagraph: noParent,
		defaultCharacter: noParent,
	}

	for _, s := range styles {
		if s.ID == "" {
			continue
		}
		if _, dup := st.byID[s.ID]; dup {
			continue
		}
		st.byID[s.ID] = len(st.styles)
		st.styles = append(st.styles, s)
	}

	st.parent = make([]int, len(st.styles))
	for i, s := range st.styles {
		if s.BasedOn == "" {
			st.parent[i] = noParent
			continue
		}
		p, ok := st.byID[s.BasedOn]
		if !ok {
			return nil, newDanglingError(fmt.Sprintf("basedOn of style %q", s.ID), s.BasedOn)
		}
		st.parent[i] = p
	}

	if err := st.flatten(); err != nil {
		return nil, err
	}

	for i, s := range st.styles {
		if !s.Default {
			continue
		}
		switch s.Type {
		case StyleTypeParagraph:
			if st.defaultParagraph == noParent {
				st.defaultParagraph = i
			}
		case StyleTypeCharacter:
			if st.defaultCharacter == noParent {
				st.defaultCharacter = i
			}
		}
	}
	return st, nil
}

// flatten computes inherited props for every style, detecting cycles.
func (st *StyleTable) flatten() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(st.styles))
	st.flatPara = make([]ParagraphProps, len(st.styles))
	st.flatRun = make([]RunProps, len(st.styles))

	for i := range st.styles {
		if state[i] == done {
			continue
		}

		// Walk up until a computed ancestor or a root, then fill back down.
		var chain []int
		cur := i
		for cur != noParent && state[cur] != done {
			if state[cur] == visiting {
				return newCycleError(st.styles[cur].ID)
			}
			state[cur] = visiting
			chain = append(chain, cur)
			cur = st.parent[cur]
		}

		for j := len(chain) - 1; j >= 0; j-- {
			idx := chain[j]
			s := st.styles[idx]
			if p := st.parent[idx]; p != noParent {
				st.flatPara[idx] = s.Paragraph.Inherit(st.flatPara[p])
				st.flatRun[idx] = s.Run.Inherit(st.flatRun[p])
			} else {
				st.flatPara[idx] = s.Paragraph
				st.flatRun[idx] = s.Run
			}
			state[idx] = done
		}
	}
	return nil
}

// Len returns the number of styles.
func (st *StyleTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.styles)
}

// Has reports whether a style with the given id exists.
func (st *StyleTable) Has(id string) bool {
	if st == nil {
		return false
	}
	_, ok := st.byID[id]
	return ok
}

// Get returns the style with the given id.
func (st *StyleTable) Get(id string) (Style, bool) {
	if st == nil {
		return Style{}, false
	}
	i, ok := st.byID[id]
	if !ok {
		return Style{}, false
	}
	return st.styles[i], true
}

// Parent returns the parent of the style with the given id.
func (st *StyleTable) Parent(id string) (Style, bool) {
	if st == nil {
		return Style{}, false
	}
	i, ok := st.byID[id]
	if !ok || st.parent[i] == noParent {
		return Style{}, false
	}
	return st.styles[st.parent[i]], true
}

// Chain returns the ids from the style up to its root.
func (st *StyleTable) Chain(id string) []string {
	if st == nil {
		return nil
	}
	i, ok := st.byID[id]
	if !ok {
		return nil
	}
	var ids []string
	for ; i != noParent; i = st.parent[i] {
		ids = append(ids, st.styles[i].ID)
	}
	return ids
}

// ParagraphProps returns the inherited paragraph props of a style.
func (st *StyleTable) ParagraphProps(id string) ParagraphProps {
	if st == nil {
		return ParagraphProps{}
	}
	if i, ok := st.byID[id]; ok {
		return st.flatPara[i]
	}
	return ParagraphProps{}
}

// RunProps returns the inherited run props of a style.
func (st *StyleTable) RunProps(id string) RunProps {
	if st == nil {
		return RunProps{}
	}
	if i, ok := st.byID[id]; ok {
		return st.flatRun[i]
	}
	return RunProps{}
}

// DefaultParagraphStyle returns the style applied to paragraphs that name
// none.
func (st *StyleTable) DefaultParagraphStyle() (Style, bool) {
	if st == nil || st.defaultParagraph == noParent {
		return Style{}, false
	}
	return st.styles[st.defaultParagraph], true
}

// DefaultCharacterStyle returns the style applied to runs that name none.
func (st *StyleTable) DefaultCharacterStyle() (Style, bool) {
	if st == nil || st.defaultCharacter == noParent {
		return Style{}, false
	}
	return st.styles[st.defaultCharacter], true
}

// Styles returns a copy of all styles in table order.
func (st *StyleTable) Styles() []Style {
	if st == nil {
		return nil
	}
	return append([]Style(nil), st.styles...)
}
