// Package rules defines formatting rule sets: which value each formatting
// category must take, and how a rule set is read from and written to a
// portable record (JSON or YAML).
package rules

import (
	"sort"
)

// DefaultLanguage is the language of a schema that names none.
const DefaultLanguage = "en"

// Schema is an immutable set of constraints, at most one per category and
// one per heading level for HeadingStyle.
type Schema struct {
	language      string
	constraints   map[Category]Constraint
	headingStyles map[int]Constraint
	warnings      []string

	// Categories the record named but this package does not check. They
	// are carried back out by Record.
	unknown        map[string]any
	unknownMargins map[string]any
}

// New builds a schema. HeadingStyle entries in constraints are ignored; heading
// style constraints are given per level.
func New(language string, constraints map[Category]Constraint, headingStyles map[int]Constraint) *Schema {
	s := &Schema{
		language:      language,
		constraints:   make(map[Category]Constraint, len(constraints)),
		headingStyles: make(map[int]Constraint, len(headingStyles)),
	}
	for c, con := range constraints {
		if c == HeadingStyle {
			continue
		}
		s.constraints[c] = normalize(con)
	}
	for lvl, con := range headingStyles {
		s.headingStyles[lvl] = normalize(con)
	}
	return s
}

func normalize(c Constraint) Constraint {
	c.Severity = c.severity()
	c.Values = append([]Value(nil), c.Values...)
	return c
}

// Empty returns the schema with no constraints. Every document satisfies it.
func Empty() *Schema {
	return New("", nil, nil)
}

// Language returns the language the schema was written in, "en" by default.
func (s *Schema) Language() string {
	if s == nil || s.language == "" {
		return DefaultLanguage
	}
	return s.language
}

// EffectiveConstraint returns the constraint for a category, if any.
func (s *Schema) EffectiveConstraint(c Category) (Constraint, bool) {
	if s == nil {
		return Constraint{}, false
	}
	con, ok := s.constraints[c]
	return con, ok
}

// HeadingStyle returns the style constraint for a heading level (1-9).
func (s *Schema) HeadingStyle(level int) (Constraint, bool) {
	if s == nil {
		return Constraint{}, false
	}
	con, ok := s.headingStyles[level]
	return con, ok
}

// HeadingLevels returns the levels with a style constraint, ascending.
func (s *Schema) HeadingLevels() []int {
	if s == nil {
		return nil
	}
	levels := make([]int, 0, len(s.headingStyles))
	for lvl := range s.headingStyles {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	return levels
}

// IsEmpty reports whether the schema constrains nothing.
func (s *Schema) IsEmpty() bool {
	return s == nil || len(s.constraints) == 0 && len(s.headingStyles) == 0
}

// Warnings returns the non-fatal problems found while parsing, such as
// unknown categories.
func (s *Schema) Warnings() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.warnings...)
}

// Equal reports whether two schemas hold the same language and
// constraints. Warnings are not compared.
func (s *Schema) Equal(o *Schema) bool {
	if s.Language() != o.Language() {
		return false
	}
	if s.IsEmpty() || o.IsEmpty() {
		return s.IsEmpty() == o.IsEmpty()
	}
	if len(s.constraints) != len(o.constraints) || len(s.headingStyles) != len(o.headingStyles) {
		return false
	}
	for c, con := range s.constraints {
		other, ok := o.constraints[c]
		if !ok || !con.equal(other) {
			return false
		}
	}
	for lvl, con := range s.headingStyles {
		other, ok := o.headingStyles[lvl]
		if !ok || !con.equal(other) {
			return false
		}
	}
	return true
}
