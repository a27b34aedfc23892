package rules

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Tolerance is the largest difference at which two numeric values are equal.
// Values are compared after unit conversion, so a 1.25 cm indent stored as
// 709 twips (1.2507 cm) still matches.
const Tolerance = 0.01

// Value is an observed or expected property value: a name or a number.
type Value struct {
	Text     string
	Number   float64
	IsNumber bool
}

// Text returns a text value.
func Text(s string) Value { return Value{Text: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Number: f, IsNumber: true} }

func (v Value) String() string {
	if v.IsNumber {
		return formatNumber(v.Number)
	}
	return v.Text
}

// Equal compares two values. Text is compared case-insensitively, numbers
// within Tolerance.
func (v Value) Equal(o Value) bool {
	if v.IsNumber != o.IsNumber {
		return false
	}
	if v.IsNumber {
		return math.Abs(v.Number-o.Number) <= Tolerance
	}
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(v.Text)) == fold.String(strings.TrimSpace(o.Text))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Severity ranks a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Kind is the shape of a constraint.
type Kind int

const (
	KindExact Kind = iota
	KindOneOf
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindOneOf:
		return "oneOf"
	case KindRange:
		return "range"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Constraint is the requirement a rule places on one category.
type Constraint struct {
	Kind     Kind
	Values   []Value  // the exact value, or the allowed set
	Min      *float64 // range bounds; nil is unbounded
	Max      *float64
	Severity Severity
}

// Exact returns a constraint requiring v.
func Exact(v Value) Constraint {
	return Constraint{Kind: KindExact, Values: []Value{v}, Severity: SeverityError}
}

// OneOf returns a constraint requiring one of vs.
func OneOf(vs ...Value) Constraint {
	return Constraint{Kind: KindOneOf, Values: append([]Value(nil), vs...), Severity: SeverityError}
}

// Range returns a constraint requiring a number within [min, max]. Either
// bound may be nil.
func Range(lo, hi *float64) Constraint {
	return Constraint{Kind: KindRange, Min: lo, Max: hi, Severity: SeverityError}
}

// Between is Range with both bounds.
func Between(lo, hi float64) Constraint {
	return Range(&lo, &hi)
}

// WithSeverity returns c with its severity replaced.
func (c Constraint) WithSeverity(s Severity) Constraint {
	c.Severity = s
	return c
}

// Satisfied reports whether v meets the constraint.
func (c Constraint) Satisfied(v Value) bool {
	switch c.Kind {
	case KindExact, KindOneOf:
		for _, want := range c.Values {
			if want.Equal(v) {
				return true
			}
		}
		return false
	case KindRange:
		if !v.IsNumber {
			return false
		}
		if c.Min != nil && v.Number < *c.Min-Tolerance {
			return false
		}
		if c.Max != nil && v.Number > *c.Max+Tolerance {
			return false
		}
		return true
	}
	return false
}

// String renders the constraint for messages, e.g. "12", "one of A, B",
// "12..14", ">= 14".
func (c Constraint) String() string {
	switch c.Kind {
	case KindExact:
		if len(c.Values) == 1 {
			return c.Values[0].String()
		}
	case KindOneOf:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = v.String()
		}
		return "one of " + strings.Join(parts, ", ")
	case KindRange:
		switch {
		case c.Min != nil && c.Max != nil:
			return formatNumber(*c.Min) + ".." + formatNumber(*c.Max)
		case c.Min != nil:
			return ">= " + formatNumber(*c.Min)
		case c.Max != nil:
			return "<= " + formatNumber(*c.Max)
		}
	}
	return ""
}

func (c Constraint) severity() Severity {
	if c.Severity == "" {
		return SeverityError
	}
	return c.Severity
}

func (c Constraint) equal(o Constraint) bool {
	if c.Kind != o.Kind || c.severity() != o.severity() || len(c.Values) != len(o.Values) {
		return false
	}
	for i := range c.Values {
		if c.Values[i] != o.Values[i] {
			return false
		}
	}
	return floatPtrEqual(c.Min, o.Min) && floatPtrEqual(c.Max, o.Max)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
