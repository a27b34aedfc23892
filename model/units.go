package model

import "math"

// Length is a distance in twips (twentieths of a point).
type Length int

// Common length conversions.
const (
	TwipsPerPoint      = 20
	TwipsPerInch       = 1440
	CentimetersPerInch = 2.54
)

// Points returns the length in points.
func (l Length) Points() float64 {
	return float64(l) / TwipsPerPoint
}

// Centimeters returns the length in centimeters.
func (l Length) Centimeters() float64 {
	return float64(l) / TwipsPerInch * CentimetersPerInch
}

// LengthFromCentimeters converts centimeters to the nearest whole twip.
func LengthFromCentimeters(cm float64) Length {
	return Length(math.Round(cm / CentimetersPerInch * TwipsPerInch))
}

// HalfPoints is a font size in half-points, e.g. 24 = 12pt.
type HalfPoints int

// Points returns the size in points.
func (h HalfPoints) Points() float64 {
	return float64(h) / 2
}

// HalfPointsFromPoints converts a size in points to half-points.
func HalfPointsFromPoints(pt float64) HalfPoints {
	return HalfPoints(math.Round(pt * 2))
}

// LineRule says how a LineSpacing value is interpreted.
type LineRule string

const (
	// LineRuleAuto means the value is in 240ths of a line.
	LineRuleAuto LineRule = "auto"
	// LineRuleExact means the value is an exact height in twips.
	LineRuleExact LineRule = "exact"
	// LineRuleAtLeast means the value is a minimum height in twips.
	LineRuleAtLeast LineRule = "atLeast"
)

// LineSpacing is the spacing between lines of a paragraph.
type LineSpacing struct {
	Value int
	Rule  LineRule
}

// Multiplier returns the spacing as a multiple of single spacing.
// The second result is false when the rule is not proportional.
func (ls LineSpacing) Multiplier() (float64, bool) {
	if ls.Rule != LineRuleAuto && ls.Rule != "" {
		return 0, false
	}
	return float64(ls.Value) / 240, true
}

// Points returns the fixed line height for exact and atLeast rules.
func (ls LineSpacing) Points() float64 {
	return float64(ls.Value) / TwipsPerPoint
}

// Built-in fallbacks used when neither the document nor its styles state a
// value.
const (
	FallbackFont      = "Calibri"
	FallbackSize      = HalfPoints(22)
	FallbackAlignment = "left"
)

// Default page margins applied by word processors when a section states none.
const (
	DefaultMarginTop    = Length(1440)
	DefaultMarginBottom = Length(1440)
	DefaultMarginLeft   = Length(1800)
	DefaultMarginRight  = Length(1800)
)
