package rules

// Category names a formatting property a rule constrains.
type Category string

// Font sizes are compared in points, indentation and margins in
// centimeters, line spacing as a multiple of single spacing. HeadingStyle
// is constrained per heading level.
const (
	BodyFont        Category = "bodyFont"
	BodyFontSize    Category = "bodyFontSize"
	HeadingFont     Category = "headingFont"
	HeadingFontSize Category = "headingFontSize"
	Indentation     Category = "indentation"
	LineSpacing     Category = "lineSpacing"
	Alignment       Category = "alignment"
	MarginTop       Category = "margins.top"
	MarginBottom    Category = "margins.bottom"
	MarginLeft      Category = "margins.left"
	MarginRight     Category = "margins.right"
	HeadingStyle    Category = "headingStyle"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	BodyFont, BodyFontSize, HeadingFont, HeadingFontSize,
	Indentation, LineSpacing, Alignment,
	MarginTop, MarginBottom, MarginLeft, MarginRight,
	HeadingStyle,
}

// Numeric reports whether values of the category are numbers.
func (c Category) Numeric() bool {
	switch c {
	case BodyFontSize, HeadingFontSize, Indentation, LineSpacing,
		MarginTop, MarginBottom, MarginLeft, MarginRight:
		return true
	}
	return false
}

// Unit returns the unit numeric values of the category are expressed in.
func (c Category) Unit() string {
	switch c {
	case BodyFontSize, HeadingFontSize:
		return "pt"
	case Indentation, MarginTop, MarginBottom, MarginLeft, MarginRight:
		return "cm"
	}
	return ""
}

// marginSides maps record keys under "margins" to categories.
var marginSides = []struct {
	key string
	cat Category
}{
	{"top", MarginTop},
	{"bottom", MarginBottom},
	{"left", MarginLeft},
	{"right", MarginRight},
}

// topLevel lists the categories stored under their own record key.
var topLevel = []Category{
	BodyFont, BodyFontSize, HeadingFont, HeadingFontSize,
	Indentation, LineSpacing, Alignment,
}
