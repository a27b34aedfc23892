package rules

// AcademicReport returns the rule set commonly required for university
// reports: Times New Roman 14 pt, 1.25 cm first-line indent, one and a half
// line spacing, justified text and 2/2/3/1.5 cm margins.
func AcademicReport() *Schema {
	return New("ru", map[Category]Constraint{
		BodyFont:     Exact(Text("Times New Roman")),
		BodyFontSize: Exact(Number(14)),
		Indentation:  Exact(Number(1.25)),
		LineSpacing:  Exact(Number(1.5)),
		Alignment:    Exact(Text("both")),
		MarginTop:    Exact(Number(2)),
		MarginBottom: Exact(Number(2)),
		MarginLeft:   Exact(Number(3)),
		MarginRight:  Exact(Number(1.5)),
	}, map[int]Constraint{
		1: Exact(Text("Heading1")),
		2: Exact(Text("Heading2")),
	})
}

// Preset returns a named built-in rule set. The empty name and "none" give
// the empty schema.
func Preset(name string) (*Schema, bool) {
	switch name {
	case "", "none":
		return Empty(), true
	case "academic":
		return AcademicReport(), true
	}
	return nil, false
}
