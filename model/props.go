package model

// ParagraphProps holds paragraph formatting. A nil field is inherited.
type ParagraphProps struct {
	Alignment       *string
	IndentFirstLine *Length // negative for a hanging indent
	IndentLeft      *Length
	IndentRight     *Length
	LineSpacing     *LineSpacing
	SpacingBefore   *Length
	SpacingAfter    *Length
	OutlineLevel    *int // 0-based; 9 means body text
	NumID           *string
	NumLevel        *int
}

// Inherit returns p with every nil field taken from base.
func (p ParagraphProps) Inherit(base ParagraphProps) ParagraphProps {
	return ParagraphProps{
		Alignment:       firstSet(p.Alignment, base.Alignment),
		IndentFirstLine: firstSet(p.IndentFirstLine, base.IndentFirstLine),
		IndentLeft:      firstSet(p.IndentLeft, base.IndentLeft),
		IndentRight:     firstSet(p.IndentRight, base.IndentRight),
		LineSpacing:     firstSet(p.LineSpacing, base.LineSpacing),
		SpacingBefore:   firstSet(p.SpacingBefore, base.SpacingBefore),
		SpacingAfter:    firstSet(p.SpacingAfter, base.SpacingAfter),
		OutlineLevel:    firstSet(p.OutlineLevel, base.OutlineLevel),
		NumID:           firstSet(p.NumID, base.NumID),
		NumLevel:        firstSet(p.NumLevel, base.NumLevel),
	}
}

// IsListItem reports whether the props attach the paragraph to a numbering
// definition. numId 0 explicitly removes numbering.
func (p ParagraphProps) IsListItem() bool {
	return p.NumID != nil && *p.NumID != "" && *p.NumID != "0"
}

// RunProps holds character formatting. A nil field is inherited.
type RunProps struct {
	Font      *string
	FontTheme *string // theme slot such as "minorHAnsi", used when Font is nil
	Size      *HalfPoints
	Bold      *bool
	Italic    *bool
}

// Inherit returns r with every nil field taken from base. An explicit font
// name and a theme font are one property: whichever the nearer level states
// wins.
func (r RunProps) Inherit(base RunProps) RunProps {
	out := RunProps{
		Font:      r.Font,
		FontTheme: r.FontTheme,
		Size:      firstSet(r.Size, base.Size),
		Bold:      firstSet(r.Bold, base.Bold),
		Italic:    firstSet(r.Italic, base.Italic),
	}
	if out.Font == nil && out.FontTheme == nil {
		out.Font = base.Font
		out.FontTheme = base.FontTheme
	}
	return out
}

// Defaults holds the document-wide default formatting.
type Defaults struct {
	Run       RunProps
	Paragraph ParagraphProps
}

// ThemeFonts holds the latin typefaces declared by the document theme.
type ThemeFonts struct {
	Major string
	Minor string
}

// Resolve maps a theme slot name to a typeface. It returns "" when the slot
// is unknown or the theme does not declare it.
func (t ThemeFonts) Resolve(slot string) string {
	switch slot {
	case "majorAscii", "majorHAnsi", "majorBidi", "majorEastAsia":
		return t.Major
	case "minorAscii", "minorHAnsi", "minorBidi", "minorEastAsia":
		return t.Minor
	default:
		return ""
	}
}

func firstSet[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Ptr returns a pointer to v. It keeps literal props short in callers.
func Ptr[T any](v T) *T {
	return &v
}
