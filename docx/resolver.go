package docx

import (
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/docfmt/model"
)

// parseTwips parses a length attribute. Plain numbers are twips; universal
// measures such as "2.5cm" or "12pt" are converted.
func parseTwips(s string) (model.Length, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	scale := 1.0
	for _, u := range []struct {
		suffix string
		twips  float64
	}{
		{"mm", model.TwipsPerInch / 25.4},
		{"cm", model.TwipsPerInch / model.CentimetersPerInch},
		{"in", model.TwipsPerInch},
		{"pt", model.TwipsPerPoint},
		{"pc", 12 * model.TwipsPerPoint},
		{"pi", 12 * model.TwipsPerPoint},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			scale = u.twips
			break
		}
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return model.Length(math.Round(val * scale)), true
}

// parseHalfPoints parses a font size. Word uses half-points for font sizes
// (e.g., "24" = 12pt); a universal measure like "12pt" is also accepted.
func parseHalfPoints(s string) (model.HalfPoints, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "pt") {
		val, err := strconv.ParseFloat(strings.TrimSuffix(s, "pt"), 64)
		if err != nil {
			return 0, false
		}
		return model.HalfPointsFromPoints(val), true
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return model.HalfPoints(math.Round(val)), true
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// convertParagraphProps maps <w:pPr> to model props. Attributes that are
// absent or unparsable stay nil so the value is inherited.
func convertParagraphProps(x *paragraphPropsXML) model.ParagraphProps {
	var pp model.ParagraphProps
	if x == nil {
		return pp
	}

	if x.Justification != nil && x.Justification.Val != "" {
		pp.Alignment = model.Ptr(x.Justification.Val)
	}

	if ind := x.Indent; ind != nil {
		if v, ok := parseTwips(firstNonEmpty(ind.Left, ind.Start)); ok {
			pp.IndentLeft = &v
		}
		if v, ok := parseTwips(firstNonEmpty(ind.Right, ind.End)); ok {
			pp.IndentRight = &v
		}
		// hanging wins over firstLine when both are present
		if v, ok := parseTwips(ind.Hanging); ok {
			v = -v
			pp.IndentFirstLine = &v
		} else if v, ok := parseTwips(ind.FirstLine); ok {
			pp.IndentFirstLine = &v
		}
	}

	if sp := x.Spacing; sp != nil {
		if v, ok := parseTwips(sp.Before); ok {
			pp.SpacingBefore = &v
		}
		if v, ok := parseTwips(sp.After); ok {
			pp.SpacingAfter = &v
		}
		if v, ok := parseInt(sp.Line); ok {
			rule := model.LineRule(sp.LineRule)
			if rule == "" {
				rule = model.LineRuleAuto
			}
			pp.LineSpacing = &model.LineSpacing{Value: v, Rule: rule}
		}
	}

	if x.OutlineLvl != nil {
		if v, ok := parseInt(x.OutlineLvl.Val); ok {
			pp.OutlineLevel = &v
		}
	}

	if np := x.NumPr; np != nil {
		if np.NumID != nil {
			pp.NumID = model.Ptr(np.NumID.Val)
		}
		if np.ILvl != nil {
			if v, ok := parseInt(np.ILvl.Val); ok {
				pp.NumLevel = &v
			}
		}
	}
	return pp
}

// convertRunProps maps <w:rPr> to model props. A theme font attribute takes
// precedence over an explicit typeface, as in Word.
func convertRunProps(x *runPropsXML) model.RunProps {
	var rp model.RunProps
	if x == nil {
		return rp
	}

	if f := x.Font; f != nil {
		if theme := firstNonEmpty(f.ASCIITheme, f.HAnsiTheme); theme != "" {
			rp.FontTheme = model.Ptr(theme)
		} else if name := firstNonEmpty(f.ASCII, f.HAnsi); name != "" {
			rp.Font = model.Ptr(name)
		}
	}
	if x.FontSize != nil {
		if v, ok := parseHalfPoints(x.FontSize.Val); ok {
			rp.Size = &v
		}
	}
	if x.Bold != nil {
		rp.Bold = model.Ptr(x.Bold.value())
	}
	if x.Italic != nil {
		rp.Italic = model.Ptr(x.Italic.value())
	}
	return rp
}

// convertSection maps <w:sectPr> to section geometry.
func convertSection(x *sectPrXML, s *model.Section) {
	if x == nil {
		return
	}
	if m := x.PgMar; m != nil {
		s.Margins.Top = lengthPtr(m.Top)
		s.Margins.Bottom = lengthPtr(m.Bottom)
		s.Margins.Left = lengthPtr(m.Left)
		s.Margins.Right = lengthPtr(m.Right)
	}
	if sz := x.PgSz; sz != nil {
		s.Page.Width = lengthPtr(sz.W)
		s.Page.Height = lengthPtr(sz.H)
		s.Page.Orientation = model.Portrait
		if sz.Orient == string(model.Landscape) {
			s.Page.Orientation = model.Landscape
		}
	}
}

func lengthPtr(s string) *model.Length {
	if v, ok := parseTwips(s); ok {
		return &v
	}
	return nil
}

// buildStyles converts styles.xml into the style table and document defaults.
func buildStyles(sx *stylesXML) (*model.StyleTable, model.Defaults, error) {
	var defaults model.Defaults
	if sx == nil {
		st, err := model.NewStyleTable(nil)
		return st, defaults, err
	}

	defaults.Run = convertRunProps(&sx.DocDefaults.RPrDefault.RPr)
	defaults.Paragraph = convertParagraphProps(&sx.DocDefaults.PPrDefault.PPr)

	styles := make([]model.Style, 0, len(sx.Styles))
	for i := range sx.Styles {
		def := &sx.Styles[i]
		styles = append(styles, model.Style{
			ID:        def.StyleID,
			Name:      def.Name.Val,
			Type:      model.StyleType(def.Type),
			BasedOn:   def.BasedOn.Val,
			Default:   def.Default == "1" || def.Default == "true" || def.Default == "on",
			Paragraph: convertParagraphProps(&def.PPr),
			Run:       convertRunProps(&def.RPr),
		})
	}

	st, err := model.NewStyleTable(styles)
	return st, defaults, err
}

// buildNumbering converts numbering.xml into the numbering table.
func buildNumbering(nx *numberingXML) (*model.NumberingTable, error) {
	if nx == nil {
		return model.NewNumberingTable(nil, nil)
	}

	abstracts := make([]model.AbstractNum, 0, len(nx.AbstractNums))
	for _, a := range nx.AbstractNums {
		levels := make(map[int]model.ParagraphProps, len(a.Levels))
		for i := range a.Levels {
			if ilvl, ok := parseInt(a.Levels[i].ILvl); ok {
				levels[ilvl] = convertParagraphProps(&a.Levels[i].PPr)
			}
		}
		abstracts = append(abstracts, model.AbstractNum{ID: a.AbstractNumID, Levels: levels})
	}

	nums := make([]model.Num, 0, len(nx.Nums))
	for _, n := range nx.Nums {
		num := model.Num{ID: n.NumID, AbstractNumID: n.AbstractNumID.Val}
		for _, o := range n.Overrides {
			ilvl, ok := parseInt(o.ILvl)
			if !ok || o.Lvl == nil {
				continue
			}
			if num.Overrides == nil {
				num.Overrides = make(map[int]model.ParagraphProps)
			}
			num.Overrides[ilvl] = convertParagraphProps(&o.Lvl.PPr)
		}
		nums = append(nums, num)
	}

	return model.NewNumberingTable(abstracts, nums)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
