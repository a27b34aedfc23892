package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/internal/testdocx"
	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
)

func load(t *testing.T, d testdocx.Doc) *model.Document {
	t.Helper()
	pkg, err := docx.Load(d.Bytes())
	require.NoError(t, err)
	return pkg.Document()
}

func exact(t *testing.T, s *rules.Schema, c rules.Category) rules.Value {
	t.Helper()
	con, ok := s.EffectiveConstraint(c)
	require.True(t, ok, "no constraint for %s", c)
	require.Equal(t, rules.KindExact, con.Kind)
	require.Len(t, con.Values, 1)
	return con.Values[0]
}

func TestExtract_Mode(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 8; i++ {
		body.WriteString(testdocx.P("", testdocx.R(testdocx.Font("Times New Roman", 14), "body text")))
	}
	for i := 0; i < 2; i++ {
		body.WriteString(testdocx.P("", testdocx.R(testdocx.Font("Arial", 12), "other text")))
	}

	doc := load(t, testdocx.Doc{Body: body.String(), Styles: testdocx.DefaultStyles})
	s := Extract(doc)

	assert.Equal(t, rules.Text("Times New Roman"), exact(t, s, rules.BodyFont))
	assert.Equal(t, rules.Number(14), exact(t, s, rules.BodyFontSize))

	_, ok := s.EffectiveConstraint(rules.HeadingFont)
	assert.False(t, ok, "no headings, no heading font")
	assert.Empty(t, s.HeadingLevels())
}

func TestExtract_FullDocument(t *testing.T) {
	jc := `<w:jc w:val="both"/><w:ind w:firstLine="709"/><w:spacing w:line="360" w:lineRule="auto"/>`
	body := testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R(testdocx.Font("Arial", 16), "Introduction")) +
		testdocx.P(jc, testdocx.R(testdocx.Font("Times New Roman", 14), "First paragraph.")) +
		testdocx.P(jc, testdocx.R(testdocx.Font("Times New Roman", 14), "Second paragraph.")) +
		testdocx.P(`<w:pStyle w:val="Heading2"/>`, testdocx.R(testdocx.Font("Arial", 14), "Details")) +
		testdocx.P(`<w:jc w:val="center"/>`, testdocx.R(testdocx.Font("Times New Roman", 14), "Caption")) +
		testdocx.SectPr(1134, 1134, 1701, 850)

	doc := load(t, testdocx.Doc{Body: body, Styles: testdocx.DefaultStyles})
	s := Extract(doc)

	assert.Equal(t, rules.Text("Times New Roman"), exact(t, s, rules.BodyFont))
	assert.Equal(t, rules.Number(14), exact(t, s, rules.BodyFontSize))
	assert.Equal(t, rules.Text("Arial"), exact(t, s, rules.HeadingFont))
	assert.Equal(t, rules.Number(16), exact(t, s, rules.HeadingFontSize))
	assert.Equal(t, rules.Number(1.25), exact(t, s, rules.Indentation))
	assert.Equal(t, rules.Number(1.5), exact(t, s, rules.LineSpacing))
	assert.Equal(t, rules.Text("both"), exact(t, s, rules.Alignment))
	assert.Equal(t, rules.Number(2), exact(t, s, rules.MarginTop))
	assert.Equal(t, rules.Number(2), exact(t, s, rules.MarginBottom))
	assert.Equal(t, rules.Number(3), exact(t, s, rules.MarginLeft))
	assert.Equal(t, rules.Number(1.5), exact(t, s, rules.MarginRight))

	assert.Equal(t, []int{1, 2}, s.HeadingLevels())
	h1, ok := s.HeadingStyle(1)
	require.True(t, ok)
	assert.Equal(t, "Heading1", h1.Values[0].Text)
}

func TestExtract_TieGoesToFirstSeen(t *testing.T) {
	body := testdocx.P("", testdocx.R(testdocx.Font("Georgia", 12), "one")) +
		testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "two"))

	doc := load(t, testdocx.Doc{Body: body, Styles: testdocx.DefaultStyles})
	s := Extract(doc)

	assert.Equal(t, rules.Text("Georgia"), exact(t, s, rules.BodyFont))
	assert.Equal(t, rules.Number(12), exact(t, s, rules.BodyFontSize))
}

func TestExtract_Deterministic(t *testing.T) {
	body := testdocx.P("", testdocx.R(testdocx.Font("Georgia", 12), "one")) +
		testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "two")) +
		testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R("", "Title"))
	data := testdocx.Doc{Body: body, Styles: testdocx.DefaultStyles, ThemeMinor: "Calibri", ThemeMajor: "Calibri Light"}

	first := Extract(load(t, data))
	for i := 0; i < 5; i++ {
		assert.True(t, first.Equal(Extract(load(t, data))))
	}
}

func TestExtract_SkipsListsTablesAndBlankRuns(t *testing.T) {
	indent := func(twips int) model.ParagraphProps {
		return model.ParagraphProps{IndentFirstLine: model.Ptr(model.Length(twips)), Alignment: model.Ptr("center")}
	}
	list := indent(-360)
	list.NumID = model.Ptr("1")

	doc := &model.Document{Sections: []model.Section{{Paragraphs: []model.Paragraph{
		{Index: 0, Props: list, Runs: []model.Run{{Text: "item one"}}},
		{Index: 1, Props: list, Runs: []model.Run{{Text: "item two"}}},
		{Index: 2, Props: indent(0), InTable: true, Runs: []model.Run{{Text: "cell"}}},
		{Index: 3, Props: indent(0), InTable: true, Runs: []model.Run{{Text: "cell"}}},
		{Index: 4, Props: model.ParagraphProps{IndentFirstLine: model.Ptr(model.Length(709)), Alignment: model.Ptr("start")},
			Runs: []model.Run{
				{Index: 0, Text: "body", Props: model.RunProps{Font: model.Ptr("Verdana")}},
				{Index: 1, Text: "  ", Props: model.RunProps{Font: model.Ptr("Symbol")}},
			}},
		{Index: 5, Props: indent(0), Runs: []model.Run{{Text: "   "}}},
	}}}}

	s := Extract(doc)

	assert.Equal(t, rules.Number(1.25), exact(t, s, rules.Indentation))
	assert.Equal(t, rules.Text("center"), exact(t, s, rules.Alignment), "list items keep their alignment")
	_, ok := s.EffectiveConstraint(rules.BodyFontSize)
	assert.False(t, ok, "no size is stated anywhere")
	_, ok = s.EffectiveConstraint(rules.MarginTop)
	assert.False(t, ok)
	assert.Equal(t, rules.Text("Verdana"), exact(t, s, rules.BodyFont))
}

func TestExtract_EmptyDocument(t *testing.T) {
	s := Extract(&model.Document{Sections: []model.Section{{}}})
	assert.True(t, s.IsEmpty())
}
