package validate

import (
	"encoding/json"
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

func parse(t *testing.T, record string) *rules.Schema {
	t.Helper()
	s, err := rules.Parse([]byte(record))
	require.NoError(t, err)
	return s
}

func TestValidate_RunRules(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body:   testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "Some body text")),
		Styles: testdocx.DefaultStyles,
	})
	schema := parse(t, `{"bodyFont": "Times New Roman", "bodyFontSize": [12, 14]}`)

	vs := Validate(doc, schema)
	require.Len(t, vs, 2)

	assert.Equal(t, rules.BodyFont, vs[0].Category)
	assert.Equal(t, rules.Text("Arial"), vs[0].Actual)
	assert.Equal(t, model.KindRun, vs[0].Element.Kind)
	assert.Equal(t, rules.SeverityError, vs[0].Severity)

	assert.Equal(t, rules.BodyFontSize, vs[1].Category)
	assert.Equal(t, rules.Number(11), vs[1].Actual)
	assert.Equal(t, "12..14", vs[1].Expected.String())
	assert.Equal(t, vs[0].Element, vs[1].Element)
}

func TestValidate_EmptySchema(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body: testdocx.P(`<w:jc w:val="right"/>`, testdocx.R(testdocx.Font("Comic Sans MS", 30), "anything")) +
			testdocx.SectPr(100, 100, 100, 100),
		Styles: testdocx.DefaultStyles,
	})

	assert.Empty(t, Validate(doc, rules.Empty()))
	assert.Empty(t, Validate(doc, nil))
	assert.Empty(t, Validate(doc, parse(t, `{"unknownThing": 1}`)))
}

func TestValidate_HeadingStyle(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body: testdocx.P(`<w:outlineLvl w:val="0"/>`, testdocx.R("", "Looks like a heading")) +
			testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R("", "A real heading")) +
			testdocx.P("", testdocx.R("", "Body")),
		Styles: testdocx.DefaultStyles,
	})
	schema := parse(t, `{"headingStyles": {"1": "Heading1"}}`)

	vs := Validate(doc, schema)
	require.Len(t, vs, 1)
	assert.Equal(t, rules.HeadingStyle, vs[0].Category)
	assert.Equal(t, 1, vs[0].Level)
	assert.Equal(t, rules.Text("Normal"), vs[0].Actual)
	assert.Equal(t, model.ElementRef{Kind: model.KindParagraph, Paragraph: 0}, vs[0].Element)
}

func TestValidate_HeadingStyleByName(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body:   testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R("", "Heading")),
		Styles: testdocx.DefaultStyles,
	})
	assert.Empty(t, Validate(doc, parse(t, `{"headingStyles": {"1": "Heading 1"}}`)))
	assert.Len(t, Validate(doc, parse(t, `{"headingStyles": {"1": ["Title", "Heading 2"]}}`)), 1)
}

func TestValidate_HeadingRunsUseHeadingCategories(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body: testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R(testdocx.Font("Arial", 16), "Heading")) +
			testdocx.P("", testdocx.R(testdocx.Font("Times New Roman", 14), "Body")),
		Styles: testdocx.DefaultStyles,
	})
	schema := parse(t, `{"bodyFont": "Times New Roman", "headingFont": "Times New Roman", "headingFontSize": {"min": 14}}`)

	vs := Validate(doc, schema)
	require.Len(t, vs, 1)
	assert.Equal(t, rules.HeadingFont, vs[0].Category)
	assert.Equal(t, 0, vs[0].Element.Paragraph)
}

func TestValidate_Fallbacks(t *testing.T) {
	doc := &model.Document{Sections: []model.Section{{Paragraphs: []model.Paragraph{
		{Index: 0, Runs: []model.Run{{Text: "nothing stated"}}},
	}}}}
	schema := parse(t, `{
		"bodyFont": "Calibri",
		"bodyFontSize": 11,
		"indentation": 0,
		"lineSpacing": 1,
		"alignment": "left",
		"margins": {"top": 2.54, "bottom": 2.54, "left": [3.1, 3.2], "right": [3.1, 3.2]}
	}`)

	assert.Empty(t, Validate(doc, schema))
}

func TestValidate_ParagraphRules(t *testing.T) {
	list := `<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`
	numbering := `<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum><w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`
	body := testdocx.P(`<w:jc w:val="both"/><w:ind w:firstLine="709"/><w:spacing w:line="360" w:lineRule="auto"/>`, testdocx.R("", "ok")) +
		testdocx.P(list+`<w:jc w:val="both"/><w:spacing w:line="360" w:lineRule="auto"/>`, testdocx.R("", "list item")) +
		`<w:tbl><w:tr><w:tc>` + testdocx.P(`<w:jc w:val="center"/>`, testdocx.R("", "cell")) + `</w:tc></w:tr></w:tbl>` +
		testdocx.P(`<w:jc w:val="start"/><w:ind w:firstLine="709"/><w:spacing w:line="360" w:lineRule="exact"/>`, testdocx.R("", "fixed"))

	doc := load(t, testdocx.Doc{Body: body, Styles: testdocx.DefaultStyles, Numbering: numbering})
	schema := parse(t, `{"indentation": 1.25, "lineSpacing": 1.5, "alignment": ["both", "justify"]}`)

	vs := Validate(doc, schema)
	require.Len(t, vs, 2)

	assert.Equal(t, rules.LineSpacing, vs[0].Category)
	assert.Equal(t, 3, vs[0].Element.Paragraph)
	assert.False(t, vs[0].Actual.IsNumber)
	assert.Equal(t, "18pt exact", vs[0].Actual.String())

	assert.Equal(t, rules.Alignment, vs[1].Category)
	assert.Equal(t, rules.Text("left"), vs[1].Actual)
}

func TestValidate_Margins(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body: testdocx.P(`<w:sectPr><w:pgMar w:top="1134" w:bottom="1134" w:left="1134" w:right="850"/></w:sectPr>`, testdocx.R("", "first section")) +
			testdocx.P("", testdocx.R("", "second section")) +
			testdocx.SectPr(1134, 1134, 1701, 850),
		Styles: testdocx.DefaultStyles,
	})
	schema := parse(t, `{"bodyFont": "Times New Roman", "margins": {"top": 2, "bottom": 2, "left": 3, "right": 1.5}}`)

	vs := Validate(doc, schema)
	require.Len(t, vs, 3)

	assert.Equal(t, rules.MarginLeft, vs[0].Category)
	assert.Equal(t, model.SectionRef(0, 0), vs[0].Element)
	assert.Equal(t, rules.Number(2), vs[0].Actual)

	assert.Equal(t, rules.BodyFont, vs[1].Category, "the section sorts before the runs of its first paragraph")
	assert.Equal(t, model.KindRun, vs[1].Element.Kind)
	assert.Equal(t, 0, vs[1].Element.Paragraph)
	assert.Equal(t, 1, vs[2].Element.Paragraph)
}

func TestValidate_DoesNotMutate(t *testing.T) {
	d := testdocx.Doc{
		Body:   testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "text")) + testdocx.SectPr(1, 2, 3, 4),
		Styles: testdocx.DefaultStyles,
	}
	doc := load(t, d)
	before := load(t, d)

	vs := Validate(doc, rules.AcademicReport())
	assert.NotEmpty(t, vs)
	assert.Equal(t, before, doc)
}

func TestValidate_DocumentOrder(t *testing.T) {
	doc := load(t, testdocx.Doc{
		Body: testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "a"), testdocx.R(testdocx.Font("Arial", 11), "b")) +
			testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "c")),
		Styles: testdocx.DefaultStyles,
	})
	vs := Validate(doc, rules.AcademicReport())
	require.NotEmpty(t, vs)
	for i := 1; i < len(vs); i++ {
		assert.False(t, vs[i].Element.Less(vs[i-1].Element), "violation %d out of order", i)
	}
}

func TestViolation_String(t *testing.T) {
	v := Violation{
		Element:  model.ElementRef{Kind: model.KindRun, Paragraph: 2, Run: 0},
		Category: rules.BodyFont,
		Expected: rules.Exact(rules.Text("Times New Roman")),
		Actual:   rules.Text("Arial"),
	}
	assert.Equal(t, "paragraph 3, run 1: bodyFont: expected Times New Roman, got Arial", v.String())
}

func TestViolation_MarshalJSON(t *testing.T) {
	v := Violation{
		Element:  model.ElementRef{Kind: model.KindRun, Paragraph: 2, Run: 0},
		Category: rules.BodyFontSize,
		Expected: rules.Between(12, 14),
		Actual:   rules.Number(11),
		Severity: rules.SeverityError,
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"element": "paragraph 3, run 1",
		"paragraph": 2,
		"run": 0,
		"category": "bodyFontSize",
		"expected": "`+v.Expected.String()+`",
		"actual": "11",
		"severity": "error"
	}`, string(data))

	s := Violation{Element: model.SectionRef(1, 7), Category: rules.MarginLeft, Expected: rules.Exact(rules.Number(3)), Actual: rules.Number(2.5)}
	data, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"section":1`)
	assert.NotContains(t, string(data), `"run"`)
}
