package docfmt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfmt/annotate"
	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/internal/testdocx"
	"github.com/tsawler/docfmt/rules"
)

func sampleDocument() []byte {
	var body strings.Builder
	body.WriteString(testdocx.P(`<w:pStyle w:val="Heading1"/>`, testdocx.R(testdocx.Font("Times New Roman", 16), "Introduction")))
	for i := 0; i < 8; i++ {
		body.WriteString(testdocx.P(`<w:jc w:val="both"/><w:ind w:firstLine="709"/><w:spacing w:line="360" w:lineRule="auto"/>`,
			testdocx.R(testdocx.Font("Times New Roman", 14), "Body text that follows the rules.")))
	}
	body.WriteString(testdocx.P(`<w:jc w:val="both"/>`, testdocx.R(testdocx.Font("Arial", 12), "A stray paragraph.")))
	body.WriteString(testdocx.P(`<w:jc w:val="both"/>`, testdocx.R(testdocx.Font("Arial", 12), "Another one.")))
	body.WriteString(testdocx.SectPr(1134, 1134, 1701, 850))
	return testdocx.Doc{Body: body.String(), Styles: testdocx.DefaultStyles}.Bytes()
}

func TestCheckDocument_DefaultSchemaRoundTrips(t *testing.T) {
	data := sampleDocument()

	out, err := CheckDocument(data, nil)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = CheckDocument(data, []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCheckDocument_Annotates(t *testing.T) {
	data := testdocx.Doc{
		Body:   testdocx.P("", testdocx.R(testdocx.Font("Arial", 11), "Hello world")),
		Styles: testdocx.DefaultStyles,
	}.Bytes()

	out, err := CheckDocument(data, []byte(`{"bodyFont": "Times New Roman", "bodyFontSize": [12, 14]}`))
	require.NoError(t, err)
	assert.NotEqual(t, data, out)

	comments, err := testdocx.ReadPart(out, "word/comments.xml")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(comments, "<w:comment "))
	assert.Contains(t, comments, "expected Times New Roman, found Arial")

	pkg, err := docx.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", pkg.Document().Text())
}

func TestCheckDocument_TruncatedPackage(t *testing.T) {
	data := sampleDocument()

	out, err := CheckDocument(data[:len(data)/2], []byte(`{"bodyFont": "Arial"}`))
	assert.Nil(t, out)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestCheckDocument_SchemaErrorBeforeDecode(t *testing.T) {
	out, err := CheckDocument([]byte("not even a zip"), []byte(`{"bodyFontSize": {"min": 14, "max": 10}}`))
	assert.Nil(t, out)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	var de *DecodeError
	assert.False(t, errors.As(err, &de))
}

func TestCheckDocument_IntegrityError(t *testing.T) {
	data := testdocx.Doc{
		Body: testdocx.P(`<w:pStyle w:val="A"/>`, testdocx.R("", "x")),
		Styles: `<w:style w:type="paragraph" w:styleId="A"><w:basedOn w:val="B"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="B"><w:basedOn w:val="A"/></w:style>`,
	}.Bytes()

	_, err := CheckDocument(data, nil)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
}

func TestExtractRules(t *testing.T) {
	record, err := ExtractRules(sampleDocument())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(record, &m))
	assert.Equal(t, "Times New Roman", m["bodyFont"])
	assert.Equal(t, 14.0, m["bodyFontSize"])
	assert.Equal(t, "both", m["alignment"])
	assert.Equal(t, map[string]any{"1": "Heading1"}, m["headingStyles"])

	// The extracted record checks its own sample with only the stray
	// paragraphs reported.
	res, err := New().Rules(record).Check(sampleDocument())
	require.NoError(t, err)
	for _, v := range res.Violations {
		assert.Contains(t, []int{9, 10}, v.Element.Paragraph, v.String())
	}
	assert.NotEmpty(t, res.Violations)
}

func TestExtractRules_DecodeError(t *testing.T) {
	_, err := ExtractRules([]byte("PK\x03\x04 broken"))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestChecker_Immutable(t *testing.T) {
	base := New()
	strict := base.Rules([]byte(`{"bodyFont": "Verdana"}`))
	broken := base.Rules([]byte(`[1, 2]`))

	res, err := base.Check(sampleDocument())
	require.NoError(t, err)
	assert.Empty(t, res.Violations)

	res, err = strict.Check(sampleDocument())
	require.NoError(t, err)
	assert.Len(t, res.Violations, 10)

	_, err = broken.Check(sampleDocument())
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestChecker_Options(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	c := New(
		WithDefaultSchema(rules.AcademicReport()),
		WithAuthor("Reviewer", "RV"),
		WithClock(now),
	)

	res, err := c.Check(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, "ru", res.Schema.Language())

	comments, err := testdocx.ReadPart(res.Document, "word/comments.xml")
	require.NoError(t, err)
	assert.Contains(t, comments, `w:author="Reviewer"`)
	assert.Contains(t, comments, `w:initials="RV"`)
	assert.Contains(t, comments, `w:date="2024-01-02T03:04:05Z"`)
	assert.Contains(t, comments, "шрифт основного текста")

	res, err = c.Language("en").Check(sampleDocument())
	require.NoError(t, err)
	comments, err = testdocx.ReadPart(res.Document, "word/comments.xml")
	require.NoError(t, err)
	assert.Contains(t, comments, "body font")
}

func TestChecker_Warnings(t *testing.T) {
	res, err := New().Rules([]byte("bodyFont: Times New Roman\nfontColor: red\n")).Check(sampleDocument())
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, `unknown category "fontColor" ignored`)
}

func TestPass_Stages(t *testing.T) {
	pass, err := Open(sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, StageLoaded, pass.Stage())

	_, err = pass.Serialize()
	assert.ErrorIs(t, err, ErrStage)
	assert.ErrorIs(t, pass.Annotate(annotate.Options{}), ErrStage)

	vs, err := pass.Validate(rules.AcademicReport())
	require.NoError(t, err)
	assert.NotEmpty(t, vs)
	assert.Equal(t, StageValidating, pass.Stage())

	_, err = pass.Validate(nil)
	assert.ErrorIs(t, err, ErrStage)

	require.NoError(t, pass.Annotate(annotate.Options{}))
	assert.Equal(t, StageAnnotated, pass.Stage())
	assert.Len(t, pass.Document().Comments, len(vs))

	out, err := pass.Serialize()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, StageSerialized, pass.Stage())

	_, err = pass.Serialize()
	assert.ErrorIs(t, err, ErrStage)
}

func TestMust(t *testing.T) {
	assert.NotEmpty(t, Must(ExtractRules(sampleDocument())))
	assert.Panics(t, func() { Must(ExtractRules(nil)) })
}
