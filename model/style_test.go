package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStyleTable_Inheritance(t *testing.T) {
	st, err := NewStyleTable([]Style{
		{ID: "Heading1", Type: StyleTypeParagraph, BasedOn: "Normal",
			Run: RunProps{Size: Ptr(HalfPoints(32))}, Paragraph: ParagraphProps{OutlineLevel: Ptr(0)}},
		{ID: "Normal", Type: StyleTypeParagraph, Default: true,
			Run: RunProps{Font: Ptr("Times New Roman"), Size: Ptr(HalfPoints(28))}},
	})
	require.NoError(t, err)

	rp := st.RunProps("Heading1")
	require.NotNil(t, rp.Font)
	assert.Equal(t, "Times New Roman", *rp.Font)
	assert.Equal(t, HalfPoints(32), *rp.Size)

	assert.Equal(t, []string{"Heading1", "Normal"}, st.Chain("Heading1"))

	def, ok := st.DefaultParagraphStyle()
	require.True(t, ok)
	assert.Equal(t, "Normal", def.ID)

	parent, ok := st.Parent("Heading1")
	require.True(t, ok)
	assert.Equal(t, "Normal", parent.ID)
}

func TestNewStyleTable_Cycle(t *testing.T) {
	_, err := NewStyleTable([]Style{
		{ID: "A", BasedOn: "B"},
		{ID: "B", BasedOn: "C"},
		{ID: "C", BasedOn: "A"},
	})
	require.Error(t, err)

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "cycle", ie.Kind)
}

func TestNewStyleTable_SelfReference(t *testing.T) {
	_, err := NewStyleTable([]Style{{ID: "A", BasedOn: "A"}})

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "cycle", ie.Kind)
}

func TestNewStyleTable_DanglingParent(t *testing.T) {
	_, err := NewStyleTable([]Style{{ID: "Quote", BasedOn: "Missing"}})

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "dangling", ie.Kind)
	assert.Equal(t, "Missing", ie.Target)
	assert.Contains(t, err.Error(), "Missing")
}

func TestNewStyleTable_DuplicateKeepsFirst(t *testing.T) {
	st, err := NewStyleTable([]Style{
		{ID: "Normal", Name: "first"},
		{ID: "Normal", Name: "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())

	s, ok := st.Get("Normal")
	require.True(t, ok)
	assert.Equal(t, "first", s.Name)
}

func TestStyleTable_NilSafe(t *testing.T) {
	var st *StyleTable
	assert.Equal(t, 0, st.Len())
	assert.False(t, st.Has("Normal"))
	assert.Nil(t, st.RunProps("Normal").Font)
	_, ok := st.DefaultParagraphStyle()
	assert.False(t, ok)
}

func TestNewNumberingTable(t *testing.T) {
	nt, err := NewNumberingTable(
		[]AbstractNum{{ID: "0", Levels: map[int]ParagraphProps{
			0: {IndentLeft: Ptr(Length(720)), IndentFirstLine: Ptr(Length(-360))},
		}}},
		[]Num{{ID: "1", AbstractNumID: "0"}},
	)
	require.NoError(t, err)

	lvl, ok := nt.Level("1", 0)
	require.True(t, ok)
	assert.Equal(t, Length(720), *lvl.IndentLeft)

	_, ok = nt.Level("1", 3)
	assert.False(t, ok)
	assert.False(t, nt.Has("2"))
}

func TestNewNumberingTable_Dangling(t *testing.T) {
	_, err := NewNumberingTable(nil, []Num{{ID: "1", AbstractNumID: "9"}})

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "dangling", ie.Kind)
}

func TestNewStyleTable_DefaultsByType(t *testing.T) {
	st, err := NewStyleTable([]Style{
		{ID: "TableNormal", Type: StyleTypeTable, Default: true},
		{ID: "NoList", Type: StyleTypeNumbering, Default: true},
		{ID: "DefaultParagraphFont", Type: StyleTypeCharacter, Default: true},
		{ID: "Normal", Type: StyleTypeParagraph, Default: true},
	})
	require.NoError(t, err)

	para, ok := st.DefaultParagraphStyle()
	require.True(t, ok)
	assert.Equal(t, "Normal", para.ID)

	char, ok := st.DefaultCharacterStyle()
	require.True(t, ok)
	assert.Equal(t, "DefaultParagraphFont", char.ID)

	tbl, ok := st.Get("TableNormal")
	require.True(t, ok)
	assert.Equal(t, StyleTypeTable, tbl.Type)
}
