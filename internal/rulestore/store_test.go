package rulestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docfmt/rules"
)

func TestFileStore_SaveGet(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("")
	assert.ErrorIs(t, err, ErrNotFound)

	want := rules.AcademicReport()
	require.NoError(t, s.Save("", want))

	got, err := s.Get(DefaultName)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	// Saving again replaces the record.
	require.NoError(t, s.Save("", rules.Empty()))
	got, err = s.Get("")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestFileStore_ListDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("thesis", rules.AcademicReport()))
	require.NoError(t, s.Save("memo", rules.Empty()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"memo", "thesis"}, names)

	require.NoError(t, s.Delete("memo"))
	assert.ErrorIs(t, s.Delete("memo"), ErrNotFound)

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"thesis"}, names)
}

func TestFileStore_InvalidName(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../escape", "a/b", ".hidden"} {
		assert.ErrorIs(t, s.Save(name, rules.Empty()), ErrInvalidName, name)
		_, err := s.Get(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestFileStore_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current.json"), []byte(`{"bodyFontSize": "big"}`), 0o644))

	_, err = s.Get("")
	var se *rules.SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestFileStore_Concurrent(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save("", rules.AcademicReport()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save("", rules.New("", map[rules.Category]rules.Constraint{
				rules.BodyFont: rules.Exact(rules.Text(fmt.Sprintf("Font %d", i))),
			}, nil)))
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.Get("")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
