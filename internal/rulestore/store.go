// Package rulestore keeps rule records on disk, one file per named rule set.
package rulestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tsawler/docfmt/rules"
)

// DefaultName is the rule set the service checks against when a request
// names none.
const DefaultName = "current"

const fileExt = ".json"

// ErrNotFound is returned when a named rule set has never been saved.
var ErrNotFound = errors.New("rulestore: rule set not found")

// ErrInvalidName is returned for names that are not plain file names.
var ErrInvalidName = errors.New("rulestore: invalid rule set name")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Store is the persistence contract used by the service.
type Store interface {
	Get(name string) (*rules.Schema, error)
	Save(name string, s *rules.Schema) error
	Delete(name string) error
	List() ([]string, error)
}

// FileStore stores each rule set as a JSON record in a directory. Readers
// share the lock; a save replaces the file with a rename so a reader never
// sees a partial record.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rule directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create rule directory: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

// Dir returns the directory records are kept in.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// Get loads and parses a rule set.
func (s *FileStore) Get(name string) (*rules.Schema, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(p)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}
	return rules.Parse(data)
}

// Save writes the rule set's record, replacing any previous one.
func (s *FileStore) Save(name string, schema *rules.Schema) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".rules-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rule set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write rule set: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace rule set: %w", err)
	}
	return nil
}

// Delete removes a rule set. Deleting a missing set returns ErrNotFound.
func (s *FileStore) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete rule set: %w", err)
	}
	return nil
}

// List returns the names of the stored rule sets, sorted.
func (s *FileStore) List() ([]string, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || filepath.Ext(n) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	sort.Strings(names)
	return names, nil
}
