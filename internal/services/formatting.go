// Package services coordinates checks for the HTTP API, the CLI and the MCP
// server: rule storage, upload gating, worker limits and caching.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/docfmt"
	"github.com/tsawler/docfmt/format"
	"github.com/tsawler/docfmt/internal/cache"
	"github.com/tsawler/docfmt/internal/rulestore"
	"github.com/tsawler/docfmt/rules"
	"github.com/tsawler/docfmt/validate"
)

// ErrEmptyRules is returned when a rule record with no rules is submitted
// for storage.
var ErrEmptyRules = errors.New("rule record is empty")

const extractCachePrefix = "docfmt:extract"

// FormattingService checks documents against the stored rule set.
type FormattingService struct {
	store         rulestore.Store
	checker       *docfmt.Checker
	defaultSchema *rules.Schema
	cache         cache.Cache
	cacheTTL      time.Duration
	sem           chan struct{}
	now           func() time.Time
	logger        *logrus.Logger
}

// FormattingOption configures a FormattingService.
type FormattingOption func(*FormattingService)

// NewFormattingService returns a service over store. Without options it
// checks against the empty rule set when nothing is stored and runs four
// passes at a time.
func NewFormattingService(store rulestore.Store, opts ...FormattingOption) *FormattingService {
	s := &FormattingService{
		store:         store,
		checker:       docfmt.New(),
		defaultSchema: docfmt.DefaultSchema(),
		sem:           make(chan struct{}, 4),
		now:           time.Now,
		logger:        logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) FormattingOption {
	return func(s *FormattingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChecker sets the checker whose options (author, language, limits)
// every pass uses.
func WithChecker(c *docfmt.Checker) FormattingOption {
	return func(s *FormattingService) {
		if c != nil {
			s.checker = c
		}
	}
}

// WithDefaultSchema sets the rule set used while no rule set is stored.
func WithDefaultSchema(schema *rules.Schema) FormattingOption {
	return func(s *FormattingService) {
		if schema != nil {
			s.defaultSchema = schema
		}
	}
}

// WithCache caches extracted rule records for ttl.
func WithCache(c cache.Cache, ttl time.Duration) FormattingOption {
	return func(s *FormattingService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithConcurrency bounds how many passes run at once.
func WithConcurrency(n int) FormattingOption {
	return func(s *FormattingService) {
		if n > 0 {
			s.sem = make(chan struct{}, n)
		}
	}
}

// WithClock sets the time source for output file names.
func WithClock(now func() time.Time) FormattingOption {
	return func(s *FormattingService) {
		if now != nil {
			s.now = now
		}
	}
}

// CheckResult is a checked upload.
type CheckResult struct {
	PassID   string
	FileName string // name for the annotated copy
	*docfmt.Result
}

// Report lists the violations in an upload without annotating it.
type Report struct {
	PassID     string               `json:"pass_id"`
	FileName   string               `json:"filename"`
	Violations []validate.Violation `json:"violations"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// acquire waits for a worker slot. A caller that gives up while waiting
// gets ctx.Err(); once a slot is held the pass runs to completion.
func (s *FormattingService) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// activeRules returns the stored rule set, or the default when none has
// been saved.
func (s *FormattingService) activeRules() (*rules.Schema, error) {
	schema, err := s.store.Get(rulestore.DefaultName)
	if errors.Is(err, rulestore.ErrNotFound) {
		return s.defaultSchema, nil
	}
	return schema, err
}

// Check annotates an upload against the active rule set.
func (s *FormattingService) Check(ctx context.Context, filename string, data []byte) (*CheckResult, error) {
	if err := format.Check(filename, data); err != nil {
		return nil, err
	}
	schema, err := s.activeRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return s.check(ctx, filename, data, schema)
}

// CheckWithRules annotates an upload against a caller's rule record. An
// empty record means the active rule set.
func (s *FormattingService) CheckWithRules(ctx context.Context, filename string, data, record []byte) (*CheckResult, error) {
	if len(bytes.TrimSpace(record)) == 0 {
		return s.Check(ctx, filename, data)
	}
	schema, err := rules.Parse(record)
	if err != nil {
		return nil, err
	}
	if err := format.Check(filename, data); err != nil {
		return nil, err
	}
	return s.check(ctx, filename, data, schema)
}

func (s *FormattingService) check(ctx context.Context, filename string, data []byte, schema *rules.Schema) (*CheckResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	passID := uuid.New().String()
	log := s.logger.WithFields(logrus.Fields{
		"pass_id":   passID,
		"file_name": filename,
		"size":      len(data),
	})
	log.Info("Checking document")

	start := time.Now()
	res, err := s.checker.Schema(schema).Check(data)
	if err != nil {
		log.WithError(err).Warn("Check failed")
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Warn(w)
	}
	log.WithFields(logrus.Fields{
		"violations": len(res.Violations),
		"elapsed":    time.Since(start).String(),
	}).Info("Document checked")

	return &CheckResult{
		PassID:   passID,
		FileName: CheckedFileName(filename, s.now()),
		Result:   res,
	}, nil
}

// Report validates an upload against the active rule set.
func (s *FormattingService) Report(ctx context.Context, filename string, data []byte) (*Report, error) {
	if err := format.Check(filename, data); err != nil {
		return nil, err
	}
	schema, err := s.activeRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	passID := uuid.New().String()
	vs, err := s.checker.Schema(schema).Validate(data)
	if err != nil {
		s.logger.WithError(err).WithField("pass_id", passID).Warn("Validation failed")
		return nil, err
	}
	if vs == nil {
		vs = []validate.Violation{}
	}
	return &Report{
		PassID:     passID,
		FileName:   filename,
		Violations: vs,
		Warnings:   schema.Warnings(),
	}, nil
}

// Rules returns a stored rule set; the empty name is the active one.
func (s *FormattingService) Rules(ctx context.Context, name string) (*rules.Schema, error) {
	return s.store.Get(name)
}

// RuleSets lists the stored rule set names.
func (s *FormattingService) RuleSets(ctx context.Context) ([]string, error) {
	return s.store.List()
}

// SetupRules parses a rule record and stores it under name; the empty name
// replaces the active rule set. A record without rules is rejected.
func (s *FormattingService) SetupRules(ctx context.Context, name string, record []byte) (*rules.Schema, error) {
	schema, err := rules.Parse(record)
	if err != nil {
		return nil, err
	}
	if schema.IsEmpty() {
		return nil, ErrEmptyRules
	}
	for _, w := range schema.Warnings() {
		s.logger.WithField("rule_set", name).Warn(w)
	}
	if err := s.store.Save(name, schema); err != nil {
		return nil, err
	}
	s.logger.WithField("rule_set", name).Info("Rules saved")
	return schema, nil
}

// ExtractRules infers a rule set from an upload. Results are cached by
// content since extraction is deterministic.
func (s *FormattingService) ExtractRules(ctx context.Context, filename string, data []byte) (*rules.Schema, error) {
	if err := format.Check(filename, data); err != nil {
		return nil, err
	}

	key := cache.ContentKey(extractCachePrefix, data)
	if s.cache != nil {
		if cached, found, err := s.cache.Get(ctx, key); err != nil {
			s.logger.WithError(err).Warn("Failed to read extract cache")
		} else if found {
			if schema, err := rules.Parse([]byte(cached)); err == nil {
				s.logger.WithField("file_name", filename).Debug("Extract cache hit")
				return schema, nil
			}
		}
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	schema, err := s.checker.Extract(data)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		record, err := json.Marshal(schema)
		if err == nil {
			err = s.cache.Set(ctx, key, string(record), s.cacheTTL)
		}
		if err != nil {
			s.logger.WithError(err).Warn("Failed to write extract cache")
		}
	}
	return schema, nil
}

// CheckedFileName names the annotated copy of an upload:
// "report.docx" checked at 14:05 on 3 May 2024 becomes
// "report (checked 2024.05.03 14-05).docx".
func CheckedFileName(name string, at time.Time) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "document"
	}
	if ext == "" {
		ext = ".docx"
	}
	return fmt.Sprintf("%s (checked %s)%s", stem, at.Format("2006.01.02 15-04"), ext)
}
