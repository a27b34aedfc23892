package docfmt

import (
	"time"

	"github.com/tsawler/docfmt/annotate"
	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/rules"
)

// CheckOptions holds the configuration of a Checker.
type CheckOptions struct {
	// Rule set used when no record is given.
	defaultSchema *rules.Schema

	// Comment author and language; empty language means the rule set's.
	author   string
	initials string
	language string
	now      func() time.Time

	// Package decoding limits
	maxPartSize int64
}

// Option configures a Checker.
type Option func(*CheckOptions)

// WithDefaultSchema replaces the rule set applied when a check names none.
func WithDefaultSchema(s *rules.Schema) Option {
	return func(o *CheckOptions) { o.defaultSchema = s }
}

// WithAuthor sets the author and initials written on comments.
func WithAuthor(author, initials string) Option {
	return func(o *CheckOptions) {
		o.author = author
		o.initials = initials
	}
}

// WithLanguage forces the language of comments.
func WithLanguage(tag string) Option {
	return func(o *CheckOptions) { o.language = tag }
}

// WithClock sets the time source for comment dates.
func WithClock(now func() time.Time) Option {
	return func(o *CheckOptions) { o.now = now }
}

// WithMaxPartSize limits the decompressed size of any one package part.
func WithMaxPartSize(n int64) Option {
	return func(o *CheckOptions) { o.maxPartSize = n }
}

func defaultOptions() CheckOptions {
	return CheckOptions{
		defaultSchema: DefaultSchema(),
		maxPartSize:   docx.DefaultMaxPartSize,
	}
}

func (o CheckOptions) annotateOptions() annotate.Options {
	return annotate.Options{
		Author:   o.author,
		Initials: o.initials,
		Language: o.language,
		Now:      o.now,
	}
}

func (o CheckOptions) docxOptions() []docx.Option {
	return []docx.Option{docx.WithMaxPartSize(o.maxPartSize)}
}
