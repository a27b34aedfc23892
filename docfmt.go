// Package docfmt checks word-processing documents against formatting rules.
//
// Basic usage:
//
//	annotated, err := docfmt.CheckDocument(docxBytes, ruleRecord)
//	if err != nil {
//	    // handle error
//	}
//
// The annotated copy carries one comment per violation, anchored at the
// offending run, paragraph or section. Everything else in the package is
// left as it was.
//
// With options:
//
//	res, err := docfmt.New(docfmt.WithAuthor("Reviewer", "R")).
//	    Rules(ruleRecord).
//	    Check(docxBytes)
//	for _, v := range res.Violations {
//	    fmt.Println(v)
//	}
//
// Rules can also be inferred from a well-formatted sample:
//
//	record, err := docfmt.ExtractRules(sampleBytes)
package docfmt

import (
	"encoding/json"

	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/extract"
	"github.com/tsawler/docfmt/rules"
	"github.com/tsawler/docfmt/validate"
)

// DefaultSchema returns the rule set applied when a check names none: the
// empty rule set, which every document satisfies.
func DefaultSchema() *rules.Schema {
	return rules.Empty()
}

// CheckDocument checks doc against the rule record and returns the
// annotated document. A nil or empty record applies DefaultSchema. The
// record is parsed before the document is read, so a bad record fails
// with a *SchemaError whatever the document.
func CheckDocument(doc []byte, record []byte) ([]byte, error) {
	res, err := New().Rules(record).Check(doc)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// ExtractRules infers a rule set from doc and returns it as a JSON record.
func ExtractRules(doc []byte) ([]byte, error) {
	s, err := New().Extract(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Checker provides a fluent interface for checking documents. Each
// configuration method returns a new Checker, so a configured Checker is
// safe for concurrent use.
type Checker struct {
	options CheckOptions

	// Rule set for Check; nil means options.defaultSchema.
	schema *rules.Schema

	// Accumulated error (fail-fast)
	err error
}

// New returns a Checker configured by opts.
func New(opts ...Option) *Checker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Checker{options: o}
}

func (c *Checker) clone() *Checker {
	cp := *c
	return &cp
}

// Rules parses a rule record (JSON or YAML) for later checks. An empty
// record keeps the default rule set. A parse error is reported by Check.
func (c *Checker) Rules(record []byte) *Checker {
	n := c.clone()
	if len(record) == 0 {
		n.schema = nil
		return n
	}
	s, err := rules.Parse(record)
	if err != nil {
		n.err = err
		return n
	}
	n.schema = s
	return n
}

// Schema sets the rule set for later checks.
func (c *Checker) Schema(s *rules.Schema) *Checker {
	n := c.clone()
	n.schema = s
	return n
}

// Language sets the language comments are written in.
func (c *Checker) Language(tag string) *Checker {
	n := c.clone()
	n.options.language = tag
	return n
}

// Author sets the author written on comments.
func (c *Checker) Author(name, initials string) *Checker {
	n := c.clone()
	n.options.author = name
	n.options.initials = initials
	return n
}

func (c *Checker) activeSchema() *rules.Schema {
	if c.schema != nil {
		return c.schema
	}
	if c.options.defaultSchema != nil {
		return c.options.defaultSchema
	}
	return rules.Empty()
}

// Result is the outcome of a check.
type Result struct {
	// Document is the annotated package.
	Document []byte

	// Violations in document order.
	Violations []validate.Violation

	// Schema is the rule set the document was checked against.
	Schema *rules.Schema

	// Warnings are non-fatal problems with the rule record or the package.
	Warnings []string
}

// Check runs a full pass over doc. On error no document is returned.
func (c *Checker) Check(doc []byte) (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	schema := c.activeSchema()

	pass, err := Open(doc, c.options.docxOptions()...)
	if err != nil {
		return nil, err
	}
	vs, err := pass.Validate(schema)
	if err != nil {
		return nil, err
	}
	if err := pass.Annotate(c.options.annotateOptions()); err != nil {
		return nil, err
	}
	out, err := pass.Serialize()
	if err != nil {
		return nil, err
	}

	warnings := append(schema.Warnings(), pass.Warnings()...)
	return &Result{
		Document:   out,
		Violations: vs,
		Schema:     schema,
		Warnings:   warnings,
	}, nil
}

// Validate reports the violations in doc without producing an annotated
// copy.
func (c *Checker) Validate(doc []byte) ([]validate.Violation, error) {
	if c.err != nil {
		return nil, c.err
	}
	pass, err := Open(doc, c.options.docxOptions()...)
	if err != nil {
		return nil, err
	}
	return pass.Validate(c.activeSchema())
}

// Extract infers a rule set from doc.
func (c *Checker) Extract(doc []byte) (*rules.Schema, error) {
	pkg, err := docx.Load(doc, c.options.docxOptions()...)
	if err != nil {
		return nil, err
	}
	return extract.Extract(pkg.Document()), nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	record := docfmt.Must(docfmt.ExtractRules(sample))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
