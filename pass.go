package docfmt

import (
	"fmt"

	"github.com/tsawler/docfmt/annotate"
	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
	"github.com/tsawler/docfmt/validate"
)

// Stage is the position of a Pass in its lifecycle.
type Stage int

const (
	StageLoaded Stage = iota
	StageValidating
	StageAnnotated
	StageSerialized
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StageValidating:
		return "validating"
	case StageAnnotated:
		return "annotated"
	case StageSerialized:
		return "serialized"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Pass is one check of one document: load, validate, annotate, serialize,
// strictly in that order. A Pass owns its document and is not safe for
// concurrent use; independent passes share nothing and may run in
// parallel.
type Pass struct {
	pkg        *docx.Package
	doc        *model.Document
	schema     *rules.Schema
	violations []validate.Violation
	stage      Stage
}

// Open decodes a document and starts a pass.
func Open(data []byte, opts ...docx.Option) (*Pass, error) {
	pkg, err := docx.Load(data, opts...)
	if err != nil {
		return nil, err
	}
	return &Pass{pkg: pkg, doc: pkg.Document(), stage: StageLoaded}, nil
}

// Stage returns the current stage.
func (p *Pass) Stage() Stage { return p.stage }

// Document returns the document as loaded, or as annotated once Annotate
// has run.
func (p *Pass) Document() *model.Document { return p.doc }

// Warnings returns non-fatal problems found in the package.
func (p *Pass) Warnings() []string { return p.pkg.Warnings() }

func (p *Pass) advance(from, to Stage) error {
	if p.stage != from {
		return fmt.Errorf("%w: pass is %s, want %s", ErrStage, p.stage, from)
	}
	p.stage = to
	return nil
}

// Validate checks the document against schema. A nil schema is the empty
// schema.
func (p *Pass) Validate(schema *rules.Schema) ([]validate.Violation, error) {
	if err := p.advance(StageLoaded, StageValidating); err != nil {
		return nil, err
	}
	if schema == nil {
		schema = rules.Empty()
	}
	p.schema = schema
	p.violations = validate.Validate(p.doc, schema)
	return p.violations, nil
}

// Annotate attaches a comment to the document for every violation found by
// Validate. Comments are written in the rule set's language unless opts
// names one.
func (p *Pass) Annotate(opts annotate.Options) error {
	if err := p.advance(StageValidating, StageAnnotated); err != nil {
		return err
	}
	if opts.Language == "" {
		opts.Language = p.schema.Language()
	}
	annotated := annotate.Apply(p.doc, p.violations, opts)
	if err := p.pkg.SetDocument(annotated); err != nil {
		p.stage = StageFailed
		return err
	}
	p.doc = annotated
	return nil
}

// Serialize encodes the annotated package. A document without violations
// comes back byte for byte.
func (p *Pass) Serialize() ([]byte, error) {
	if err := p.advance(StageAnnotated, StageSerialized); err != nil {
		return nil, err
	}
	out, err := p.pkg.Save()
	if err != nil {
		p.stage = StageFailed
		return nil, err
	}
	return out, nil
}
