package docfmt

import (
	"errors"

	"github.com/tsawler/docfmt/docx"
	"github.com/tsawler/docfmt/model"
	"github.com/tsawler/docfmt/rules"
)

// Error types returned by the package. Use errors.As to inspect them.
type (
	// DecodeError reports input that is not a readable word-processing
	// package.
	DecodeError = docx.DecodeError
	// SchemaError reports a rule record that cannot be parsed.
	SchemaError = rules.SchemaError
	// IntegrityError reports a package whose styles or numbering reference
	// each other inconsistently.
	IntegrityError = model.IntegrityError
)

// ErrStage is returned when a Pass operation is called out of order or
// after the pass failed.
var ErrStage = errors.New("docfmt: operation not allowed at this stage")
