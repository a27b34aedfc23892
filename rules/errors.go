package rules

import "fmt"

// SchemaError reports a rule record that cannot be turned into a Schema.
type SchemaError struct {
	Path string // location in the record, e.g. "/bodyFontSize"
	Msg  string
	Err  error
}

func (e *SchemaError) Error() string {
	s := "invalid rule record"
	if e.Path != "" && e.Path != "/" {
		s += ": " + e.Path
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaErrorf(path, format string, args ...any) error {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
