package docx

import "fmt"

// DecodeError reports a package that cannot be read: not a zip archive, a
// missing main document part, malformed XML or a part above the size limit.
type DecodeError struct {
	Part string // zip entry name, empty for archive-level failures
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	s := "decode docx"
	if e.Part != "" {
		s += ": " + e.Part
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(part, msg string, err error) error {
	return &DecodeError{Part: part, Msg: msg, Err: err}
}

func decodeErrf(part, format string, args ...any) error {
	return &DecodeError{Part: part, Msg: fmt.Sprintf(format, args...)}
}
