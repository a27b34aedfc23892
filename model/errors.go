package model

import "fmt"

// IntegrityError reports a document whose internal references cannot be
// resolved: a cyclic style chain or a reference to a style or numbering
// definition that does not exist.
type IntegrityError struct {
	Kind    string // "cycle" or "dangling"
	Subject string // what holds the reference, e.g. `style "Quote"`
	Target  string // the id that could not be resolved
}

func (e *IntegrityError) Error() string {
	if e.Kind == "cycle" {
		return fmt.Sprintf("integrity error: style inheritance cycle through %s", e.Subject)
	}
	return fmt.Sprintf("integrity error: %s refers to missing %q", e.Subject, e.Target)
}

func newCycleError(styleID string) error {
	return &IntegrityError{Kind: "cycle", Subject: fmt.Sprintf("style %q", styleID), Target: styleID}
}

func newDanglingError(subject, target string) error {
	return &IntegrityError{Kind: "dangling", Subject: subject, Target: target}
}
