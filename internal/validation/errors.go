// Package validation checks component documents structurally against the schema and semantically against per-kind rules.
package validation

import "fmt"

// Error represents a failure of the validator itself, as opposed to a violation found in a document.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
