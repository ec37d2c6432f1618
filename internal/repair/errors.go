// Package repair applies planned fix groups to component documents on disk.
package repair

import "fmt"

// FixError represents a per-file failure to read, mutate, or write a document.
// It is recorded as a failed FixResult and never aborts the group.
type FixError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FixError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fix error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("fix error: %s: %s", e.Path, e.Message)
}

func (e *FixError) Unwrap() error {
	return e.Cause
}
