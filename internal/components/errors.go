package components

import "fmt"

// LoadFailureMessage prefixes every per-file load error.
const LoadFailureMessage = "Failed to load JSON file"

// LoadError represents an error during file I/O or JSON parsing of one component file.
// It never aborts a batch; the loader records it against the file.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
