package backup

import "fmt"

// BackupError represents a failure to create or restore a snapshot.
// A failed snapshot blocks every mutating fix in the run.
type BackupError struct {
	Path    string
	Message string
	Cause   error
}

func (e *BackupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backup error: %s: %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("backup error: %s: %s", e.Message, e.Path)
}

func (e *BackupError) Unwrap() error {
	return e.Cause
}
