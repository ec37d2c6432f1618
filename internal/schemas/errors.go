package schemas

import (
	"fmt"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// SchemaLoadError represents errors loading or parsing the schema itself.
// It is fatal for a run.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// UnknownKindError is returned when no sub-schema is registered for a kind
type UnknownKindError struct {
	Kind types.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("no sub-schema registered for component kind %s", e.Kind)
}
