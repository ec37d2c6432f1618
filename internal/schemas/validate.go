// Package schemas loads the component schema and compiles one validator per component kind.
package schemas

import (
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// ResolveSchemaPath attempts to find a schema file by trying multiple common path resolutions.
// It tries paths relative to the current working directory, then paths relative to likely repo root locations.
// Returns the first path that exists, or empty string if none found.
// This is useful when CLI commands may run from different working directory contexts (e.g., tests).
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// SubSchema is one compiled component definition
type SubSchema struct {
	Name       string
	Required   []string
	Properties map[string]any

	compiled *gojsonschema.Schema
}

// Validate runs the compiled definition against an in-memory document.
// All errors are collected; gojsonschema does not stop at the first one.
func (s *SubSchema) Validate(document any) (*gojsonschema.Result, error) {
	return s.compiled.Validate(gojsonschema.NewGoLoader(document))
}

// HasProperty reports whether the definition declares a top-level property.
func (s *SubSchema) HasProperty(name string) bool {
	_, ok := s.Properties[name]
	return ok
}
