package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a report.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json" and "yaml"; the empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", &Error{Message: fmt.Sprintf("unsupported report format %q", s)}
}

// Marshal encodes a report in the given format.
func Marshal(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, &Error{Message: "failed to encode yaml report", Cause: err}
		}
		if err := enc.Close(); err != nil {
			return nil, &Error{Message: "failed to encode yaml report", Cause: err}
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, &Error{Message: "failed to encode json report", Cause: err}
		}
		return append(data, '\n'), nil
	}
	return nil, &Error{Message: fmt.Sprintf("unsupported report format %q", format)}
}

// Write encodes a report and writes it to path, creating parent directories.
func Write(path string, v any, format Format) error {
	data, err := Marshal(v, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &Error{Message: "failed to create report directory", Cause: err}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &Error{Message: fmt.Sprintf("failed to write report %s", path), Cause: err}
	}
	return nil
}

// Error represents a failure to encode or persist a report.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("report error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
