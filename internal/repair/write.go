package repair

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// Encode serialises a whole document with two-space indentation and a trailing newline.
// Keys are written in sorted order.
func Encode(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomically replaces path with content via a temp file in the same
// directory and a rename, keeping the original file mode.
func writeAtomically(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := renameio.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}
