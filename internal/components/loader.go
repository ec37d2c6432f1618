// Package components enumerates and parses component documents from a directory tree.
package components

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// LoadResult is either a parsed component or the failure that prevented parsing it.
type LoadResult struct {
	Component *types.Component
	Err       *LoadError
	Path      string
	Kind      types.Kind
}

// Failed reports whether the file could not be loaded.
func (r LoadResult) Failed() bool {
	return r.Err != nil
}

// Ref returns a reference for the loaded component or the failed file.
func (r LoadResult) Ref() types.ComponentRef {
	if r.Component != nil {
		return r.Component.Ref()
	}
	return types.ComponentRef{Kind: r.Kind, ID: fileStem(r.Path), Path: r.Path}
}

// Loader enumerates component files per kind using doublestar globs.
type Loader struct {
	patterns map[types.Kind]string
}

// NewLoader creates a Loader. Kinds absent from patterns use Kind.DefaultPattern.
func NewLoader(patterns map[types.Kind]string) *Loader {
	resolved := make(map[types.Kind]string, len(types.AllKinds()))
	for _, kind := range types.AllKinds() {
		resolved[kind] = kind.DefaultPattern()
		if p, ok := patterns[kind]; ok && p != "" {
			resolved[kind] = p
		}
	}
	return &Loader{patterns: resolved}
}

// Pattern returns the glob used for a kind.
func (l *Loader) Pattern(kind types.Kind) string {
	return l.patterns[kind]
}

// LoadAll enumerates every file of the given kind beneath root and parses each one independently.
// Results are ordered lexically by path. The returned error is only non-nil when the
// glob pattern itself is malformed; per-file failures are carried in the results.
func (l *Loader) LoadAll(root string, kind types.Kind) ([]LoadResult, error) {
	pattern := l.Pattern(kind)
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q for %s components: %w", pattern, kind, err)
	}
	sort.Strings(matches)

	results := make([]LoadResult, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(root, filepath.FromSlash(match))
		results = append(results, LoadFile(kind, path))
	}
	return results, nil
}

// LoadFile reads and parses a single component file.
func LoadFile(kind types.Kind, path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{
			Path: path,
			Kind: kind,
			Err:  &LoadError{Path: path, Message: LoadFailureMessage, Cause: err},
		}
	}

	component, err := Parse(kind, path, data)
	if err != nil {
		return LoadResult{
			Path: path,
			Kind: kind,
			Err:  &LoadError{Path: path, Message: LoadFailureMessage, Cause: err},
		}
	}
	return LoadResult{Component: component, Path: path, Kind: kind}
}

// Parse decodes component bytes into a Component. Numbers are kept as json.Number
// so that re-serialising a document does not change its numeric literals.
func Parse(kind types.Kind, path string, data []byte) (*types.Component, error) {
	// The decoder would replace invalid bytes with U+FFFD and a later rewrite would persist that.
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value must be a JSON object")
	}

	return &types.Component{
		Kind:     kind,
		ID:       componentID(fields, path),
		Path:     path,
		Fields:   fields,
		Revision: Revision(data),
	}, nil
}

// Revision returns the sha256 content hash of a document, hex encoded.
// Fix results carry it for the document before and after a write.
func Revision(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func componentID(fields map[string]any, path string) string {
	if id, ok := fields["id"].(string); ok && strings.TrimSpace(id) != "" {
		return id
	}
	return fileStem(path)
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
