package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonpointer"
	"github.com/xeipuuv/gojsonschema"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

const (
	keyDefinitions = "definitions"
	keyRef         = "$ref"
	keySchema      = "$schema"
)

// Store holds a self-checked schema document and its compiled per-kind sub-schemas.
type Store struct {
	path       string
	version    string
	subSchemas map[types.Kind]*SubSchema
}

// Load reads, self-checks and compiles the schema file at path.
// Any failure is returned as *SchemaLoadError and no partial store is produced.
func Load(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "failed to resolve schema path", Cause: err}
	}
	if _, err := os.Stat(absPath); err != nil {
		if resolved := ResolveSchemaPath(path); resolved != "" {
			absPath = resolved
		} else {
			return nil, &SchemaLoadError{Path: absPath, Message: "schema file not found", Cause: err}
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "failed to read schema file", Cause: err}
	}
	return LoadBytes(absPath, data)
}

// LoadBytes builds a Store from schema content; name is used in errors.
func LoadBytes(name string, data []byte) (*Store, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema is not valid JSON", Cause: err}
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaLoadError{Path: name, Message: "schema root must be a JSON object"}
	}

	// References are checked before the meta-schema pass so the error names the pointer.
	if unresolved := unresolvedRefs(doc); len(unresolved) > 0 {
		return nil, &SchemaLoadError{
			Path:    name,
			Message: fmt.Sprintf("unresolved $ref: %s", strings.Join(unresolved, ", ")),
		}
	}

	selfCheck := gojsonschema.NewSchemaLoader()
	selfCheck.Validate = true
	if _, err := selfCheck.Compile(gojsonschema.NewGoLoader(doc)); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed meta-schema validation", Cause: err}
	}

	definitions, ok := doc[keyDefinitions].(map[string]any)
	if !ok {
		return nil, &SchemaLoadError{Path: name, Message: "schema has no definitions object"}
	}

	var missing []string
	for _, kind := range types.AllKinds() {
		if _, ok := definitions[kind.SubSchema()].(map[string]any); !ok {
			missing = append(missing, kind.SubSchema())
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaLoadError{
			Path:    name,
			Message: fmt.Sprintf("missing definitions: %s", strings.Join(missing, ", ")),
		}
	}

	subSchemas := make(map[types.Kind]*SubSchema, len(types.AllKinds()))
	for _, kind := range types.AllKinds() {
		sub, err := compileSubSchema(doc, definitions, kind.SubSchema())
		if err != nil {
			return nil, &SchemaLoadError{
				Path:    name,
				Message: fmt.Sprintf("failed to compile definition %s", kind.SubSchema()),
				Cause:   err,
			}
		}
		subSchemas[kind] = sub
	}

	return &Store{
		path:       name,
		version:    schemaVersion(doc),
		subSchemas: subSchemas,
	}, nil
}

// SubSchema returns the compiled definition for a component kind.
func (s *Store) SubSchema(kind types.Kind) (*SubSchema, error) {
	sub, ok := s.subSchemas[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	return sub, nil
}

// Path returns where the schema was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Version returns the schema's declared version, or "" when it has none.
func (s *Store) Version() string {
	return s.version
}

// compileSubSchema compiles a definition with the full definitions map alongside
// so nested $refs resolve against the same document.
func compileSubSchema(doc map[string]any, definitions map[string]any, name string) (*SubSchema, error) {
	wrapper := map[string]any{
		keyDefinitions: definitions,
		keyRef:         "#/" + keyDefinitions + "/" + name,
	}
	if draft, ok := doc[keySchema]; ok {
		wrapper[keySchema] = draft
	}

	compiled, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewGoLoader(wrapper))
	if err != nil {
		return nil, err
	}

	def := definitions[name].(map[string]any)
	sub := &SubSchema{
		Name:       name,
		Properties: map[string]any{},
		compiled:   compiled,
	}
	if props, ok := def["properties"].(map[string]any); ok {
		sub.Properties = props
	}
	if required, ok := def["required"].([]any); ok {
		for _, r := range required {
			if field, ok := r.(string); ok {
				sub.Required = append(sub.Required, field)
			}
		}
	}
	return sub, nil
}

// unresolvedRefs walks the document and returns every $ref that does not
// resolve to a node inside it, sorted for stable error messages.
func unresolvedRefs(doc map[string]any) []string {
	seen := make(map[string]bool)
	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			if ref, ok := n[keyRef].(string); ok && !seen[ref] {
				if !refResolves(doc, ref) {
					seen[ref] = true
				}
			}
			for _, child := range n {
				walk(child)
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(doc)

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// refResolves reports whether an internal reference points at an existing node.
// External references are not supported and never resolve.
func refResolves(doc map[string]any, ref string) bool {
	if !strings.HasPrefix(ref, "#") {
		return false
	}
	fragment := strings.TrimPrefix(ref, "#")
	if fragment == "" {
		return true
	}
	pointer, err := gojsonpointer.NewJsonPointer(fragment)
	if err != nil {
		return false
	}
	_, _, err = pointer.Get(doc)
	return err == nil
}

func schemaVersion(doc map[string]any) string {
	if v, ok := doc["version"].(string); ok {
		return v
	}
	if id, ok := doc["$id"].(string); ok {
		return id
	}
	return ""
}
