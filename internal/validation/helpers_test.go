package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/components"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/schemas"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
	defaults "github.com/peguesj/yj-dev-sentinel-sub001/schemas"
)

const validToolJSON = `{
	"id": "lint_runner",
	"name": "Lint runner",
	"description": "Runs linters",
	"category": "validation",
	"parameters": {"required": [{"name": "target_dir", "type": "string"}], "optional": []},
	"execution": {
		"strategy": "sequential",
		"commands": [
			{"name": "vet", "command": "go vet ./..."},
			{"name": "lint", "command": "golangci-lint run"}
		]
	},
	"metadata": {"created": "2024-01-01T00:00:00Z", "updated": "2024-02-01T00:00:00Z", "version": "1.0.0"}
}`

const validPatternJSON = `{
	"id": "retry_with_backoff",
	"name": "Retry with backoff",
	"description": "Retries transient failures",
	"category": "behavioral",
	"implementation": {"steps": ["wrap call", "sleep with jitter"], "examples": ["http client"]},
	"metadata": {"created": "2024-01-01", "updated": "2024-01-01", "version": "1.0.0"}
}`

const validConstraintJSON = `{
	"id": "no_panics",
	"name": "No panics",
	"description": "Library code must not panic",
	"category": "quality",
	"scope": ["internal/**"],
	"enforcement": {"level": "error"},
	"metadata": {"created": "2024-01-01T00:00:00Z", "updated": "2024-01-01T00:00:00Z", "version": "1.0.0"}
}`

func testStore(t *testing.T) *schemas.Store {
	t.Helper()
	store, err := schemas.LoadBytes(defaults.ComponentsFile, defaults.Components)
	require.NoError(t, err)
	return store
}

func subSchema(t *testing.T, kind types.Kind) *schemas.SubSchema {
	t.Helper()
	sub, err := testStore(t).SubSchema(kind)
	require.NoError(t, err)
	return sub
}

func parse(t *testing.T, kind types.Kind, doc string) *types.Component {
	t.Helper()
	c, err := components.Parse(kind, "/components/"+kind.Section()+"/fixture.json", []byte(doc))
	require.NoError(t, err)
	return c
}

// withField returns a copy of the component with one top-level field replaced (or removed when value is nil).
func withField(c *types.Component, field string, value any) *types.Component {
	fields := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		fields[k] = v
	}
	if value == nil {
		delete(fields, field)
	} else {
		fields[field] = value
	}
	clone := *c
	clone.Fields = fields
	return &clone
}

func messages(vs []types.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Pointer+" "+v.Message)
	}
	return out
}
