package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/components"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

func TestValidator_CombinesStructuralAndSemantic(t *testing.T) {
	v := New(testStore(t), SemanticOptions{})

	c := withField(parse(t, types.KindTool, validToolJSON), "type", "tool")
	c = withField(c, "parameters", nil)

	result := v.Validate(c)
	assert.False(t, result.Valid)
	assert.False(t, result.LoadFailed)
	assert.Equal(t, c.Ref(), result.Component)
	require.Len(t, result.Violations, 2)
	assert.Equal(t, types.SourceStructural, result.Violations[0].Source)
	assert.Equal(t, types.SourceSemantic, result.Violations[1].Source)
}

func TestValidator_ValidComponent(t *testing.T) {
	v := New(testStore(t), SemanticOptions{})

	result := v.Validate(parse(t, types.KindPattern, validPatternJSON))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
}

func TestValidator_ValidateAllKeepsLoadFailures(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tools")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_good.json"), []byte(validToolJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_broken.json"), []byte(`{"id": `), 0644))

	loaded, err := components.NewLoader(nil).LoadAll(root, types.KindTool)
	require.NoError(t, err)

	results := New(testStore(t), SemanticOptions{}).ValidateAll(loaded)
	require.Len(t, results, 2)

	assert.True(t, results[0].Valid)

	broken := results[1]
	assert.False(t, broken.Valid)
	assert.True(t, broken.LoadFailed)
	assert.Equal(t, "b_broken", broken.Component.ID)
	require.Len(t, broken.Violations, 1)
	assert.Equal(t, types.SourceLoad, broken.Violations[0].Source)
	assert.True(t, strings.HasPrefix(broken.Violations[0].Message, "Failed to load JSON file"))
}
