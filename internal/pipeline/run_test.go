package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)

const validTool = `{
  "id": "lint_runner", "name": "Lint runner", "description": "Runs linters", "category": "validation",
  "parameters": {"required": [], "optional": []},
  "execution": {"strategy": "sequential", "commands": [{"name": "vet", "command": "go vet ./..."}, {"name": "lint", "command": "golangci-lint run"}]},
  "metadata": {"created": "2024-01-01", "updated": "2024-01-01", "version": "1.0.0"}
}`

// Scenario A: a tool with no metadata.
const toolWithoutMetadata = `{
  "id": "build_runner", "name": "Build runner", "description": "Builds", "category": "utility",
  "parameters": {"required": [], "optional": []},
  "execution": {"strategy": "parallel", "commands": [{"name": "a", "command": "make a"}, {"name": "b", "command": "make b"}]}
}`

// Scenario B: a pattern whose id is not snake case.
const patternWithBadID = `{
  "id": "MyPattern-V2", "name": "My pattern", "description": "d", "category": "workflow",
  "implementation": {"steps": ["a"], "examples": ["b"]},
  "metadata": {"created": "2024-01-01", "updated": "2024-01-01", "version": "1.0.0"}
}`

// Scenario C: a constraint with a legacy category.
const constraintWithLegacyCategory = `{
  "id": "no_secrets", "name": "No secrets", "description": "d", "category": "security",
  "scope": ["**"], "enforcement": {"level": "error"},
  "metadata": {"created": "2024-01-01", "updated": "2024-01-01", "version": "1.0.0"}
}`

const validGovernance = `{
  "id": "review_policy", "name": "Review policy", "description": "d", "category": "policy",
  "confidence": 0.9,
  "metadata": {"created": "2024-01-01", "updated": "2024-01-01", "version": "1.0.0"}
}`

type fixture struct {
	t    *testing.T
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := filepath.Join(t.TempDir(), "components")
	require.NoError(t, os.MkdirAll(root, 0755))
	return &fixture{t: t, root: root}
}

func (f *fixture) write(kind types.Kind, name, content string) string {
	f.t.Helper()
	dir := filepath.Join(f.root, kind.Section())
	require.NoError(f.t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seed writes one document per scenario plus a few valid ones.
func (f *fixture) seed() map[string]string {
	return map[string]string{
		"valid_tool":  f.write(types.KindTool, "lint_runner.json", validTool),
		"no_metadata": f.write(types.KindTool, "build_runner.json", toolWithoutMetadata),
		"bad_id":      f.write(types.KindPattern, "my_pattern.json", patternWithBadID),
		"legacy":      f.write(types.KindConstraint, "no_secrets.json", constraintWithLegacyCategory),
		"governance":  f.write(types.KindGovernance, "review_policy.json", validGovernance),
		"unparsable":  f.write(types.KindTool, "broken.json", `{"id": "broken",`),
	}
}

func (f *fixture) options(fix, dryRun bool) RunOptions {
	return RunOptions{
		RootDir: f.root,
		Fix:     fix,
		DryRun:  dryRun,
		Workers: 2,
		Logger:  zaptest.NewLogger(f.t),
		Now:     func() time.Time { return fixedNow },
	}
}

func readFields(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields
}

func snapshotFiles(t *testing.T, paths map[string]string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(paths))
	for key, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out[key] = string(data)
	}
	return out
}

func resultFor(results []types.ValidationResult, path string) (types.ValidationResult, bool) {
	for _, r := range results {
		if r.Component.Path == path {
			return r, true
		}
	}
	return types.ValidationResult{}, false
}

func TestRun_ValidateOnly(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()
	before := snapshotFiles(t, paths)

	var progress bytes.Buffer
	var events []ProgressEvent
	opts := f.options(false, false)
	opts.Progress = &progress
	opts.OnProgress = func(e ProgressEvent) { events = append(events, e) }

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "2.0.0", res.SchemaVersion)
	assert.Len(t, res.Initial, 6)
	assert.Nil(t, res.Fixes)
	assert.Nil(t, res.Final)
	assert.Nil(t, res.FixReport())
	assert.NotEmpty(t, res.Groups)

	assert.Contains(t, progress.String(), "Step 1/5: Loading schema...")
	assert.Contains(t, progress.String(), "Step 5/5: Planning fix groups...")
	require.Len(t, events, 5)
	assert.Equal(t, res.RunID, events[0].RunID)

	rep := res.ValidationReport()
	assert.Equal(t, 6, rep.Summary.TotalComponents)
	assert.Equal(t, 2, rep.Summary.ValidComponents)
	assert.False(t, rep.Summary.ReadyForLoading)
	assert.False(t, rep.Success)

	assert.Equal(t, before, snapshotFiles(t, paths), "validation never writes")
}

func TestRun_ScenarioD_UnparsableFile(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()

	res, err := Run(context.Background(), f.options(false, false))
	require.NoError(t, err)

	broken, ok := resultFor(res.Initial, paths["unparsable"])
	require.True(t, ok)
	assert.False(t, broken.Valid)
	assert.True(t, broken.LoadFailed)
	require.Len(t, broken.Violations, 1)
	assert.True(t, strings.HasPrefix(broken.Violations[0].Message, "Failed to load JSON file"))

	for _, g := range res.Groups {
		for _, e := range g.Errors {
			assert.NotEqual(t, paths["unparsable"], e.Violation.Component.Path, "load failures never enter group %s", g.Name)
		}
	}

	rep := res.ValidationReport()
	var ids []string
	for _, inv := range rep.Tools.InvalidComponents {
		ids = append(ids, inv.ID)
	}
	assert.Contains(t, ids, "broken")
}

func TestRun_Fix_ScenariosABC(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()
	originals := snapshotFiles(t, paths)

	res, err := Run(context.Background(), f.options(true, false))
	require.NoError(t, err)

	// A: metadata added
	metadata, ok := readFields(t, paths["no_metadata"])["metadata"].(map[string]any)
	require.True(t, ok, "metadata should have been added")
	assert.Equal(t, "1.0.0", metadata["version"])

	// B: id converted
	assert.Equal(t, "my_pattern_v2", readFields(t, paths["bad_id"])["id"])

	// C: legacy category remapped
	assert.Equal(t, "validation", readFields(t, paths["legacy"])["category"])

	for _, key := range []string{"no_metadata", "bad_id", "legacy", "valid_tool", "governance"} {
		final, ok := resultFor(res.Final, paths[key])
		require.True(t, ok, key)
		assert.True(t, final.Valid, "%s still invalid: %v", key, final.Violations)
	}

	broken, ok := resultFor(res.Final, paths["unparsable"])
	require.True(t, ok)
	assert.True(t, broken.LoadFailed)

	// Backup holds the untouched originals.
	require.NotEmpty(t, res.BackupPath)
	assert.Equal(t, backup.BackupPath(f.root, fixedNow), res.BackupPath)
	for key, path := range paths {
		rel, err := filepath.Rel(f.root, path)
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(res.BackupPath, rel))
		require.NoError(t, err)
		assert.Equal(t, originals[key], string(data), key)
	}

	fixReport := res.FixReport()
	require.NotNil(t, fixReport)
	assert.False(t, fixReport.DryRun)
	assert.Equal(t, res.BackupPath, fixReport.BackupPath)
	assert.Len(t, fixReport.AppliedFixes, 3)
	assert.Empty(t, fixReport.FailedFixes)

	rep := res.ValidationReport()
	assert.Equal(t, 5, rep.Summary.ValidComponents)
	assert.Equal(t, 1, rep.Summary.InvalidComponents)
}

func TestRun_Fix_DryRun(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()
	before := snapshotFiles(t, paths)

	res, err := Run(context.Background(), f.options(true, true))
	require.NoError(t, err)

	assert.Equal(t, before, snapshotFiles(t, paths), "dry run never writes")
	assert.Empty(t, res.BackupPath)

	entries, err := os.ReadDir(filepath.Dir(f.root))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no backup directory in a dry run")

	fixReport := res.FixReport()
	require.NotNil(t, fixReport)
	assert.True(t, fixReport.DryRun)
	require.Len(t, fixReport.AppliedFixes, 3)
	for _, fix := range fixReport.AppliedFixes {
		assert.NotEmpty(t, fix.Changes)
	}
}

func TestRun_Fix_NothingToWriteSkipsBackup(t *testing.T) {
	f := newFixture(t)
	f.write(types.KindTool, "lint_runner.json", validTool)

	snap := &fakeSnapshotter{}
	opts := f.options(true, false)
	opts.Backups = snap

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Zero(t, snap.calls)
	assert.Empty(t, res.BackupPath)
	assert.Empty(t, res.Groups)
	assert.NotNil(t, res.FixReport())
}

type fakeSnapshotter struct {
	calls int
	err   error
}

func (s *fakeSnapshotter) Snapshot(src string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return src + "_backup_fake", nil
}

func TestRun_ScenarioE_BackupFailureBlocksWrites(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()
	before := snapshotFiles(t, paths)

	snap := &fakeSnapshotter{err: &backup.BackupError{Path: f.root, Message: "failed to copy tree", Cause: errors.New("no space left on device")}}
	opts := f.options(true, false)
	opts.Backups = snap

	res, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 1, snap.calls)

	var backupErr *backup.BackupError
	assert.ErrorAs(t, err, &backupErr)
	assert.Equal(t, before, snapshotFiles(t, paths), "no file may change when the backup fails")
}

func TestRun_SchemaLoadFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.seed()
	opts := f.options(false, false)
	opts.SchemaPath = filepath.Join(t.TempDir(), "missing.schema.json")

	res, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, res)
}

func TestRun_CancelledContextSkipsFixes(t *testing.T) {
	f := newFixture(t)
	paths := f.seed()
	before := snapshotFiles(t, paths)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := f.options(true, false)
	opts.Backups = &fakeSnapshotter{}
	res, err := Run(ctx, opts)
	require.NoError(t, err)

	for _, fix := range res.Fixes {
		assert.Equal(t, types.FixSkipped, fix.Status)
	}
	assert.Equal(t, before, snapshotFiles(t, paths))
}

func TestRun_CustomPatterns(t *testing.T) {
	f := newFixture(t)
	f.write(types.KindTool, "lint_runner.json", validTool)
	dir := filepath.Join(f.root, "extra")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(validTool), 0644))

	opts := f.options(false, false)
	opts.Patterns = map[types.Kind]string{types.KindTool: "{tools,extra}/**/*.json"}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, res.Initial, 2)
}

func TestLoadSchema_Embedded(t *testing.T) {
	store, err := LoadSchema("")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", store.Version())
}
