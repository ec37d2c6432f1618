package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "components", cfg.RootDir)
	assert.Empty(t, cfg.SchemaPath)
	assert.Equal(t, "validation_report.json", cfg.ReportPath)
	assert.Equal(t, "fix_report.json", cfg.FixReportPath)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2, cfg.MinMultiCommands)

	patterns := cfg.KindPatterns()
	for _, kind := range types.AllKinds() {
		assert.Equal(t, kind.DefaultPattern(), patterns[kind])
	}
	assert.Equal(t, "utility", cfg.KindDefaultCategories()[types.KindTool])
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{
		"root_dir": "/srv/components",
		"format": "yaml",
		"workers": 8,
		"patterns": {"tool": "defs/tools/*.json"},
		"default_categories": {"constraint": "security"}
	}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/components", cfg.RootDir)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "defs/tools/*.json", cfg.KindPatterns()[types.KindTool])
	assert.Equal(t, types.KindPattern.DefaultPattern(), cfg.KindPatterns()[types.KindPattern], "unset keys keep their default")
	assert.Equal(t, "security", cfg.KindDefaultCategories()[types.KindConstraint])
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`{"root_dir": "from-default-file"}`), 0644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-default-file", cfg.RootDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{"workers": 8, "log_level": "warn"}`)
	t.Setenv("SENTINEL_WORKERS", "16")
	t.Setenv("SENTINEL_PATTERNS__GOVERNANCE", "records/*.json")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "records/*.json", cfg.KindPatterns()[types.KindGovernance])
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SENTINEL_ROOT_DIR", "from-env")

	cfg, err := Load("", map[string]any{"root_dir": "from-flag", "workers": 2})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.RootDir)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{ invalid json }`)

	cfg, err := Load(path, nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/sentinel.json", nil)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"workers too high", `{"workers": 65}`, "Workers"},
		{"workers zero", `{"workers": 0}`, "Workers"},
		{"bad format", `{"format": "xml"}`, "Format"},
		{"bad log level", `{"log_level": "loud"}`, "LogLevel"},
		{"empty root", `{"root_dir": ""}`, "RootDir"},
		{"unknown kind pattern", `{"patterns": {"widget": "w/*.json"}}`, "unknown component kind"},
		{"empty pattern", `{"patterns": {"tool": " "}}`, "patterns.tool is empty"},
		{"unknown kind category", `{"default_categories": {"widget": "x"}}`, "unknown component kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "min_multi_commands", envTransform("SENTINEL_MIN_MULTI_COMMANDS"))
	assert.Equal(t, "default_categories.tool", envTransform("SENTINEL_DEFAULT_CATEGORIES__TOOL"))
}
