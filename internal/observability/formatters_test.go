package observability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/report"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var meta = report.Meta{RunID: "run-1", SchemaVersion: "2.0.0", Timestamp: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)}

func tool(id string) types.ComponentRef {
	return types.ComponentRef{Kind: types.KindTool, ID: id, Path: "/c/tools/" + id + ".json"}
}

func TestStep(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Step(2, 5, "Validating components...")
	assert.Equal(t, "Step 2/5: Validating components...\n", buf.String())
}

func TestPrintValidationSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := report.NewValidationReport(meta, []types.ValidationResult{
		{Component: tool("good"), Valid: true},
		{Component: tool("bad"), Violations: []types.Violation{{Message: "'metadata' is a required property"}}},
	}, 0)
	p.PrintValidationSummary(r)
	output := buf.String()

	assert.Contains(t, output, "VALIDATION SUMMARY")
	assert.Contains(t, output, "Pass rate:  50.0%")
	assert.Contains(t, output, "bad")
	assert.Contains(t, output, "❌ NOT READY 1 of 2 components invalid")
}

func TestPrintValidationSummary_Ready(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationSummary(report.NewValidationReport(meta, []types.ValidationResult{{Component: tool("good"), Valid: true}}, 0))
	assert.Contains(t, buf.String(), "✅ READY all 1 components valid")
}

func TestPrintValidationSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidationSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	groups := []types.FixGroup{
		{Name: "add-standard-structure", FixType: types.FixAddStandardStructure, Efficiency: types.TierHigh, ErrorCount: 3, ComponentCount: 2, EstimatedMinutes: 4},
		{Name: "manual-review", FixType: types.FixManualReview, Efficiency: types.TierLow, ErrorCount: 1, ComponentCount: 1, EstimatedMinutes: 10},
	}
	p.PrintPlan(groups, types.EfficiencyReport{AutoFixableErrors: 3, ManualErrors: 1, TotalMinutes: 14, ComponentsPerHour: 12.9})
	output := buf.String()

	assert.Contains(t, output, "FIX PLAN")
	assert.Contains(t, output, "• add-standard-structure")
	assert.Contains(t, output, "✎ manual-review")
	assert.Contains(t, output, "3 errors, 2 components, high tier")
	assert.Contains(t, output, "14.0 min (12.9 components/hour)")
}

func TestPrintPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPlan(nil, types.EfficiencyReport{})
	assert.Contains(t, buf.String(), "NOTHING TO FIX")
}

func TestPrintFixReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var results []types.FixResult
	for i := 0; i < 7; i++ {
		results = append(results, types.FixResult{
			Group: "convert-to-snake-case", Status: types.FixApplied, Component: tool(fmt.Sprintf("t%d", i)),
			Changes: []string{fmt.Sprintf("/id: T%d -> t%d", i, i)},
		})
	}
	results = append(results, types.FixResult{Group: "convert-to-snake-case", Status: types.FixFailed, Component: tool("x"), Reason: "read-only"})

	p.PrintFixReport(report.NewFixReport(meta, true, "", results, nil, types.EfficiencyReport{}))
	output := buf.String()

	assert.Contains(t, output, "FIX RESULTS (dry run)")
	assert.Contains(t, output, "Applied:  7")
	assert.Contains(t, output, "/id: T4 -> t4")
	assert.NotContains(t, output, "/id: T5 -> t5")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "⚠ 1 fixes failed")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintBackups(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBackups(nil)
	assert.Equal(t, "No backups found\n", buf.String())

	buf.Reset()
	at := time.Date(2024, 7, 9, 13, 4, 5, 0, time.UTC)
	p.PrintBackups([]backup.Snapshot{{Path: "/data/c_backup_20240709_130405", CreatedAt: at}})
	assert.Equal(t, "2024-07-09T13:04:05Z  /data/c_backup_20240709_130405\n", buf.String())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger("loud", "")
	assert.Error(t, err)
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sentinel.log")
	logger, err := NewLogger("info", path)
	require.NoError(t, err)

	logger.Info("validation finished")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"validation finished"`)
	assert.NotContains(t, string(data), "hidden")
}
