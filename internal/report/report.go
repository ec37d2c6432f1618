// Package report builds the persisted validation and fix reports and their text summaries.
package report

import (
	"math"
	"time"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// maxSamples caps the component lists shown in text summaries.
const maxSamples = 5

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID         string
	SchemaVersion string
	Timestamp     time.Time
}

// ValidationReport is the persisted result of one validation pass.
type ValidationReport struct {
	// Success is false when at least one file could not be loaded.
	Success             bool    `json:"success" yaml:"success"`
	ValidationTimestamp string  `json:"validation_timestamp" yaml:"validation_timestamp"`
	RunID               string  `json:"run_id" yaml:"run_id"`
	SchemaVersion       string  `json:"schema_version" yaml:"schema_version"`
	Summary             Summary `json:"summary" yaml:"summary"`
	Tools               Section `json:"tools" yaml:"tools"`
	Patterns            Section `json:"patterns" yaml:"patterns"`
	Constraints         Section `json:"constraints" yaml:"constraints"`
	Governance          Section `json:"governance" yaml:"governance"`
}

// Summary holds the cross-kind totals.
type Summary struct {
	TotalComponents    int     `json:"total_components" yaml:"total_components"`
	ValidComponents    int     `json:"valid_components" yaml:"valid_components"`
	InvalidComponents  int     `json:"invalid_components" yaml:"invalid_components"`
	ReadyForLoading    bool    `json:"ready_for_loading" yaml:"ready_for_loading"`
	PassRate           float64 `json:"pass_rate" yaml:"pass_rate"`
	ClassificationGaps int     `json:"classification_gaps" yaml:"classification_gaps"`
}

// Section holds the results for one component kind.
type Section struct {
	Total             int                `json:"total" yaml:"total"`
	Valid             int                `json:"valid" yaml:"valid"`
	Invalid           int                `json:"invalid" yaml:"invalid"`
	ValidComponents   []string           `json:"valid_components" yaml:"valid_components"`
	InvalidComponents []InvalidComponent `json:"invalid_components" yaml:"invalid_components"`
}

// InvalidComponent lists the violation messages of one failing document.
type InvalidComponent struct {
	ID     string   `json:"id" yaml:"id"`
	Path   string   `json:"path" yaml:"path"`
	Errors []string `json:"errors" yaml:"errors"`
}

// FixReport is the persisted result of one repair pass.
type FixReport struct {
	RunID        string                 `json:"run_id" yaml:"run_id"`
	DryRun       bool                   `json:"dry_run" yaml:"dry_run"`
	BackupPath   string                 `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	AppliedFixes []types.FixResult      `json:"applied_fixes" yaml:"applied_fixes"`
	FailedFixes  []types.FixResult      `json:"failed_fixes" yaml:"failed_fixes"`
	SkippedFixes []types.FixResult      `json:"skipped_fixes" yaml:"skipped_fixes"`
	Groups       []types.FixGroup       `json:"groups" yaml:"groups"`
	Efficiency   types.EfficiencyReport `json:"efficiency" yaml:"efficiency"`
}

// NewValidationReport aggregates per-component results into a report.
// Results are read in order and never modified.
func NewValidationReport(meta Meta, results []types.ValidationResult, classificationGaps int) *ValidationReport {
	r := &ValidationReport{
		Success:             true,
		ValidationTimestamp: meta.Timestamp.UTC().Format(time.RFC3339),
		RunID:               meta.RunID,
		SchemaVersion:       meta.SchemaVersion,
		Tools:               emptySection(),
		Patterns:            emptySection(),
		Constraints:         emptySection(),
		Governance:          emptySection(),
	}

	for _, res := range results {
		section := r.Section(res.Component.Kind)
		section.Total++
		if res.LoadFailed {
			r.Success = false
		}
		if res.Valid {
			section.Valid++
			section.ValidComponents = append(section.ValidComponents, res.Component.ID)
			continue
		}
		section.Invalid++
		msgs := make([]string, 0, len(res.Violations))
		for _, v := range res.Violations {
			msgs = append(msgs, v.Message)
		}
		section.InvalidComponents = append(section.InvalidComponents, InvalidComponent{
			ID:     res.Component.ID,
			Path:   res.Component.Path,
			Errors: msgs,
		})
	}

	for _, kind := range types.AllKinds() {
		section := r.Section(kind)
		r.Summary.TotalComponents += section.Total
		r.Summary.ValidComponents += section.Valid
		r.Summary.InvalidComponents += section.Invalid
	}
	r.Summary.ReadyForLoading = r.Summary.InvalidComponents == 0
	r.Summary.PassRate = passRate(r.Summary.ValidComponents, r.Summary.TotalComponents)
	r.Summary.ClassificationGaps = classificationGaps
	return r
}

// Section returns the report section for a kind.
func (r *ValidationReport) Section(kind types.Kind) *Section {
	switch kind {
	case types.KindTool:
		return &r.Tools
	case types.KindPattern:
		return &r.Patterns
	case types.KindConstraint:
		return &r.Constraints
	case types.KindGovernance:
		return &r.Governance
	}
	panic("report: unknown kind " + kind.String())
}

// NewFixReport partitions fix results by status. Results keep their order.
func NewFixReport(meta Meta, dryRun bool, backupPath string, results []types.FixResult, groups []types.FixGroup, efficiency types.EfficiencyReport) *FixReport {
	r := &FixReport{
		RunID:        meta.RunID,
		DryRun:       dryRun,
		BackupPath:   backupPath,
		AppliedFixes: []types.FixResult{},
		FailedFixes:  []types.FixResult{},
		SkippedFixes: []types.FixResult{},
		Groups:       append([]types.FixGroup{}, groups...),
		Efficiency:   efficiency,
	}
	for _, res := range results {
		switch res.Status {
		case types.FixApplied:
			r.AppliedFixes = append(r.AppliedFixes, res)
		case types.FixFailed:
			r.FailedFixes = append(r.FailedFixes, res)
		case types.FixSkipped:
			r.SkippedFixes = append(r.SkippedFixes, res)
		}
	}
	return r
}

func emptySection() Section {
	return Section{ValidComponents: []string{}, InvalidComponents: []InvalidComponent{}}
}

// passRate is a percentage rounded to one decimal.
func passRate(valid, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(valid)/float64(total)*1000) / 10
}
