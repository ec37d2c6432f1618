package report

import (
	"fmt"
	"strings"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// Render formats a plain-text summary of a validation report and, when fix is
// non-nil, of the repair pass that followed it.
func Render(validation *ValidationReport, fix *FixReport) string {
	var sb strings.Builder
	if validation != nil {
		sb.WriteString(RenderValidation(validation))
	}
	if fix != nil {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(RenderFix(fix))
	}
	return sb.String()
}

// RenderValidation formats component counts, the pass rate and a capped
// sample of invalid and valid components per kind.
func RenderValidation(r *ValidationReport) string {
	var sb strings.Builder
	s := r.Summary

	sb.WriteString(fmt.Sprintf("Components: %d total, %d valid, %d invalid\n", s.TotalComponents, s.ValidComponents, s.InvalidComponents))
	sb.WriteString(fmt.Sprintf("Pass rate:  %.1f%%\n", s.PassRate))
	if s.ReadyForLoading {
		sb.WriteString("Status:     ready for loading\n")
	} else {
		sb.WriteString("Status:     NOT ready for loading\n")
	}
	if s.ClassificationGaps > 0 {
		sb.WriteString(fmt.Sprintf("Unclassified violations: %d\n", s.ClassificationGaps))
	}

	for _, kind := range types.AllKinds() {
		section := r.Section(kind)
		if section.Total == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s: %d/%d valid\n", kind.Section(), section.Valid, section.Total))

		count := min(len(section.InvalidComponents), maxSamples)
		for i := 0; i < count; i++ {
			inv := section.InvalidComponents[i]
			sb.WriteString(fmt.Sprintf("  ✗ %s (%d errors)\n", inv.ID, len(inv.Errors)))
			if len(inv.Errors) > 0 {
				sb.WriteString(fmt.Sprintf("      %s\n", inv.Errors[0]))
			}
		}
		if len(section.InvalidComponents) > maxSamples {
			sb.WriteString(fmt.Sprintf("  ... and %d more invalid\n", len(section.InvalidComponents)-maxSamples))
		}

		count = min(len(section.ValidComponents), maxSamples)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", section.ValidComponents[i]))
		}
		if len(section.ValidComponents) > maxSamples {
			sb.WriteString(fmt.Sprintf("  ... and %d more valid\n", len(section.ValidComponents)-maxSamples))
		}
	}
	return sb.String()
}

// RenderFix formats fix counts per status and a capped sample of failures.
func RenderFix(r *FixReport) string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Mode:     dry run (no files written)\n")
	}
	if r.BackupPath != "" {
		sb.WriteString(fmt.Sprintf("Backup:   %s\n", r.BackupPath))
	}
	sb.WriteString(fmt.Sprintf("Applied:  %d\n", len(r.AppliedFixes)))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", len(r.FailedFixes)))
	sb.WriteString(fmt.Sprintf("Skipped:  %d\n", len(r.SkippedFixes)))

	if len(r.FailedFixes) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(r.FailedFixes), maxSamples)
		for i := 0; i < count; i++ {
			f := r.FailedFixes[i]
			sb.WriteString(fmt.Sprintf("  ✗ [%s] %s: %s\n", f.Group, f.Component.ID, f.Reason))
		}
		if len(r.FailedFixes) > maxSamples {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.FailedFixes)-maxSamples))
		}
	}

	e := r.Efficiency
	sb.WriteString(fmt.Sprintf("\nEstimated effort: %.1f min for %d components (%.1f/hour)\n",
		e.TotalMinutes, e.ComponentsNeedingFix, e.ComponentsPerHour))
	return sb.String()
}
