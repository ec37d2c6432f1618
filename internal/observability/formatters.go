// Package observability provides the process logger and formatted console output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/report"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted console output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// Step prints a pipeline progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Step(n, total int, msg string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(p.out, "%s %s\n", cyan(fmt.Sprintf("Step %d/%d:", n, total)), msg)
}

// PrintValidationSummary outputs counts, pass rate and per-kind samples.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationSummary(r *report.ValidationReport) {
	if r == nil {
		return
	}
	p.printBox("VALIDATION SUMMARY", strings.TrimSuffix(report.RenderValidation(r), "\n"))

	if r.Summary.ReadyForLoading {
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(p.out, "%s all %d components valid\n", green("✅ READY"), r.Summary.TotalComponents)
		return
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(p.out, "%s %d of %d components invalid\n", red("❌ NOT READY"), r.Summary.InvalidComponents, r.Summary.TotalComponents)
}

// PrintPlan outputs the fix groups in priority order with their estimated effort.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPlan(groups []types.FixGroup, efficiency types.EfficiencyReport) {
	if len(groups) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NOTHING TO FIX")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d fix groups:\n\n", len(groups)))
	for i, g := range groups {
		marker := "•"
		if !g.FixType.Mutates() {
			marker = "✎"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, g.Name))
		sb.WriteString(fmt.Sprintf("  %d errors, %d components, %s tier\n", g.ErrorCount, g.ComponentCount, g.Efficiency))
		sb.WriteString(fmt.Sprintf("  ~%.1f min\n", g.EstimatedMinutes))
		if i < len(groups)-1 {
			sb.WriteString("\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nAuto-fixable errors: %d\n", efficiency.AutoFixableErrors))
	sb.WriteString(fmt.Sprintf("Manual errors:       %d\n", efficiency.ManualErrors))
	sb.WriteString(fmt.Sprintf("Total:               %.1f min (%.1f components/hour)",
		efficiency.TotalMinutes, efficiency.ComponentsPerHour))

	p.printBox("FIX PLAN", sb.String())
}

// PrintFixReport outputs fix outcomes with a capped sample of applied changes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFixReport(r *report.FixReport) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(report.RenderFix(r), "\n"))

	if len(r.AppliedFixes) > 0 {
		sb.WriteString("\n\nChanges:\n")
		count := min(len(r.AppliedFixes), maxItemsToShow)
		for i := 0; i < count; i++ {
			fix := r.AppliedFixes[i]
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", fix.Component.ID))
			for _, change := range fix.Changes {
				sb.WriteString(fmt.Sprintf("      %s\n", change))
			}
		}
		if len(r.AppliedFixes) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more", len(r.AppliedFixes)-maxItemsToShow))
		}
	}

	title := "FIX RESULTS"
	if r.DryRun {
		title = "FIX RESULTS (dry run)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))

	if len(r.FailedFixes) > 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(p.out, "%s %d fixes failed; see the fix report\n", yellow("⚠"), len(r.FailedFixes))
	}
}

// PrintBackups lists snapshots newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBackups(snapshots []backup.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(p.out, "No backups found")
		return
	}
	for _, s := range snapshots {
		fmt.Fprintln(p.out, s.String())
	}
}
