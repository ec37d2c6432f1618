package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Back up the component root and apply automatic fixes",
	Long: `Validates, classifies and plans as 'plan' does, snapshots the component root,
applies every automatic fix group in priority order and re-validates. Writes
both the validation report (post-fix state) and the fix report.`,
	Args: cobra.NoArgs,
	RunE: runFix,
}

var fixDryRun bool

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Compute fixes without writing files or taking a backup")

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, _ []string) error {
	res, err := runPipeline(cmd.Context(), true, fixDryRun)
	if err != nil {
		return err
	}

	validationReport := res.ValidationReport()
	fixReport := res.FixReport()
	if err := writeReport(cfg.ReportPath, validationReport); err != nil {
		return err
	}
	if err := writeReport(cfg.FixReportPath, fixReport); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintFixReport(fixReport)
	printer.PrintValidationSummary(validationReport)
	return nil
}
