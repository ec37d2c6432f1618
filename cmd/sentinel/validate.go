package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate all components and write the validation report",
	Long: `Loads every component under the root, validates it against the schema and
business rules, writes the validation report and prints a summary.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateOutput        string
	validateFailOnInvalid bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateOutput, "out", "o", "", "Path to validation report (default from config)")
	validateCmd.Flags().BoolVar(&validateFailOnInvalid, "fail-on-invalid", false, "Exit non-zero when any component is invalid")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	res, err := runPipeline(cmd.Context(), false, false)
	if err != nil {
		return err
	}

	rep := res.ValidationReport()
	out := validateOutput
	if out == "" {
		out = cfg.ReportPath
	}
	if err := writeReport(out, rep); err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintValidationSummary(rep)

	if validateFailOnInvalid && !rep.Summary.ReadyForLoading {
		return fmt.Errorf("%d of %d components are invalid", rep.Summary.InvalidComponents, rep.Summary.TotalComponents)
	}
	return nil
}
