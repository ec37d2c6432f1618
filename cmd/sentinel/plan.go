package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the fix groups and estimated effort without changing anything",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	res, err := runPipeline(cmd.Context(), false, false)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintPlan(res.Groups, res.Efficiency)
	return nil
}
