package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List snapshots of the component root, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackups,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-path>",
	Short: "Replace the component root with a snapshot",
	Long: `Copies the snapshot into place next to the component root and swaps it in.
The current tree is only removed once the restored copy is in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackups(_ *cobra.Command, _ []string) error {
	snapshots, err := backup.NewManager(logger, nil).List(cfg.RootDir)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintBackups(snapshots)
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	if err := backup.NewManager(logger, nil).Restore(args[0], cfg.RootDir); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Restored %s from %s\n", cfg.RootDir, args[0])
	return nil
}
