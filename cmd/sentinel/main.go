// Package main implements the sentinel CLI for validating and repairing component documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/config"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/schemas"
)

var (
	// Persistent flags
	configPath string
	rootDir    string
	schemaPath string
	verbose    bool
	logFile    string
	format     string
	workers    int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Validate and batch-repair component documents",
	Long: `sentinel validates tool, pattern, constraint and governance documents against a
JSON schema and business rules, classifies every violation, plans fix groups by
estimated effort, and applies the mechanical fixes after a full backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configPath, flagOverrides(cmd))
		if err != nil {
			return err
		}
		logger, err = observability.NewLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config JSON file (default ./"+config.DefaultFile+" if present)")
	flags.StringVarP(&rootDir, "root", "r", "", "Component root directory")
	flags.StringVar(&schemaPath, "schema", "", "Path to schema JSON file (embedded default when empty)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&logFile, "log-file", "", "Also write logs to this rotated file")
	flags.StringVar(&format, "format", "", "Report format: json or yaml")
	flags.IntVarP(&workers, "workers", "w", 0, "Concurrent documents per fix group")
}

// flagOverrides maps the persistent flags the user actually set to config keys.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	if flags.Changed("root") {
		overrides["root_dir"] = rootDir
	}
	if flags.Changed("schema") {
		overrides["schema_path"] = schemaPath
	}
	if flags.Changed("log-file") {
		overrides["log_file"] = logFile
	}
	if flags.Changed("format") {
		overrides["format"] = format
	}
	if flags.Changed("workers") {
		overrides["workers"] = workers
	}
	if verbose {
		overrides["log_level"] = "debug"
	}
	return overrides
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Interrupts stop fix groups between documents
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describe(err))
		os.Exit(1)
	}
}

// describe prefixes the two fatal error classes so operators can tell them apart.
func describe(err error) string {
	var schemaErr *schemas.SchemaLoadError
	var backupErr *backup.BackupError
	switch {
	case errors.As(err, &schemaErr):
		return "schema could not be loaded, nothing was validated: " + err.Error()
	case errors.As(err, &backupErr):
		return "backup failed, no fixes were applied: " + err.Error()
	default:
		return err.Error()
	}
}
