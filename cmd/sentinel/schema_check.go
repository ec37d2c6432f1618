package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/pipeline"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

var schemaCheckCmd = &cobra.Command{
	Use:   "schema-check",
	Short: "Load and self-check the schema without touching components",
	Args:  cobra.NoArgs,
	RunE:  runSchemaCheck,
}

func init() {
	rootCmd.AddCommand(schemaCheckCmd)
}

func runSchemaCheck(_ *cobra.Command, _ []string) error {
	store, err := pipeline.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}

	source := store.Path()
	if cfg.SchemaPath == "" {
		source = "embedded " + source
	}
	_, _ = fmt.Fprintf(os.Stdout, "Schema OK: %s (version %s)\n", source, store.Version())
	for _, kind := range types.AllKinds() {
		sub, err := store.SubSchema(kind)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "  %-10s -> %s (%d required fields)\n", kind, kind.SubSchema(), len(sub.Required))
	}
	return nil
}
