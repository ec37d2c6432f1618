package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/pipeline"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/report"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/validation"
)

// runOptions builds pipeline options from the merged configuration.
func runOptions(fix, dryRun bool) pipeline.RunOptions {
	return pipeline.RunOptions{
		RootDir:           cfg.RootDir,
		SchemaPath:        cfg.SchemaPath,
		Patterns:          cfg.KindPatterns(),
		Semantic:          validation.SemanticOptions{MinMultiCommands: cfg.MinMultiCommands},
		Fix:               fix,
		DryRun:            dryRun,
		Workers:           cfg.Workers,
		DefaultCategories: cfg.KindDefaultCategories(),
		Logger:            logger,
		Progress:          os.Stdout,
	}
}

// runPipeline checks the component root exists before starting a run.
func runPipeline(ctx context.Context, fix, dryRun bool) (*pipeline.Result, error) {
	info, err := os.Stat(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("component root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("component root is not a directory: %s", cfg.RootDir)
	}
	return pipeline.Run(ctx, runOptions(fix, dryRun))
}

// writeReport persists a report in the configured format.
func writeReport(path string, v any) error {
	f, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if err := report.Write(path, v, f); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Report: %s\n", path)
	return nil
}
