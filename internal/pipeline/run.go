// Package pipeline provides the high-level orchestration of a validation and repair run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/backup"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/classify"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/components"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/fixplan"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/observability"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/pipeline/steps"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/repair"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/report"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/schemas"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/validation"
	embedded "github.com/peguesj/yj-dev-sentinel-sub001/schemas"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Snapshotter takes a full copy of the component root before mutation.
type Snapshotter interface {
	Snapshot(src string) (string, error)
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	RootDir    string
	SchemaPath string // embedded default schema when empty
	Patterns   map[types.Kind]string
	Semantic   validation.SemanticOptions

	// Fix enables backup, repair and re-validation. DryRun computes fixes without writing.
	Fix               bool
	DryRun            bool
	Workers           int
	DefaultCategories map[types.Kind]string

	Logger     *zap.Logger
	Progress   io.Writer // "Step n/m" lines; nil disables them
	OnProgress ProgressCallback
	// Backups defaults to a backup.Manager writing siblings of RootDir.
	Backups Snapshotter
	Now     func() time.Time
}

// Result holds every intermediate product of a run.
type Result struct {
	RunID         string
	SchemaVersion string
	StartedAt     time.Time
	DryRun        bool

	Initial    []types.ValidationResult
	Classified []types.ClassifiedError
	Groups     []types.FixGroup
	Efficiency types.EfficiencyReport

	// Set only in fix mode.
	Fixes      []types.FixResult
	BackupPath string
	Final      []types.ValidationResult
}

// LoadSchema loads the schema at path, or the embedded default when path is empty.
func LoadSchema(path string) (*schemas.Store, error) {
	if path == "" {
		return schemas.LoadBytes(embedded.ComponentsFile, embedded.Components)
	}
	return schemas.Load(path)
}

type runner struct {
	opts    *RunOptions
	runID   string
	logger  *zap.Logger
	printer *observability.Printer
	tracker *steps.Tracker
}

// emitProgress calls the progress callback if configured
func (r *runner) emitProgress(step, message string, content any) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    r.runID,
			Content:  content,
		})
	}
}

// begin checks a step's dependencies and prints its progress line.
func (r *runner) begin(step, message string) error {
	n, total, err := r.tracker.Begin(step)
	if err != nil {
		return err
	}
	if r.printer != nil {
		r.printer.Step(n, total, message)
	}
	r.logger.Debug("step started", zap.String("step", step))
	return nil
}

func (r *runner) complete(step, message string, content any) {
	r.tracker.Complete(step)
	r.emitProgress(step, message, content)
}

// Run executes one validation pass and, in fix mode, the repair pass that follows it.
// Only schema load failures and backup failures abort the run; every per-file
// problem is carried in the result.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Backups == nil {
		opts.Backups = backup.NewManager(opts.Logger, opts.Now)
	}

	r := &runner{
		opts:    &opts,
		runID:   uuid.New().String(),
		tracker: steps.NewTracker(opts.Fix),
	}
	r.logger = opts.Logger.With(zap.String("run_id", r.runID))
	if opts.Progress != nil {
		r.printer = observability.NewPrinter(opts.Progress)
	}

	result := &Result{RunID: r.runID, StartedAt: opts.Now(), DryRun: opts.DryRun}

	// Step 1: Load schema
	if err := r.begin(steps.LoadSchema, "Loading schema..."); err != nil {
		return nil, err
	}
	store, err := LoadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	result.SchemaVersion = store.Version()
	r.complete(steps.LoadSchema, fmt.Sprintf("Loaded schema version %s", store.Version()), nil)

	// Step 2: Load components
	if err := r.begin(steps.LoadComponents, fmt.Sprintf("Loading components from %s...", opts.RootDir)); err != nil {
		return nil, err
	}
	loader := components.NewLoader(opts.Patterns)
	loaded, err := loadAll(loader, opts.RootDir)
	if err != nil {
		return nil, err
	}
	r.complete(steps.LoadComponents, fmt.Sprintf("Loaded %d component files", len(loaded)), nil)

	// Step 3: Validate
	if err := r.begin(steps.Validate, "Validating components..."); err != nil {
		return nil, err
	}
	validator := validation.New(store, opts.Semantic)
	result.Initial = validator.ValidateAll(loaded)
	r.logger.Info("validation complete",
		zap.Int("components", len(result.Initial)),
		zap.Int("invalid", countInvalid(result.Initial)),
	)
	r.complete(steps.Validate, fmt.Sprintf("Validated %d components", len(result.Initial)), nil)

	// Step 4: Classify
	if err := r.begin(steps.Classify, "Classifying violations..."); err != nil {
		return nil, err
	}
	result.Classified = classify.ClassifyAll(classify.New(r.logger), result.Initial, r.logger)
	r.complete(steps.Classify, fmt.Sprintf("Classified %d violations", len(result.Classified)), nil)

	// Step 5: Plan
	if err := r.begin(steps.PlanFixes, "Planning fix groups..."); err != nil {
		return nil, err
	}
	result.Groups = fixplan.Plan(result.Classified)
	result.Efficiency = fixplan.Summarize(result.Groups)
	r.complete(steps.PlanFixes, fmt.Sprintf("Planned %d fix groups", len(result.Groups)), result.Efficiency)

	if !opts.Fix {
		return result, nil
	}

	// Step 6: Backup
	if err := r.begin(steps.Backup, "Backing up component root..."); err != nil {
		return nil, err
	}
	backupPath, err := r.backupIfNeeded(result.Groups)
	if err != nil {
		return nil, err
	}
	result.BackupPath = backupPath
	r.complete(steps.Backup, backupMessage(backupPath, opts.DryRun), nil)

	// Step 7: Apply fixes, one group at a time in priority order
	if err := r.begin(steps.ApplyFixes, fmt.Sprintf("Applying %d fix groups...", len(result.Groups))); err != nil {
		return nil, err
	}
	fixer := repair.NewFixer(validator, r.logger, repair.Options{
		Workers:           opts.Workers,
		DefaultCategories: opts.DefaultCategories,
		Now:               opts.Now,
	})
	acc := repair.NewAccumulator()
	for _, group := range result.Groups {
		groupResults := fixer.Apply(ctx, group, opts.DryRun)
		acc.Record(groupResults...)
		r.logger.Info("fix group finished",
			zap.String("group", group.Name),
			zap.Int("components", len(groupResults)),
		)
	}
	result.Fixes = acc.Results()
	applied, failed, skipped := acc.Partition()
	r.complete(steps.ApplyFixes,
		fmt.Sprintf("Applied %d, failed %d, skipped %d", len(applied), len(failed), len(skipped)), nil)

	// Step 8: Re-validate
	if err := r.begin(steps.Revalidate, "Re-validating components..."); err != nil {
		return nil, err
	}
	reloaded, err := loadAll(loader, opts.RootDir)
	if err != nil {
		return nil, err
	}
	result.Final = validator.ValidateAll(reloaded)
	r.logger.Info("re-validation complete",
		zap.Int("invalid_before", countInvalid(result.Initial)),
		zap.Int("invalid_after", countInvalid(result.Final)),
	)
	r.complete(steps.Revalidate, fmt.Sprintf("%d components still invalid", countInvalid(result.Final)), nil)

	return result, nil
}

// backupIfNeeded snapshots the root only when a mutating group will write.
func (r *runner) backupIfNeeded(groups []types.FixGroup) (string, error) {
	if r.opts.DryRun {
		return "", nil
	}
	mutating := false
	for _, g := range groups {
		if g.FixType.Mutates() && g.ErrorCount > 0 {
			mutating = true
			break
		}
	}
	if !mutating {
		return "", nil
	}

	path, err := r.opts.Backups.Snapshot(r.opts.RootDir)
	if err != nil {
		r.logger.Error("backup failed; no fixes applied", zap.Error(err))
		return "", err
	}
	return path, nil
}

func backupMessage(path string, dryRun bool) string {
	switch {
	case dryRun:
		return "Skipped backup (dry run)"
	case path == "":
		return "Skipped backup (nothing to write)"
	default:
		return fmt.Sprintf("Backup created at %s", path)
	}
}

func loadAll(loader *components.Loader, root string) ([]components.LoadResult, error) {
	var all []components.LoadResult
	for _, kind := range types.AllKinds() {
		results, err := loader.LoadAll(root, kind)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func countInvalid(results []types.ValidationResult) int {
	n := 0
	for _, r := range results {
		if !r.Valid {
			n++
		}
	}
	return n
}

// Meta returns the report metadata for the run.
func (res *Result) Meta() report.Meta {
	return report.Meta{RunID: res.RunID, SchemaVersion: res.SchemaVersion, Timestamp: res.StartedAt}
}

// ValidationReport reports the final state of the components: the re-validation
// results after a fix run, otherwise the initial pass.
func (res *Result) ValidationReport() *report.ValidationReport {
	results := res.Initial
	gaps := classify.CountGaps(res.Classified)
	if res.Final != nil {
		results = res.Final
		gaps = classify.CountGaps(classify.ClassifyAll(classify.New(nil), res.Final, nil))
	}
	return report.NewValidationReport(res.Meta(), results, gaps)
}

// FixReport reports the repair pass. It is nil for validation-only runs.
func (res *Result) FixReport() *report.FixReport {
	if res.Fixes == nil {
		return nil
	}
	return report.NewFixReport(res.Meta(), res.DryRun, res.BackupPath, res.Fixes, res.Groups, res.Efficiency)
}
