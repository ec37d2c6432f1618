package repair

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonpointer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/components"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/validation"
)

// Skip and dry-run reasons recorded on results.
const (
	ReasonManualReview = "manual review required"
	ReasonNoChange     = "no change needed"
	ReasonDryRun       = "dry run: not written"
	ReasonCancelled    = "cancelled before processing"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

// Options configures a Fixer.
type Options struct {
	Workers           int
	DefaultCategories map[types.Kind]string
	Now               func() time.Time
}

// Fixer applies one fix group at a time to the documents it names.
type Fixer struct {
	validator *validation.Validator
	logger    *zap.Logger
	opts      Options
}

// NewFixer creates a Fixer. The validator is used to re-check each document after mutation.
func NewFixer(v *validation.Validator, logger *zap.Logger, opts Options) *Fixer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	defaults := DefaultCategories()
	for kind, category := range opts.DefaultCategories {
		defaults[kind] = category
	}
	opts.DefaultCategories = defaults
	return &Fixer{validator: v, logger: logger, opts: opts}
}

// Apply runs a group's transformation over every document in the group and
// returns one result per document, in the group's component order. Per-document
// failures are recorded, never returned. Groups whose fix type does not mutate
// are reported as skipped without touching the filesystem.
func (f *Fixer) Apply(ctx context.Context, group types.FixGroup, dryRun bool) []types.FixResult {
	refs := group.Components()
	results := make([]types.FixResult, len(refs))

	if !group.FixType.Mutates() {
		for i, ref := range refs {
			results[i] = newResult(group, ref, types.FixSkipped, ReasonManualReview)
		}
		return results
	}

	byPath := make(map[string][]types.ClassifiedError, len(refs))
	for _, e := range group.Errors {
		byPath[e.Violation.Component.Path] = append(byPath[e.Violation.Component.Path], e)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = newResult(group, ref, types.FixSkipped, ReasonCancelled)
				return nil
			}
			results[i] = f.fixDocument(group, ref, byPath[ref.Path], dryRun)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fixer) fixDocument(group types.FixGroup, ref types.ComponentRef, errs []types.ClassifiedError, dryRun bool) types.FixResult {
	log := f.logger.With(zap.String("group", group.Name), zap.String("path", ref.Path))

	fail := func(err error) types.FixResult {
		log.Warn("fix failed", zap.Error(err))
		return newResult(group, ref, types.FixFailed, err.Error())
	}

	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return fail(&FixError{Path: ref.Path, Message: "failed to read component", Cause: err})
	}
	comp, err := components.Parse(ref.Kind, ref.Path, data)
	if err != nil {
		return fail(&FixError{Path: ref.Path, Message: "failed to parse component", Cause: err})
	}

	changes, bestEffort, err := f.mutate(group.FixType, comp, errs)
	if err != nil {
		return fail(&FixError{Path: ref.Path, Message: "failed to apply fix", Cause: err})
	}
	if len(changes) == 0 {
		log.Debug("document already fixed")
		result := newResult(group, ref, types.FixSkipped, ReasonNoChange)
		result.RevisionBefore = comp.Revision
		return result
	}

	if unresolved := f.unresolved(comp, errs); unresolved != "" {
		return fail(&FixError{Path: ref.Path, Message: "fix did not resolve " + unresolved})
	}

	content, err := Encode(comp.Fields)
	if err != nil {
		return fail(&FixError{Path: ref.Path, Message: "failed to encode component", Cause: err})
	}

	result := newResult(group, ref, types.FixApplied, "")
	result.Changes = changes
	result.BestEffort = bestEffort
	result.RevisionBefore = comp.Revision
	result.RevisionAfter = components.Revision(content)

	if dryRun {
		result.Reason = ReasonDryRun
		return result
	}

	if err := writeAtomically(ref.Path, content); err != nil {
		return fail(&FixError{Path: ref.Path, Message: "failed to write component", Cause: err})
	}
	log.Info("fix applied", zap.Strings("changes", changes), zap.Bool("best_effort", bestEffort))
	return result
}

// unresolved returns the first targeted pointer that still has a structural violation.
func (f *Fixer) unresolved(comp *types.Component, errs []types.ClassifiedError) string {
	remaining := f.validator.Structural(comp)
	for _, e := range errs {
		for _, v := range remaining {
			if v.Pointer == e.Violation.Pointer {
				return fmt.Sprintf("%s: %s", v.Pointer, v.Message)
			}
		}
	}
	return ""
}

// mutate applies the transformation in memory and describes each change made.
func (f *Fixer) mutate(fixType types.FixType, comp *types.Component, errs []types.ClassifiedError) ([]string, bool, error) {
	switch fixType {
	case types.FixAddStandardStructure:
		return f.addStructure(comp, errs), false, nil
	case types.FixConvertToSnakeCase:
		changes, err := renameIdentifiers(comp, errs)
		return changes, false, err
	case types.FixCategoryEnum:
		return f.remapCategories(comp, errs)
	case types.FixTypeMismatch, types.FixManualReview:
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("unknown fix type %q", fixType)
}

func (f *Fixer) addStructure(comp *types.Component, errs []types.ClassifiedError) []string {
	var changes []string
	now := f.opts.Now()
	for _, e := range errs {
		field := e.Params.Field
		if _, present := comp.Fields[field]; present {
			continue
		}
		template, ok := StandardStructure(field, now)
		if !ok {
			continue
		}
		comp.Fields[field] = template
		changes = append(changes, "added "+field)
	}
	return changes
}

func renameIdentifiers(comp *types.Component, errs []types.ClassifiedError) ([]string, error) {
	var changes []string
	for _, e := range errs {
		current, ptr, ok, err := stringAt(comp, e.Violation.Pointer)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		renamed := ToSnakeCase(current)
		if renamed == current {
			continue
		}
		if _, err := ptr.Set(comp.Fields, renamed); err != nil {
			return nil, err
		}
		if e.Violation.Pointer == "/id" {
			comp.ID = renamed
		}
		changes = append(changes, fmt.Sprintf("renamed %s '%s' -> '%s'", e.Violation.Pointer, current, renamed))
	}
	return changes, nil
}

func (f *Fixer) remapCategories(comp *types.Component, errs []types.ClassifiedError) ([]string, bool, error) {
	var changes []string
	bestEffort := false
	fallback := f.opts.DefaultCategories[comp.Kind]

	for _, e := range errs {
		current, ptr, ok, err := stringAt(comp, e.Violation.Pointer)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		mapped, guessed := RemapCategory(current, e.Params.Options, fallback)
		if mapped == current {
			continue
		}
		if _, err := ptr.Set(comp.Fields, mapped); err != nil {
			return nil, false, err
		}
		bestEffort = bestEffort || guessed
		change := fmt.Sprintf("remapped %s '%s' -> '%s'", e.Violation.Pointer, current, mapped)
		if guessed {
			change += " (default)"
		}
		changes = append(changes, change)
	}
	return changes, bestEffort, nil
}

// stringAt resolves a pointer to a string value. ok is false when the pointer
// is empty, absent, or not a string at fix time.
func stringAt(comp *types.Component, pointer string) (string, gojsonpointer.JsonPointer, bool, error) {
	if pointer == "" {
		return "", gojsonpointer.JsonPointer{}, false, nil
	}
	ptr, err := gojsonpointer.NewJsonPointer(pointer)
	if err != nil {
		return "", ptr, false, err
	}
	value, _, err := ptr.Get(comp.Fields)
	if err != nil {
		return "", ptr, false, nil
	}
	s, ok := value.(string)
	return s, ptr, ok, nil
}

func newResult(group types.FixGroup, ref types.ComponentRef, status types.FixStatus, reason string) types.FixResult {
	return types.FixResult{
		Group:     group.Name,
		FixType:   group.FixType,
		Component: ref,
		Status:    status,
		Reason:    reason,
	}
}
