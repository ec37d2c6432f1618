// Package steps provides step definitions and dependency validation for the
// validation and repair pipeline.
package steps

import (
	"fmt"
)

// Step names
const (
	LoadSchema     = "load_schema"
	LoadComponents = "load_components"
	Validate       = "validate"
	Classify       = "classify"
	PlanFixes      = "plan_fixes"
	Backup         = "backup"
	ApplyFixes     = "apply_fixes"
	Revalidate     = "revalidate"
)

// Step categories
const (
	CategoryInput      = "input"
	CategoryValidation = "validation"
	CategoryPlanning   = "planning"
	CategoryRepair     = "repair"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// Mutating steps only run in fix mode.
	Mutating bool
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	LoadSchema: {
		Name:         LoadSchema,
		Category:     CategoryInput,
		Dependencies: []string{},
	},
	LoadComponents: {
		Name:         LoadComponents,
		Category:     CategoryInput,
		Dependencies: []string{},
	},
	Validate: {
		Name:         Validate,
		Category:     CategoryValidation,
		Dependencies: []string{LoadSchema, LoadComponents},
	},
	Classify: {
		Name:         Classify,
		Category:     CategoryPlanning,
		Dependencies: []string{Validate},
	},
	PlanFixes: {
		Name:         PlanFixes,
		Category:     CategoryPlanning,
		Dependencies: []string{Classify},
	},
	Backup: {
		Name:         Backup,
		Category:     CategoryRepair,
		Dependencies: []string{PlanFixes},
		Mutating:     true,
	},
	ApplyFixes: {
		Name:         ApplyFixes,
		Category:     CategoryRepair,
		Dependencies: []string{PlanFixes, Backup},
		Mutating:     true,
	},
	Revalidate: {
		Name:         Revalidate,
		Category:     CategoryValidation,
		Dependencies: []string{ApplyFixes},
		Mutating:     true,
	},
}

// order is the execution order of every registered step.
var order = []string{LoadSchema, LoadComponents, Validate, Classify, PlanFixes, Backup, ApplyFixes, Revalidate}

// Sequence returns the steps a run executes, in order. Mutating steps are
// included only when fix is set.
func Sequence(fix bool) []StepDefinition {
	var seq []StepDefinition
	for _, name := range order {
		def := StepRegistry[name]
		if def.Mutating && !fix {
			continue
		}
		seq = append(seq, def)
	}
	return seq
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Tracker numbers the steps of one run and enforces their dependencies.
type Tracker struct {
	sequence  []StepDefinition
	position  map[string]int
	completed map[string]bool
}

// NewTracker creates a tracker for a run in the given mode.
func NewTracker(fix bool) *Tracker {
	seq := Sequence(fix)
	position := make(map[string]int, len(seq))
	for i, def := range seq {
		position[def.Name] = i + 1
	}
	return &Tracker{sequence: seq, position: position, completed: make(map[string]bool)}
}

// Begin checks a step's dependencies and returns its 1-based number and the
// total step count for progress output.
func (t *Tracker) Begin(stepName string) (n, total int, err error) {
	n, ok := t.position[stepName]
	if !ok {
		return 0, 0, fmt.Errorf("step %s is not part of this run", stepName)
	}
	if err := ValidateDependencies(t.completed, stepName); err != nil {
		return 0, 0, err
	}
	return n, len(t.sequence), nil
}

// Complete marks a step as done.
func (t *Tracker) Complete(stepName string) {
	t.completed[stepName] = true
}

// Completed reports whether a step has finished.
func (t *Tracker) Completed(stepName string) bool {
	return t.completed[stepName]
}
