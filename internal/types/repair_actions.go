package types

// FixType names one of the fixed set of mechanical transformations.
type FixType string

const (
	FixAddStandardStructure FixType = "add-standard-structure"
	FixConvertToSnakeCase   FixType = "convert-to-snake-case"
	FixCategoryEnum         FixType = "fix-category-enum"
	FixTypeMismatch         FixType = "fix-type-mismatch"
	FixManualReview         FixType = "manual-review"
)

// Mutates reports whether the fix type ever writes to a document.
func (f FixType) Mutates() bool {
	switch f {
	case FixAddStandardStructure, FixConvertToSnakeCase, FixCategoryEnum:
		return true
	case FixTypeMismatch, FixManualReview:
		return false
	}
	return false
}

// EfficiencyTier ranks how much repair work a group removes per minute spent.
type EfficiencyTier string

const (
	TierHigh   EfficiencyTier = "high"
	TierMedium EfficiencyTier = "medium"
	TierLow    EfficiencyTier = "low"
)

// FixGroup represents a batch of classified errors repaired by one transformation
type FixGroup struct {
	Name             string            `json:"name" yaml:"name"`
	FixType          FixType           `json:"fix_type" yaml:"fix_type"`
	Efficiency       EfficiencyTier    `json:"efficiency_tier" yaml:"efficiency_tier"`
	UnitCostMinutes  float64           `json:"unit_cost_minutes" yaml:"unit_cost_minutes"`
	EstimatedMinutes float64           `json:"estimated_minutes" yaml:"estimated_minutes"`
	ComponentCount   int               `json:"component_count" yaml:"component_count"`
	ErrorCount       int               `json:"error_count" yaml:"error_count"`
	Errors           []ClassifiedError `json:"-" yaml:"-"`
}

// Components returns the distinct components touched by the group, in first-seen order.
func (g *FixGroup) Components() []ComponentRef {
	seen := make(map[string]bool)
	refs := make([]ComponentRef, 0, len(g.Errors))
	for _, e := range g.Errors {
		ref := e.Violation.Component
		if seen[ref.Path] {
			continue
		}
		seen[ref.Path] = true
		refs = append(refs, ref)
	}
	return refs
}

// FixStatus is the outcome of applying a group to one component.
type FixStatus string

const (
	FixApplied FixStatus = "applied"
	FixFailed  FixStatus = "failed"
	FixSkipped FixStatus = "skipped"
)

// FixResult represents the outcome of one fix group on one component
type FixResult struct {
	Group      string       `json:"group" yaml:"group"`
	FixType    FixType      `json:"fix_type" yaml:"fix_type"`
	Component  ComponentRef `json:"component" yaml:"component"`
	Status     FixStatus    `json:"status" yaml:"status"`
	Reason     string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Changes    []string     `json:"changes,omitempty" yaml:"changes,omitempty"`
	BestEffort bool         `json:"best_effort,omitempty" yaml:"best_effort,omitempty"`

	// Content hashes of the document as read and as written (or as it would be on a dry run).
	RevisionBefore string `json:"revision_before,omitempty" yaml:"revision_before,omitempty"`
	RevisionAfter  string `json:"revision_after,omitempty" yaml:"revision_after,omitempty"`
}

// EfficiencyReport summarises the estimated repair effort across all planned groups.
type EfficiencyReport struct {
	ComponentsNeedingFix int                    `json:"components_needing_fix" yaml:"components_needing_fix"`
	TotalMinutes         float64                `json:"total_estimated_minutes" yaml:"total_estimated_minutes"`
	ComponentsPerHour    float64                `json:"components_per_hour" yaml:"components_per_hour"`
	AutoFixableErrors    int                    `json:"auto_fixable_errors" yaml:"auto_fixable_errors"`
	ManualErrors         int                    `json:"manual_errors" yaml:"manual_errors"`
	GroupsByTier         map[EfficiencyTier]int `json:"groups_by_tier" yaml:"groups_by_tier"`
}
