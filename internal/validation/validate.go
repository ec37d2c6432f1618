package validation

import (
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/components"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/schemas"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// Validator runs structural then semantic validation against a loaded schema.
type Validator struct {
	store *schemas.Store
	opts  SemanticOptions
}

// New creates a Validator for a schema store.
func New(store *schemas.Store, opts SemanticOptions) *Validator {
	return &Validator{store: store, opts: opts}
}

// Store returns the schema the validator checks against.
func (v *Validator) Store() *schemas.Store {
	return v.store
}

// Structural returns only the schema violations for a component.
func (v *Validator) Structural(c *types.Component) []types.Violation {
	sub, err := v.store.SubSchema(c.Kind)
	if err != nil {
		return []types.Violation{{
			Component: c.Ref(),
			Message:   err.Error(),
			Source:    types.SourceStructural,
		}}
	}
	return ValidateStructure(c, sub)
}

// Validate returns the combined structural and semantic result for one component.
func (v *Validator) Validate(c *types.Component) types.ValidationResult {
	violations := v.Structural(c)
	violations = append(violations, ValidateSemantics(c, v.opts)...)
	return types.ValidationResult{
		Component:  c.Ref(),
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}

// ValidateAll validates a batch of load results in order. Files that failed to
// load produce an invalid result holding a single load violation.
func (v *Validator) ValidateAll(results []components.LoadResult) []types.ValidationResult {
	out := make([]types.ValidationResult, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			out = append(out, LoadFailureResult(r))
			continue
		}
		out = append(out, v.Validate(r.Component))
	}
	return out
}

// LoadFailureResult converts a failed load into an invalid validation result.
func LoadFailureResult(r components.LoadResult) types.ValidationResult {
	ref := r.Ref()
	return types.ValidationResult{
		Component: ref,
		Valid:     false,
		Violations: []types.Violation{{
			Component: ref,
			Message:   r.Err.Error(),
			Source:    types.SourceLoad,
		}},
		LoadFailed: true,
	}
}
