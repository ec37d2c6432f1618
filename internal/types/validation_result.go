package types

// ValidationResult is the outcome of validating one component (or one file that failed to load).
type ValidationResult struct {
	Component  ComponentRef `json:"component" yaml:"component"`
	Valid      bool         `json:"valid" yaml:"valid"`
	Violations []Violation  `json:"violations,omitempty" yaml:"violations,omitempty"`
	// LoadFailed is set when the file could not be parsed; Violations then
	// holds a single load violation.
	LoadFailed bool `json:"load_failed,omitempty" yaml:"load_failed,omitempty"`
}
