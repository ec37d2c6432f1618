package types

// ViolationSource names the validator that produced a violation.
type ViolationSource string

const (
	// SourceStructural marks schema-conformance violations.
	SourceStructural ViolationSource = "structural"
	// SourceSemantic marks business-rule violations.
	SourceSemantic ViolationSource = "semantic"
	// SourceLoad marks files that could not be parsed at all.
	SourceLoad ViolationSource = "load"
)

// Violation represents a single structural or semantic mismatch
type Violation struct {
	Component ComponentRef    `json:"component" yaml:"component"`
	Pointer   string          `json:"pointer" yaml:"pointer"` // RFC 6901 JSON pointer, "" for the document root
	Message   string          `json:"message" yaml:"message"`
	Source    ViolationSource `json:"source" yaml:"source"`
	Raw       map[string]any  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Category is the closed taxonomy a violation is classified into.
type Category string

const (
	CategoryMissingField          Category = "MissingField"
	CategoryTypeMismatch          Category = "TypeMismatch"
	CategoryEnumViolation         Category = "EnumViolation"
	CategoryPatternViolation      Category = "PatternViolation"
	CategorySemanticInconsistency Category = "SemanticInconsistency"
	// CategoryLoadFailure is reserved for files that could not be parsed.
	// Load failures never participate in a fix group.
	CategoryLoadFailure Category = "LoadFailure"
)

// PatternKind distinguishes naming violations from other regex violations.
type PatternKind string

const (
	PatternIdentifierCasing PatternKind = "identifier-casing"
	PatternRegex            PatternKind = "regex"
)

// DetailOther is the detail recorded for violations no rule recognised.
const DetailOther = "other"

// ErrorParams holds the category-specific values extracted from a violation message.
type ErrorParams struct {
	Field        string      `json:"field,omitempty" yaml:"field,omitempty"`
	ExpectedType string      `json:"expected_type,omitempty" yaml:"expected_type,omitempty"`
	Value        string      `json:"value,omitempty" yaml:"value,omitempty"`
	Options      []string    `json:"options,omitempty" yaml:"options,omitempty"`
	OptionCount  int         `json:"option_count,omitempty" yaml:"option_count,omitempty"`
	Pattern      string      `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternKind  PatternKind `json:"pattern_kind,omitempty" yaml:"pattern_kind,omitempty"`
	Detail       string      `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ClassifiedError is a violation reduced to a fixed category plus extracted parameters
type ClassifiedError struct {
	Violation Violation   `json:"violation" yaml:"violation"`
	Category  Category    `json:"category" yaml:"category"`
	Params    ErrorParams `json:"params" yaml:"params"`
}

// IsOther reports whether the error landed in the catch-all bucket.
func (e ClassifiedError) IsOther() bool {
	return e.Category == CategorySemanticInconsistency && e.Params.Detail == DetailOther
}
