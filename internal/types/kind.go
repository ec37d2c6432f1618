// Package types provides type definitions for structured data used throughout the sentinel engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Kind identifies one of the closed set of component shapes the engine knows about.
type Kind int

const (
	// KindTool is a tool definition (parameters, execution, metadata).
	KindTool Kind = iota
	// KindPattern is a reusable implementation pattern.
	KindPattern
	// KindConstraint is an enforced rule.
	KindConstraint
	// KindGovernance is a governance / learning record.
	KindGovernance
)

// AllKinds returns every kind in report order.
func AllKinds() []Kind {
	return []Kind{KindTool, KindPattern, KindConstraint, KindGovernance}
}

// String returns the lowercase kind name used in config keys and logs.
func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindPattern:
		return "pattern"
	case KindConstraint:
		return "constraint"
	case KindGovernance:
		return "governance"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// SubSchema returns the name of the schema definition a kind is validated against.
func (k Kind) SubSchema() string {
	switch k {
	case KindTool:
		return "ToolDefinition"
	case KindPattern:
		return "Pattern"
	case KindConstraint:
		return "Constraint"
	case KindGovernance:
		return "LearningRecord"
	}
	panic(fmt.Sprintf("types: unhandled kind %d", int(k)))
}

// Section returns the key the kind is reported under in the validation report.
func (k Kind) Section() string {
	switch k {
	case KindTool:
		return "tools"
	case KindPattern:
		return "patterns"
	case KindConstraint:
		return "constraints"
	case KindGovernance:
		return "governance"
	}
	panic(fmt.Sprintf("types: unhandled kind %d", int(k)))
}

// DefaultPattern returns the doublestar glob, relative to the component root,
// that enumerates files of this kind.
func (k Kind) DefaultPattern() string {
	return k.Section() + "/**/*.json"
}

// MarshalText encodes the kind as its string name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its string name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown component kind %q", s)
}
