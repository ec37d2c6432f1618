package validation

import (
	"fmt"
	"time"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// DefaultMinMultiCommands is the command floor for sequential and parallel tools.
const DefaultMinMultiCommands = 2

// EnforcementLevels are the accepted constraint enforcement levels, in display order.
var EnforcementLevels = []string{"error", "warning", "info"}

// timestampLayouts are tried in order when parsing metadata timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SemanticOptions tunes the business rules.
type SemanticOptions struct {
	// MinMultiCommands is the minimum number of commands a sequential or
	// parallel tool must declare. Values below 1 fall back to the default.
	MinMultiCommands int
}

func (o SemanticOptions) minMultiCommands() int {
	if o.MinMultiCommands < 1 {
		return DefaultMinMultiCommands
	}
	return o.MinMultiCommands
}

// RuleSet is the semantic rule implementation for one component kind.
// Rules only inspect substructures that are present with the expected shape;
// absence is reported by the structural validator.
type RuleSet interface {
	Check(c *types.Component) []types.Violation
}

// RulesFor returns the rule set for a kind. It panics on a kind outside the
// closed set so a new kind cannot silently skip semantic checks.
func RulesFor(kind types.Kind, opts SemanticOptions) RuleSet {
	switch kind {
	case types.KindTool:
		return toolRules{minCommands: opts.minMultiCommands()}
	case types.KindPattern:
		return patternRules{}
	case types.KindConstraint:
		return constraintRules{}
	case types.KindGovernance:
		return governanceRules{}
	default:
		panic(fmt.Sprintf("validation: no semantic rules for kind %d", int(kind)))
	}
}

// ValidateSemantics applies the kind's business rules to a component.
func ValidateSemantics(c *types.Component, opts SemanticOptions) []types.Violation {
	violations := RulesFor(c.Kind, opts).Check(c)
	sortViolations(violations)
	return violations
}

type toolRules struct {
	minCommands int
}

func (r toolRules) Check(c *types.Component) []types.Violation {
	var out []types.Violation
	add := func(pointer, format string, args ...any) {
		out = append(out, semanticViolation(c, pointer, fmt.Sprintf(format, args...)))
	}

	if _, ok := c.Fields["type"]; ok {
		add(Pointer("type"), "legacy root property 'type' is not allowed on tool definitions")
	}

	if execution, ok := c.Fields["execution"].(map[string]any); ok {
		strategy, _ := execution["strategy"].(string)
		commands, hasCommands := execution["commands"].([]any)
		commandsPointer := Pointer("execution", "commands")

		switch strategy {
		case "sequential", "parallel":
			if hasCommands && len(commands) < r.minCommands {
				add(commandsPointer, "execution strategy '%s' requires at least %d commands, found %d",
					strategy, r.minCommands, len(commands))
			}
		case "conditional":
			for i, cmd := range commands {
				command, ok := cmd.(map[string]any)
				if !ok {
					continue
				}
				if cond, _ := command["condition"].(string); cond == "" {
					add(Index(commandsPointer, i), "command %d has no condition but execution strategy is 'conditional'", i)
				}
			}
		}
	}

	if metadata, ok := c.Fields["metadata"].(map[string]any); ok {
		created, createdOK := parseTimestampField(metadata, "created", &out, c)
		updated, updatedOK := parseTimestampField(metadata, "updated", &out, c)
		if createdOK && updatedOK && updated.Before(created) {
			add(Pointer("metadata", "updated"), "metadata.updated (%s) is earlier than metadata.created (%s)",
				metadata["updated"], metadata["created"])
		}
	}

	return out
}

// parseTimestampField parses metadata[field] when it is a string. A string that
// does not parse is recorded as a violation; a missing or non-string value is left
// to the structural validator.
func parseTimestampField(metadata map[string]any, field string, out *[]types.Violation, c *types.Component) (time.Time, bool) {
	raw, ok := metadata[field].(string)
	if !ok {
		return time.Time{}, false
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		*out = append(*out, semanticViolation(c, Pointer("metadata", field),
			fmt.Sprintf("metadata.%s '%s' is not a valid ISO-8601 timestamp", field, raw)))
		return time.Time{}, false
	}
	return ts, true
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

type patternRules struct{}

func (patternRules) Check(c *types.Component) []types.Violation {
	implementation, ok := c.Fields["implementation"].(map[string]any)
	if !ok {
		return nil
	}

	var out []types.Violation
	for _, field := range []string{"steps", "examples"} {
		list, ok := implementation[field].([]any)
		if ok && len(list) == 0 {
			out = append(out, semanticViolation(c, Pointer("implementation", field),
				fmt.Sprintf("implementation.%s must contain at least one %s", field, singular(field))))
		}
	}
	return out
}

func singular(field string) string {
	if field == "steps" {
		return "step"
	}
	return "example"
}

type constraintRules struct{}

func (constraintRules) Check(c *types.Component) []types.Violation {
	enforcement, ok := c.Fields["enforcement"].(map[string]any)
	if !ok {
		return nil
	}
	level, ok := enforcement["level"].(string)
	if !ok {
		return nil
	}
	for _, allowed := range EnforcementLevels {
		if level == allowed {
			return nil
		}
	}

	options := make([]any, len(EnforcementLevels))
	for i, l := range EnforcementLevels {
		options[i] = l
	}
	return []types.Violation{semanticViolation(c, Pointer("enforcement", "level"),
		fmt.Sprintf("%s is not one of [%s]", formatValue(level), FormatOptions(options)))}
}

// governanceRules has no checks beyond the schema.
type governanceRules struct{}

func (governanceRules) Check(*types.Component) []types.Violation {
	return nil
}

func semanticViolation(c *types.Component, pointer, message string) types.Violation {
	return types.Violation{
		Component: c.Ref(),
		Pointer:   pointer,
		Message:   message,
		Source:    types.SourceSemantic,
	}
}
