package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/schemas"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// gojsonschema error type names that get a canonical message.
const (
	errTypeRequired    = "required"
	errTypeInvalidType = "invalid_type"
	errTypeEnum        = "enum"
	errTypePattern     = "pattern"
)

// ValidateStructure validates a component against its sub-schema and returns every
// violation found in a single pass, sorted by pointer then message.
// It never returns an error: a failure of the schema engine itself becomes a violation.
func ValidateStructure(c *types.Component, sub *schemas.SubSchema) []types.Violation {
	result, err := sub.Validate(c.Fields)
	if err != nil {
		return []types.Violation{{
			Component: c.Ref(),
			Message:   (&Error{Message: "schema evaluation failed", Cause: err}).Error(),
			Source:    types.SourceStructural,
		}}
	}
	if result.Valid() {
		return nil
	}

	seen := make(map[string]bool)
	violations := make([]types.Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		v := toViolation(c.Ref(), re)
		key := v.Pointer + "\x00" + v.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		violations = append(violations, v)
	}

	sortViolations(violations)
	return violations
}

func toViolation(ref types.ComponentRef, re gojsonschema.ResultError) types.Violation {
	pointer := contextPointer(re.Context())
	details := re.Details()

	var message string
	switch re.Type() {
	case errTypeRequired:
		property := fmt.Sprint(details["property"])
		pointer = Child(pointer, property)
		message = fmt.Sprintf("'%s' is a required property", property)
	case errTypeInvalidType:
		expected := strings.Trim(fmt.Sprint(details["expected"]), "[]")
		message = fmt.Sprintf("%s is not of type '%s'", formatValue(re.Value()), expected)
	case errTypeEnum:
		message = fmt.Sprintf("%s is not one of [%s]", formatValue(re.Value()), formatAllowed(details["allowed"]))
	case errTypePattern:
		message = fmt.Sprintf("%s does not match '%v'", formatValue(re.Value()), details["pattern"])
	default:
		message = re.Description()
	}

	raw := map[string]any{
		"type":        re.Type(),
		"description": re.Description(),
	}
	if len(details) > 0 {
		d := make(map[string]any, len(details))
		for k, v := range details {
			// "context" and "field" duplicate the pointer.
			if k == "context" || k == "field" {
				continue
			}
			d[k] = fmt.Sprint(v)
		}
		raw["details"] = d
	}

	return types.Violation{
		Component: ref,
		Pointer:   pointer,
		Message:   message,
		Source:    types.SourceStructural,
		Raw:       raw,
	}
}

// formatValue renders a document value the way the canonical messages quote it:
// strings in single quotes, numbers verbatim, everything else as compact JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + val + "'"
	case json.Number:
		return val.String()
	case nil:
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// formatAllowed converts gojsonschema's enum detail (JSON literals joined by ", ")
// into a single-quoted option list.
func formatAllowed(allowed any) string {
	s := fmt.Sprint(allowed)
	var options []any
	if err := json.Unmarshal([]byte("["+s+"]"), &options); err != nil {
		return s
	}
	return FormatOptions(options)
}

// FormatOptions renders enum options as they appear inside "not one of [...]".
func FormatOptions(options []any) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		if n, ok := o.(float64); ok {
			parts = append(parts, fmt.Sprint(n))
			continue
		}
		parts = append(parts, formatValue(o))
	}
	return strings.Join(parts, ", ")
}

func sortViolations(vs []types.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Pointer != vs[j].Pointer {
			return vs[i].Pointer < vs[j].Pointer
		}
		return vs[i].Message < vs[j].Message
	})
}
