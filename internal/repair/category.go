package repair

import (
	"strings"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// legacyCategories maps retired category names to their current equivalents.
var legacyCategories = map[string]string{
	"security":     "validation",
	"style":        "quality",
	"formatting":   "quality",
	"perf":         "performance",
	"optimization": "performance",
	"tooling":      "utility",
	"util":         "utility",
	"utilities":    "utility",
	"codegen":      "generation",
	"generator":    "generation",
	"architecture": "architectural",
	"design":       "architectural",
	"behaviour":    "behavioral",
	"process":      "workflow",
	"test":         "testing",
	"docs":         "documentation",
	"rules":        "policy",
	"audit":        "compliance",
	"learnings":    "learning",
}

// DefaultCategories are the per-kind fallbacks for values nothing else maps.
func DefaultCategories() map[types.Kind]string {
	return map[types.Kind]string{
		types.KindTool:       "utility",
		types.KindPattern:    "workflow",
		types.KindConstraint: "validation",
		types.KindGovernance: "policy",
	}
}

// RemapCategory returns the category value should become. Resolution order:
// an allowed value as-is, its lower-cased form, the legacy table, then the
// fallback (or the first allowed value when the fallback is not allowed).
// bestEffort is true only when the result came from the fallback.
// An empty allowed list accepts any mapping.
func RemapCategory(value string, allowed []string, fallback string) (result string, bestEffort bool) {
	if contains(allowed, value) {
		return value, false
	}

	normalized := strings.ToLower(strings.TrimSpace(value))
	if contains(allowed, normalized) {
		return normalized, false
	}

	if mapped, ok := legacyCategories[normalized]; ok && (len(allowed) == 0 || contains(allowed, mapped)) {
		return mapped, false
	}

	if len(allowed) == 0 || contains(allowed, fallback) {
		return fallback, true
	}
	return allowed[0], true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
