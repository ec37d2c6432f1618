// Package fixplan groups classified errors into ordered, mutually exclusive fix groups.
package fixplan

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// Unit costs, in minutes per affected document.
const (
	costAddStructure = 2.0
	costSnakeCase    = 1.0
	costCategoryEnum = 0.5
	costTypeMismatch = 1.5
	costManualReview = 10.0
)

// StandardStructures are the top-level fields add-standard-structure can synthesize.
var StandardStructures = []string{"parameters", "execution", "metadata"}

// groupSpec describes one planned group before its errors are known.
type groupSpec struct {
	name       string
	fixType    types.FixType
	efficiency types.EfficiencyTier
	unitCost   float64
}

var (
	specAddStructure = groupSpec{string(types.FixAddStandardStructure), types.FixAddStandardStructure, types.TierHigh, costAddStructure}
	specSnakeCase    = groupSpec{string(types.FixConvertToSnakeCase), types.FixConvertToSnakeCase, types.TierMedium, costSnakeCase}
	specCategoryEnum = groupSpec{string(types.FixCategoryEnum), types.FixCategoryEnum, types.TierHigh, costCategoryEnum}
	specManualReview = groupSpec{string(types.FixManualReview), types.FixManualReview, types.TierLow, costManualReview}
)

func typeMismatchSpec(expected string) groupSpec {
	return groupSpec{
		name:       fmt.Sprintf("%s:%s", types.FixTypeMismatch, expected),
		fixType:    types.FixTypeMismatch,
		efficiency: types.TierMedium,
		unitCost:   costTypeMismatch,
	}
}

// Plan groups classified errors in priority order. Every error except load
// failures lands in exactly one group; errors no earlier rule claims fall to
// manual review. Empty groups are omitted.
func Plan(errs []types.ClassifiedError) []types.FixGroup {
	var (
		structure, snake, category, manual []types.ClassifiedError
		mismatches                         = make(map[string][]types.ClassifiedError)
	)

	for _, e := range errs {
		switch {
		case e.Category == types.CategoryLoadFailure:
			continue
		case isStandardStructure(e):
			structure = append(structure, e)
		case e.Category == types.CategoryPatternViolation && e.Params.PatternKind == types.PatternIdentifierCasing:
			snake = append(snake, e)
		case e.Category == types.CategoryEnumViolation && strings.Contains(e.Params.Field, "category"):
			category = append(category, e)
		case e.Category == types.CategoryTypeMismatch:
			mismatches[e.Params.ExpectedType] = append(mismatches[e.Params.ExpectedType], e)
		default:
			manual = append(manual, e)
		}
	}

	var groups []types.FixGroup
	add := func(spec groupSpec, members []types.ClassifiedError) {
		if len(members) == 0 {
			return
		}
		groups = append(groups, newGroup(spec, members))
	}

	add(specAddStructure, structure)
	add(specSnakeCase, snake)
	add(specCategoryEnum, category)

	expected := make([]string, 0, len(mismatches))
	for t := range mismatches {
		expected = append(expected, t)
	}
	sort.Strings(expected)
	for _, t := range expected {
		add(typeMismatchSpec(t), mismatches[t])
	}

	add(specManualReview, manual)
	return groups
}

// isStandardStructure reports whether e is a missing top-level canonical structure.
// A nested field that happens to share the name (e.g. /execution/metadata) does not count.
func isStandardStructure(e types.ClassifiedError) bool {
	if e.Category != types.CategoryMissingField {
		return false
	}
	for _, field := range StandardStructures {
		if e.Params.Field == field && (e.Violation.Pointer == "/"+field || e.Violation.Pointer == "") {
			return true
		}
	}
	return false
}

func newGroup(spec groupSpec, members []types.ClassifiedError) types.FixGroup {
	g := types.FixGroup{
		Name:            spec.name,
		FixType:         spec.fixType,
		Efficiency:      spec.efficiency,
		UnitCostMinutes: spec.unitCost,
		ErrorCount:      len(members),
		Errors:          members,
	}
	g.ComponentCount = len(g.Components())
	g.EstimatedMinutes = spec.unitCost * float64(g.ComponentCount)
	return g
}

// Summarize computes the efficiency report for a plan.
func Summarize(groups []types.FixGroup) types.EfficiencyReport {
	report := types.EfficiencyReport{GroupsByTier: make(map[types.EfficiencyTier]int)}
	components := make(map[string]bool)

	for _, g := range groups {
		report.TotalMinutes += g.EstimatedMinutes
		report.GroupsByTier[g.Efficiency]++
		if g.FixType.Mutates() {
			report.AutoFixableErrors += g.ErrorCount
		} else {
			report.ManualErrors += g.ErrorCount
		}
		for _, ref := range g.Components() {
			components[ref.Path] = true
		}
	}

	report.ComponentsNeedingFix = len(components)
	if report.TotalMinutes > 0 {
		perHour := float64(report.ComponentsNeedingFix) / (report.TotalMinutes / 60)
		report.ComponentsPerHour = math.Round(perHour*10) / 10
	}
	return report
}
