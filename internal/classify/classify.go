// Package classify reduces raw violations to a closed taxonomy of error categories.
// Matching looks only at the violation's message and pointer so structural and
// semantic violations are interchangeable inputs.
package classify

import (
	"sort"

	"go.uber.org/zap"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// maxGapSamples caps how many distinct unclassified messages are logged per batch.
const maxGapSamples = 5

// Classifier maps a violation to exactly one category. Implementations must be
// total and deterministic.
type Classifier interface {
	Classify(v types.Violation) types.ClassifiedError
}

// RuleClassifier classifies by evaluating an ordered rule table.
type RuleClassifier struct {
	rules  []Rule
	logger *zap.Logger
}

// New creates a classifier with the default rule table.
func New(logger *zap.Logger) *RuleClassifier {
	return NewWithRules(DefaultRules(), logger)
}

// NewWithRules creates a classifier with a custom rule table.
func NewWithRules(rules []Rule, logger *zap.Logger) *RuleClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleClassifier{rules: rules, logger: logger}
}

// Classify returns the first matching rule's category. Violations that match
// no rule become SemanticInconsistency("other").
func (c *RuleClassifier) Classify(v types.Violation) types.ClassifiedError {
	for _, rule := range c.rules {
		match := rule.Pattern.FindStringSubmatch(v.Message)
		if match == nil {
			continue
		}
		return types.ClassifiedError{
			Violation: v,
			Category:  rule.Category,
			Params:    rule.Extract(match, v),
		}
	}

	c.logger.Debug("classification gap",
		zap.String("component", v.Component.ID),
		zap.String("pointer", v.Pointer),
		zap.String("message", v.Message),
	)
	return types.ClassifiedError{
		Violation: v,
		Category:  types.CategorySemanticInconsistency,
		Params: types.ErrorParams{
			Field:  fieldFromPointer(v.Pointer),
			Detail: types.DetailOther,
		},
	}
}

// ClassifyAll classifies every violation of every result, preserving order.
// Distinct unclassified messages are logged once as a warning.
func ClassifyAll(c Classifier, results []types.ValidationResult, logger *zap.Logger) []types.ClassifiedError {
	if logger == nil {
		logger = zap.NewNop()
	}

	var out []types.ClassifiedError
	gaps := make(map[string]int)
	for _, r := range results {
		for _, v := range r.Violations {
			ce := c.Classify(v)
			if ce.IsOther() {
				gaps[v.Message]++
			}
			out = append(out, ce)
		}
	}

	if len(gaps) > 0 {
		samples := make([]string, 0, len(gaps))
		total := 0
		for msg, n := range gaps {
			samples = append(samples, msg)
			total += n
		}
		sort.Strings(samples)
		if len(samples) > maxGapSamples {
			samples = samples[:maxGapSamples]
		}
		logger.Warn("violations matched no classification rule",
			zap.Int("count", total),
			zap.Int("distinct", len(gaps)),
			zap.Strings("samples", samples),
		)
	}
	return out
}

// CountGaps returns how many classified errors fell through to the catch-all.
func CountGaps(errs []types.ClassifiedError) int {
	n := 0
	for _, e := range errs {
		if e.IsOther() {
			n++
		}
	}
	return n
}
