package classify

import (
	"regexp"
	"strings"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
)

// Extractor pulls category parameters out of a matched message.
// match holds the regexp submatches; v is the violation being classified.
type Extractor func(match []string, v types.Violation) types.ErrorParams

// Rule maps one message shape to a category. Rules are evaluated in order and the first match wins.
type Rule struct {
	Name     string
	Category types.Category
	Pattern  *regexp.Regexp
	Extract  Extractor
}

var (
	identifierPattern = regexp.MustCompile(`^\^\[a-z\]\[[a-z0-9_\-]*\][*+]\$$`)
	namingLanguage    = regexp.MustCompile(`(?i)\b(snake[_ ]case|naming convention|must be lower-?case)\b`)
	optionPattern     = regexp.MustCompile(`'([^']*)'|"([^"]*)"|([^,\s][^,]*)`)
)

// DefaultRules is the ordered rule table for the canonical validator wording
// plus gojsonschema's stock English descriptions.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "load-failure",
			Category: types.CategoryLoadFailure,
			Pattern:  regexp.MustCompile(`^Failed to load JSON file`),
			Extract:  func([]string, types.Violation) types.ErrorParams { return types.ErrorParams{} },
		},
		{
			Name:     "required-property",
			Category: types.CategoryMissingField,
			Pattern:  regexp.MustCompile(`^'([^']+)' is a required property$`),
			Extract:  extractMissingField,
		},
		{
			Name:     "is-required",
			Category: types.CategoryMissingField,
			Pattern:  regexp.MustCompile(`^(\S+) is required$`),
			Extract:  extractMissingField,
		},
		{
			Name:     "missing-field",
			Category: types.CategoryMissingField,
			Pattern:  regexp.MustCompile(`(?i)\bmissing (?:required )?(?:field|property)[:\s]+'?([\w.\-]+)'?`),
			Extract:  extractMissingField,
		},
		{
			Name:     "not-of-type",
			Category: types.CategoryTypeMismatch,
			Pattern:  regexp.MustCompile(`^(.*) is not of type '([^']+)'$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return types.ErrorParams{Field: fieldFromPointer(v.Pointer), Value: unquote(m[1]), ExpectedType: m[2]}
			},
		},
		{
			Name:     "invalid-type",
			Category: types.CategoryTypeMismatch,
			Pattern:  regexp.MustCompile(`^Invalid type\. Expected: (.+), given: (.+)$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return types.ErrorParams{Field: fieldFromPointer(v.Pointer), ExpectedType: m[1], Value: m[2]}
			},
		},
		{
			Name:     "not-one-of",
			Category: types.CategoryEnumViolation,
			Pattern:  regexp.MustCompile(`^(.*) is not one of \[(.*)\]$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return enumParams(v, unquote(m[1]), m[2])
			},
		},
		{
			Name:     "one-of-the-following",
			Category: types.CategoryEnumViolation,
			Pattern:  regexp.MustCompile(`must be one of the following: (.*)$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return enumParams(v, "", m[1])
			},
		},
		{
			Name:     "does-not-match",
			Category: types.CategoryPatternViolation,
			Pattern:  regexp.MustCompile(`^(.*) does not match '(.*)'$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return patternParams(v, unquote(m[1]), m[2])
			},
		},
		{
			Name:     "does-not-match-pattern",
			Category: types.CategoryPatternViolation,
			Pattern:  regexp.MustCompile(`^Does not match pattern '(.*)'$`),
			Extract: func(m []string, v types.Violation) types.ErrorParams {
				return patternParams(v, "", m[1])
			},
		},
		{
			Name:     "naming-convention",
			Category: types.CategoryPatternViolation,
			Pattern:  namingLanguage,
			Extract: func(_ []string, v types.Violation) types.ErrorParams {
				return types.ErrorParams{Field: fieldFromPointer(v.Pointer), PatternKind: types.PatternIdentifierCasing}
			},
		},
	}
}

func extractMissingField(m []string, _ types.Violation) types.ErrorParams {
	return types.ErrorParams{Field: m[1]}
}

func enumParams(v types.Violation, value, list string) types.ErrorParams {
	options := parseOptions(list)
	return types.ErrorParams{
		Field:       fieldFromPointer(v.Pointer),
		Value:       value,
		Options:     options,
		OptionCount: len(options),
	}
}

func patternParams(v types.Violation, value, pattern string) types.ErrorParams {
	field := fieldFromPointer(v.Pointer)
	kind := types.PatternRegex
	if field == "id" || field == "name" || identifierPattern.MatchString(pattern) || namingLanguage.MatchString(v.Message) {
		kind = types.PatternIdentifierCasing
	}
	return types.ErrorParams{Field: field, Value: value, Pattern: pattern, PatternKind: kind}
}

// parseOptions splits an option list such as `'a', 'b'` or `"a", "b"` into bare values.
func parseOptions(list string) []string {
	var options []string
	for _, m := range optionPattern.FindAllStringSubmatch(list, -1) {
		switch {
		case m[1] != "" || strings.HasPrefix(m[0], "'"):
			options = append(options, m[1])
		case m[2] != "" || strings.HasPrefix(m[0], `"`):
			options = append(options, m[2])
		default:
			options = append(options, strings.TrimSpace(m[3]))
		}
	}
	return options
}

// unquote strips one layer of single or double quotes from a rendered value.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// fieldFromPointer returns the last non-index token of a JSON pointer.
func fieldFromPointer(pointer string) string {
	tokens := strings.Split(pointer, "/")
	for i := len(tokens) - 1; i > 0; i-- {
		token := tokens[i]
		if token == "" || isIndex(token) {
			continue
		}
		return pointerUnescaper.Replace(token)
	}
	return ""
}

func isIndex(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return token != ""
}
