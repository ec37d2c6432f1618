package repair

import "strings"

// emptyIdentifier replaces identifiers that normalise to nothing.
const emptyIdentifier = "component"

// ToSnakeCase converts an identifier to lower snake case. It is pure and
// idempotent: ToSnakeCase(ToSnakeCase(s)) == ToSnakeCase(s).
//
// A separator is inserted before an upper-case letter that follows a lower-case
// letter or digit, or that ends an acronym ("HTTPServer" -> "http_server").
// Characters outside [A-Za-z0-9] become separators. Runs of separators collapse,
// leading characters up to the first letter are dropped, and trailing
// separators are trimmed.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		switch {
		case isUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && isLower(runes[i+1])
				if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		case isLower(r), isDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := collapseSeparators(b.String())
	out = strings.TrimLeftFunc(out, func(r rune) bool { return !isLower(r) })
	out = strings.TrimRight(out, "_")
	if out == "" {
		return emptyIdentifier
	}
	return out
}

func collapseSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSep := false
	for _, r := range s {
		if r == '_' {
			if prevSep {
				continue
			}
			prevSep = true
		} else {
			prevSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
