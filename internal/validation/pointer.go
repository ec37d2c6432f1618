package validation

import (
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	contextDelimiter = "\x1f"
	contextRoot      = "(root)"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer joins path tokens into an RFC 6901 pointer. No tokens yields "" (the whole document).
func Pointer(tokens ...string) string {
	var b strings.Builder
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(token))
	}
	return b.String()
}

// Child appends one token to an existing pointer.
func Child(pointer string, token string) string {
	return pointer + Pointer(token)
}

// Index appends an array index to an existing pointer.
func Index(pointer string, i int) string {
	return Child(pointer, strconv.Itoa(i))
}

// contextPointer converts a gojsonschema context ("(root).execution.commands.0")
// into a pointer. The context is split on a control character so property
// names containing dots survive.
func contextPointer(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}
	parts := strings.Split(ctx.String(contextDelimiter), contextDelimiter)
	if len(parts) > 0 && parts[0] == contextRoot {
		parts = parts[1:]
	}
	return Pointer(parts...)
}
