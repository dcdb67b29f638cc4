package codegen

import (
	"strings"

	"go.starlark.net/syntax"
)

// Escape returns s encoded as the body of a double-quoted Starlark string
// literal, without the surrounding quotes. Evaluating "\"" + Escape(s) + "\""
// yields s again. Invalid UTF-8 is replaced with U+FFFD first.
func Escape(s string) string {
	q := syntax.Quote(strings.ToValidUTF8(s, "\uFFFD"), false)
	return q[1 : len(q)-1]
}
