package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"github.com/reshape/code-gen/pkg/ast"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// nodesName is the helper through which embedded code reaches the walked
// subtrees attached to its code node.
const nodesName = "__nodes"

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// rewriteExpr parses a code node's expression and rewrites its free names:
//
//	__nodes[i]  -> ("<walked subtree i>")
//	__runtime   -> the configured runtime name
//	foo         -> locals.foo (unless scoped) or a fail() call (scoped)
//
// Names bound inside the expression (lambda parameters, comprehension
// variables) and names of the Starlark universe are left untouched.
func rewriteExpr(code *ast.Code, opts Options) (string, error) {
	src := code.Content
	if strings.TrimSpace(src) == "" {
		return "", newExprError(code, src, "empty expression", nil)
	}

	// Parenthesize so leading whitespace and line breaks are legal.
	wrapped := "(" + src + "\n)"
	expr, err := starctx.FileOptions.ParseExpr("expr", wrapped, 0)
	if err != nil {
		return "", newExprError(code, src, "syntax error", err)
	}
	if _, err := resolve.ExprOptions(starctx.FileOptions, expr, isPredeclared, starlark.Universe.Has); err != nil {
		return "", newExprError(code, src, "resolve error", err)
	}

	offsets := newOffsetTable(wrapped)
	subtrees := make(map[int]string)
	var edits []edit
	var walkErr error

	syntax.Walk(expr, func(n syntax.Node) bool {
		if walkErr != nil {
			return false
		}
		switch n := n.(type) {
		case *syntax.IndexExpr:
			id, ok := n.X.(*syntax.Ident)
			if !ok || !isFree(id) || id.Name != nodesName {
				return true
			}
			i, err := nodeIndex(n.Y, len(code.Nodes))
			if err != nil {
				walkErr = newExprError(code, src, err.Error(), nil)
				return false
			}
			sub, ok := subtrees[i]
			if !ok {
				if sub, err = walkFragment(code.Nodes[i], opts); err != nil {
					walkErr = err
					return false
				}
				subtrees[i] = sub
			}
			// IndexExpr spans end at the bracket itself, not past it.
			start, _ := n.Span()
			end := offsets.of(n.Rbrack) + len("]")
			edits = append(edits, edit{offsets.of(start), end, `("` + sub + `")`})
			return false

		case *syntax.Ident:
			if !isFree(n) {
				return true
			}
			if text, ok := rewriteName(n.Name, opts); ok {
				start, end := n.Span()
				edits = append(edits, edit{offsets.of(start), offsets.of(end), text})
			} else if n.Name == nodesName {
				walkErr = newExprError(code, src, nodesName+" must be indexed with an integer literal", nil)
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return "", walkErr
	}

	out := applyEdits(wrapped, edits)
	out = out[1 : len(out)-2]
	if strings.Contains(out, "#") {
		out += "\n"
	}
	return out, nil
}

// rewriteName returns the replacement for a free name, if any.
func rewriteName(name string, opts Options) (string, bool) {
	switch name {
	case DefaultRuntimeName:
		return opts.RuntimeName, name != opts.RuntimeName
	case nodesName:
		return "", false
	case opts.RuntimeName, starctx.LocalsName:
		return "", false
	}
	if opts.ScopedLocals {
		// Unresolvable in scoped mode. Report it when the template runs.
		return fmt.Sprintf("fail(%s)", strconv.Quote("name '"+name+"' is not defined; use "+starctx.LocalsName+"."+name)), true
	}
	return starctx.LocalsName + "." + name, true
}

// isPredeclared treats every name outside the universe as free. Whether it
// is actually bound is decided by the rewrite.
func isPredeclared(name string) bool {
	return !starlark.Universe.Has(name)
}

func isFree(id *syntax.Ident) bool {
	b, ok := id.Binding.(*resolve.Binding)
	return ok && b.Scope == resolve.Predeclared
}

func nodeIndex(x syntax.Expr, n int) (int, error) {
	lit, ok := x.(*syntax.Literal)
	if !ok || lit.Token != syntax.INT {
		return 0, fmt.Errorf("%s must be indexed with an integer literal", nodesName)
	}
	i, ok := lit.Value.(int64)
	if !ok || i < 0 || i >= int64(n) {
		return 0, fmt.Errorf("%s index %s out of range (code node has %d)", nodesName, lit.Raw, n)
	}
	return int(i), nil
}

func applyEdits(src string, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	var sb strings.Builder
	last := 0
	for _, e := range edits {
		sb.WriteString(src[last:e.start])
		sb.WriteString(e.text)
		last = e.end
	}
	sb.WriteString(src[last:])
	return sb.String()
}

// offsetTable maps syntax positions (1-based line, 1-based rune column) to
// byte offsets.
type offsetTable struct {
	src   string
	lines []int
}

func newOffsetTable(src string) offsetTable {
	lines := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return offsetTable{src: src, lines: lines}
}

func (t offsetTable) of(pos syntax.Position) int {
	off := t.lines[pos.Line-1]
	for col := int32(1); col < pos.Col && off < len(t.src); col++ {
		_, size := utf8.DecodeRuneInString(t.src[off:])
		off += size
	}
	return off
}
