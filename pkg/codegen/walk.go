package codegen

import (
	"sort"
	"strings"

	"github.com/reshape/code-gen/pkg/ast"
)

// selfClosing is the set of void elements.
var selfClosing = map[string]bool{
	"area":     true,
	"base":     true,
	"br":       true,
	"col":      true,
	"command":  true,
	"embed":    true,
	"hr":       true,
	"img":      true,
	"input":    true,
	"keygen":   true,
	"link":     true,
	"menuitem": true,
	"meta":     true,
	"param":    true,
	"source":   true,
	"track":    true,
	"wbr":      true,
}

// IsSelfClosing reports whether name is a void element.
func IsSelfClosing(name string) bool {
	return selfClosing[name]
}

// SelfClosingTags returns the void element names in sorted order.
func SelfClosingTags() []string {
	names := make([]string, 0, len(selfClosing))
	for name := range selfClosing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk serializes nodes into a fragment meant to sit between the quotes of
// a double-quoted Starlark string literal. Static markup is escaped; code
// nodes splice in `" + str(<expr>) + "` so the whole fragment still forms a
// single string expression. Invalid options yield a *ConfigError before any
// node is visited.
func Walk(nodes []ast.Node, opts Options) (string, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return walkFragment(nodes, opts)
}

// walkFragment is Walk for options that were already validated.
func walkFragment(nodes []ast.Node, opts Options) (string, error) {
	var sb strings.Builder
	if err := walk(&sb, nodes, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func walk(sb *strings.Builder, nodes []ast.Node, opts Options) error {
	for _, n := range nodes {
		if err := walkNode(sb, n, opts); err != nil {
			return err
		}
	}
	return nil
}

func walkNode(sb *strings.Builder, n ast.Node, opts Options) error {
	switch n := n.(type) {
	case *ast.Text:
		sb.WriteString(Escape(n.Content))

	case *ast.Tag:
		name := Escape(n.Name)
		sb.WriteByte('<')
		sb.WriteString(name)
		attrs, err := attributes(n.Attrs, opts)
		if err != nil {
			return err
		}
		sb.WriteString(attrs)
		if IsSelfClosing(n.Name) {
			sb.WriteString(opts.SelfClosing.closer(name))
			return nil
		}
		sb.WriteByte('>')
		if err := walk(sb, n.Content, opts); err != nil {
			return err
		}
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteByte('>')

	case *ast.Code:
		expr, err := rewriteExpr(n, opts)
		if err != nil {
			return err
		}
		sb.WriteString(`" + str(`)
		sb.WriteString(expr)
		sb.WriteString(`) + "`)

	case *ast.Comment:
		sb.WriteString(comment(n.Content))

	default:
		return newNodeError(n)
	}
	return nil
}

// comment renders an HTML comment as "<!-- content -->". Conditional
// comments such as "[if IE]> ... <![endif]" deliberately drop that padding
// and come out as "<!--[if IE]> ... <![endif]-->".
func comment(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "[if") || strings.HasSuffix(content, "[endif]") {
		return "<!--" + Escape(content) + "-->"
	}
	return "<!-- " + Escape(content) + " -->"
}

// Attributes serializes attrs in order. Each value is itself walked, so
// attribute values may contain tags and code. An attribute whose value
// walks to the empty string is emitted as a bare boolean attribute.
// The result starts with a space, or is empty when there are no attrs.
func Attributes(attrs []ast.Attr, opts Options) (string, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return attributes(attrs, opts)
}

func attributes(attrs []ast.Attr, opts Options) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, attr := range attrs {
		var value strings.Builder
		if err := walk(&value, attr.Value, opts); err != nil {
			return "", err
		}
		sb.WriteByte(' ')
		sb.WriteString(Escape(attr.Key))
		if value.Len() > 0 {
			sb.WriteString(`=\"`)
			sb.WriteString(value.String())
			sb.WriteString(`\"`)
		}
	}
	return sb.String(), nil
}
