package helpers

import (
	"os"
	"path/filepath"
	"strings"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"go.starlark.net/syntax"
)

// Function describes a helper function found by static parsing.
type Function struct {
	Name      string   `json:"name"`
	Args      []string `json:"args"` // with defaults, e.g. "sep=\", \""
	Docstring string   `json:"docstring"`
	Line      int      `json:"line"`
}

// Namespace describes a parsed helper file.
type Namespace struct {
	Name      string      `json:"name"`
	FilePath  string      `json:"file_path"`
	Functions []*Function `json:"functions"`
}

// ParseFile statically parses a .star file and extracts function metadata.
// The file is not executed.
func ParseFile(filename string, content []byte) (*Namespace, error) {
	f, err := starctx.FileOptions.Parse(filename, content, 0)
	if err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}

	ns := &Namespace{
		Name:     strings.TrimSuffix(filepath.Base(filename), ".star"),
		FilePath: filename,
	}

	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}
		ns.Functions = append(ns.Functions, &Function{
			Name:      def.Name.Name,
			Line:      int(def.Name.NamePos.Line),
			Args:      extractArgs(def.Params),
			Docstring: extractDocstring(def.Body),
		})
	}

	return ns, nil
}

// ParseDir parses every .star file in dir. A missing directory yields nil.
func ParseDir(dir string) ([]*Namespace, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.star"))
	if err != nil {
		return nil, err
	}

	var out []*Namespace
	for _, file := range files {
		content, err := os.ReadFile(file) //nolint:gosec // G304: globbed from the helpers directory
		if err != nil {
			return nil, &ParseError{File: file, Message: err.Error()}
		}
		ns, err := ParseFile(file, content)
		if err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, nil
}

// extractArgs converts syntax parameters to string representations.
func extractArgs(params []syntax.Expr) []string {
	var args []string
	for _, param := range params {
		switch p := param.(type) {
		case *syntax.Ident:
			args = append(args, p.Name)
		case *syntax.BinaryExpr:
			// def f(x=1)
			if ident, ok := p.X.(*syntax.Ident); ok && p.Op == syntax.EQ {
				args = append(args, ident.Name+"="+exprToString(p.Y))
			}
		case *syntax.UnaryExpr:
			// *args, **kwargs, or a bare * separator
			prefix := "*"
			if p.Op == syntax.STARSTAR {
				prefix = "**"
			}
			if ident, ok := p.X.(*syntax.Ident); ok {
				args = append(args, prefix+ident.Name)
			} else {
				args = append(args, prefix)
			}
		}
	}
	return args
}

// extractDocstring returns the leading string literal of a function body.
func extractDocstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}
	exprStmt, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}
	lit, ok := exprStmt.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}
	s, _ := lit.Value.(string)
	return strings.TrimSpace(s)
}

func exprToString(expr syntax.Expr) string {
	switch e := expr.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.ListExpr:
		return "[]"
	case *syntax.DictExpr:
		return "{}"
	case *syntax.TupleExpr:
		return "()"
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			return "-" + exprToString(e.X)
		}
		return exprToString(e.X)
	default:
		return "..."
	}
}

// Signature returns a human-readable signature for the function.
func (f *Function) Signature() string {
	return f.Name + "(" + strings.Join(f.Args, ", ") + ")"
}

// ParseError represents an error during static parsing.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	return "parse " + filepath.Base(e.File) + ": " + e.Message
}
