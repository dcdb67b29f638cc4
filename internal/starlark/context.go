package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// FileOptions are the dialect options used for every generated program.
var FileOptions = &syntax.FileOptions{Set: true}

// Scope is the isolated environment a generated program is evaluated in.
// It binds exactly one name, the runtime object. Nothing else from the host
// is visible; templates only see the Starlark universe and their locals.
type Scope struct {
	// RuntimeName is the identifier embedded code uses to reach Runtime.
	RuntimeName string

	// Runtime is the caller-supplied runtime object. It is never mutated here.
	Runtime starlark.Value

	globals starlark.StringDict
}

// NewScope creates a scope exposing runtime under name. A nil runtime is
// bound to None so references to it fail when evaluated, not when compiled.
func NewScope(name string, runtime starlark.Value) *Scope {
	if runtime == nil {
		runtime = starlark.None
	}
	return &Scope{
		RuntimeName: name,
		Runtime:     runtime,
		globals:     starlark.StringDict{name: runtime},
	}
}

// Globals returns the predeclared names of the scope.
func (s *Scope) Globals() starlark.StringDict {
	return s.globals
}

// Has reports whether name is bound in the scope.
func (s *Scope) Has(name string) bool {
	return s.globals.Has(name)
}

// EvalExpr evaluates a single Starlark expression in the scope.
func (s *Scope) EvalExpr(thread *starlark.Thread, filename, expr string) (starlark.Value, error) {
	result, err := starlark.EvalOptions(FileOptions, thread, filename, expr, s.globals)
	if err != nil {
		return nil, &EvalError{
			File:  filename,
			Expr:  expr,
			Cause: err,
		}
	}
	return result, nil
}

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File  string
	Line  int
	Expr  string
	Cause error
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %v", e.File, e.Line, e.Expr, e.Cause)
	}
	return fmt.Sprintf("%s: error evaluating %q: %v", e.File, e.Expr, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}
