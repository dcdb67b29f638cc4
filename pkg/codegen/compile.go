// Package codegen turns a reshape node tree into a Starlark template
// function. The generated function takes a single argument, locals, and
// returns the rendered markup as a string.
//
// Generated source has the form
//
//	lambda locals: "<markup>" + str(<expr>) + "<markup>"
//
// and refers to the runtime object by its configured name and to nothing
// else outside the Starlark universe.
package codegen

import (
	"fmt"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"github.com/reshape/code-gen/pkg/ast"
	"go.starlark.net/starlark"
)

// templateFile is the filename reported in positions and backtraces.
const templateFile = "template"

// Result is the outcome of Compile. Source is always set.
type Result struct {
	// Source is the generated function source.
	Source string

	// Template is the compiled template, nil when ReturnString is set.
	Template *Template
}

// Compile generates the template function for nodes. With ReturnString the
// result only carries the source text, with the runtime name left free.
// Otherwise the source is evaluated in an isolated scope where only runtime
// is bound, under the configured runtime name.
func Compile(nodes []ast.Node, runtime starlark.Value, opts ...Option) (*Result, error) {
	o := NewOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	src, err := generate(nodes, o)
	if err != nil {
		return nil, err
	}
	if o.Logger != nil {
		o.Logger.Debug("generated template", "bytes", len(src), "scoped_locals", o.ScopedLocals, "runtime_name", o.RuntimeName)
	}

	if o.ReturnString {
		return &Result{Source: src}, nil
	}

	tmpl, err := load(src, runtime, o)
	if err != nil {
		return nil, err
	}
	return &Result{Source: src, Template: tmpl}, nil
}

// Source generates the function source for nodes without evaluating it.
func Source(nodes []ast.Node, opts ...Option) (string, error) {
	o := NewOptions(opts...)
	if err := o.Validate(); err != nil {
		return "", err
	}
	return generate(nodes, o)
}

// Load evaluates source previously produced with ReturnString, binding
// runtime under the configured runtime name.
func Load(source string, runtime starlark.Value, opts ...Option) (*Template, error) {
	o := NewOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return load(source, runtime, o)
}

func generate(nodes []ast.Node, o Options) (string, error) {
	body, err := walkFragment(nodes, o)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("lambda %s: \"%s\"", starctx.LocalsName, body), nil
}

func load(src string, runtime starlark.Value, o Options) (*Template, error) {
	scope := starctx.NewScope(o.RuntimeName, runtime)
	thread := starctx.NewThread("reshape:load")

	v, err := scope.EvalExpr(thread, templateFile, src)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*starlark.Function)
	if !ok {
		return nil, fmt.Errorf("template source evaluated to %s, want function", v.Type())
	}
	return &Template{
		fn:          fn,
		source:      src,
		runtimeName: o.RuntimeName,
		logger:      o.Logger,
	}, nil
}
