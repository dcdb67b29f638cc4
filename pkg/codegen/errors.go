package codegen

import (
	"fmt"

	"github.com/reshape/code-gen/pkg/ast"
)

// ConfigError reports invalid compilation options. It is always raised
// before any part of the tree is walked.
type ConfigError struct {
	Option  string
	Value   string
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// NodeError reports a node of unrecognized kind.
type NodeError struct {
	Kind     ast.Kind
	Dump     string // JSON encoding of the offending node
	Location ast.Location
}

func newNodeError(n ast.Node) *NodeError {
	if n == nil {
		return &NodeError{Kind: "<nil>", Dump: "null"}
	}
	dump, err := ast.EncodeNode(n)
	if err != nil {
		dump = []byte(fmt.Sprintf("%#v", n))
	}
	return &NodeError{Kind: n.Kind(), Dump: string(dump), Location: n.Loc()}
}

func (e *NodeError) Error() string {
	msg := fmt.Sprintf("Unrecognized node type: %s\nNode: %s\n", e.Kind, e.Dump)
	if !e.Location.IsZero() {
		return fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column, msg)
	}
	return msg
}

// ExprError reports an embedded expression that cannot be compiled:
// a syntax error, or a malformed __nodes reference.
type ExprError struct {
	Expr     string
	Location ast.Location
	Message  string
	Cause    error
}

func newExprError(n ast.Node, expr, msg string, cause error) *ExprError {
	e := &ExprError{Expr: expr, Message: msg, Cause: cause}
	if n != nil {
		e.Location = n.Loc()
	}
	return e
}

func (e *ExprError) Error() string {
	msg := fmt.Sprintf("invalid expression %q: %s", e.Expr, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if !e.Location.IsZero() {
		return fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column, msg)
	}
	return msg
}

func (e *ExprError) Unwrap() error {
	return e.Cause
}

// EvalError wraps a failure raised while running a compiled template.
// The underlying error, usually a *starlark.EvalError carrying a backtrace,
// is available through Unwrap.
type EvalError struct {
	Template string
	Cause    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Template, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}
