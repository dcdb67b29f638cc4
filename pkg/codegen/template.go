package codegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Template is a compiled template function.
//
// A Template may be executed from several goroutines at once provided the
// runtime object it was compiled with is safe for concurrent use.
type Template struct {
	fn          *starlark.Function
	source      string
	runtimeName string
	logger      *slog.Logger
}

// Source returns the function source the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// RuntimeName returns the name the runtime is bound under.
func (t *Template) RuntimeName() string {
	return t.runtimeName
}

// Execute renders the template with locals. A nil map is treated as empty.
func (t *Template) Execute(locals map[string]any) (string, error) {
	return t.ExecuteContext(context.Background(), locals)
}

// ExecuteContext is Execute with cancellation.
func (t *Template) ExecuteContext(ctx context.Context, locals map[string]any) (string, error) {
	sv, err := starctx.LocalsToStarlark(locals)
	if err != nil {
		return "", err
	}
	return t.ExecuteStarlark(ctx, sv)
}

// ExecuteStarlark renders the template with an already converted locals
// value. The value must support attribute access, such as a struct.
func (t *Template) ExecuteStarlark(ctx context.Context, locals starlark.Value) (string, error) {
	if locals == nil {
		locals = starlarkstruct.FromStringDict(starlark.String(starctx.LocalsName), nil)
	}

	thread, stop := starctx.NewThreadContext(ctx, "reshape:execute")
	defer stop()

	v, err := starlark.Call(thread, t.fn, starlark.Tuple{locals}, nil)
	if err != nil {
		if t.logger != nil {
			t.logger.Debug("template execution failed", "error", err)
		}
		return "", &EvalError{Template: templateFile, Cause: err}
	}
	s, ok := starlark.AsString(v)
	if !ok {
		return "", &EvalError{Template: templateFile, Cause: fmt.Errorf("template returned %s, want string", v.Type())}
	}
	return s, nil
}

// Render executes the template and writes the result to w.
func (t *Template) Render(ctx context.Context, w io.Writer, locals map[string]any) error {
	out, err := t.ExecuteContext(ctx, locals)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
