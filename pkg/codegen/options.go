package codegen

import (
	"fmt"
	"log/slog"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"go.starlark.net/syntax"
)

// SelfClosingMode selects how void elements such as <br> are closed.
type SelfClosingMode string

// SelfClosingMode constants.
const (
	SelfClosingClose SelfClosingMode = "close" // <br>
	SelfClosingTag   SelfClosingMode = "tag"   // <br></br>
	SelfClosingSlash SelfClosingMode = "slash" // <br />
)

// DefaultRuntimeName is the name embedded code uses for the runtime object
// unless Options.RuntimeName overrides it. References to it inside
// expressions are always rewritten to the configured name.
const DefaultRuntimeName = "__runtime"

// Options configures a compilation.
type Options struct {
	// SelfClosing is the closing style for void elements. Defaults to close.
	SelfClosing SelfClosingMode

	// ReturnString returns the generated function source instead of a
	// compiled template.
	ReturnString bool

	// RuntimeName is the identifier bound to the runtime object.
	RuntimeName string

	// ScopedLocals requires embedded code to reach inputs as locals.<name>.
	// When false, bare names are rewritten to locals.<name>.
	ScopedLocals bool

	// Logger receives debug traces of generated source. Nil disables them.
	Logger *slog.Logger
}

// Option is a functional option for configuring a compilation.
type Option func(*Options)

// WithSelfClosing sets the self-closing mode.
func WithSelfClosing(mode SelfClosingMode) Option {
	return func(o *Options) { o.SelfClosing = mode }
}

// WithReturnString requests the generated source text.
func WithReturnString(v bool) Option {
	return func(o *Options) { o.ReturnString = v }
}

// WithRuntimeName sets the runtime binding name.
func WithRuntimeName(name string) Option {
	return func(o *Options) { o.RuntimeName = name }
}

// WithScopedLocals toggles explicit locals.<name> access.
func WithScopedLocals(v bool) Option {
	return func(o *Options) { o.ScopedLocals = v }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.SelfClosing == "" {
		o.SelfClosing = SelfClosingClose
	}
	if o.RuntimeName == "" {
		o.RuntimeName = DefaultRuntimeName
	}
	return o
}

// Validate checks the options. It is called before any part of a tree is
// walked.
func (o Options) Validate() error {
	switch o.SelfClosing {
	case SelfClosingClose, SelfClosingTag, SelfClosingSlash:
	default:
		return &ConfigError{
			Option: "selfClosing",
			Value:  string(o.SelfClosing),
			Message: fmt.Sprintf("'%s' is an invalid option for 'selfClosing'. You can use 'close', 'tag', or 'slash'",
				o.SelfClosing),
		}
	}

	if !isIdent(o.RuntimeName) || o.RuntimeName == starctx.LocalsName || o.RuntimeName == nodesName {
		return &ConfigError{
			Option:  "runtimeName",
			Value:   o.RuntimeName,
			Message: fmt.Sprintf("'%s' is an invalid option for 'runtimeName'. It must be an identifier other than '%s' or '%s'", o.RuntimeName, starctx.LocalsName, nodesName),
		}
	}
	return nil
}

// closer returns the closing sequence for a void element.
func (m SelfClosingMode) closer(name string) string {
	switch m {
	case SelfClosingSlash:
		return " />"
	case SelfClosingTag:
		return "></" + name + ">"
	default:
		return ">"
	}
}

// isIdent reports whether s is a plain Starlark identifier.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	expr, err := starctx.FileOptions.ParseExpr("name", s, 0)
	if err != nil {
		return false
	}
	id, ok := expr.(*syntax.Ident)
	return ok && id.Name == s
}
