package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/reshape/code-gen/internal/cli/config"
	"github.com/reshape/code-gen/internal/helpers"
	"github.com/reshape/code-gen/pkg/ast"
	"github.com/reshape/code-gen/pkg/codegen"
	"github.com/spf13/cobra"
	"go.starlark.net/starlark"
	"gopkg.in/yaml.v3"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Runtime starlark.Value
	Modules []*helpers.Module
}

// NewCommandContext loads the runtime helpers named by the configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutRuntime(cmd)
	if err := cc.LoadRuntime(); err != nil {
		return nil, err
	}
	return cc, nil
}

// NewCommandContextWithoutRuntime creates a CommandContext without loading
// helpers. Useful for commands that only generate source.
func NewCommandContextWithoutRuntime(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// LoadRuntime (re)loads the helper modules into the runtime object.
func (c *CommandContext) LoadRuntime() error {
	rt, modules, err := helpers.LoadRuntime(c.Cfg.RuntimeDir)
	if err != nil {
		return fmt.Errorf("failed to load helpers: %w", err)
	}
	c.Runtime = rt
	c.Modules = modules
	c.Logger.Debug("loaded helpers", "dir", c.Cfg.RuntimeDir, "modules", len(modules))
	return nil
}

// Compile compiles nodes with the configured options. Extra options are
// applied last.
func (c *CommandContext) Compile(nodes []ast.Node, extra ...codegen.Option) (*codegen.Result, error) {
	opts := append(c.Cfg.CodegenOptions(), codegen.WithLogger(c.Logger))
	opts = append(opts, extra...)
	return codegen.Compile(nodes, c.Runtime, opts...)
}

// getConfig returns the current configuration, or defaults when none was
// loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// readTree decodes the node tree stored at path.
func readTree(path string) ([]ast.Node, error) {
	nodes, err := ast.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nodes, nil
}

// readLocals decodes a YAML or JSON mapping of locals. An empty path yields
// nil locals.
func readLocals(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied locals file
	if err != nil {
		return nil, fmt.Errorf("failed to read locals: %w", err)
	}
	var locals map[string]any
	if err := yaml.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("failed to parse locals %s: %w", path, err)
	}
	return locals, nil
}
