package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reshape/code-gen/internal/cli/config"
	"github.com/reshape/code-gen/pkg/codegen"
	"github.com/spf13/cobra"
)

// watchDebounce delays re-rendering until a burst of file events settles.
const watchDebounce = 100 * time.Millisecond

// RenderOutput is the JSON form of a single render result.
type RenderOutput struct {
	Locals string `json:"locals,omitempty"`
	Output string `json:"output"`
}

type renderOptions struct {
	astPath     string
	localsPaths []string
	watch       bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <ast>",
		Short: "Compile a node tree and render it with locals",
		Long: `Compile a node tree into a template and execute it.

Locals are read from YAML or JSON files. Passing --locals several times
renders the template once per file, concurrently, in the order given.`,
		Example: `  # Render without locals
  reshape render page.json

  # Render with locals
  reshape render page.json --locals data.yaml

  # Render several pages and re-render on change
  reshape render page.json -l a.yaml -l b.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.astPath = args[0]
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.localsPaths, "locals", "l", nil, "Locals file (YAML or JSON); may be repeated")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-render when the tree, locals, or helpers change")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	cc := NewCommandContextWithoutRuntime(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := renderOnce(ctx, cc, opts, cmd.OutOrStdout()); err != nil {
		if !opts.watch {
			return err
		}
		cc.Logger.Error("render failed", "error", err)
	}
	if !opts.watch {
		return nil
	}
	return watchRender(ctx, cc, opts, cmd.OutOrStdout())
}

// renderOnce reloads helpers, compiles the tree, and renders every locals file.
func renderOnce(ctx context.Context, cc *CommandContext, opts renderOptions, w io.Writer) error {
	if err := cc.LoadRuntime(); err != nil {
		return err
	}

	nodes, err := readTree(opts.astPath)
	if err != nil {
		return err
	}
	res, err := cc.Compile(nodes, codegen.WithReturnString(false))
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", opts.astPath, err)
	}

	paths := opts.localsPaths
	if len(paths) == 0 {
		paths = []string{""}
	}
	locals := make([]map[string]any, len(paths))
	for i, p := range paths {
		if locals[i], err = readLocals(p); err != nil {
			return err
		}
	}

	results, err := codegen.RenderAll(ctx, res.Template, locals, cc.Cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", opts.astPath, err)
	}

	if cc.Cfg.OutputFormat == config.OutputJSON {
		out := make([]RenderOutput, len(results))
		for i, r := range results {
			out[i] = RenderOutput{Locals: paths[i], Output: r}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}

// watchRender re-renders whenever the tree, a locals file, or a helper file
// changes, until ctx is cancelled.
func watchRender(ctx context.Context, cc *CommandContext, opts renderOptions, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range append([]string{opts.astPath}, opts.localsPaths...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	helperDir, err := filepath.Abs(cc.Cfg.RuntimeDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(helperDir); err == nil && info.IsDir() {
		dirs[helperDir] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	relevant := func(name string) bool {
		abs, err := filepath.Abs(name)
		if err != nil {
			return false
		}
		if files[abs] {
			return true
		}
		return filepath.Dir(abs) == helperDir && filepath.Ext(abs) == ".star"
	}

	cc.Logger.Info("watching for changes", "files", len(files), "helpers", helperDir)

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !relevant(event.Name) {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				mu.Lock()
				defer mu.Unlock()
				cc.Logger.Info("change detected", "file", filepath.Base(name))
				if err := renderOnce(ctx, cc, opts, w); err != nil {
					cc.Logger.Error("render failed", "error", err)
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watcher error", "error", err)
		}
	}
}
