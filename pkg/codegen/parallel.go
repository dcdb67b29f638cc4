package codegen

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RenderAll executes tmpl once per entry of locals, running at most limit
// executions at a time (limit <= 0 means no limit). Results keep the order
// of locals. The first failure cancels the remaining executions.
func RenderAll(ctx context.Context, tmpl *Template, locals []map[string]any, limit int) ([]string, error) {
	out := make([]string, len(locals))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, l := range locals {
		g.Go(func() error {
			s, err := tmpl.ExecuteContext(gctx, l)
			if err != nil {
				return fmt.Errorf("locals[%d]: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
