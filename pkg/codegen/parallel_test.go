package codegen

import (
	"context"
	"fmt"
	"testing"

	"github.com/reshape/code-gen/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAll(t *testing.T) {
	tmpl := mustCompile(t, []ast.Node{&ast.Tag{Name: "li", Content: []ast.Node{code("name")}}}, nil)

	locals := make([]map[string]any, 50)
	want := make([]string, 50)
	for i := range locals {
		locals[i] = map[string]any{"name": fmt.Sprintf("item-%d", i)}
		want[i] = fmt.Sprintf("<li>item-%d</li>", i)
	}

	for _, limit := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			got, err := RenderAll(context.Background(), tmpl, locals, limit)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRenderAll_Error(t *testing.T) {
	tmpl := mustCompile(t, []ast.Node{code("name")}, nil)

	locals := []map[string]any{
		{"name": "ok"},
		{"other": "missing name"},
	}
	got, err := RenderAll(context.Background(), tmpl, locals, 2)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "locals[1]")

	var evalErr *EvalError
	assert.ErrorAs(t, err, &evalErr)
}

func TestRenderAll_Empty(t *testing.T) {
	tmpl := mustCompile(t, []ast.Node{text("x")}, nil)
	got, err := RenderAll(context.Background(), tmpl, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
