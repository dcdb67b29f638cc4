package starlark

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
		wantErr bool
	}{
		{
			name:    "string",
			input:   "hello",
			wantStr: `"hello"`,
		},
		{
			name:    "int",
			input:   42,
			wantStr: "42",
		},
		{
			name:    "int64",
			input:   int64(123456789),
			wantStr: "123456789",
		},
		{
			name:    "uint",
			input:   uint(7),
			wantStr: "7",
		},
		{
			name:    "float64",
			input:   3.14,
			wantStr: "3.14",
		},
		{
			name:    "bool true",
			input:   true,
			wantStr: "True",
		},
		{
			name:    "nil",
			input:   nil,
			wantStr: "None",
		},
		{
			name:    "string slice",
			input:   []string{"a", "b", "c"},
			wantStr: `["a", "b", "c"]`,
		},
		{
			name:    "any slice",
			input:   []any{"x", 1, true},
			wantStr: `["x", 1, True]`,
		},
		{
			name:    "map",
			input:   map[string]any{"key": "value"},
			wantStr: `{"key": "value"}`,
		},
		{
			name:    "string map sorted",
			input:   map[string]string{"b": "2", "a": "1"},
			wantStr: `{"a": "1", "b": "2"}`,
		},
		{
			name:    "uint64",
			input:   uint64(18446744073709551615),
			wantStr: "18446744073709551615",
		},
		{
			name:    "time",
			input:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			wantStr: "2024-01-02 03:04:05 +0000 UTC",
		},
		{
			name:    "non-string keys sorted",
			input:   map[any]any{2: "two", 1: "one"},
			wantStr: `{1: "one", 2: "two"}`,
		},
		{
			name:    "nested map with non-string keys",
			input:   map[string]any{"codes": map[any]any{404: "missing", true: "yes"}},
			wantStr: `{"codes": {404: "missing", True: "yes"}}`,
		},
		{
			name:    "unsupported value under non-string key",
			input:   map[any]any{1: make(chan int)},
			wantErr: true,
		},
		{
			name:    "starlark value passes through",
			input:   starlark.String("already"),
			wantStr: `"already"`,
		},
		{
			name:    "unsupported",
			input:   struct{}{},
			wantErr: true,
		},
		{
			name:    "unsupported nested",
			input:   []any{make(chan int)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err, "expected error")
				return
			}
			require.NoError(t, err, "unexpected error")
			assert.Equal(t, tt.wantStr, got.String(), "GoToStarlark()")
		})
	}
}

func TestToGo(t *testing.T) {
	tests := []struct {
		name  string
		input starlark.Value
		want  any
	}{
		{"string", starlark.String("hello"), "hello"},
		{"int", starlark.MakeInt(42), int64(42)},
		{"float", starlark.Float(3.14), 3.14},
		{"bool", starlark.Bool(true), true},
		{"none", starlark.None, nil},
		{"list", starlark.NewList([]starlark.Value{starlark.String("a"), starlark.MakeInt(1)}), []any{"a", int64(1)}},
		{"tuple", starlark.Tuple{starlark.String("a")}, []any{"a"}},
		{"time", startime.Time(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{
			"struct",
			starlarkstruct.FromStringDict(starlark.String("s"), starlark.StringDict{"x": starlark.String("y")}),
			map[string]any{"x": "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.input)
			require.NoError(t, err, "unexpected error")
			assert.Equal(t, tt.want, got, "ToGo()")
		})
	}
}

func TestToGo_NonStringDictKey(t *testing.T) {
	dict := starlark.NewDict(1)
	require.NoError(t, dict.SetKey(starlark.MakeInt(1), starlark.String("x")))

	_, err := ToGo(dict)
	assert.Error(t, err)
}

func TestWrapFunc(t *testing.T) {
	upper := WrapFunc("shout", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("want one argument")
		}
		s, _ := args[0].(string)
		return s + "!", nil
	})

	thread := NewThread("test")

	got, err := starlark.Call(thread, upper, starlark.Tuple{starlark.String("hey")}, nil)
	require.NoError(t, err)
	assert.Equal(t, starlark.String("hey!"), got)

	_, err = starlark.Call(thread, upper, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shout: want one argument")

	_, err = starlark.Call(thread, upper, nil, []starlark.Tuple{{starlark.String("k"), starlark.None}})
	assert.Error(t, err)
}
