package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// LocalsName is the parameter name under which a template receives its locals.
const LocalsName = "locals"

// LocalsToStarlark converts a locals mapping into the struct passed to a
// compiled template. Fields are reachable as locals.<name>; nested maps stay
// dicts. A nil map yields an empty struct.
func LocalsToStarlark(locals map[string]any) (*starlarkstruct.Struct, error) {
	fields := make(starlark.StringDict, len(locals))
	for name, v := range locals {
		sv, err := GoToStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", name, err)
		}
		fields[name] = sv
	}
	return starlarkstruct.FromStringDict(starlark.String(LocalsName), fields), nil
}

// RuntimeFromMap builds a runtime object from Go values. Functions of type
// Func become builtins named after their key; everything else is converted
// with GoToStarlark.
func RuntimeFromMap(name string, m map[string]any) (*starlarkstruct.Struct, error) {
	fields := make(starlark.StringDict, len(m))
	for key, v := range m {
		switch fn := v.(type) {
		case Func:
			fields[key] = WrapFunc(key, fn)
		case func(args ...any) (any, error):
			fields[key] = WrapFunc(key, fn)
		default:
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("runtime field %q: %w", key, err)
			}
			fields[key] = sv
		}
	}
	return starlarkstruct.FromStringDict(starlark.String(name), fields), nil
}
