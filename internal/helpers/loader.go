// Package helpers loads runtime helper modules for compiled templates.
// Helpers are written in Starlark, one namespace per .star file, and are
// exposed to templates through the runtime object.
package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	starctx "github.com/reshape/code-gen/internal/starlark"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// RuntimeConstructor names the struct returned by Runtime.
const RuntimeConstructor = "runtime"

// Loader scans a directory for .star files and loads them as Starlark modules.
type Loader struct {
	dir string
}

// NewLoader creates a new helper loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Module represents a loaded helper file.
type Module struct {
	// Namespace is derived from filename (e.g., "format" from "format.star")
	Namespace string

	// Path is the path to the .star file
	Path string

	// Exports contains all exported functions/values (names not starting with _)
	Exports starlark.StringDict
}

// Struct returns the module's exports as a struct named after its namespace.
func (m *Module) Struct() *starlarkstruct.Struct {
	return starlarkstruct.FromStringDict(starlark.String(m.Namespace), m.Exports)
}

// Load scans the helper directory and loads all .star files in name order.
// A missing directory yields no modules.
func (l *Loader) Load() ([]*Module, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access helpers directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("helpers path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan helpers directory: %w", err)
	}
	sort.Strings(files)

	modules := make([]*Module, 0, len(files))
	for _, file := range files {
		module, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// LoadFile executes a single .star file and extracts its exports.
func LoadFile(path string) (*Module, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is a helper file chosen by the caller
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := starctx.NewThread("load:" + namespace)
	globals, err := starlark.ExecFileOptions(starctx.FileOptions, thread, path, content, nil)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("Starlark execution error: %v", err),
		}
	}

	exports := make(starlark.StringDict, len(globals))
	for name, value := range globals {
		if !strings.HasPrefix(name, "_") {
			exports[name] = value
		}
	}

	return &Module{
		Namespace: namespace,
		Path:      path,
		Exports:   exports,
	}, nil
}

// Runtime builds the runtime object for a set of modules: a struct whose
// fields are the module namespaces, so templates call helpers as
// __runtime.<namespace>.<name>(...).
func Runtime(modules []*Module) (*starlarkstruct.Struct, error) {
	fields := make(starlark.StringDict, len(modules))
	for _, m := range modules {
		if _, dup := fields[m.Namespace]; dup {
			return nil, &LoadError{File: m.Path, Message: fmt.Sprintf("duplicate namespace %q", m.Namespace)}
		}
		fields[m.Namespace] = m.Struct()
	}
	return starlarkstruct.FromStringDict(starlark.String(RuntimeConstructor), fields), nil
}

// LoadRuntime loads every module in dir and returns the runtime object.
func LoadRuntime(dir string) (*starlarkstruct.Struct, []*Module, error) {
	modules, err := NewLoader(dir).Load()
	if err != nil {
		return nil, nil, err
	}
	rt, err := Runtime(modules)
	if err != nil {
		return nil, nil, err
	}
	return rt, modules, nil
}

// validateNamespace checks if a namespace name is valid.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}

	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("namespace must start with letter or underscore: %s", name)
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}

	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError represents an error loading a helper file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("helpers/%s: %s", filepath.Base(e.File), e.Message)
}
