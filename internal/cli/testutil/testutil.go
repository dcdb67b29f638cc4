// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
)

// PageTree is a node tree exercising text, tags, attributes, code, and
// void elements.
const PageTree = `[
  {"type": "comment", "content": " page "},
  {"type": "tag", "name": "p", "attrs": {"class": {"type": "text", "content": "greeting"}}, "content": [
    {"type": "text", "content": "hello "},
    {"type": "code", "content": "name"},
    {"type": "tag", "name": "br"}
  ]}
]`

// HelperTree calls a runtime helper.
const HelperTree = `[
  {"type": "code", "content": "__runtime.text.shout(name)"}
]`

// TextHelpers is a helper module exporting shout.
const TextHelpers = `
def shout(s):
    """Uppercase s and add emphasis."""
    return s.upper() + "!"

def _private():
    pass
`

// Project describes the files of a test project.
type Project struct {
	Dir        string
	Page       string // PageTree
	Helper     string // HelperTree
	LocalsBob  string
	LocalsAmy  string
	HelpersDir string
}

// SetupTestProject creates a temporary project with trees, locals files,
// and a helpers directory.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()

	dir := t.TempDir()
	p := &Project{
		Dir:        dir,
		Page:       filepath.Join(dir, "page.json"),
		Helper:     filepath.Join(dir, "helper.json"),
		LocalsBob:  filepath.Join(dir, "bob.yaml"),
		LocalsAmy:  filepath.Join(dir, "amy.json"),
		HelpersDir: filepath.Join(dir, "helpers"),
	}

	if err := os.MkdirAll(p.HelpersDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", p.HelpersDir, err)
	}

	files := map[string]string{
		p.Page:                                   PageTree,
		p.Helper:                                 HelperTree,
		p.LocalsBob:                              "name: bob\n",
		p.LocalsAmy:                              `{"name": "amy"}`,
		filepath.Join(p.HelpersDir, "text.star"): TextHelpers,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", path, err)
		}
	}

	return p
}

// Run executes cmd with args and returns captured stdout and stderr.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
