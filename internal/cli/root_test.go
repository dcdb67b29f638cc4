package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reshape/code-gen/internal/cli/commands"
	"github.com/reshape/code-gen/internal/cli/testutil"
	"github.com/reshape/code-gen/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *testutil.Project {
	t.Helper()
	p := testutil.SetupTestProject(t)
	t.Chdir(p.Dir)
	return p
}

func TestRender(t *testing.T) {
	p := setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "runtime helper",
			args: []string{"render", p.Helper, "-l", p.LocalsBob},
			want: "BOB!\n",
		},
		{
			name: "page with locals",
			args: []string{"render", p.Page, "--locals", p.LocalsBob},
			want: "<!-- page --><p class=\"greeting\">hello bob<br></p>\n",
		},
		{
			name: "several locals files keep order",
			args: []string{"render", p.Page, "-l", p.LocalsAmy, "-l", p.LocalsBob, "--concurrency", "1"},
			want: "<!-- page --><p class=\"greeting\">hello amy<br></p>\n" +
				"<!-- page --><p class=\"greeting\">hello bob<br></p>\n",
		},
		{
			name: "self closing flag",
			args: []string{"render", p.Page, "-l", p.LocalsBob, "--self-closing", "slash"},
			want: "<!-- page --><p class=\"greeting\">hello bob<br /></p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := testutil.Run(t, NewRootCmd(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			testutil.AssertNoANSI(t, out)
		})
	}
}

func TestRender_JSON(t *testing.T) {
	p := setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "render", p.Page, "-l", p.LocalsBob, "-o", "json")
	require.NoError(t, err)

	var got []commands.RenderOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, p.LocalsBob, got[0].Locals)
	assert.Equal(t, `<!-- page --><p class="greeting">hello bob<br></p>`, got[0].Output)
}

func TestRender_Errors(t *testing.T) {
	p := setup(t)

	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{name: "missing local", args: []string{"render", p.Page}, errSubstr: "name"},
		{name: "missing tree", args: []string{"render", filepath.Join(p.Dir, "nope.json")}, errSubstr: "nope.json"},
		{name: "missing locals file", args: []string{"render", p.Page, "-l", "nope.yaml"}, errSubstr: "failed to read locals"},
		{name: "invalid option", args: []string{"render", p.Page, "--self-closing", "snargle"}, errSubstr: "'snargle' is an invalid option for 'selfClosing'"},
		{name: "scoped bare name", args: []string{"render", p.Page, "-l", p.LocalsBob, "--scoped-locals"}, errSubstr: "name 'name' is not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := testutil.Run(t, NewRootCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestCompile(t *testing.T) {
	p := setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "compile", p.Helper, "--runtime-name", "rt")
	require.NoError(t, err)
	assert.Equal(t, `lambda locals: "" + str(rt.text.shout(locals.name)) + ""`+"\n", out)

	t.Run("out file loads back", func(t *testing.T) {
		dest := filepath.Join(p.Dir, "page.star")
		_, _, err := testutil.Run(t, NewRootCmd(), "compile", p.Page, "--out", dest)
		require.NoError(t, err)

		src, err := os.ReadFile(dest)
		require.NoError(t, err)
		tmpl, err := codegen.Load(strings.TrimSpace(string(src)), nil)
		require.NoError(t, err)
		got, err := tmpl.Execute(map[string]any{"name": "zed"})
		require.NoError(t, err)
		assert.Equal(t, `<!-- page --><p class="greeting">hello zed<br></p>`, got)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := testutil.Run(t, NewRootCmd(), "compile", p.Helper, "-o", "json")
		require.NoError(t, err)

		var got commands.CompileOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, codegen.DefaultRuntimeName, got.RuntimeName)
		assert.Contains(t, got.Source, "__runtime.text.shout(locals.name)")
	})
}

func TestInspect(t *testing.T) {
	p := setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "inspect", p.Page)
	require.NoError(t, err)
	assert.Contains(t, out, "tag <p> [class]")
	assert.Contains(t, out, `text "hello "`)
	assert.Contains(t, out, "code name")
	assert.Contains(t, out, `comment "page"`)
	assert.Contains(t, out, "shout(s)")
	assert.Contains(t, out, "Uppercase s and add emphasis.")
	assert.NotContains(t, out, "_private")
}

func TestInspect_JSON(t *testing.T) {
	p := setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "inspect", p.Helper, "-o", "json")
	require.NoError(t, err)

	var got commands.InspectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.JSONEq(t, `[{"type":"code","content":"__runtime.text.shout(name)"}]`, string(got.Nodes))
	require.Len(t, got.Helpers, 1)
	assert.Equal(t, "text", got.Helpers[0].Name)
}

func TestVersion(t *testing.T) {
	setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "reshape v"+Version)
}

func TestConfigFile(t *testing.T) {
	p := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.Dir, "reshape.yaml"), []byte("self_closing: tag\n"), 0o644))

	out, _, err := testutil.Run(t, NewRootCmd(), "render", p.Page, "-l", p.LocalsBob)
	require.NoError(t, err)
	assert.Contains(t, out, "<br></br>")
}

func TestCompletion(t *testing.T) {
	setup(t)

	out, _, err := testutil.Run(t, NewRootCmd(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "reshape")
}
