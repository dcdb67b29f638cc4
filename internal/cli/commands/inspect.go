package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reshape/code-gen/internal/cli/config"
	"github.com/reshape/code-gen/internal/helpers"
	"github.com/reshape/code-gen/pkg/ast"
	"github.com/spf13/cobra"
)

// maxLabelLen truncates long text in tree labels.
const maxLabelLen = 40

// InspectOutput is the JSON form of the inspect command's output.
type InspectOutput struct {
	Nodes   json.RawMessage      `json:"nodes"`
	Helpers []*helpers.Namespace `json:"helpers"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <ast>",
		Short: "Show a node tree and the available runtime helpers",
		Long: `Print the decoded node tree and a table of the helper functions found in
the runtime directory. Helper files are parsed, not executed.`,
		Example: `  reshape inspect page.json
  reshape inspect page.json --runtime-dir ./lib -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, astPath string) error {
	cc := NewCommandContextWithoutRuntime(cmd)

	nodes, err := readTree(astPath)
	if err != nil {
		return err
	}
	namespaces, err := helpers.ParseDir(cc.Cfg.RuntimeDir)
	if err != nil {
		return fmt.Errorf("failed to parse helpers: %w", err)
	}

	w := cmd.OutOrStdout()
	if cc.Cfg.OutputFormat == config.OutputJSON {
		raw, err := ast.Encode(nodes)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(InspectOutput{Nodes: raw, Helpers: namespaces})
	}

	renderTree(w, nodes)
	_, _ = fmt.Fprintln(w)
	renderHelpers(w, namespaces)
	return nil
}

func renderTree(w io.Writer, nodes []ast.Node) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedLight)
	l.AppendItem("nodes")
	l.Indent()
	appendNodes(l, nodes)
	l.Render()
}

func appendNodes(l list.Writer, nodes []ast.Node) {
	for _, n := range nodes {
		l.AppendItem(nodeLabel(n))

		var children []ast.Node
		switch n := n.(type) {
		case *ast.Tag:
			children = n.Content
		case *ast.Code:
			if len(n.Nodes) > 0 {
				l.Indent()
				for i, sub := range n.Nodes {
					l.AppendItem(fmt.Sprintf("__nodes[%d]", i))
					l.Indent()
					appendNodes(l, sub)
					l.UnIndent()
				}
				l.UnIndent()
			}
		}
		if len(children) > 0 {
			l.Indent()
			appendNodes(l, children)
			l.UnIndent()
		}
	}
}

func nodeLabel(n ast.Node) string {
	var label string
	switch n := n.(type) {
	case *ast.Text:
		label = fmt.Sprintf("text %q", truncate(n.Content))
	case *ast.Tag:
		keys := make([]string, len(n.Attrs))
		for i, a := range n.Attrs {
			keys[i] = a.Key
		}
		label = "tag <" + n.Name + ">"
		if len(keys) > 0 {
			label += " [" + strings.Join(keys, " ") + "]"
		}
	case *ast.Code:
		label = "code " + truncate(n.Content)
	case *ast.Comment:
		label = fmt.Sprintf("comment %q", truncate(strings.TrimSpace(n.Content)))
	default:
		label = fmt.Sprintf("unknown(%s)", n.Kind())
	}
	if loc := n.Loc(); !loc.IsZero() {
		label += fmt.Sprintf(" @%d:%d", loc.Line, loc.Column)
	}
	return label
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelLen {
		return s
	}
	return string(r[:maxLabelLen-3]) + "..."
}

func renderHelpers(w io.Writer, namespaces []*helpers.Namespace) {
	if len(namespaces) == 0 {
		_, _ = fmt.Fprintln(w, "No runtime helpers found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Namespace", "Function", "Line", "Doc"})
	for _, ns := range namespaces {
		for _, fn := range ns.Functions {
			t.AppendRow(table.Row{ns.Name, fn.Signature(), fn.Line, fn.Docstring})
		}
	}
	t.Render()
}
