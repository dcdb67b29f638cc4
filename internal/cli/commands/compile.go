package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reshape/code-gen/internal/cli/config"
	"github.com/reshape/code-gen/pkg/codegen"
	"github.com/spf13/cobra"
)

// CompileOutput is the JSON form of the compile command's output.
type CompileOutput struct {
	Source      string `json:"source"`
	RuntimeName string `json:"runtime_name"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile <ast>",
		Short: "Print the generated template function source",
		Long: `Compile a node tree into Starlark template source without evaluating it.

The runtime name is left as a free variable. Load the source later with the
same runtime name to get an equivalent template.`,
		Example: `  # Print the source
  reshape compile page.json

  # Write it to a file with a custom runtime name
  reshape compile page.json --runtime-name rt --out page.star`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], outPath)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the source to this file instead of stdout")

	return cmd
}

func runCompile(cmd *cobra.Command, astPath, outPath string) error {
	cc := NewCommandContextWithoutRuntime(cmd)

	nodes, err := readTree(astPath)
	if err != nil {
		return err
	}
	res, err := cc.Compile(nodes, codegen.WithReturnString(true))
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", astPath, err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(res.Source+"\n"), 0o644); err != nil { //nolint:gosec // G306: generated source is not sensitive
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		cc.Logger.Info("wrote template source", "path", outPath)
		return nil
	}

	w := cmd.OutOrStdout()
	if cc.Cfg.OutputFormat == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(CompileOutput{Source: res.Source, RuntimeName: cc.Cfg.RuntimeName})
	}
	_, err = fmt.Fprintln(w, res.Source)
	return err
}
