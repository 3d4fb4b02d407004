package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/graph"
	pkgio "github.com/projlint/projlint/pkg/io"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format   string // output format: dot or svg
	output   string // output file path (stdout if empty)
	detailed bool   // include version/spec/license in node labels
}

// newGraphCmd creates the graph command, which renders a dependency graph.
func newGraphCmd() *cobra.Command {
	opts := graphOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "graph <graph.json-or-pyproject.toml>",
		Short: "Render a dependency graph as DOT or SVG",
		Long: `Render a dependency graph in Graphviz DOT or SVG format.

The input is either a graph exported by the deps command, or a
pyproject.toml manifest (rendered from its declared dependencies,
without contacting the registry).

Examples:
  projlint graph graph.json                       # DOT to stdout
  projlint graph graph.json --format svg -o g.svg # SVG to file
  projlint graph pyproject.toml --detailed        # Direct deps only`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGraph(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (dot|svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include version, spec, and license in labels")

	return cmd
}

func runGraph(input string, opts *graphOpts) error {
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	dot := render.ToDOT(g, render.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("rendering SVG: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (expected dot or svg)", opts.format)
	}

	if opts.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.output, err)
	}
	printSuccess("Graph written")
	printFile(opts.output)
	return nil
}

// loadGraph reads either an exported graph document or a manifest whose
// declared dependencies become the graph.
func loadGraph(input string) (*graph.Graph, error) {
	if strings.HasSuffix(input, ".toml") {
		m, err := manifest.Load(input)
		if err != nil {
			return nil, err
		}
		return deps.Direct(m, deps.Options{IncludeDev: true, Extras: m.ExtraNames()}), nil
	}
	return pkgio.ImportJSON(input)
}
