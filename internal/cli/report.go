package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/pipeline"
)

// reportOpts holds the command-line flags for the report command.
type reportOpts struct {
	formats  []string // artifact formats to produce
	outDir   string   // directory for artifacts
	strict   bool     // treat lint warnings as errors
	maxDepth int
	maxNodes int
	refresh  bool
	dev      bool
	extras   []string
	detailed bool
}

// newReportCmd creates the report command, which runs the full
// lint, resolve, and render pipeline in one shot.
func newReportCmd() *cobra.Command {
	opts := reportOpts{
		formats:  []string{pipeline.FormatJSON},
		outDir:   ".",
		maxDepth: pipeline.DefaultMaxDepth,
		maxNodes: pipeline.DefaultMaxNodes,
	}

	cmd := &cobra.Command{
		Use:   "report <pyproject.toml>",
		Short: "Lint, resolve, and render in one shot",
		Long: `Run the full pipeline on a manifest: lint it, resolve its dependency
graph against PyPI, audit declared constraints, and write the requested
artifacts.

Examples:
  projlint report pyproject.toml
  projlint report pyproject.toml --formats json,svg -d out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runReport(c, args[0], &opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.formats, "formats", opts.formats, "artifact formats (json|dot|svg)")
	cmd.Flags().StringVarP(&opts.outDir, "dir", "d", opts.outDir, "directory for artifacts")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "maximum nodes to fetch")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "include dev dependencies")
	cmd.Flags().StringSliceVar(&opts.extras, "extras", nil, "extras groups to include")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include version, spec, and license in graph labels")

	return cmd
}

func runReport(c *cobra.Command, path string, opts *reportOpts) error {
	ctx := c.Context()
	logger := loggerFromContext(ctx)

	backend, err := newCacheBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	pipelineOpts := pipeline.Options{
		ManifestPath: path,
		Strict:       opts.strict,
		MaxDepth:     opts.maxDepth,
		MaxNodes:     opts.maxNodes,
		IncludeDev:   opts.dev,
		Extras:       opts.extras,
		Refresh:      opts.refresh,
		Formats:      opts.formats,
		Detailed:     opts.detailed,
		Logger:       logger,
	}
	fetcher := newFetcher(backend, deps.Options{
		CacheTTL: config.GetDuration(config.KeyCacheTTL, deps.DefaultCacheTTL),
	})
	runner := pipeline.NewRunner(backend, fetcher, nil, logger)

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Running pipeline...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipelineOpts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return err
	}
	spinner.Stop()
	prog.done("Pipeline complete")

	printReport(result.Report)

	if result.Graph == nil {
		if result.Report.HasErrors() {
			return fmt.Errorf("%d error(s) found", result.Report.Errors())
		}
		return fmt.Errorf("%d warning(s) found in strict mode", result.Report.Warnings())
	}

	fmt.Println()
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)
	printFindings(result.Findings)

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return err
	}
	base := "projlint-report"
	for format, data := range result.Artifacts {
		out := filepath.Join(opts.outDir, base+"."+format)
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		printFile(out)
	}
	return nil
}
