package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/graph"
	pkgio "github.com/projlint/projlint/pkg/io"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/registry/pypi"
)

// depsOpts holds the command-line flags for the deps command.
// These options control dependency resolution depth, caching, and selection.
type depsOpts struct {
	maxDepth int      // maximum dependency tree depth
	maxNodes int      // maximum total nodes to fetch
	refresh  bool     // bypass HTTP cache
	dev      bool     // include dev dependencies
	extras   []string // extras groups to include
	output   string   // output file path (stdout if empty)
	audit    bool     // check declared constraints against resolved versions
}

// resolveOptions converts depsOpts into deps.Options for the resolver.
func (o *depsOpts) resolveOptions(ctx context.Context) deps.Options {
	logger := loggerFromContext(ctx)
	return deps.Options{
		MaxDepth:   o.maxDepth,
		MaxNodes:   o.maxNodes,
		Refresh:    o.refresh,
		IncludeDev: o.dev,
		Extras:     o.extras,
		CacheTTL:   config.GetDuration(config.KeyCacheTTL, deps.DefaultCacheTTL),
		Logger:     func(msg string, args ...any) { logger.Warnf(msg, args...) },
	}
}

// newDepsCmd creates the deps command, which resolves the transitive
// dependency graph of a manifest or a single package against PyPI.
func newDepsCmd() *cobra.Command {
	opts := depsOpts{maxDepth: deps.DefaultMaxDepth, maxNodes: deps.DefaultMaxNodes}

	cmd := &cobra.Command{
		Use:   "deps <pyproject.toml-or-package>",
		Short: "Resolve the transitive dependency graph",
		Long: `Resolve the transitive dependency graph of a manifest or a single
package by crawling the PyPI JSON API.

The command auto-detects whether you're providing a manifest file or a
package name.

Examples:
  projlint deps pyproject.toml                 # Expand a manifest
  projlint deps pyproject.toml --extras docs   # Include an extras group
  projlint deps flask                          # Resolve a PyPI package
  projlint deps pyproject.toml -o graph.json   # Export the graph`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runDeps(c.Context(), args[0], &opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "maximum nodes to fetch")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "include dev dependencies")
	cmd.Flags().StringSliceVar(&opts.extras, "extras", nil, "extras groups to include")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.audit, "audit", false, "check declared constraints against resolved versions")

	return cmd
}

func runDeps(ctx context.Context, target string, opts *depsOpts) error {
	backend, err := newCacheBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	resolveOpts := opts.resolveOptions(ctx)
	fetcher := newFetcher(backend, resolveOpts)

	var (
		g *graph.Graph
		m *manifest.Manifest
	)

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Resolving dependencies...")
	spinner.Start()

	if _, statErr := os.Stat(target); statErr == nil {
		m, err = manifest.Load(target)
		if err != nil {
			spinner.Stop()
			return err
		}
		g, err = deps.Expand(ctx, m, fetcher, resolveOpts)
	} else {
		registry := deps.NewRegistry("pypi", fetcher)
		g, err = registry.Resolve(ctx, target, resolveOpts)
	}

	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			printWarning("Cancelled")
			return err
		}
		spinner.StopWithError("Resolution failed")
		return err
	}
	spinner.StopWithSuccess(num.Sprintf("Resolved %d packages", g.NodeCount()))
	prog.done("Resolved dependency graph")
	printStats(g.NodeCount(), g.EdgeCount(), !opts.refresh)

	if opts.audit && m != nil {
		printFindings(deps.Audit(m, g))
	}

	if opts.output != "" {
		if err := pkgio.ExportJSON(g, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
		return nil
	}
	if opts.audit {
		return nil
	}
	return pkgio.WriteJSON(g, os.Stdout)
}

// newFetcher builds a PyPI fetcher over the given cache backend, honoring
// the configured registry URL.
func newFetcher(backend cache.Cache, opts deps.Options) *deps.PyPIFetcher {
	if url := config.Get(config.KeyRegistryURL); url != "" && url != pypi.DefaultBaseURL {
		return deps.NewPyPIFetcherWithBaseURL(backend, opts, url)
	}
	return deps.NewPyPIFetcher(backend, opts)
}

// printFindings renders audit findings for direct dependencies.
func printFindings(findings []deps.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(StyleHighlight.Render("Constraint audit"))
	for _, f := range findings {
		switch {
		case f.Problem != "":
			printWarning("%s %s: %s", f.Name, StyleDim.Render(f.Spec), f.Problem)
		case f.Satisfied:
			printSuccess("%s %s %s", f.Name, StyleDim.Render(f.Spec), StyleDim.Render("("+f.Resolved+")"))
		default:
			printError("%s %s does not match resolved %s", f.Name, StyleDim.Render(f.Spec), f.Resolved)
		}
	}
}
