package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/graph"
	pkgio "github.com/projlint/projlint/pkg/io"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/render"
)

// graphCacheTTL bounds how long resolved graphs stay valid. Registry
// responses already have their own TTL, so this only caps staleness of
// the assembled graph.
const graphCacheTTL = time.Hour

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher deps.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache, fetcher, and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, fetcher deps.Fetcher, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute runs the complete lint → resolve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Lint (manifests only)
	if opts.ManifestPath != "" {
		lintStart := time.Now()
		m, report, reportHit, err := r.Lint(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("lint: %w", err)
		}
		result.Manifest = m
		result.Report = report
		result.Stats.LintTime = time.Since(lintStart)
		result.CacheInfo.ReportHit = reportHit

		r.Logger.Info("linted manifest",
			"path", opts.ManifestPath,
			"errors", report.Errors(),
			"warnings", report.Warnings(),
			"duration", result.Stats.LintTime)

		if report.HasErrors() || (opts.Strict && report.Warnings() > 0) {
			return result, nil
		}
	}

	// Stage 2: Resolve
	resolveStart := time.Now()
	g, graphHit, err := r.Resolve(ctx, result.Manifest, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Graph = g
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.GraphHit = graphHit

	if data, err := marshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}
	if result.Manifest != nil {
		result.Findings = deps.Audit(result.Manifest, g)
	}

	r.Logger.Info("resolved dependencies",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ResolveTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Lint validates the manifest, caching the report by manifest content hash.
func (r *Runner) Lint(ctx context.Context, opts Options) (*manifest.Manifest, *manifest.Report, bool, error) {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, nil, false, err
	}

	key := r.Keyer.ReportKey(cache.Hash(m.Raw()), opts.ReportKeyOpts())
	if !opts.Refresh {
		if data, found, err := r.Cache.Get(ctx, key); err == nil && found {
			var report manifest.Report
			if err := json.Unmarshal(data, &report); err == nil {
				return m, &report, true, nil
			}
			_ = r.Cache.Delete(ctx, key)
		}
	}

	report := manifest.Lint(m)
	if data, err := json.Marshal(report); err == nil {
		if err := r.Cache.Set(ctx, key, data, graphCacheTTL); err != nil {
			r.Logger.Warnf("could not cache lint report: %v", err)
		}
	}
	return m, report, false, nil
}

// Resolve expands the dependency graph, caching the serialized graph.
// The manifest m may be nil when resolving a bare package.
func (r *Runner) Resolve(ctx context.Context, m *manifest.Manifest, opts Options) (*graph.Graph, bool, error) {
	if r.Fetcher == nil {
		return nil, false, fmt.Errorf("no fetcher configured")
	}

	key := r.Keyer.GraphKey(r.graphIdentity(m, opts), opts.GraphKeyOpts())
	if !opts.Refresh {
		if data, found, err := r.Cache.Get(ctx, key); err == nil && found {
			if g, err := pkgio.ReadJSON(bytes.NewReader(data)); err == nil {
				return g, true, nil
			}
			_ = r.Cache.Delete(ctx, key)
		}
	}

	var (
		g   *graph.Graph
		err error
	)
	if m != nil {
		g, err = deps.Expand(ctx, m, r.Fetcher, opts.resolveOptions())
	} else {
		g, err = deps.NewRegistry("pypi", r.Fetcher).Resolve(ctx, opts.Package, opts.resolveOptions())
	}
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, graphCacheTTL); err != nil {
			r.Logger.Warnf("could not cache graph: %v", err)
		}
	}
	return g, false, nil
}

// Render produces the requested artifacts from the resolved graph.
func (r *Runner) Render(g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := marshalGraph(g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", format, err)
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(render.ToDOT(g, render.Options{Detailed: opts.Detailed}))
		case FormatSVG:
			dot := render.ToDOT(g, render.Options{Detailed: opts.Detailed})
			data, err := render.RenderSVG(dot)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", format, err)
			}
			artifacts[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}

// graphIdentity builds the cache identity for a resolution: the package
// name for registry lookups, or the manifest content hash plus the
// selection options for manifest expansion.
func (r *Runner) graphIdentity(m *manifest.Manifest, opts Options) string {
	if m == nil {
		return opts.Package
	}
	return fmt.Sprintf("%s|dev=%t|extras=%s",
		cache.Hash(m.Raw()), opts.IncludeDev, strings.Join(opts.Extras, ","))
}

func marshalGraph(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
