// Package pipeline provides the core validation pipeline for projlint.
//
// This package implements the complete lint → resolve → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Lint: Validate the manifest against schema and packaging conventions
//  2. Resolve: Expand the transitive dependency graph against the registry
//  3. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, fetcher, nil, logger)
//	opts := pipeline.Options{
//	    ManifestPath: "pyproject.toml",
//	    Formats:      []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/projlint/projlint/pkg/cache"
	"github.com/projlint/projlint/pkg/deps"
	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
)

const (
	// DefaultMaxDepth is the maximum dependency traversal depth for the
	// pipeline. This is intentionally more conservative than
	// deps.DefaultMaxDepth (50) to keep one-shot reports fast. Callers can
	// override it by setting MaxDepth explicitly.
	DefaultMaxDepth = 10

	// DefaultMaxNodes matches deps.DefaultMaxNodes.
	DefaultMaxNodes = 5000
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the validation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Lint + resolve options
	ManifestPath string   `json:"manifest_path,omitempty"`
	Package      string   `json:"package,omitempty"` // Resolve a registry package instead of a manifest
	Strict       bool     `json:"strict,omitempty"`  // Treat lint warnings as errors
	MaxDepth     int      `json:"max_depth,omitempty"`
	MaxNodes     int      `json:"max_nodes,omitempty"`
	IncludeDev   bool     `json:"include_dev,omitempty"`
	Extras       []string `json:"extras,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Include version/spec/license in graph labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Manifest is the parsed manifest, nil when resolving a bare package.
	Manifest *manifest.Manifest

	// Report is the lint report, nil when resolving a bare package.
	Report *manifest.Report

	// Graph is the resolved dependency graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Findings relate declared constraints to resolved versions.
	Findings []deps.Finding

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LintTime    time.Duration
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReportHit bool // Whether the lint report came from cache
	GraphHit  bool // Whether the resolved graph came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ManifestPath == "" && o.Package == "" {
		return fmt.Errorf("manifest_path or package is required")
	}
	if o.ManifestPath != "" && o.Package != "" {
		return fmt.Errorf("manifest_path and package are mutually exclusive")
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// resolveOptions converts pipeline options into resolver options.
func (o *Options) resolveOptions() deps.Options {
	logger := o.Logger
	return deps.Options{
		MaxDepth:   o.MaxDepth,
		MaxNodes:   o.MaxNodes,
		Refresh:    o.Refresh,
		IncludeDev: o.IncludeDev,
		Extras:     o.Extras,
		Logger:     func(msg string, args ...any) { logger.Warnf(msg, args...) },
	}
}

// GraphKeyOpts returns cache key options for graph resolution.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		MaxDepth: o.MaxDepth,
		MaxNodes: o.MaxNodes,
	}
}

// ReportKeyOpts returns cache key options for lint reports.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{Strict: o.Strict}
}
