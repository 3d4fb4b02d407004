// Package pkg provides the core libraries for projlint manifest validation.
//
// # Overview
//
// projlint validates Python project manifests (pyproject.toml), resolves
// their transitive dependency graphs against PyPI, and renders the results.
// The pkg directory is organized into these areas:
//
//  1. [manifest] - Manifest parsing, schema validation, and lint rules
//  2. [deps] - Dependency resolution against package registries
//  3. [graph] - Directed graph structure with traversal and cycle detection
//  4. [cache] - Pluggable caching (file, Redis, MongoDB)
//  5. [registry] - HTTP clients for package registries
//  6. [pipeline] - Orchestration (lint → resolve → render)
//  7. [render] - Graphviz DOT and SVG output
//  8. [store] - SQLite-backed lint run history
//
// # Architecture
//
// The typical data flow through projlint:
//
//	pyproject.toml
//	         ↓
//	    [manifest] package (parse + lint)
//	         ↓
//	    [deps] package (expand against PyPI, via [registry] + [cache])
//	         ↓
//	    [graph] package (structure + traversal)
//	         ↓
//	    [render] package (DOT/SVG) or [io] package (JSON)
//
// # Quick Start
//
// Lint a manifest and expand its dependency graph:
//
//	import (
//	    "context"
//	    "github.com/projlint/projlint/pkg/cache"
//	    "github.com/projlint/projlint/pkg/deps"
//	    "github.com/projlint/projlint/pkg/manifest"
//	)
//
//	// 1. Parse and lint
//	m, _ := manifest.Load("pyproject.toml")
//	report := manifest.Lint(m)
//
//	// 2. Resolve the dependency graph
//	backend, _ := cache.NewFileCache(".projlint-cache")
//	fetcher := deps.NewPyPIFetcher(backend, deps.Options{})
//	g, _ := deps.Expand(context.Background(), m, fetcher, deps.Options{
//	    MaxDepth: 10,
//	    MaxNodes: 1000,
//	})
//
//	// 3. Audit declared constraints against resolved versions
//	findings := deps.Audit(m, g)
//
// Or run everything through the pipeline:
//
//	runner := pipeline.NewRunner(backend, fetcher, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: "pyproject.toml",
//	    Formats:      []string{"svg"},
//	})
//
// # Main Packages
//
// [manifest] parses both PEP 621 [project] tables and legacy [tool.poetry]
// layouts into one model, validates against an embedded JSON schema, and
// applies packaging lint rules.
//
// [deps] crawls registries concurrently with bounded depth and node budgets.
// Fetchers are pluggable; the default talks to the PyPI JSON API.
//
// [cache] offers file, Redis, and MongoDB backends behind one interface,
// with a Keyer that namespaces registry responses, graphs, and reports.
//
// [store] records lint runs in SQLite for the history command and the
// HTTP API.
package pkg
