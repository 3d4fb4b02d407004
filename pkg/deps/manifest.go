package deps

import (
	"context"
	"slices"
	"time"

	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
	"github.com/projlint/projlint/pkg/observability"
)

// Direct builds a graph of the manifest's direct dependencies.
//
// The project itself is the root node. Non-optional dependencies are
// always included; optional dependencies only when one of the selected
// Extras groups installs them; dev dependencies when IncludeDev is set.
// Node metadata carries the declared constraint spec.
func Direct(m *manifest.Manifest, opts Options) *graph.Graph {
	opts = opts.WithDefaults()
	g := graph.New(graph.Metadata{"manifest": m.Path()})

	rootID := manifest.NormalizeName(m.Project.Name)
	_ = g.AddNode(graph.Node{ID: rootID, Meta: graph.Metadata{
		"version": m.Project.Version,
		"root":    true,
	}})

	for _, dep := range selectDeps(m, opts) {
		_ = g.AddNode(graph.Node{ID: dep.id, Meta: dep.meta()})
		_ = g.AddEdge(graph.Edge{From: rootID, To: dep.id})
	}
	return g
}

// Expand builds the direct graph and crawls the registry to attach
// transitive dependencies beneath it. Fetch failures for individual
// packages are logged and skipped; the graph keeps the bare node.
func Expand(ctx context.Context, m *manifest.Manifest, f Fetcher, opts Options) (*graph.Graph, error) {
	c := newCrawler(ctx, f.Fetch, opts)
	c.g.Meta()["manifest"] = m.Path()

	rootID := manifest.NormalizeName(m.Project.Name)
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, rootID)
	defer func() {
		observability.Resolve().OnResolveComplete(ctx, rootID, c.g.NodeCount(), time.Since(start), ctx.Err())
	}()

	_ = c.g.AddNode(graph.Node{ID: rootID, Meta: graph.Metadata{
		"version": m.Project.Version,
		"root":    true,
	}})
	// The project itself is never fetched from the registry.
	c.visited[rootID] = true

	direct := selectDeps(m, c.opts)
	if len(direct) == 0 {
		return c.g, nil
	}

	for range workers {
		c.wg.Add(1)
		go c.worker()
	}

	for _, dep := range direct {
		_ = c.g.AddNode(graph.Node{ID: dep.id, Meta: dep.meta()})
		_ = c.g.AddEdge(graph.Edge{From: rootID, To: dep.id})
		c.enqueue(job{name: dep.id, depth: 1})
	}

	err := c.collect(rootID)
	c.shutdown()
	if err != nil {
		return nil, err
	}

	c.applyMeta()
	return c.g, nil
}

type directDep struct {
	id  string
	dep manifest.Dependency
	dev bool
}

func (d directDep) meta() graph.Metadata {
	meta := graph.Metadata{}
	if d.dep.Spec != "" {
		meta["spec"] = d.dep.Spec
	}
	if d.dep.Git != "" {
		meta["git"] = d.dep.Git
	}
	if d.dev {
		meta["dev"] = true
	}
	if d.dep.Optional {
		meta["optional"] = true
	}
	return meta
}

// selectDeps applies the IncludeDev and Extras options to the manifest's
// declared dependencies, returning them in sorted order.
func selectDeps(m *manifest.Manifest, opts Options) []directDep {
	wanted := make(map[string]bool)
	for _, group := range opts.Extras {
		for _, name := range m.Extras[group] {
			wanted[manifest.NormalizeName(name)] = true
		}
	}

	var out []directDep
	for name, dep := range m.Dependencies {
		id := manifest.NormalizeName(name)
		if dep.Optional && !wanted[id] {
			continue
		}
		out = append(out, directDep{id: id, dep: dep})
	}
	if opts.IncludeDev {
		for name, dep := range m.DevDependencies {
			out = append(out, directDep{id: manifest.NormalizeName(name), dep: dep, dev: true})
		}
	}

	slices.SortFunc(out, func(a, b directDep) int {
		if a.id < b.id {
			return -1
		}
		if a.id > b.id {
			return 1
		}
		return 0
	})
	return out
}
