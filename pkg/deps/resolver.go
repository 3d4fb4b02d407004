package deps

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/observability"
)

const workers = 20

// Fetcher retrieves package metadata from a registry.
type Fetcher interface {
	// Fetch retrieves package information by name. If refresh is true,
	// cached data is bypassed.
	Fetch(ctx context.Context, name string, refresh bool) (*Package, error)
}

// Resolver builds a dependency graph starting from a root package.
type Resolver interface {
	// Resolve fetches the package and its transitive dependencies,
	// returning a graph with nodes for each package and edges for
	// dependencies.
	Resolve(ctx context.Context, pkg string, opts Options) (*graph.Graph, error)
	// Name returns the resolver's identifier (e.g., "pypi").
	Name() string
}

// Registry implements Resolver by wrapping a Fetcher with concurrent crawling.
type Registry struct {
	name    string
	fetcher Fetcher
}

// NewRegistry creates a Resolver that crawls dependencies using the given Fetcher.
func NewRegistry(name string, fetcher Fetcher) *Registry {
	return &Registry{name: name, fetcher: fetcher}
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Resolve crawls dependencies starting from pkg, respecting Options limits.
func (r *Registry) Resolve(ctx context.Context, pkg string, opts Options) (*graph.Graph, error) {
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, pkg)

	c := newCrawler(ctx, r.fetcher.Fetch, opts)
	g, err := c.run(pkg)

	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	observability.Resolve().OnResolveComplete(ctx, pkg, nodes, time.Since(start), err)
	return g, err
}

type crawler struct {
	ctx   context.Context
	opts  Options
	fetch func(context.Context, string, bool) (*Package, error)

	g    *graph.Graph
	meta map[string]graph.Metadata

	jobs    chan job
	results chan result
	quit    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	visited   map[string]bool
	pending   int64
	nodeCount int32
}

type job struct {
	name  string
	depth int
}

type result struct {
	job
	pkg *Package
	err error
}

func newCrawler(ctx context.Context, fetch func(context.Context, string, bool) (*Package, error), opts Options) *crawler {
	return &crawler{
		ctx:     ctx,
		opts:    opts.WithDefaults(),
		fetch:   fetch,
		g:       graph.New(nil),
		meta:    make(map[string]graph.Metadata),
		visited: make(map[string]bool),
		jobs:    make(chan job, workers*2),
		results: make(chan result, workers*2),
		quit:    make(chan struct{}),
	}
}

func (c *crawler) run(root string) (*graph.Graph, error) {
	for range workers {
		c.wg.Add(1)
		go c.worker()
	}

	c.enqueue(job{name: root})
	err := c.collect(root)
	c.shutdown()
	if err != nil {
		return nil, err
	}

	c.applyMeta()
	return c.g, nil
}

// shutdown releases the workers and any enqueue goroutines still parked
// on the jobs channel. Closing jobs instead would panic those senders.
func (c *crawler) shutdown() {
	close(c.quit)
	c.wg.Wait()
}

func (c *crawler) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.quit:
			return
		case j := <-c.jobs:
			if c.ctx.Err() != nil {
				atomic.AddInt64(&c.pending, -1)
				continue
			}
			pkg, err := c.fetch(c.ctx, j.name, c.opts.Refresh)
			select {
			case c.results <- result{job: j, pkg: pkg, err: err}:
			case <-c.quit:
				return
			}
		}
	}
}

func (c *crawler) enqueue(j job) bool {
	c.mu.Lock()
	if c.visited[j.name] {
		c.mu.Unlock()
		return false
	}
	c.visited[j.name] = true
	c.mu.Unlock()

	atomic.AddInt64(&c.pending, 1)

	go func() {
		select {
		case c.jobs <- j:
		case <-c.quit:
			atomic.AddInt64(&c.pending, -1)
		}
	}()
	return true
}

func (c *crawler) collect(root string) error {
	for {
		select {
		case r := <-c.results:
			if err := c.handle(r, root); err != nil {
				return err
			}
			if atomic.AddInt64(&c.pending, -1) == 0 {
				return nil
			}
		case <-c.ctx.Done():
			return c.ctx.Err()
		}
	}
}

func (c *crawler) handle(r result, root string) error {
	if r.err != nil {
		if r.name == root {
			return r.err
		}
		observability.Resolve().OnFetchError(c.ctx, r.name, r.err)
		c.opts.Logger("fetch failed: %s: %v", r.name, r.err)
		return nil
	}

	_ = c.g.AddNode(graph.Node{ID: r.name})
	atomic.AddInt32(&c.nodeCount, 1)

	if meta := r.pkg.Metadata(); len(meta) > 0 {
		c.mu.Lock()
		c.meta[r.name] = meta
		c.mu.Unlock()
	}

	c.enqueueDeps(r)
	return nil
}

func (c *crawler) enqueueDeps(r result) {
	if r.depth >= c.opts.MaxDepth || len(r.pkg.Dependencies) == 0 {
		return
	}

	next := r.depth + 1
	count := atomic.LoadInt32(&c.nodeCount)

	for _, dep := range r.pkg.Dependencies {
		_ = c.g.AddNode(graph.Node{ID: dep})
		_ = c.g.AddEdge(graph.Edge{From: r.name, To: dep})

		if int(count) < c.opts.MaxNodes {
			c.enqueue(job{name: dep, depth: next})
		}
	}
}

// applyMeta merges fetched metadata into nodes, preserving any keys set
// when the node was first added (e.g., the manifest's constraint spec).
func (c *crawler) applyMeta() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, m := range c.meta {
		if n, ok := c.g.Node(id); ok {
			if n.Meta == nil {
				n.Meta = graph.Metadata{}
			}
			maps.Copy(n.Meta, m)
		}
	}
}
