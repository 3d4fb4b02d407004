package deps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
)

const testManifest = `
[tool.poetry]
name = "demo-model"
version = "0.1.0"
authors = ["Jane Doe <jane@example.org>"]

[tool.poetry.dependencies]
python = ">=3.8"
numpy = "^1.20"
pyyaml = "^5.0"
sphinx = {version = "^4.0", optional = true}

[tool.poetry.dev-dependencies]
pytest = "^6.0"

[tool.poetry.extras]
docs = ["sphinx"]

[build-system]
requires = ["poetry-core"]
build-backend = "poetry.core.masonry.api"
`

func parseTestManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(testManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

// fakeFetcher serves canned package metadata from memory.
type fakeFetcher struct {
	mu       sync.Mutex
	packages map[string]*Package
	calls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	pkg, ok := f.packages[name]
	if !ok {
		return nil, fmt.Errorf("unknown package %s", name)
	}
	return pkg, nil
}

func TestDirect(t *testing.T) {
	m := parseTestManifest(t)

	g := Direct(m, Options{})
	ids := nodeIDs(g)
	want := []string{"demo-model", "numpy", "pyyaml"}
	if !equalStrings(ids, want) {
		t.Errorf("nodes = %v, want %v", ids, want)
	}

	// Root node carries the project version.
	root, _ := g.Node("demo-model")
	if root.Meta["version"] != "0.1.0" {
		t.Errorf("root meta = %v", root.Meta)
	}

	// Direct nodes carry the declared spec.
	numpy, _ := g.Node("numpy")
	if numpy.Meta["spec"] != "^1.20" {
		t.Errorf("numpy meta = %v", numpy.Meta)
	}
}

func TestDirectWithExtrasAndDev(t *testing.T) {
	m := parseTestManifest(t)

	g := Direct(m, Options{IncludeDev: true, Extras: []string{"docs"}})
	ids := nodeIDs(g)
	want := []string{"demo-model", "numpy", "pytest", "pyyaml", "sphinx"}
	if !equalStrings(ids, want) {
		t.Errorf("nodes = %v, want %v", ids, want)
	}

	pytest, _ := g.Node("pytest")
	if pytest.Meta["dev"] != true {
		t.Errorf("pytest should be marked dev: %v", pytest.Meta)
	}
	sphinx, _ := g.Node("sphinx")
	if sphinx.Meta["optional"] != true {
		t.Errorf("sphinx should be marked optional: %v", sphinx.Meta)
	}
}

func TestExpand(t *testing.T) {
	m := parseTestManifest(t)

	f := &fakeFetcher{packages: map[string]*Package{
		"numpy":  {Name: "numpy", Version: "1.20.3"},
		"pyyaml": {Name: "pyyaml", Version: "5.4.1", Dependencies: []string{"six"}},
		"six":    {Name: "six", Version: "1.16.0"},
	}}

	g, err := Expand(context.Background(), m, f, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	ids := nodeIDs(g)
	want := []string{"demo-model", "numpy", "pyyaml", "six"}
	if !equalStrings(ids, want) {
		t.Errorf("nodes = %v, want %v", ids, want)
	}

	// Fetched metadata is merged without losing the declared spec.
	pyyaml, _ := g.Node("pyyaml")
	if pyyaml.Meta["spec"] != "^5.0" || pyyaml.Meta["version"] != "5.4.1" {
		t.Errorf("pyyaml meta = %v", pyyaml.Meta)
	}

	// Transitive edge exists.
	if children := g.Children("pyyaml"); len(children) != 1 || children[0] != "six" {
		t.Errorf("Children(pyyaml) = %v", children)
	}

	// The project itself is never fetched.
	for _, call := range f.calls {
		if call == "demo-model" {
			t.Error("root package should not be fetched from the registry")
		}
	}
}

func TestExpandFetchFailure(t *testing.T) {
	m := parseTestManifest(t)

	// numpy resolves, pyyaml is unknown to the registry.
	f := &fakeFetcher{packages: map[string]*Package{
		"numpy": {Name: "numpy", Version: "1.20.3"},
	}}

	var logged []string
	var mu sync.Mutex
	g, err := Expand(context.Background(), m, f, Options{
		Logger: func(format string, args ...any) {
			mu.Lock()
			logged = append(logged, fmt.Sprintf(format, args...))
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Expand should tolerate per-package failures: %v", err)
	}

	// The bare node survives even though the fetch failed.
	if _, ok := g.Node("pyyaml"); !ok {
		t.Error("pyyaml node should remain in the graph")
	}
	if len(logged) == 0 {
		t.Error("fetch failure should be logged")
	}
}

func TestExpandMaxDepth(t *testing.T) {
	m := parseTestManifest(t)

	f := &fakeFetcher{packages: map[string]*Package{
		"numpy":  {Name: "numpy", Version: "1.20.3"},
		"pyyaml": {Name: "pyyaml", Version: "5.4.1", Dependencies: []string{"six"}},
		"six":    {Name: "six", Version: "1.16.0", Dependencies: []string{"deep"}},
		"deep":   {Name: "deep", Version: "1.0.0"},
	}}

	g, err := Expand(context.Background(), m, f, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// six is added at depth 2; its dependencies are not crawled.
	if _, ok := g.Node("six"); !ok {
		t.Error("six should be present")
	}
	if _, ok := g.Node("deep"); ok {
		t.Error("deep exceeds MaxDepth and should be absent")
	}
}

func TestExpandCancelled(t *testing.T) {
	m := parseTestManifest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{packages: map[string]*Package{}}
	_, err := Expand(ctx, m, f, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expand on cancelled context = %v", err)
	}
}

// blockingFetcher holds every fetch until the context is cancelled.
type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, name string, refresh bool) (*Package, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExpandCancelMidCrawl(t *testing.T) {
	// Far more direct dependencies than the jobs buffer holds, so enqueue
	// goroutines are parked on the channel when the crawl is cancelled.
	m := &manifest.Manifest{
		Project:      manifest.Project{Name: "wide", Version: "0.1.0"},
		Dependencies: make(map[string]manifest.Dependency),
	}
	for i := range 200 {
		name := fmt.Sprintf("pkg-%03d", i)
		m.Dependencies[name] = manifest.Dependency{Name: name, Spec: "^1.0"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := Expand(ctx, m, blockingFetcher{}, Options{})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expand = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expand did not return after cancellation")
	}
}

func TestAudit(t *testing.T) {
	m := parseTestManifest(t)

	g := graph.New(nil)
	_ = g.AddNode(graph.Node{ID: "demo-model", Meta: graph.Metadata{"root": true}})
	_ = g.AddNode(graph.Node{ID: "numpy", Meta: graph.Metadata{"version": "1.20.3"}})
	_ = g.AddNode(graph.Node{ID: "pyyaml", Meta: graph.Metadata{"version": "6.0.1"}})
	_ = g.AddNode(graph.Node{ID: "six", Meta: graph.Metadata{"version": "1.16.0"}})

	findings := Audit(m, g)

	byName := make(map[string]Finding)
	for _, f := range findings {
		byName[f.Name] = f
	}

	if f := byName["numpy"]; !f.Satisfied || f.Resolved != "1.20.3" {
		t.Errorf("numpy finding = %+v", f)
	}
	// 6.0.1 is outside ^5.0
	if f := byName["pyyaml"]; f.Satisfied {
		t.Errorf("pyyaml finding = %+v, want unsatisfied", f)
	}
	// six has no declared constraint
	if _, ok := byName["six"]; ok {
		t.Error("undeclared packages should not be audited")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d", opts.MaxDepth)
	}
	if opts.MaxNodes != DefaultMaxNodes {
		t.Errorf("MaxNodes = %d", opts.MaxNodes)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v", opts.CacheTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a no-op")
	}

	// Explicit values survive.
	opts = Options{MaxDepth: 3}.WithDefaults()
	if opts.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", opts.MaxDepth)
	}
}

func nodeIDs(g *graph.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
