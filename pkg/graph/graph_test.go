package graph

import (
	"errors"
	"reflect"
	"testing"
)

// diamond builds: root -> a, root -> b, a -> c, b -> c
func diamond(t *testing.T) *Graph {
	t.Helper()
	g := New(nil)
	for _, id := range []string{"root", "a", "b", "c"} {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range []Edge{{"root", "a"}, {"root", "b"}, {"a", "c"}, {"b", "c"}} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{ID: "numpy", Meta: Metadata{"version": "1.20.3"}}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "numpy"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate error = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("numpy")
	if !ok {
		t.Fatal("Node(numpy) not found")
	}
	if n.Meta["version"] != "1.20.3" {
		t.Errorf("Meta = %v", n.Meta)
	}

	// Meta is initialized when nil
	_ = g.AddNode(Node{ID: "bare"})
	bare, _ := g.Node("bare")
	if bare.Meta == nil {
		t.Error("Meta should be initialized to an empty map")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})

	if err := g.AddEdge(Edge{From: "missing", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "missing"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target error = %v", err)
	}
}

func TestAdjacency(t *testing.T) {
	g := diamond(t)

	if got := g.Children("root"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Children(root) = %v", got)
	}
	if got := g.Parents("c"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Parents(c) = %v", got)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 4 {
		t.Errorf("counts = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestRootsAndLeaves(t *testing.T) {
	g := diamond(t)

	roots := g.Roots()
	if len(roots) != 1 || roots[0].ID != "root" {
		t.Errorf("Roots() = %v", roots)
	}
	leaves := g.Leaves()
	if len(leaves) != 1 || leaves[0].ID != "c" {
		t.Errorf("Leaves() = %v", leaves)
	}
}

func TestReachable(t *testing.T) {
	g := diamond(t)
	_ = g.AddNode(Node{ID: "island"})

	got := g.Reachable("a")
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Reachable(a) = %v", got)
	}

	all := g.Reachable("root")
	if len(all) != 4 {
		t.Errorf("Reachable(root) = %v, want 4 nodes", all)
	}

	if got := g.Reachable("missing"); got != nil {
		t.Errorf("Reachable(missing) = %v, want nil", got)
	}
}

func TestValidate(t *testing.T) {
	g := diamond(t)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	// Introduce a cycle: c -> root
	if err := g.AddEdge(Edge{From: "c", To: "root"}); err != nil {
		t.Fatal(err)
	}
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
	}
}

func TestTopoSort(t *testing.T) {
	g := diamond(t)

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"root", "a", "b", "c"}) {
		t.Errorf("TopoSort() = %v", order)
	}

	_ = g.AddEdge(Edge{From: "c", To: "root"})
	if _, err := g.TopoSort(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("TopoSort on cyclic graph = %v, want ErrGraphHasCycle", err)
	}
}

func TestNodesOrder(t *testing.T) {
	g := New(Metadata{"source": "test"})
	for _, id := range []string{"z", "a", "m"} {
		_ = g.AddNode(Node{ID: id})
	}

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, []string{"z", "a", "m"}) {
		t.Errorf("Nodes() order = %v, want insertion order", ids)
	}

	if g.Meta()["source"] != "test" {
		t.Errorf("Meta() = %v", g.Meta())
	}
}
