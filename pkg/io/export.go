// Package io serializes dependency graphs and lint reports to JSON for
// storage, transfer, and round-trip processing.
package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
)

type graphDoc struct {
	Meta  graph.Metadata `json:"meta,omitempty"`
	Nodes []node         `json:"nodes"`
	Edges []edge         `json:"edges"`
}

type node struct {
	ID   string         `json:"id"`
	Meta graph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a dependency graph as JSON and writes it to w.
// The output includes graph metadata, all nodes (with metadata), and
// edges. This format can be re-imported with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	meta := g.Meta()
	if len(meta) == 0 {
		meta = nil
	}
	out := graphDoc{
		Meta:  meta,
		Nodes: make([]node, len(g.Nodes())),
		Edges: make([]edge, len(g.Edges())),
	}

	for i, n := range g.Nodes() {
		nd := node{ID: n.ID}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes[i] = nd
	}
	for i, e := range g.Edges() {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a dependency graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// WriteReport encodes a lint report as indented JSON and writes it to w.
func WriteReport(r *manifest.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// ExportReport writes a lint report to a JSON file at path.
func ExportReport(r *manifest.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteReport(r, f)
}
