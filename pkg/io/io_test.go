package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/projlint/projlint/pkg/graph"
	"github.com/projlint/projlint/pkg/manifest"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Metadata{"manifest": "pyproject.toml"})
	_ = g.AddNode(graph.Node{ID: "demo", Meta: graph.Metadata{"root": true}})
	_ = g.AddNode(graph.Node{ID: "numpy", Meta: graph.Metadata{"version": "1.20.3", "spec": "^1.20"}})
	_ = g.AddNode(graph.Node{ID: "pyyaml"})
	_ = g.AddEdge(graph.Edge{From: "demo", To: "numpy"})
	_ = g.AddEdge(graph.Edge{From: "demo", To: "pyyaml"})
	return g
}

func TestRoundTrip(t *testing.T) {
	g := buildGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	g2, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if g2.NodeCount() != g.NodeCount() {
		t.Errorf("node count = %d, want %d", g2.NodeCount(), g.NodeCount())
	}
	if g2.EdgeCount() != g.EdgeCount() {
		t.Errorf("edge count = %d, want %d", g2.EdgeCount(), g.EdgeCount())
	}
	if g2.Meta()["manifest"] != "pyproject.toml" {
		t.Errorf("graph meta = %v", g2.Meta())
	}

	numpy, ok := g2.Node("numpy")
	if !ok {
		t.Fatal("numpy missing after round trip")
	}
	if numpy.Meta["spec"] != "^1.20" {
		t.Errorf("numpy meta = %v", numpy.Meta)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"nodes": [`},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`},
		{"unknown edge target", `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "b"}]}`},
		{"empty node id", `{"nodes": [{"id": ""}], "edges": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	g2, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if g2.NodeCount() != 3 {
		t.Errorf("node count = %d", g2.NodeCount())
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteReport(t *testing.T) {
	m, err := manifest.Parse([]byte(`
[tool.poetry]
name = "demo"
version = "0.1.0"
authors = ["Jane Doe <jane@example.org>"]

[tool.poetry.dependencies]
python = ">=3.8"

[build-system]
requires = ["poetry-core>=1.0"]
build-backend = "poetry.core.masonry.api"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	report := manifest.Lint(m)

	var buf bytes.Buffer
	if err := WriteReport(report, &buf); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"id"`) || !strings.Contains(out, `"generated_at"`) {
		t.Errorf("report output missing expected fields: %s", out)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := ExportReport(report, path); err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
}
