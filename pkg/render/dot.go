// Package render turns dependency graphs into Graphviz DOT text and
// rendered SVG images.
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/projlint/projlint/pkg/graph"
)

// Options configures dependency diagram rendering.
type Options struct {
	// Detailed includes node metadata (version, spec, license) in labels.
	// When false, only the package name is shown.
	Detailed bool
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// The project root is drawn with a double outline. Dev dependencies get
// dashed outlines and optional dependencies a grey fill, so the role of
// each package is visible at a glance.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// labelKeys are the metadata entries worth showing in detailed labels,
// in display order.
var labelKeys = []string{"version", "spec", "license"}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	var parts []string
	shown := make(map[string]bool)
	for _, k := range labelKeys {
		if v, ok := n.Meta[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
			shown[k] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if !shown[k] && !isFlagKey(k) {
			parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
		}
	}

	if len(parts) == 0 {
		return n.ID
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// isFlagKey reports whether a metadata key is a role marker expressed
// through node styling rather than label text.
func isFlagKey(k string) bool {
	return k == "root" || k == "dev" || k == "optional"
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Meta["root"] == true:
		attrs = append(attrs, "peripheries=2", "fillcolor=lightyellow")
	case n.Meta["dev"] == true:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case n.Meta["optional"] == true:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the image scales to
// its container instead of using Graphviz's fixed point dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
