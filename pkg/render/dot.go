// Package render turns DAG documents into Graphviz DOT source and renders
// it to SVG in-process via go-graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/phylograph/treedag/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes node ids and parameter indices in labels. When
	// false, nodes show only their subsplit.
	Detailed bool
}

// ToDOT converts a DAG document to Graphviz DOT. Root nodes get a filled
// highlight, fake leaf nodes are plain boxes labeled with their taxon
// name, and edges leaving a parent's rotated orientation are dashed.
func ToDOT(doc graph.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph subsplits {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range doc.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(doc, n, opts.Detailed))}
		switch {
		case n.Leaf:
			attrs = append(attrs, "style=filled", "fillcolor=lightgrey")
		case n.Root:
			attrs = append(attrs, "fillcolor=lightgoldenrod")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		if e.Rotated {
			fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed];\n", e.Parent, e.Child)
		} else {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.Parent, e.Child)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(doc graph.Document, n graph.Node, detailed bool) string {
	label := subsplitLabel(doc, n)
	if detailed {
		label = fmt.Sprintf("%d\n%s", n.ID, label)
	}
	return label
}

// subsplitLabel renders a node as its two clades separated by a bar; fake
// leaves collapse to their taxon name when taxa are known.
func subsplitLabel(doc graph.Document, n graph.Node) string {
	half := len(n.Subsplit) / 2
	if n.Leaf && n.ID < len(doc.Taxa) {
		return doc.Taxa[n.ID]
	}
	return n.Subsplit[:half] + "|" + n.Subsplit[half:]
}

// RenderSVG renders DOT source to SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox rewrites the outer svg tag so the image scales to its
// container instead of using Graphviz's absolute point sizes.
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
