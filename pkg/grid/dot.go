package grid

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the divider adjacency of t to Graphviz DOT format. Cells are
// boxes; each divider is a small diamond linked to the cells on both sides,
// clustered by group. The result can be rendered with [RenderSVG].
func ToDOT(t *Topology) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18];\n")
	buf.WriteString("  nodesep=0.3;\n")
	fmt.Fprintf(&buf, "  label=%q;\n", t.Name)
	buf.WriteString("\n")

	for _, c := range t.Cells {
		fmt.Fprintf(&buf, "  %q;\n", c)
	}

	for i, g := range t.Groups {
		fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%s (%s)", g.ID, g.Axis))
		buf.WriteString("    style=dashed;\n")
		for _, d := range t.GroupDividers(g.ID) {
			fmt.Fprintf(&buf, "    %q [shape=diamond, style=filled, fillcolor=lightgrey, fontsize=10, label=%q];\n",
				"div:"+d.ID, strconv.Itoa(d.Index))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, d := range t.Dividers {
		for _, c := range d.Before {
			fmt.Fprintf(&buf, "  %q -- %q;\n", c, "div:"+d.ID)
		}
		for _, c := range d.After {
			fmt.Fprintf(&buf, "  %q -- %q;\n", "div:"+d.ID, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
