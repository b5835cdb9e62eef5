package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the category and kind to node labels.
	// When false, only the node ID is shown.
	Detailed bool

	// RankDir is the Graphviz layout direction ("LR", "TB", ...).
	// Empty means left to right.
	RankDir string
}

// palette holds fill and stroke colours per category, shared with the
// draw.io styles.
var palette = map[string][2]string{
	"red":    {"#f8cecc", "#b85450"},
	"green":  {"#d5e8d4", "#82b366"},
	"blue":   {"#dae8fc", "#6c8ebf"},
	"yellow": {"#fff2cc", "#d6b656"},
	"white":  {"#ffffff", "#000000"},
}

var shapes = map[string]string{
	"struct": "box",
	"enum":   "ellipse",
}

// ToDOT converts a type graph to Graphviz DOT format. The graph is
// expected to carry the metadata written by [builder.Result.Graph]:
// nodes are filled by category (gradient categories fade to white),
// shaped by kind, and drawn dashed when the type is not public. Weak edges
// are dotted. Edges that close a cycle do not constrain ranking, so
// recursive types keep a readable layout.
func ToDOT(g *dag.DAG, opts Options) string {
	rankdir := cmp.Or(opts.RankDir, "LR")

	back := make(map[[2]string]bool)
	for _, e := range g.BackEdges() {
		back[e] = true
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph G {\n  rankdir=%s;\n", rankdir)
	buf.WriteString(`  bgcolor="transparent";
  ranksep=0.5;
  nodesep=0.3;
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
  edge [arrowhead=normal];

`)
	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(*n, fmtLabel(*n, opts.Detailed)), ", "))
	}
	buf.WriteString("\n")

	edges := g.Edges()
	sortEdges(edges)
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q", e.From, e.To)
		var attrs []string
		if e.Meta.String(builder.MetaStrength) == builder.Weak.String() {
			attrs = append(attrs, "style=dotted")
		}
		if back[[2]string{e.From, e.To}] {
			attrs = append(attrs, "constraint=false")
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func sortEdges(edges []dag.Edge) {
	slices.SortStableFunc(edges, func(a, b dag.Edge) int {
		return cmp.Or(strings.Compare(a.From, b.From), strings.Compare(a.To, b.To))
	})
}

func fmtLabel(n dag.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}

	if shape, ok := shapes[n.Meta.String(builder.MetaKind)]; ok {
		attrs = append(attrs, "shape="+shape)
	} else if n.Meta.String(builder.MetaKind) != "" {
		attrs = append(attrs, "shape=diamond")
	}

	category := n.Meta.String(builder.MetaCategory)
	base, gradient := strings.CutSuffix(category, "_gradient")
	if colors, ok := palette[base]; ok {
		fill := colors[0]
		if gradient {
			fill += ":#ffffff"
		}
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill), fmt.Sprintf("color=%q", colors[1]))
	}

	style := "rounded,filled"
	if public, ok := n.Meta[builder.MetaPublic].(bool); ok && !public {
		style += ",dashed"
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", style))
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
