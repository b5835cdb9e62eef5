// Package nodelink renders type graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz. Each
// type is a node coloured by its classification category; each resolved
// field reference is an arrow from the declaring type to the referenced
// one.
//
// # Usage
//
// Convert a graph to DOT format, then render it:
//
//	g, _ := result.Graph()
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Styling
//
//   - Fill colour: category (red, white, green, blue, yellow); gradient
//     categories fade to white
//   - Shape: box for structs, ellipse for enums
//   - Dashed outline: a type that is not public but is referenced
//   - Solid arrows: strong edges; dotted arrows: weak edges
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. No external Graphviz installation is required.
package nodelink
