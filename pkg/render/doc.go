// Package render groups the output formats for classified type graphs.
//
// # Overview
//
// Rendering starts from a [builder.Result]:
//
//   - [drawio]: CSV for draw.io's CSV import, one row per public type with
//     its category as style name and its strong and weak targets as links
//   - [nodelink]: Graphviz DOT, rendered in-process to SVG or PNG
//
// The JSON report lives in the io package.
//
// # Colours
//
// Both renderers use the same palette:
//
//	red     #f8cecc   invalid combination of features
//	white   #ffffff   not serializable
//	green   #d5e8d4   derived Serialize/Deserialize
//	blue    #dae8fc   conversion through another type (from/into)
//	yellow  #fff2cc   hand-written Serialize/Deserialize
//
// Gradient variants fade to white and mark asymmetric serialization.
//
// [builder.Result]: github.com/matzehuels/serdegraph/pkg/builder.Result
// [drawio]: github.com/matzehuels/serdegraph/pkg/render/drawio
// [nodelink]: github.com/matzehuels/serdegraph/pkg/render/nodelink
package render
