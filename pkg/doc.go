// Package pkg provides the libraries behind serdegraph, a classifier and
// linker for serde-annotated Rust types.
//
// # Overview
//
// serdegraph reads a model of Rust type declarations and impl blocks,
// classifies every public type by how it serializes and resolves the
// types its fields refer to. The pkg directory is organized by stage:
//
//  1. [io] - JSON model import and JSON report export
//  2. [registry], [ident] - the frozen type registry and identifier rules
//  3. [classify] - the serialization category of a type
//  4. [resolve] - field reference resolution and its exception rules
//  5. [builder], [dag] - classification plus resolution, as a graph
//  6. [render] - draw.io CSV and Graphviz output
//  7. [pipeline] - orchestration with caching
//  8. [cache], [config], [observability] - infrastructure
//
// # Architecture
//
//	JSON model
//	    ↓
//	[io] package (decode, merge impls into declarations)
//	    ↓
//	[registry] package (frozen records, field references)
//	    ↓
//	[builder] package ([classify] + [resolve] per public type)
//	    ↓
//	[render] package (CSV, DOT, SVG, PNG) and [io] (JSON report)
//
// # Quick Start
//
//	m, err := io.ImportModel("model.json", io.ReadOptions{})
//	if err != nil {
//	    return err
//	}
//	res, err := builder.Build(ctx, m.Registry,
//	    resolve.New(m.Registry, resolve.DefaultRules()), builder.Options{})
//	if err != nil && res == nil {
//	    return err
//	}
//	drawio.Write(res, os.Stdout, drawio.Options{})
//
// Most callers use [pipeline.Runner], which adds caching and every output
// format in one call.
//
// [io]: github.com/matzehuels/serdegraph/pkg/io
// [registry]: github.com/matzehuels/serdegraph/pkg/registry
// [ident]: github.com/matzehuels/serdegraph/pkg/ident
// [classify]: github.com/matzehuels/serdegraph/pkg/classify
// [resolve]: github.com/matzehuels/serdegraph/pkg/resolve
// [builder]: github.com/matzehuels/serdegraph/pkg/builder
// [dag]: github.com/matzehuels/serdegraph/pkg/dag
// [render]: github.com/matzehuels/serdegraph/pkg/render
// [pipeline]: github.com/matzehuels/serdegraph/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/serdegraph/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/serdegraph/pkg/cache
// [config]: github.com/matzehuels/serdegraph/pkg/config
// [observability]: github.com/matzehuels/serdegraph/pkg/observability
package pkg
