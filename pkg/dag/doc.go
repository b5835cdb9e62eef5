// Package dag provides the directed graph that links types to the types
// their fields reference.
//
// # Overview
//
// Every public type becomes a [Node] keyed by its registry identifier, and
// every resolved field reference becomes an [Edge] from the declaring type
// to the referenced one. Classification results travel as [Metadata] on
// nodes and edges so renderers stay independent of the engine packages.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "block::Block"})
//	g.AddNode(dag.Node{ID: "block/header::Header"})
//	g.AddEdge(dag.Edge{From: "block::Block", To: "block/header::Header"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Reachable].
//
// # Cycles
//
// Type graphs are not required to be acyclic: a tree node may hold its
// children and two messages may embed each other through an Option. The
// name is kept for the common case; [DAG.BackEdges] lists the edges that
// close cycles.
//
// # Ordering
//
// [DAG.Nodes] and [DAG.Sources] return nodes sorted by ID.
// [DAG.Edges] keeps insertion order, which the builder makes deterministic.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Read-only access from
// multiple goroutines is fine once the graph is built.
package dag
