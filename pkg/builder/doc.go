// Package builder turns a frozen registry into the classified type graph.
//
// For every public type [Build] runs the classifier, resolves each field
// reference and emits an [Edge] to the resolved target. Edge strength is
// decided by the source type: strong when it is green or green_gradient,
// weak otherwise. References matched by a skip rule produce no edge.
//
// # Determinism
//
// Nodes are ordered by ID and edges by (From, To). Per-type work may run
// concurrently ([Options.Workers]); results are merged by position, so the
// output is identical to a sequential run.
//
// # Errors
//
// Unresolved references do not stop the build. They are collected in
// [Result.Unresolved] and returned together as an
// *errors.UnresolvedReferences next to the partial result:
//
//	res, err := builder.Build(ctx, reg, resolver, builder.Options{})
//	var unresolved *errors.UnresolvedReferences
//	if errors.As(err, &unresolved) {
//	    // res is still usable
//	}
//
// A malformed identifier is fatal and yields no result.
package builder
