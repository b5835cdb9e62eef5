// Package registry holds the type records extracted from a codebase.
//
// # Overview
//
// A [Record] describes one struct or enum: its visibility, the
// serialization facts found in its attributes and impl blocks, and the type
// references of its fields. The [Registry] maps fully-qualified identifiers
// ("block/header::Header") to records.
//
// # Population
//
// The source extractor reports declarations and impl blocks in whatever
// order it discovers them:
//
//	reg := registry.New()
//	reg.Implement("block/height::Height", registry.TraitSerialize)
//	reg.Declare(registry.Declaration{
//	    ID:     "block/height::Height",
//	    Kind:   registry.KindStruct,
//	    Public: true,
//	    Fields: []string{"u64"},
//	})
//	orphans := reg.Freeze()
//
// The impl seen first is parked and merged into the record when its
// declaration arrives. Impls whose type is never declared in the same module
// are returned by [Registry.Freeze] as orphans.
//
// # Field References
//
// Field types are given as type expressions and reduced to the paths they
// name with [ExtractReferences]; container and primitive wrappers such as
// Option, Vec and u64 are dropped. References are deduplicated with the
// first occurrence kept.
//
// # Concurrency
//
// A registry is not safe for concurrent mutation. Once frozen it is
// read-only and may be shared between goroutines.
package registry
