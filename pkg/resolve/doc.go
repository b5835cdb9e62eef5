// Package resolve maps field type references to registry keys.
//
// A field in "block::Block" may name its type as "Header", "block::Header",
// "header::Header" or a full key such as "block/header::Header". The
// [Resolver] turns such a reference into exactly one registry key using the
// naming conventions of the analysed codebase, tried in a fixed priority
// order, and falls back to a declarative exception table ([Rules]) for the
// cases the conventions cannot cover.
//
// # Conventions
//
// Module segments are the snake_case form of the type they hold, so a bare
// "Height" referenced from "block/commit::Commit" is found at
// "block/height::Height". See [Resolver.Resolve] for the full chain.
//
// # Exceptions
//
// [Rules] hold three kinds of entries:
//
//   - Domains: top-level folders that relative references may be rooted
//     under ("transaction::Data" -> "abci/transaction::Data").
//   - Pairs: literal (source, reference) -> target mappings.
//   - Skips: references to foreign types that must produce no edge.
//
// [DefaultRules] returns the table for tendermint-rs. Other codebases load
// their own with [LoadRules].
//
// # Failure
//
// A reference nothing matches is an *errors.UnresolvedReferenceError that
// names both the source type and the reference string.
package resolve
