// Package io reads type models and reads and writes classification reports
// as JSON.
//
// # Model Format
//
// The model is produced by a source extractor and lists every struct and
// enum declaration plus every hand-written Serialize/Deserialize impl:
//
//	{
//	  "declarations": [
//	    {
//	      "id": "block::Block",
//	      "kind": "struct",
//	      "public": true,
//	      "serialize": true,
//	      "deserialize": true,
//	      "fields": ["Header", "Vec<transaction::Data>"]
//	    },
//	    {"file": "block/height.rs", "name": "Height", "kind": "struct", "public": true}
//	  ],
//	  "impls": [
//	    {"id": "block/height::Height", "trait": "Serialize"}
//	  ]
//	}
//
// # Declaration Fields
//
// Required:
//   - id, or file and name: the type's location. A file path relative to
//     the scanned root becomes the module path with ".rs" dropped.
//   - kind: "struct" or "enum"
//
// Optional (all default to false or empty):
//   - public: the type is visible outside its module
//   - serialize, deserialize: derived traits
//   - serde_attribute: the type carries a serde attribute; from and into
//     are ignored without it
//   - from, into: conversion-based serialization
//   - custom_field: some field carries its own serde attribute
//   - fields: raw field type expressions
//
// # Import
//
// [ImportModel] reads a file, [ReadModel] any io.Reader. Both return a
// frozen registry together with the impl targets that were never declared:
//
//	m, err := io.ImportModel("model.json", io.ReadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, id := range m.Orphans {
//	    log.Warn("impl without declaration", "type", id)
//	}
//
// # Report
//
// [WriteReport] writes one entry per public type with its kind, category
// and ordered strong and weak targets. [ReadReport] reads it back into a
// build result so cached reports can be rendered again without rebuilding.
package io
