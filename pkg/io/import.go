package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/ident"
	"github.com/matzehuels/serdegraph/pkg/registry"
)

type model struct {
	Declarations []declaration `json:"declarations"`
	Impls        []impl        `json:"impls"`
}

type location struct {
	ID   string `json:"id,omitempty"`
	File string `json:"file,omitempty"`
	Name string `json:"name,omitempty"`
}

type declaration struct {
	location
	Kind           string   `json:"kind"`
	Public         bool     `json:"public"`
	Serialize      bool     `json:"serialize"`
	Deserialize    bool     `json:"deserialize"`
	SerdeAttribute bool     `json:"serde_attribute"`
	From           bool     `json:"from"`
	Into           bool     `json:"into"`
	CustomField    bool     `json:"custom_field"`
	Fields         []string `json:"fields"`
}

type impl struct {
	location
	Trait string `json:"trait"`
}

// id returns the registry identifier, deriving it from the source file
// when no explicit id is given.
func (l location) id() (string, error) {
	switch {
	case l.ID != "" && (l.File != "" || l.Name != ""):
		return "", fmt.Errorf("%s: give either id or file and name", l.ID)
	case l.ID != "":
		return l.ID, nil
	case l.File == "" || l.Name == "":
		return "", fmt.Errorf("missing id (or file and name)")
	}
	return ident.Qualify(ident.ModuleFromFile(l.File), l.Name), nil
}

// ReadOptions configures model import.
type ReadOptions struct {
	// StrictImpls turns impl blocks for undeclared types into an error
	// instead of dropping them.
	StrictImpls bool
}

// Model is an imported, frozen registry.
type Model struct {
	Registry *registry.Registry
	// Orphans lists impl targets that were never declared. They are not
	// part of the registry.
	Orphans []string
}

// ReadModel decodes a JSON model from r into a frozen registry.
//
// The input is an object with "declarations" and "impls" arrays:
//
//	{
//	  "declarations": [
//	    {"id": "block::Block", "kind": "struct", "public": true,
//	     "serialize": true, "deserialize": true, "fields": ["Header"]},
//	    {"file": "block/header.rs", "name": "Header", "kind": "struct"}
//	  ],
//	  "impls": [{"id": "block/header::Header", "trait": "Serialize"}]
//	}
//
// A location is either an "id" or a "file" relative to the scanned root
// plus the type "name". Impls for types that are declared later in the
// document, or in another file, are merged into their declaration.
//
// Malformed input yields an INVALID_MODEL error. ReadModel does not close r.
func ReadModel(r io.Reader, opts ReadOptions) (*Model, error) {
	var data model
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidModel, err, "decode model")
	}

	reg := registry.New()
	for i, im := range data.Impls {
		id, err := im.id()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidModel, err, "impl %d", i)
		}
		trait, err := registry.ParseTrait(im.Trait)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidModel, err, "impl %s", id)
		}
		if err := reg.Implement(id, trait); err != nil {
			return nil, err
		}
	}

	for i, d := range data.Declarations {
		id, err := d.id()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidModel, err, "declaration %d", i)
		}
		kind, err := registry.ParseKind(d.Kind)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidModel, err, "declaration %s", id)
		}
		if err := reg.Declare(registry.Declaration{
			ID:             id,
			Kind:           kind,
			Public:         d.Public,
			Serialize:      d.Serialize,
			Deserialize:    d.Deserialize,
			SerdeAttribute: d.SerdeAttribute,
			From:           d.From,
			Into:           d.Into,
			CustomField:    d.CustomField,
			Fields:         d.Fields,
		}); err != nil {
			return nil, err
		}
	}

	orphans := reg.Freeze()
	if opts.StrictImpls && len(orphans) > 0 {
		return nil, errs.New(errs.ErrCodeOrphanImpl, "impl for undeclared type %s (%d total)", orphans[0], len(orphans))
	}
	return &Model{Registry: reg, Orphans: orphans}, nil
}

// ImportModel reads a JSON model file at path. See [ReadModel].
func ImportModel(path string, opts ReadOptions) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "model %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadModel(f, opts)
}
