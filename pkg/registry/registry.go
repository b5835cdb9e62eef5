package registry

import (
	"maps"
	"slices"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/ident"
)

// Declaration is one struct or enum declaration as reported by the source
// extractor.
type Declaration struct {
	ID     string // fully-qualified identifier, e.g. "block/header::Header"
	Kind   Kind
	Public bool

	Serialize   bool
	Deserialize bool

	// SerdeAttribute reports whether the type carries a #[serde(...)]
	// attribute at all. From and Into are ignored without it.
	SerdeAttribute bool
	From           bool
	Into           bool

	// CustomField reports whether any field carries a #[serde(...)] attribute.
	CustomField bool

	// Fields are raw field type expressions, e.g. "Option<Vec<Header>>".
	Fields []string
}

// pendingImpl holds impl facts for a type that has not been declared yet.
type pendingImpl struct {
	serializer   bool
	deserializer bool
}

// Registry maps fully-qualified identifiers to records.
//
// A registry is populated with [Registry.Declare] and [Registry.Implement]
// in any order, then frozen with [Registry.Freeze]. Records are only ever
// created by a declaration; impl blocks seen first are parked as pending
// facts and merged when the declaration arrives. After Freeze every mutator
// fails and the registry is safe for concurrent reads.
//
// The zero value is not usable - use New.
type Registry struct {
	records map[string]*Record
	pending map[string]*pendingImpl
	orphans []string
	frozen  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		pending: make(map[string]*pendingImpl),
	}
}

// Declare adds or updates the record for d.ID. A repeated declaration of
// the same identifier overwrites the derive facts and appends new field
// references. Public never reverts to false, and From/Into only change
// when the declaration carries a serde attribute.
func (r *Registry) Declare(d Declaration) error {
	if r.frozen {
		return errs.New(errs.ErrCodeFrozenRegistry, "declare %s: registry is frozen", d.ID)
	}
	if _, err := ident.Decompose(d.ID); err != nil {
		return err
	}
	if d.Kind != KindStruct && d.Kind != KindEnum {
		return errs.New(errs.ErrCodeInvalidModel, "declare %s: invalid kind %s", d.ID, d.Kind)
	}

	var refs []string
	for _, field := range d.Fields {
		fieldRefs, err := ExtractReferences(field)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidModel, err, "declare %s", d.ID)
		}
		refs = append(refs, fieldRefs...)
	}

	rec, ok := r.records[d.ID]
	if !ok {
		rec = &Record{ID: d.ID}
		if p, ok := r.pending[d.ID]; ok {
			rec.CustomSerializer = p.serializer
			rec.CustomDeserializer = p.deserializer
			delete(r.pending, d.ID)
		}
		r.records[d.ID] = rec
	}

	rec.Kind = d.Kind
	rec.Public = rec.Public || d.Public
	rec.Serialize = d.Serialize
	rec.Deserialize = d.Deserialize
	if d.SerdeAttribute {
		rec.From, rec.Into = d.From, d.Into
	}
	rec.CustomFieldAnnotation = rec.CustomFieldAnnotation || d.CustomField
	rec.AddReferences(refs...)
	return nil
}

// Implement records a hand-written implementation of t for id. The
// identifier does not need to be declared yet.
func (r *Registry) Implement(id string, t Trait) error {
	if r.frozen {
		return errs.New(errs.ErrCodeFrozenRegistry, "implement %s for %s: registry is frozen", t, id)
	}
	if _, err := ident.Decompose(id); err != nil {
		return err
	}

	if rec, ok := r.records[id]; ok {
		setTrait(&rec.CustomSerializer, &rec.CustomDeserializer, t)
		return nil
	}
	p, ok := r.pending[id]
	if !ok {
		p = &pendingImpl{}
		r.pending[id] = p
	}
	setTrait(&p.serializer, &p.deserializer, t)
	return nil
}

func setTrait(ser, de *bool, t Trait) {
	switch t {
	case TraitSerialize:
		*ser = true
	case TraitDeserialize:
		*de = true
	}
}

// Freeze ends population. Impl blocks whose type was never declared are
// dropped and returned as a sorted list of orphan identifiers; no record
// of unknown kind survives. Calling Freeze again returns the same orphans.
func (r *Registry) Freeze() []string {
	if r.frozen {
		return slices.Clone(r.orphans)
	}
	r.orphans = slices.Sorted(maps.Keys(r.pending))
	r.pending = nil
	r.frozen = true
	return slices.Clone(r.orphans)
}

// Frozen reports whether [Registry.Freeze] has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Has reports whether id is a registry key.
func (r *Registry) Has(id string) bool {
	_, ok := r.records[id]
	return ok
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (Record, bool) {
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.records) }

// IDs returns all identifiers in ascending order.
func (r *Registry) IDs() []string { return slices.Sorted(maps.Keys(r.records)) }

// Records returns copies of all records ordered by identifier.
func (r *Registry) Records() []Record {
	ids := r.IDs()
	out := make([]Record, len(ids))
	for i, id := range ids {
		out[i] = r.records[id].clone()
	}
	return out
}

// Public returns copies of the public records ordered by identifier.
func (r *Registry) Public() []Record {
	var out []Record
	for _, id := range r.IDs() {
		if rec := r.records[id]; rec.Public {
			out = append(out, rec.clone())
		}
	}
	return out
}
