package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/serdegraph/pkg/classify"
)

// Kind distinguishes struct from enum declarations.
type Kind int

const (
	// KindUnknown is the zero value. It only ever describes an impl block
	// whose type declaration has not been seen; frozen registries contain
	// no record of this kind.
	KindUnknown Kind = iota
	// KindStruct is a struct declaration.
	KindStruct
	// KindEnum is an enum declaration.
	KindEnum
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindStruct:  "struct",
	KindEnum:    "enum",
}

// String returns "struct", "enum" or "unknown".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses "struct" or "enum" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "struct":
		return KindStruct, nil
	case "enum":
		return KindEnum, nil
	}
	return KindUnknown, fmt.Errorf("unknown kind %q (must be struct or enum)", s)
}

// Trait is a serialization trait a type can implement by hand.
type Trait int

const (
	// TraitSerialize is a hand-written Serialize implementation.
	TraitSerialize Trait = iota + 1
	// TraitDeserialize is a hand-written Deserialize implementation.
	TraitDeserialize
)

// String returns the trait name as written in source.
func (t Trait) String() string {
	switch t {
	case TraitSerialize:
		return "Serialize"
	case TraitDeserialize:
		return "Deserialize"
	}
	return fmt.Sprintf("trait(%d)", int(t))
}

// ParseTrait parses "Serialize" or "Deserialize". Any other trait name is
// irrelevant to classification and reported as an error so callers can skip it.
func ParseTrait(s string) (Trait, error) {
	switch s {
	case "Serialize":
		return TraitSerialize, nil
	case "Deserialize":
		return TraitDeserialize, nil
	}
	return 0, fmt.Errorf("unsupported trait %q", s)
}

// Record is the registry's model of one struct or enum declaration.
type Record struct {
	ID     string
	Kind   Kind
	Public bool

	Serialize   bool
	Deserialize bool

	// From and Into are only set when the declaration carries a serde
	// attribute.
	From bool
	Into bool

	CustomSerializer   bool
	CustomDeserializer bool

	// CustomFieldAnnotation is set when any field carries its own serde
	// attribute.
	CustomFieldAnnotation bool

	// References lists the field type references in first-seen order,
	// without duplicates and without wrapper names.
	References []string
}

// Facts returns the classification input of the record.
func (r *Record) Facts() classify.Facts {
	return classify.Facts{
		Serialize:          r.Serialize,
		Deserialize:        r.Deserialize,
		From:               r.From,
		Into:               r.Into,
		CustomSerializer:   r.CustomSerializer,
		CustomDeserializer: r.CustomDeserializer,
	}
}

// Category classifies the record.
func (r *Record) Category() classify.Category { return classify.Classify(r.Facts()) }

// AddReferences appends refs that are not yet present and are not wrappers.
func (r *Record) AddReferences(refs ...string) {
	for _, ref := range refs {
		if ref == "" || IsWrapper(ref) || slices.Contains(r.References, ref) {
			continue
		}
		r.References = append(r.References, ref)
	}
}

// clone returns a deep copy so callers cannot mutate a frozen registry.
func (r *Record) clone() Record {
	c := *r
	c.References = slices.Clone(r.References)
	return c
}
