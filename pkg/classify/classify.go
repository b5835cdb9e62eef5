// Package classify derives a serialization category from the six boolean
// serialization facts of a type.
//
// The categories follow a colour scheme used in the rendered diagrams:
//
//   - [Green]: derived Serialize/Deserialize
//   - [Blue]: derived, with from/into conversion attributes
//   - [Yellow]: hand-written Serialize/Deserialize implementations
//   - [White]: no serialization at all
//   - [Red]: an invalid combination of the above
//
// Each of Green, Blue and Yellow has a Gradient variant for types whose
// serialize and deserialize behaviour differ.
package classify

import "fmt"

// Category is the serialization classification of a type.
type Category int

const (
	// Red marks an invalid combination: derivation together with a custom
	// implementation, or conversion attributes without derivation.
	Red Category = iota
	// White marks a type with no serialization.
	White
	// Green marks symmetric derived serialization.
	Green
	// GreenGradient marks asymmetric derived serialization.
	GreenGradient
	// Blue marks symmetric conversion-based serialization.
	Blue
	// BlueGradient marks asymmetric conversion-based serialization.
	BlueGradient
	// Yellow marks symmetric hand-written serialization.
	Yellow
	// YellowGradient marks asymmetric hand-written serialization.
	YellowGradient
)

// All lists every category in declaration order.
var All = []Category{Red, White, Green, GreenGradient, Blue, BlueGradient, Yellow, YellowGradient}

var categoryNames = map[Category]string{
	Red:            "red",
	White:          "white",
	Green:          "green",
	GreenGradient:  "green_gradient",
	Blue:           "blue",
	BlueGradient:   "blue_gradient",
	Yellow:         "yellow",
	YellowGradient: "yellow_gradient",
}

// String returns the lowercase category name, e.g. "green_gradient".
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory is the inverse of [Category.String].
func ParseCategory(s string) (Category, error) {
	for _, c := range All {
		if categoryNames[c] == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsStrong reports whether edges leaving a type of this category are strong:
// only default derivation qualifies.
func (c Category) IsStrong() bool { return c == Green || c == GreenGradient }

// IsGradient reports whether the category denotes asymmetric behaviour.
func (c Category) IsGradient() bool {
	return c == GreenGradient || c == BlueGradient || c == YellowGradient
}

// Facts are the serialization facts of one type.
type Facts struct {
	Serialize          bool // #[derive(Serialize)]
	Deserialize        bool // #[derive(Deserialize)]
	From               bool // #[serde(from = ...)] or try_from
	Into               bool // #[serde(into = ...)]
	CustomSerializer   bool // impl Serialize for T
	CustomDeserializer bool // impl Deserialize for T
}

// Derived reports whether either direction is derived.
func (f Facts) Derived() bool { return f.Serialize || f.Deserialize }

// Converted reports whether either conversion attribute is present.
func (f Facts) Converted() bool { return f.From || f.Into }

// Custom reports whether either direction is implemented by hand.
func (f Facts) Custom() bool { return f.CustomSerializer || f.CustomDeserializer }

// Asymmetric reports whether any of the three fact pairs disagree.
func (f Facts) Asymmetric() bool {
	return f.Serialize != f.Deserialize ||
		f.From != f.Into ||
		f.CustomSerializer != f.CustomDeserializer
}

// Invalid reports whether derivation coexists with a custom implementation,
// or conversion attributes appear without derivation.
func (f Facts) Invalid() bool {
	return (f.Derived() && f.Custom()) || (!f.Derived() && f.Converted())
}

// Classify returns the category of f. Branches are evaluated in priority
// order: invalid, derived, custom, none.
func Classify(f Facts) Category {
	switch {
	case f.Invalid():
		return Red
	case f.Derived() && f.Converted():
		return pick(Blue, BlueGradient, f.Asymmetric())
	case f.Derived():
		return pick(Green, GreenGradient, f.Asymmetric())
	case f.Custom():
		return pick(Yellow, YellowGradient, f.Asymmetric())
	default:
		return White
	}
}

func pick(symmetric, gradient Category, asymmetric bool) Category {
	if asymmetric {
		return gradient
	}
	return symmetric
}
