// Package ident splits and rebuilds the fully-qualified type identifiers used
// as registry keys.
//
// An identifier has the form "<module-path>::<namespace>::<Name>", where the
// module path is made of "/"-separated directory segments and the namespace
// of "::"-separated segments:
//
//	block/header::Header          -> ("block", "header", "Header")
//	some/path/with::complex::Type -> ("some/path", "with::complex", "Type")
//
// Registry keys always contain at least one "::". Field references may be
// bare names ("Header") or relative paths ("vote::Power").
package ident

import (
	"path/filepath"
	"strings"
	"unicode"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
)

const (
	// PathSep separates module path segments (directories).
	PathSep = "/"
	// NamespaceSep separates namespace segments and the short name.
	NamespaceSep = "::"
)

// Path is a decomposed identifier. Each component may be empty.
type Path struct {
	Module    string // leading "/"-separated segments, e.g. "some/path"
	Namespace string // "::"-separated segments, e.g. "with::complex"
	Name      string // short type name, e.g. "Type"
}

// Decompose splits a registry identifier. It returns a
// *errors.DecompositionError when id has no namespace separator.
func Decompose(id string) (Path, error) {
	if !strings.Contains(id, NamespaceSep) {
		return Path{}, &errs.DecompositionError{ID: id}
	}
	return Split(id), nil
}

// Split decomposes a field reference. Unlike [Decompose] it accepts bare
// names, which yield a Path with only Name set.
func Split(ref string) Path {
	segs := strings.Split(ref, NamespaceSep)
	name := segs[len(segs)-1]
	segs = segs[:len(segs)-1]
	if len(segs) == 0 {
		return Path{Name: name}
	}

	dirs := strings.Split(segs[0], PathSep)
	segs[0] = dirs[len(dirs)-1]
	return Path{
		Module:    strings.Join(dirs[:len(dirs)-1], PathSep),
		Namespace: strings.Join(segs, NamespaceSep),
		Name:      name,
	}
}

// Prefix joins module path and namespace with "/", the form used as a file
// location: ("block", "header") -> "block/header".
func (p Path) Prefix() string { return Join(p.Module, p.Namespace, PathSep) }

// Object joins namespace and short name with "::": "header::Header".
func (p Path) Object() string { return Join(p.Namespace, p.Name, NamespaceSep) }

// String rebuilds the identifier.
func (p Path) String() string { return Join(p.Prefix(), p.Name, NamespaceSep) }

// IsSimple reports whether the path is a bare short name.
func (p Path) IsSimple() bool { return p.Module == "" && p.Namespace == "" }

// IsRelative reports whether the path has no module path. Bare names are
// relative too.
func (p Path) IsRelative() bool { return p.Module == "" }

// Join joins a and b with sep, dropping empty operands.
func Join(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + sep + b
	}
}

// Qualify builds a registry identifier from a module path and type name.
func Qualify(module, name string) string { return module + NamespaceSep + name }

// ModuleFromFile derives a module path from a source file path relative to
// the scanned root: "block/header.rs" -> "block/header".
func ModuleFromFile(rel string) string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	rel = strings.TrimPrefix(rel, "./")
	return strings.TrimSuffix(rel, ".rs")
}

// =============================================================================
// Naming Conversion
// =============================================================================

// Snaker converts CamelCase type names to the lowercase_with_underscores
// form used for module segments. Overrides take precedence over the general
// rule.
type Snaker struct {
	overrides map[string]string
}

// NewSnaker returns a Snaker with the given overrides. The map is copied.
func NewSnaker(overrides map[string]string) Snaker {
	m := make(map[string]string, len(overrides))
	for k, v := range overrides {
		m[k] = v
	}
	return Snaker{overrides: m}
}

// Snake converts s: an underscore is inserted before every uppercase letter
// except the first character, then everything is lowercased. Unlike common
// acronym-aware converters, "HTTPRequest" becomes "h_t_t_p_request".
func (s Snaker) Snake(name string) string {
	if o, ok := s.overrides[name]; ok {
		return o
	}
	return Snake(name)
}

// Snake applies the general conversion without overrides.
func Snake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range []rune(name) {
		if unicode.IsUpper(r) {
			if i != 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
