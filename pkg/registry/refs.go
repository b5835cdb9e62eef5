package registry

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Wrappers are type names that never name a registry type: primitive
// integers, containers and a few standard-library utility types. They are
// stripped from field references.
var Wrappers = []string{
	"i64", "u64", "i32", "u32", "i16", "u16", "i8", "u8",
	"Option", "Vec", "bool", "Box", "String",
	"std::time::Duration",
	"PathBuf",  // std::path::PathBuf
	"BTreeMap", // std::collections::BTreeMap
}

// IsWrapper reports whether path is one of [Wrappers].
func IsWrapper(path string) bool { return slices.Contains(Wrappers, path) }

// ExtractReferences returns every type path named by a field type
// expression, excluding [Wrappers]. Generic arguments of a path segment are
// listed before the path itself, so "Option<Vec<block::Header>>" yields
// ["block::Header"] and "HashMap<Key, Value>" yields ["Key", "Value",
// "HashMap"]. The result may contain duplicates; [Record.AddReferences]
// removes them.
//
// Supported syntax: paths, generic arguments (including associated type
// bindings and lifetimes), tuples, arrays and slices, references, raw
// pointers, trait objects, parenthesized Fn sugar and bare fn pointers.
// Trait objects contribute nothing; for function types only the return type
// is considered.
func ExtractReferences(expr string) ([]string, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}
	p := &typeParser{toks: toks, src: expr}
	refs, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return refs, nil
}

// =============================================================================
// Tokenizer
// =============================================================================

func tokenize(s string) ([]string, error) {
	var toks []string
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == ':' && i+1 < len(rs) && rs[i+1] == ':':
			toks = append(toks, "::")
			i += 2
		case r == '-' && i+1 < len(rs) && rs[i+1] == '>':
			toks = append(toks, "->")
			i += 2
		case strings.ContainsRune("<>()[],;&*+=!?", r):
			toks = append(toks, string(r))
			i++
		case r == '\'' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		default:
			return nil, fmt.Errorf("type expression %q: unexpected character %q", s, r)
		}
	}
	return toks, nil
}

// =============================================================================
// Parser
// =============================================================================

type typeParser struct {
	toks []string
	pos  int
	src  string
}

func (p *typeParser) done() bool { return p.pos >= len(p.toks) }

func (p *typeParser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *typeParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *typeParser) accept(tok string) bool {
	if p.peek() == tok {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		return p.errorf("expected %q, got %q", tok, p.peek())
	}
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type expression %q: %s", p.src, fmt.Sprintf(format, args...))
}

func (p *typeParser) parseType() ([]string, error) {
	switch tok := p.peek(); {
	case tok == "":
		return nil, p.errorf("unexpected end of expression")
	case tok == "&":
		p.next()
		if strings.HasPrefix(p.peek(), "'") {
			p.next()
		}
		p.accept("mut")
		return p.parseType()
	case tok == "*":
		p.next()
		if !p.accept("const") && !p.accept("mut") {
			return nil, p.errorf("raw pointer needs const or mut")
		}
		return p.parseType()
	case tok == "(":
		p.next()
		return p.parseTypeList(")")
	case tok == "[":
		return p.parseArray()
	case tok == "!" || tok == "_":
		p.next()
		return nil, nil
	case tok == "dyn" || tok == "impl":
		// trait objects never name a registry type
		p.next()
		_, err := p.parseBounds()
		return nil, err
	case tok == "fn" || tok == "unsafe" || tok == "extern":
		return p.parseBareFn()
	case tok == "<":
		return p.parseQualifiedPath()
	default:
		return p.parsePath()
	}
}

// parseTypeList parses comma-separated types up to and including close.
func (p *typeParser) parseTypeList(close string) ([]string, error) {
	var refs []string
	for !p.accept(close) {
		r, err := p.parseType()
		if err != nil {
			return nil, err
		}
		refs = append(refs, r...)
		if !p.accept(",") {
			if err := p.expect(close); err != nil {
				return nil, err
			}
			break
		}
	}
	return refs, nil
}

func (p *typeParser) parseArray() ([]string, error) {
	p.next()
	refs, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.accept(";") {
		// length expression
		depth := 0
		for !p.done() && (depth > 0 || p.peek() != "]") {
			switch p.next() {
			case "[", "(", "<":
				depth++
			case "]", ")", ">":
				depth--
			}
		}
	}
	return refs, p.expect("]")
}

func (p *typeParser) parseBounds() ([]string, error) {
	var refs []string
	for {
		if strings.HasPrefix(p.peek(), "'") {
			p.next()
		} else {
			p.accept("?")
			r, err := p.parsePath()
			if err != nil {
				return nil, err
			}
			refs = append(refs, r...)
		}
		if !p.accept("+") {
			return refs, nil
		}
	}
}

func (p *typeParser) parseBareFn() ([]string, error) {
	for p.peek() != "fn" {
		if p.done() {
			return nil, p.errorf("expected fn")
		}
		p.next()
	}
	p.next()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	if _, err := p.parseTypeList(")"); err != nil {
		return nil, err
	}
	if p.accept("->") {
		return p.parseType()
	}
	return nil, nil
}

// parseQualifiedPath handles <T as Trait>::Assoc by discarding the qualified
// self type and parsing the trailing path.
func (p *typeParser) parseQualifiedPath() ([]string, error) {
	p.next()
	if _, err := p.parseType(); err != nil {
		return nil, err
	}
	if p.accept("as") {
		if _, err := p.parsePath(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	if err := p.expect("::"); err != nil {
		return nil, err
	}
	return p.parsePath()
}

// parsePath parses a path type. The references of all segment arguments come
// first, followed by the full path unless it is a wrapper.
func (p *typeParser) parsePath() ([]string, error) {
	p.accept("::")

	var names []string
	var segArgs [][]string
	for {
		name := p.next()
		if !isIdent(name) {
			return nil, p.errorf("expected identifier, got %q", name)
		}
		names = append(names, name)

		args, err := p.parseSegmentArgs()
		if err != nil {
			return nil, err
		}
		segArgs = append(segArgs, args)

		if !p.accept("::") {
			break
		}
		if p.peek() == "<" {
			// turbofish: Foo::<T>
			args, err := p.parseSegmentArgs()
			if err != nil {
				return nil, err
			}
			segArgs[len(segArgs)-1] = append(segArgs[len(segArgs)-1], args...)
			if !p.accept("::") {
				break
			}
		}
	}

	var refs []string
	for _, args := range segArgs {
		refs = append(refs, args...)
	}
	if path := strings.Join(names, "::"); !IsWrapper(path) && !isLiteral(path) {
		refs = append(refs, path)
	}
	return refs, nil
}

func (p *typeParser) parseSegmentArgs() ([]string, error) {
	switch p.peek() {
	case "<":
		p.next()
		var refs []string
		for !p.accept(">") {
			switch {
			case strings.HasPrefix(p.peek(), "'"):
				p.next()
			case p.pos+1 < len(p.toks) && isIdent(p.peek()) && p.toks[p.pos+1] == "=":
				p.pos += 2
				fallthrough
			default:
				r, err := p.parseType()
				if err != nil {
					return nil, err
				}
				refs = append(refs, r...)
			}
			if !p.accept(",") {
				if err := p.expect(">"); err != nil {
					return nil, err
				}
				break
			}
		}
		return refs, nil
	case "(":
		// Fn(A, B) -> R sugar: only the output names a type we link to.
		p.next()
		if _, err := p.parseTypeList(")"); err != nil {
			return nil, err
		}
		if p.accept("->") {
			return p.parseType()
		}
		return nil, nil
	}
	return nil, nil
}

func isIdent(tok string) bool {
	if tok == "" || strings.HasPrefix(tok, "'") {
		return false
	}
	r := []rune(tok)[0]
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isLiteral reports whether a "path" is really a const generic argument
// such as the 32 in Foo<32>.
func isLiteral(path string) bool {
	return path != "" && unicode.IsDigit([]rune(path)[0])
}
