package resolve

import (
	"fmt"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/ident"
)

// Rule identifies the step of the resolution chain that produced a result.
type Rule int

const (
	RuleNone Rule = iota
	// RuleExact: the reference is itself a registry key.
	RuleExact
	// RuleSameNamespace: a bare name declared next to the source.
	RuleSameNamespace
	// RuleRelative: a relative reference whose last namespace segment is
	// the snake_case form of the name, e.g. vote::Power -> vote/power::Power.
	RuleRelative
	// RuleSubModule: a bare name in a child module of the source.
	RuleSubModule
	// RuleSuperModule: a bare name in a sibling module one level up.
	RuleSuperModule
	// RuleDomainQualified: a relative reference rooted under a domain.
	RuleDomainQualified
	// RuleDomainShortened: a bare name in a snake_case module under a domain.
	RuleDomainShortened
	// RulePair: a named-pair exception.
	RulePair
	// RuleSkip: a known non-resolvable field.
	RuleSkip
)

var ruleNames = [...]string{
	RuleNone:            "none",
	RuleExact:           "exact",
	RuleSameNamespace:   "same-namespace",
	RuleRelative:        "relative",
	RuleSubModule:       "sub-module",
	RuleSuperModule:     "super-module",
	RuleDomainQualified: "domain-qualified",
	RuleDomainShortened: "domain-shortened",
	RulePair:            "pair",
	RuleSkip:            "skip",
}

func (r Rule) String() string {
	if r >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Resolution is the outcome of resolving one field reference.
type Resolution struct {
	// Target is the registry key the reference resolves to. Empty when
	// Skipped.
	Target string
	// Rule is the chain step that matched.
	Rule Rule
	// Skipped is set when the reference is a known foreign type and must
	// not produce an edge.
	Skipped bool
}

// Step is one candidate tried during resolution.
type Step struct {
	Rule      Rule
	Candidate string
	Found     bool
}

// Lookup reports whether an identifier is a registry key.
// [registry.Registry] satisfies it.
type Lookup interface {
	Has(id string) bool
}

// Resolver maps (source, reference) pairs to registry keys. It only reads
// its registry and rules and is safe for concurrent use once both are
// fixed.
type Resolver struct {
	reg   Lookup
	rules *Rules
	snake ident.Snaker
}

// New creates a resolver over reg. A nil rules value behaves like [Empty].
func New(reg Lookup, rules *Rules) *Resolver {
	if rules == nil {
		rules = Empty()
	}
	return &Resolver{
		reg:   reg,
		rules: rules,
		snake: ident.NewSnaker(rules.SnakeOverrides),
	}
}

// Rules returns the rule set in use.
func (r *Resolver) Rules() *Rules { return r.rules }

// Resolve applies the chain in priority order and stops at the first
// candidate present in the registry:
//
//  1. exact
//  2. same-namespace (bare names)
//  3. relative-shortened (no module path)
//  4. sub-module (bare names)
//  5. super-module (bare names)
//  6. domain-qualified, then domain-shortened, per domain
//  7. named pairs
//  8. skips
//
// A malformed source yields *errors.DecompositionError. When nothing
// matches the error is *errors.UnresolvedReferenceError.
func (r *Resolver) Resolve(source, ref string) (Resolution, error) {
	return r.resolve(source, ref, nil)
}

// Trace is Resolve that also returns every candidate it tried, in order.
func (r *Resolver) Trace(source, ref string) (Resolution, []Step, error) {
	var steps []Step
	res, err := r.resolve(source, ref, func(s Step) { steps = append(steps, s) })
	return res, steps, err
}

func (r *Resolver) resolve(source, ref string, trace func(Step)) (Resolution, error) {
	src, err := ident.Decompose(source)
	if err != nil {
		return Resolution{}, err
	}
	f := ident.Split(ref)
	simple, relative := f.IsSimple(), f.IsRelative()

	try := func(rule Rule, candidate string) bool {
		found := r.reg.Has(candidate)
		if trace != nil {
			trace(Step{Rule: rule, Candidate: candidate, Found: found})
		}
		return found
	}
	hit := func(rule Rule, candidate string) (Resolution, error) {
		return Resolution{Target: candidate, Rule: rule}, nil
	}

	if try(RuleExact, ref) {
		return hit(RuleExact, ref)
	}

	snake := r.snake.Snake(f.Name)
	if simple {
		if c := ident.Join(src.Prefix(), f.Name, ident.NamespaceSep); try(RuleSameNamespace, c) {
			return hit(RuleSameNamespace, c)
		}
	}
	if relative {
		if c := nested(f.Prefix(), snake, f.Name); try(RuleRelative, c) {
			return hit(RuleRelative, c)
		}
	}
	if simple {
		if c := nested(src.Prefix(), snake, f.Name); try(RuleSubModule, c) {
			return hit(RuleSubModule, c)
		}
		if c := nested(src.Module, snake, f.Name); try(RuleSuperModule, c) {
			return hit(RuleSuperModule, c)
		}
	}

	for _, domain := range r.rules.Domains {
		if relative {
			if c := ident.Join(domain, f.Object(), ident.PathSep); try(RuleDomainQualified, c) {
				return hit(RuleDomainQualified, c)
			}
		}
		if simple {
			if c := nested(domain, snake, f.Name); try(RuleDomainShortened, c) {
				return hit(RuleDomainShortened, c)
			}
		}
	}

	for _, p := range r.rules.Pairs {
		if p.matches(source, ref) && try(RulePair, p.Target) {
			return hit(RulePair, p.Target)
		}
	}
	for _, s := range r.rules.Skips {
		if s.Source == source && s.Reference == ref {
			if trace != nil {
				trace(Step{Rule: RuleSkip, Found: true})
			}
			return Resolution{Rule: RuleSkip, Skipped: true}, nil
		}
	}

	return Resolution{}, &errs.UnresolvedReferenceError{Source: source, Reference: ref}
}

// nested builds "<prefix>/<segment>::<name>".
func nested(prefix, segment, name string) string {
	return ident.Join(ident.Join(prefix, segment, ident.PathSep), name, ident.NamespaceSep)
}
