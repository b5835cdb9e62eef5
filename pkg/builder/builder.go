package builder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/serdegraph/pkg/classify"
	"github.com/matzehuels/serdegraph/pkg/dag"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/registry"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// Strength tells whether an edge comes from a symmetric, derived type.
type Strength int

const (
	// Weak edges start at any type that is not green or green_gradient.
	Weak Strength = iota
	// Strong edges start at a green or green_gradient type.
	Strong
)

func (s Strength) String() string {
	if s == Strong {
		return "strong"
	}
	return "weak"
}

// StrengthOf returns the strength of every edge leaving a type of
// category c.
func StrengthOf(c classify.Category) Strength {
	if c.IsStrong() {
		return Strong
	}
	return Weak
}

// Edge is a resolved field reference.
type Edge struct {
	From     string
	To       string
	Strength Strength
}

// Node is the per-type output consumed by renderers.
type Node struct {
	ID       string
	Kind     registry.Kind
	Category classify.Category
	// Strong and Weak hold edge targets in field order, without
	// duplicates. At most one of them is non-empty.
	Strong []string
	Weak   []string
}

// Options configures a build.
type Options struct {
	// OnlyJSON drops types that are not serializable at all (white) and
	// all weak edges.
	OnlyJSON bool

	// FailFast stops resolving a type at its first unresolved reference
	// and makes Build return that error, for the lowest type ID, with no
	// result.
	FailFast bool

	// Workers bounds how many types are resolved concurrently. Values
	// below 2 resolve sequentially. Output does not depend on it.
	Workers int

	// Logger receives per-reference debug output. Nil discards it.
	Logger *log.Logger
}

// Result is the outcome of a build.
type Result struct {
	// Nodes holds one entry per public type, ordered by ID.
	Nodes []Node
	// Edges holds every edge ordered by (From, To).
	Edges []Edge
	// Hidden holds edge targets that are not in Nodes: private types,
	// and white types when OnlyJSON is set. Their edge lists are empty.
	Hidden []Node
	// Unresolved lists every reference nothing could resolve, ordered by
	// (source, reference).
	Unresolved []*errs.UnresolvedReferenceError
	// Skipped counts references dropped by skip rules.
	Skipped int
}

type typeResult struct {
	node       Node
	include    bool
	skipped    int
	unresolved []*errs.UnresolvedReferenceError
}

// Build classifies every public type in reg and resolves its field
// references with res.
//
// Unresolved references are collected: Build returns the partial result
// together with an *errors.UnresolvedReferences. With FailFast it returns
// only the first one. A *errors.DecompositionError aborts the build and
// yields a nil result.
func Build(ctx context.Context, reg *registry.Registry, res *resolve.Resolver, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	public := reg.Public()
	results := make([]typeResult, len(public))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, rec := range public {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr, err := buildType(rec, res, opts, logger)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.FailFast {
		for _, tr := range results {
			if len(tr.unresolved) > 0 {
				return nil, tr.unresolved[0]
			}
		}
	}

	out := assemble(reg, results)
	if len(out.Unresolved) > 0 {
		return out, errs.NewUnresolvedReferences(out.Unresolved)
	}
	return out, nil
}

func buildType(rec registry.Record, res *resolve.Resolver, opts Options, logger *log.Logger) (typeResult, error) {
	cat := rec.Category()
	tr := typeResult{
		node:    Node{ID: rec.ID, Kind: rec.Kind, Category: cat},
		include: !(opts.OnlyJSON && cat == classify.White),
	}
	if !tr.include {
		return tr, nil
	}

	strength := StrengthOf(cat)
	for _, ref := range rec.References {
		r, err := res.Resolve(rec.ID, ref)
		if err != nil {
			var ue *errs.UnresolvedReferenceError
			if errors.As(err, &ue) {
				logger.Debug("unresolved reference", "type", rec.ID, "ref", ref)
				tr.unresolved = append(tr.unresolved, ue)
				if opts.FailFast {
					return tr, nil
				}
				continue
			}
			return tr, err
		}
		if r.Skipped {
			logger.Debug("skipped reference", "type", rec.ID, "ref", ref)
			tr.skipped++
			continue
		}
		logger.Debug("resolved reference", "type", rec.ID, "ref", ref, "target", r.Target, "rule", r.Rule)

		switch {
		case strength == Strong:
			tr.node.Strong = appendUnique(tr.node.Strong, r.Target)
		case !opts.OnlyJSON:
			tr.node.Weak = appendUnique(tr.node.Weak, r.Target)
		}
	}
	return tr, nil
}

func assemble(reg *registry.Registry, results []typeResult) *Result {
	out := &Result{}
	included := make(map[string]bool, len(results))
	for _, tr := range results {
		out.Skipped += tr.skipped
		out.Unresolved = append(out.Unresolved, tr.unresolved...)
		if !tr.include {
			continue
		}
		included[tr.node.ID] = true
		out.Nodes = append(out.Nodes, tr.node)
	}

	hidden := make(map[string]bool)
	for _, n := range out.Nodes {
		for _, to := range n.Strong {
			out.Edges = append(out.Edges, Edge{From: n.ID, To: to, Strength: Strong})
		}
		for _, to := range n.Weak {
			out.Edges = append(out.Edges, Edge{From: n.ID, To: to, Strength: Weak})
		}
	}
	SortEdges(out.Edges)

	for _, e := range out.Edges {
		if included[e.To] || hidden[e.To] {
			continue
		}
		hidden[e.To] = true
		if rec, ok := reg.Get(e.To); ok {
			out.Hidden = append(out.Hidden, Node{ID: rec.ID, Kind: rec.Kind, Category: rec.Category()})
		}
	}
	slices.SortFunc(out.Hidden, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	if agg := errs.NewUnresolvedReferences(out.Unresolved); agg != nil {
		out.Unresolved = agg.Errs
	}
	return out
}

// SortEdges orders edges by (From, To).
func SortEdges(edges []Edge) {
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
}

func appendUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// Stats summarizes a result.
type Stats struct {
	Types      int
	Categories map[classify.Category]int
	Strong     int
	Weak       int
	Skipped    int
	Unresolved int
}

// Stats counts nodes per category and edges per strength.
func (r *Result) Stats() Stats {
	s := Stats{
		Types:      len(r.Nodes),
		Categories: make(map[classify.Category]int, len(classify.All)),
		Skipped:    r.Skipped,
		Unresolved: len(r.Unresolved),
	}
	for _, n := range r.Nodes {
		s.Categories[n.Category]++
	}
	for _, e := range r.Edges {
		if e.Strength == Strong {
			s.Strong++
		} else {
			s.Weak++
		}
	}
	return s
}

// Node returns the entry for id among Nodes and Hidden.
func (r *Result) Node(id string) (Node, bool) {
	for _, set := range [][]Node{r.Nodes, r.Hidden} {
		i, ok := slices.BinarySearchFunc(set, id, func(n Node, id string) int { return cmp.Compare(n.ID, id) })
		if ok {
			return set[i], true
		}
	}
	return Node{}, false
}

// Metadata keys set by [Result.Graph].
const (
	MetaKind     = "kind"
	MetaCategory = "category"
	MetaPublic   = "public"
	MetaStrength = "strength"
)

// Graph converts the result into a [dag.DAG]. Node metadata carries kind,
// category and visibility; edge metadata carries strength.
func (r *Result) Graph() (*dag.DAG, error) {
	g := dag.New()
	add := func(n Node, public bool) error {
		return g.AddNode(dag.Node{ID: n.ID, Meta: dag.Metadata{
			MetaKind:     n.Kind.String(),
			MetaCategory: n.Category.String(),
			MetaPublic:   public,
		}})
	}
	for _, n := range r.Nodes {
		if err := add(n, true); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, n := range r.Hidden {
		if err := add(n, false); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range r.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To, Meta: dag.Metadata{MetaStrength: e.Strength.String()}}); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}
