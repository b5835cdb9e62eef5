package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/classify"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/registry"
)

type report struct {
	RunID      string       `json:"run_id,omitempty"`
	Generator  string       `json:"generator,omitempty"`
	Stats      stats        `json:"stats"`
	Types      []typeEntry  `json:"types"`
	Hidden     []typeEntry  `json:"hidden,omitempty"`
	Unresolved []unresolved `json:"unresolved,omitempty"`
	Orphans    []string     `json:"orphans,omitempty"`
}

type stats struct {
	Types      int                       `json:"types"`
	Categories map[classify.Category]int `json:"categories"`
	Strong     int                       `json:"strong_edges"`
	Weak       int                       `json:"weak_edges"`
	Skipped    int                       `json:"skipped"`
	Unresolved int                       `json:"unresolved"`
}

type typeEntry struct {
	ID       string            `json:"id"`
	Kind     string            `json:"kind"`
	Category classify.Category `json:"category"`
	Strong   []string          `json:"strong,omitempty"`
	Weak     []string          `json:"weak,omitempty"`
}

type unresolved struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
}

// ReportOptions adds run information to a report.
type ReportOptions struct {
	RunID string
	// Generator names the producing tool, see buildinfo.Generator.
	Generator string
	// Orphans lists impl targets dropped while loading the model.
	Orphans []string
}

// WriteReport encodes a build result as JSON: one entry per public type
// with its kind, category and ordered strong and weak targets, followed by
// hidden targets and unresolved references. The output can be read back
// with [ReadReport].
func WriteReport(res *builder.Result, w io.Writer, opts ReportOptions) error {
	s := res.Stats()
	out := report{
		RunID: opts.RunID,
		Stats: stats{
			Types:      s.Types,
			Categories: s.Categories,
			Strong:     s.Strong,
			Weak:       s.Weak,
			Skipped:    s.Skipped,
			Unresolved: s.Unresolved,
		},
		Types:  toEntries(res.Nodes),
		Hidden: toEntries(res.Hidden),
	}
	out.Generator = opts.Generator
	out.Orphans = opts.Orphans
	for _, ue := range res.Unresolved {
		out.Unresolved = append(out.Unresolved, unresolved{Source: ue.Source, Reference: ue.Reference})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toEntries(nodes []builder.Node) []typeEntry {
	entries := make([]typeEntry, len(nodes))
	for i, n := range nodes {
		entries[i] = typeEntry{
			ID:       n.ID,
			Kind:     n.Kind.String(),
			Category: n.Category,
			Strong:   n.Strong,
			Weak:     n.Weak,
		}
	}
	return entries
}

// ExportReport writes a report to a file at path.
func ExportReport(res *builder.Result, path string, opts ReportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteReport(res, f, opts)
}

// ReadReport decodes a report written by [WriteReport] back into a build
// result. Edges are rebuilt from the per-type target lists. The run
// information the report was written with is returned alongside.
func ReadReport(r io.Reader) (*builder.Result, ReportOptions, error) {
	var in report
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, ReportOptions{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode report")
	}
	info := ReportOptions{RunID: in.RunID, Generator: in.Generator, Orphans: in.Orphans}

	res := &builder.Result{Skipped: in.Stats.Skipped}
	var err error
	if res.Nodes, err = fromEntries(in.Types); err != nil {
		return nil, ReportOptions{}, err
	}
	if res.Hidden, err = fromEntries(in.Hidden); err != nil {
		return nil, ReportOptions{}, err
	}
	for _, n := range res.Nodes {
		for _, to := range n.Strong {
			res.Edges = append(res.Edges, builder.Edge{From: n.ID, To: to, Strength: builder.Strong})
		}
		for _, to := range n.Weak {
			res.Edges = append(res.Edges, builder.Edge{From: n.ID, To: to, Strength: builder.Weak})
		}
	}
	builder.SortEdges(res.Edges)
	for _, u := range in.Unresolved {
		res.Unresolved = append(res.Unresolved, &errs.UnresolvedReferenceError{Source: u.Source, Reference: u.Reference})
	}
	return res, info, nil
}

func fromEntries(entries []typeEntry) ([]builder.Node, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	nodes := make([]builder.Node, len(entries))
	for i, e := range entries {
		kind, err := registry.ParseKind(e.Kind)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "type %s", e.ID)
		}
		nodes[i] = builder.Node{ID: e.ID, Kind: kind, Category: e.Category, Strong: e.Strong, Weak: e.Weak}
	}
	return nodes, nil
}
