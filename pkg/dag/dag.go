package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] for an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when From is missing.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when To is missing.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata carries renderer-facing attributes of a node or edge: the
// builder stores kind, category, visibility and strength here. Maps are
// never nil once added to a graph.
type Metadata map[string]any

// String returns the value for key if it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool returns the value for key if it is a bool.
func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Node is a type in the graph, keyed by its registry identifier.
type Node struct {
	ID   string
	Meta Metadata
}

// Edge is a directed "a field of From has type To" link.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// DAG is a directed graph of types. Despite the name it accepts cycles:
// recursive and mutually recursive types produce them, and
// [DAG.BackEdges] reports them.
//
// Use [New]; the zero value is not usable. A DAG is not safe for
// concurrent mutation.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	children map[string][]string
	parents  map[string][]string
}

// New returns an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds n. It fails with ErrInvalidNodeID or ErrDuplicateNodeID.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case d.nodes[n.ID] != nil:
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	return nil
}

// AddEdge links two existing nodes. Self-loops are allowed.
func (d *DAG) AddEdge(e Edge) error {
	if d.nodes[e.From] == nil {
		return ErrUnknownSourceNode
	}
	if d.nodes[e.To] == nil {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.children[e.From] = append(d.children[e.From], e.To)
	d.parents[e.To] = append(d.parents[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodeIDs returns every node ID in ascending order.
func (d *DAG) NodeIDs() []string { return slices.Sorted(maps.Keys(d.nodes)) }

// Nodes returns every node ordered by ID. The pointers alias the graph.
func (d *DAG) Nodes() []*Node {
	ids := d.NodeIDs()
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// Edges returns a copy of the edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.nodes) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of id's edges. Do not modify the result.
func (d *DAG) Children(id string) []string { return d.children[id] }

// Parents returns the sources of edges into id. Do not modify the result.
func (d *DAG) Parents(id string) []string { return d.parents[id] }

// Sources returns the nodes no edge points to, ordered by ID: the types no
// other type embeds.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, n := range d.Nodes() {
		if len(d.parents[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// BackEdges returns the edges that close a cycle during a depth-first
// search started from every node in ID order. It is empty iff the graph is
// acyclic; self-loops are always included.
func (d *DAG) BackEdges() [][2]string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(d.nodes))
	var back [][2]string

	var visit func(id string)
	visit = func(id string) {
		state[id] = onStack
		for _, child := range d.children[id] {
			switch state[child] {
			case unvisited:
				visit(child)
			case onStack:
				back = append(back, [2]string{id, child})
			}
		}
		state[id] = done
	}
	for _, id := range d.NodeIDs() {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return back
}

// Reachable returns the IDs reachable from id, id included, in ascending
// order. An unknown id yields nil.
func (d *DAG) Reachable(id string) []string {
	if d.nodes[id] == nil {
		return nil
	}
	seen := map[string]bool{id: true}
	for queue := []string{id}; len(queue) > 0; queue = queue[1:] {
		for _, child := range d.children[queue[0]] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// NodeIDs extracts the ID of each node.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
