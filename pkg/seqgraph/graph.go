package seqgraph

import (
	"cmp"
	"errors"
	"slices"
	"unicode"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidLetter is returned by [Graph.AddNode] when the letter is not
	// an ASCII residue.
	ErrInvalidLetter = errors.New("letter must be a single ASCII residue")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when From does not
	// exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when To does not
	// exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.TopoOrder] and [Graph.Validate].
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Cursor names a node of a [Graph]. The zero Cursor is empty.
type Cursor uint32

// IsEmpty reports whether c is the empty cursor.
func (c Cursor) IsEmpty() bool { return c == 0 }

// Compare orders cursors by index.
func (c Cursor) Compare(o Cursor) int { return cmp.Compare(c, o) }

// Edge is a directed edge between two node IDs.
type Edge struct {
	From int
	To   int
}

// Graph is a residue-labelled directed graph. Nodes are added with
// [Graph.AddNode] and addressed by [Cursor]; IDs are kept for round trips.
//
// The zero value is not usable; use [New]. A Graph is not safe for
// concurrent mutation, but once built it may be read from many goroutines.
type Graph struct {
	ids     []int
	letters []byte
	succ    [][]Cursor
	pred    [][]Cursor
	index   map[int]Cursor
	edges   int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[int]Cursor)}
}

// FromSequence returns the linear graph spelling s, with node IDs 1..len(s).
func FromSequence(s string) (*Graph, error) {
	g := New()
	for i := 0; i < len(s); i++ {
		if _, err := g.AddNode(i+1, s[i]); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := g.AddEdge(i, i+1); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// AddNode adds node id with the given residue and returns its cursor.
func (g *Graph) AddNode(id int, letter byte) (Cursor, error) {
	if _, ok := g.index[id]; ok {
		return 0, ErrDuplicateNodeID
	}
	if letter > unicode.MaxASCII || !(unicode.IsLetter(rune(letter)) || letter == '*') {
		return 0, ErrInvalidLetter
	}
	g.ids = append(g.ids, id)
	g.letters = append(g.letters, letter)
	g.succ = append(g.succ, nil)
	g.pred = append(g.pred, nil)
	c := Cursor(len(g.ids))
	g.index[id] = c
	return c, nil
}

// AddEdge adds the edge from -> to between two existing node IDs. Parallel
// edges are ignored.
func (g *Graph) AddEdge(from, to int) error {
	f, ok := g.index[from]
	if !ok {
		return ErrUnknownSourceNode
	}
	t, ok := g.index[to]
	if !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.succ[f-1], t) {
		return nil
	}
	g.succ[f-1] = append(g.succ[f-1], t)
	g.pred[t-1] = append(g.pred[t-1], f)
	g.edges++
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Letter returns the residue of node c.
func (g *Graph) Letter(c Cursor) byte { return g.letters[c-1] }

// ID returns the external ID of node c.
func (g *Graph) ID(c Cursor) int { return g.ids[c-1] }

// Lookup returns the cursor of node id.
func (g *Graph) Lookup(id int) (Cursor, bool) {
	c, ok := g.index[id]
	return c, ok
}

// Cursors returns every node in insertion order.
func (g *Graph) Cursors() []Cursor {
	out := make([]Cursor, len(g.ids))
	for i := range out {
		out[i] = Cursor(i + 1)
	}
	return out
}

// Successors returns the nodes reachable from c in one step.
func (g *Graph) Successors(c Cursor) []Cursor { return g.succ[c-1] }

// Predecessors returns the nodes with an edge to c.
func (g *Graph) Predecessors(c Cursor) []Cursor { return g.pred[c-1] }

// Edges returns every edge by node ID, grouped by source in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for i, succ := range g.succ {
		for _, t := range succ {
			out = append(out, Edge{From: g.ids[i], To: g.ID(t)})
		}
	}
	return out
}

// Sources returns the nodes without predecessors.
func (g *Graph) Sources() []Cursor {
	var out []Cursor
	for i, p := range g.pred {
		if len(p) == 0 {
			out = append(out, Cursor(i+1))
		}
	}
	return out
}

// Sinks returns the nodes without successors.
func (g *Graph) Sinks() []Cursor {
	var out []Cursor
	for i, s := range g.succ {
		if len(s) == 0 {
			out = append(out, Cursor(i+1))
		}
	}
	return out
}

// String returns the residues of every node in cursor order.
func (g *Graph) String() string { return string(g.letters) }
