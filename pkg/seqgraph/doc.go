// Package seqgraph provides the sequence graph that alignments run against: a
// directed acyclic graph whose nodes carry one residue each.
//
// # Cursors
//
// A [Cursor] names a node. It is a dense index starting at 1; the zero
// Cursor is the empty cursor that the lattice uses as its source sentinel.
// [Graph] implements the lattice residue resolver through [Graph.Letter], so
// paths over a graph render as strings:
//
//	g, _ := seqgraph.FromSequence("ACGT")
//	fmt.Println(lattice.PathString(path, g))
//
// # Loading
//
// Graphs are read from JSON with [ReadJSON] or [Load]:
//
//	{
//	  "nodes": [{"id": 1, "letter": "A"}, {"id": 2, "letter": "C"}],
//	  "edges": [{"from": 1, "to": 2}]
//	}
//
// Node IDs are arbitrary unique integers. A cycle, a duplicate ID, an edge to
// an unknown node or a letter that is not a single residue is rejected with
// an errors.ErrCodeInvalidGraph error.
//
// # Ordering
//
// [Graph.TopoOrder] returns the nodes in a topological order, smallest cursor
// first among ready nodes, and [Graph.Components] splits it into weakly
// connected components. Components share no edges, so they can be swept
// independently.
package seqgraph
