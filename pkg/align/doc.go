// Package align builds a lattice of alignments of a profile against a
// sequence graph.
//
// The sweep visits profile columns in order and, within a column, graph
// nodes in topological order. Every node gets a match link per column and,
// when it has predecessors, an insertion link per column. A path may start
// at any node: its start edge pays for the profile columns skipped before
// it, and its end edge into the sink pays for the columns skipped after it.
// Deletions fold into the cheapest earlier state of the same node, so they
// never need a lattice position of their own.
//
// Insertions follow a match or an insertion at the same column; a deleted
// column cannot be followed directly by an insertion. This keeps the
// rendered alignment ([lattice.AnnotatedPath.Alignment]) one character per
// column plus one per inserted residue.
//
// Weakly connected components of the graph are swept concurrently into one
// shared lattice, bounded by [Options.Workers].
package align
