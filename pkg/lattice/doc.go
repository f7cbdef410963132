// Package lattice stores an exponential family of partial alignment paths as
// a shared, backward-linked lattice and extracts the K best distinct paths
// from it.
//
// # Overview
//
// A forward scoring pass (see package align) sweeps a sequence graph and
// records, for every reachable state, a link: the best cost of reaching it and
// a list of scored back-edges. Each back-edge names the predecessor position
// (a graph cursor), the cost of the state when reached through it, and the
// predecessor's link. Partial paths that share a suffix share the links of
// that suffix, so the lattice stays polynomial while the number of paths it
// represents does not.
//
// Costs are "lower is better". Scores reported to callers are negated costs,
// so a higher reported score is a better path.
//
// # Cursors
//
// Positions are opaque values satisfying [Cursor]: comparable, totally
// ordered through Compare, and with a designated empty value. The zero value
// of the cursor type must be the empty cursor. It plays two roles: as the
// cursor of a back-edge it marks "a path may start here" (the source
// sentinel), and as a search position it marks a completed path.
//
// # Construction and Queries
//
// The lattice is an arena of links addressed by [LinkID]. It is built through
// a [Builder], the construction view:
//
//	b := lattice.NewBuilder[seqgraph.Cursor](metrics)
//	src := b.CreateSource()
//	a := b.Create()
//	b.Update(a, cursorA, 1, src)
//	sink := b.Create()
//	b.Update(sink, cursorB, 2, a)
//	ps := b.Freeze(sink)
//
// Freeze collapses every link reachable from the sink and returns a
// [PathSet], the query view. A PathSet is immutable:
//
//	for _, p := range ps.TopK(10) {
//	    fmt.Println(p.Score, p.String(graph))
//	}
//
// # Collapse and Trim
//
// [Builder.CollapseAndTrim] bounds the branching of a link. Collapsing keeps
// the cheapest back-edge per predecessor cursor. Trimming sorts back-edges by
// cost and cuts the list at the first source sentinel: if the sentinel is the
// cheapest entry only the sentinel survives, otherwise the entries cheaper
// than it survive and the sentinel is dropped. A link is never left empty by
// trimming.
//
// # Top-K Search
//
// [PathSet.TopK] runs a uniform-cost search from the sink backwards. Search
// nodes live in an append-only arena and point at their parent by index, so a
// reconstructed path is a walk over parent indices. Edge costs are re-based
// on the owning link's best score, which makes the frontier order reflect the
// marginal cost of every deviation from the best path. Completed paths are
// deduplicated with a trie over their cursor sequences.
//
// # Concurrency
//
// Link allocation is guarded by a mutex, so several workers may create links
// in one Builder. Updates to a single link are not synchronized: every link
// must have one writer. Collapsing must not overlap with updates. A PathSet
// is read-only and safe for concurrent use.
package lattice
