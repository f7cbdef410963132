package lattice

import (
	"math"
	"slices"
	"sync/atomic"

	"github.com/matzehuels/pathlattice/pkg/errors"
)

// Builder is the construction view of a lattice. It creates links and records
// scored transitions while a forward pass sweeps the sequence graph.
//
// Create and CreateSource may be called from several goroutines. Every other
// mutation of a given link must come from a single goroutine, and
// CollapseAndTrim, CollapseAll and Freeze must only run once the writers of
// the affected links are done.
//
// After [Builder.Freeze] the builder refuses further mutation.
type Builder[T Cursor[T]] struct {
	arena   *arena[T]
	metrics *Metrics
	frozen  atomic.Bool
}

// NewBuilder returns an empty builder. m may be nil.
func NewBuilder[T Cursor[T]](m *Metrics) *Builder[T] {
	return &Builder[T]{arena: &arena[T]{}, metrics: m}
}

// Len returns the number of links created so far.
func (b *Builder[T]) Len() int { return b.arena.len() }

// Create allocates a link with no back-edges and an infinite score.
func (b *Builder[T]) Create() LinkID {
	b.mustBeMutable()
	b.metrics.add(linksCreated, 1)
	return b.arena.alloc()
}

// CreateSource allocates a link that starts a path at zero cost: a single
// back-edge to the empty cursor with no predecessor.
func (b *Builder[T]) CreateSource() LinkID {
	id := b.Create()
	var empty T
	b.Update(id, empty, 0, NoLink)
	return id
}

// Update appends the back-edge (cur, cost, pred) to link id. Duplicates are
// kept until the link is collapsed. It reports whether cost improved on the
// link's score, in which case the caller should propagate the improvement.
func (b *Builder[T]) Update(id LinkID, cur T, cost float64, pred LinkID) bool {
	b.mustBeMutable()
	errors.Invariant(!math.IsNaN(cost), "link %d: NaN cost", id)
	if pred != NoLink {
		b.arena.get(pred)
	}
	l := b.arena.get(id)
	l.edges = append(l.edges, BackEdge[T]{Cursor: cur, Cost: cost, Pred: pred})
	b.metrics.add(edgesAdded, 1)
	if cost < l.score {
		l.score = cost
		return true
	}
	return false
}

// SetEmission records how the position owning link id was reached.
func (b *Builder[T]) SetEmission(id LinkID, column int, kind EventKind) {
	b.mustBeMutable()
	b.arena.get(id).emission = NewEvent(column, kind)
}

// SetFinishes keeps only the back-edges of link id whose cursor is in
// finishes. The score is recomputed from the surviving back-edges.
func (b *Builder[T]) SetFinishes(id LinkID, finishes map[T]struct{}) {
	b.mustBeMutable()
	l := b.arena.get(id)
	before := len(l.edges)
	l.edges = slices.DeleteFunc(l.edges, func(e BackEdge[T]) bool {
		_, ok := finishes[e.Cursor]
		return !ok
	})
	b.metrics.add(edgesFiltered, int64(before-len(l.edges)))
	l.score = minCost(l.edges)
}

// CollapseAndTrim removes cost-dominated duplicate back-edges of link id and
// truncates its list at the first source sentinel (see the package
// documentation). It never increases the number of back-edges and never
// empties a non-empty list.
func (b *Builder[T]) CollapseAndTrim(id LinkID) {
	b.mustBeMutable()
	l := b.arena.get(id)
	n := len(l.edges)
	collapsed := collapseEdges(l.edges)
	trimmed := trimEdges(collapsed)
	b.metrics.add(edgesCollapsed, int64(n-len(collapsed)))
	b.metrics.add(edgesTrimmed, int64(len(collapsed)-len(trimmed)))
	l.edges = slices.Clip(trimmed)
}

// CollapseAll collapses and trims every link reachable from root. It must
// run once construction is finished and before any top-K query.
func (b *Builder[T]) CollapseAll(root LinkID) {
	for _, id := range b.arena.collect(root) {
		b.CollapseAndTrim(id)
	}
}

// IsCollapsed reports whether collapsing link id would remove nothing.
func (b *Builder[T]) IsCollapsed(id LinkID) bool {
	edges := slices.Clone(b.arena.get(id).edges)
	return len(collapseEdges(edges)) == len(edges)
}

// Score returns the best cost recorded on link id.
func (b *Builder[T]) Score(id LinkID) float64 { return b.arena.get(id).score }

// Emission returns the emission event of link id.
func (b *Builder[T]) Emission(id LinkID) Event { return b.arena.get(id).emission }

// Edges returns a copy of the back-edges of link id.
func (b *Builder[T]) Edges(id LinkID) []BackEdge[T] {
	return slices.Clone(b.arena.get(id).edges)
}

// BestAncestor returns the cheapest back-edge of link id, the first one on
// ties. Calling it on a link without back-edges is an invariant violation.
func (b *Builder[T]) BestAncestor(id LinkID) BackEdge[T] {
	return bestAncestor(b.arena.get(id), id)
}

// Freeze collapses every link reachable from sink and returns the read-only
// view rooted at sink. The builder cannot be mutated afterwards.
func (b *Builder[T]) Freeze(sink LinkID) *PathSet[T] {
	b.CollapseAll(sink)
	errors.Invariant(b.frozen.CompareAndSwap(false, true), "builder frozen twice")
	return &PathSet[T]{arena: b.arena, root: sink}
}

func (b *Builder[T]) mustBeMutable() {
	errors.Invariant(!b.frozen.Load(), "mutation of a frozen lattice")
}

func bestAncestor[T Cursor[T]](l *link[T], id LinkID) BackEdge[T] {
	errors.Invariant(len(l.edges) > 0, "best ancestor of link %d without back-edges", id)
	best := l.edges[0]
	for _, e := range l.edges[1:] {
		if e.Cost < best.Cost {
			best = e
		}
	}
	return best
}
