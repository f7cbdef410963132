package lattice

import (
	"math"
	"slices"

	"github.com/matzehuels/pathlattice/pkg/errors"
)

// PathSet is the query view of a frozen lattice, rooted at its sink: the
// link every represented path ends in. All methods are read-only and safe for
// concurrent use.
type PathSet[T Cursor[T]] struct {
	arena *arena[T]
	root  LinkID
}

// Root returns the sink link.
func (ps *PathSet[T]) Root() LinkID { return ps.root }

// Len returns the number of links in the underlying arena, reachable or not.
func (ps *PathSet[T]) Len() int { return ps.arena.len() }

// BestScore returns the score of the best path (the negated sink cost).
// It is -Inf when the sink has no back-edges.
func (ps *PathSet[T]) BestScore() float64 { return -ps.arena.get(ps.root).score }

// Score returns the best cost recorded on link id.
func (ps *PathSet[T]) Score(id LinkID) float64 { return ps.arena.get(id).score }

// Emission returns the emission event of link id.
func (ps *PathSet[T]) Emission(id LinkID) Event { return ps.arena.get(id).emission }

// Edges returns a copy of the back-edges of link id.
func (ps *PathSet[T]) Edges(id LinkID) []BackEdge[T] {
	return slices.Clone(ps.arena.get(id).edges)
}

// BestAncestor returns the cheapest back-edge of link id.
func (ps *PathSet[T]) BestAncestor(id LinkID) BackEdge[T] {
	return bestAncestor(ps.arena.get(id), id)
}

// Collect returns the links reachable from the sink, in ascending order.
func (ps *PathSet[T]) Collect() []LinkID {
	ids := ps.arena.collect(ps.root)
	slices.Sort(ids)
	return ids
}

// EdgeCount returns the number of back-edges over the links reachable from
// the sink.
func (ps *PathSet[T]) EdgeCount() int {
	n := 0
	for _, id := range ps.arena.collect(ps.root) {
		n += len(ps.arena.get(id).edges)
	}
	return n
}

// BestPath returns the best path regardless of score, or an empty path when
// the lattice holds none.
func (ps *PathSet[T]) BestPath() AnnotatedPath[T] {
	paths := ps.TopK(1, WithMinScore(math.Inf(-1)))
	if len(paths) == 0 {
		return AnnotatedPath[T]{}
	}
	return paths[0]
}

// BestPathString returns the residues of the best path.
func (ps *PathSet[T]) BestPathString(ctx Context[T]) string {
	return ps.BestPath().String(ctx)
}

// Paths runs [PathSet.TopK] and wraps the result for indexed rendering.
func (ps *PathSet[T]) Paths(k int, opts ...Option) PathList[T] {
	return PathList[T]{paths: ps.TopK(k, opts...)}
}

// HasSequence counts the lattice positions from which the residues of seq
// can be read backwards, last residue first, along back-edges. The walk
// starts from every link reachable from the sink; each step follows the
// back-edges whose cursor spells the current residue. An empty seq matches
// every reachable link.
//
// Positions reached along several back-edges are counted once per edge. The
// frontier holds each link once with its multiplicity, so memory stays
// bounded by the lattice size; counts saturate at math.MaxInt.
func (ps *PathSet[T]) HasSequence(seq string, ctx Context[T]) int {
	current := make(map[LinkID]int)
	for _, id := range ps.arena.collect(ps.root) {
		current[id]++
	}
	for i := len(seq) - 1; i >= 0; i-- {
		next := make(map[LinkID]int)
		for id, n := range current {
			if id == NoLink {
				continue
			}
			for _, e := range ps.arena.get(id).edges {
				if !e.Cursor.IsEmpty() && ctx.Letter(e.Cursor) == seq[i] {
					next[e.Pred] = addSat(next[e.Pred], n)
				}
			}
		}
		current = next
	}
	total := 0
	for _, n := range current {
		total = addSat(total, n)
	}
	return total
}

func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Record is the serializable form of one link. Pred indices of its edges
// refer to positions in the record list.
type Record[T Cursor[T]] struct {
	Score    float64
	Emission Event
	Edges    []BackEdge[T]
}

// Records returns the links reachable from the sink, renumbered breadth
// first so that the sink is record 0. Shared links appear once.
func (ps *PathSet[T]) Records() []Record[T] {
	order := ps.arena.collect(ps.root)
	index := make(map[LinkID]LinkID, len(order))
	for i, id := range order {
		index[id] = LinkID(i)
	}
	records := make([]Record[T], len(order))
	for i, id := range order {
		l := ps.arena.get(id)
		edges := make([]BackEdge[T], len(l.edges))
		for j, e := range l.edges {
			pred := NoLink
			if e.Pred != NoLink {
				pred = index[e.Pred]
			}
			edges[j] = BackEdge[T]{Cursor: e.Cursor, Cost: e.Cost, Pred: pred}
		}
		records[i] = Record[T]{Score: l.score, Emission: l.emission, Edges: edges}
	}
	return records
}

// FromRecords rebuilds a PathSet from records produced by
// [PathSet.Records]. Link scores are recomputed from the back-edges; the
// Score of a record is not trusted. It returns an [errors.ErrCodeInvalidLattice] error when
// the root or a predecessor index is out of range, a cost is NaN, or the
// back-edges form a cycle.
func FromRecords[T Cursor[T]](root LinkID, records []Record[T]) (*PathSet[T], error) {
	if root < 0 || int(root) >= len(records) {
		return nil, errors.New(errors.ErrCodeInvalidLattice, "root %d out of range [0, %d)", root, len(records))
	}
	a := &arena[T]{}
	for i, r := range records {
		id := a.alloc()
		l := a.get(id)
		l.emission = r.Emission
		l.edges = make([]BackEdge[T], len(r.Edges))
		for j, e := range r.Edges {
			if e.Pred != NoLink && (e.Pred < 0 || int(e.Pred) >= len(records)) {
				return nil, errors.New(errors.ErrCodeInvalidLattice, "link %d edge %d: predecessor %d out of range", i, j, e.Pred)
			}
			if math.IsNaN(e.Cost) {
				return nil, errors.New(errors.ErrCodeInvalidLattice, "link %d edge %d: NaN cost", i, j)
			}
			l.edges[j] = e
		}
		l.score = minCost(l.edges)
	}
	if err := checkAcyclic(a, root); err != nil {
		return nil, err
	}
	return &PathSet[T]{arena: a, root: root}, nil
}

// checkAcyclic runs a white/gray/black depth-first search over back-edges.
func checkAcyclic[T Cursor[T]](a *arena[T], root LinkID) error {
	const (
		white = iota
		gray
		black
	)
	color := make([]uint8, a.len())
	type frame struct {
		id   LinkID
		next int
	}
	stack := []frame{{id: root}}
	color[root] = gray
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := a.get(top.id).edges
		if top.next == len(edges) {
			color[top.id] = black
			stack = stack[:len(stack)-1]
			continue
		}
		pred := edges[top.next].Pred
		top.next++
		if pred == NoLink {
			continue
		}
		switch color[pred] {
		case gray:
			return errors.New(errors.ErrCodeInvalidLattice, "back-edges form a cycle through link %d", pred)
		case white:
			color[pred] = gray
			stack = append(stack, frame{id: pred})
		}
	}
	return nil
}
