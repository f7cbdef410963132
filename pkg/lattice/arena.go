package lattice

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/pathlattice/pkg/errors"
)

const (
	pageBits = 10
	pageSize = 1 << pageBits
)

// link is a lattice node. score is the minimum cost over every back-edge ever
// added, +Inf while there is none.
type link[T Cursor[T]] struct {
	score    float64
	edges    []BackEdge[T]
	emission Event
}

// arena owns every link of a lattice. Links live in fixed-size pages that
// are never reallocated, so a *link stays valid after the page table grows.
type arena[T Cursor[T]] struct {
	mu    sync.RWMutex
	pages [][]link[T]
	n     int
}

func (a *arena[T]) alloc() LinkID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.n == len(a.pages)*pageSize {
		a.pages = append(a.pages, make([]link[T], pageSize))
	}
	id := LinkID(a.n)
	a.n++
	a.pages[id>>pageBits][id&(pageSize-1)].score = math.Inf(1)
	return id
}

func (a *arena[T]) len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.n
}

func (a *arena[T]) get(id LinkID) *link[T] {
	a.mu.RLock()
	n := a.n
	var page []link[T]
	if id >= 0 && int(id) < n {
		page = a.pages[id>>pageBits]
	}
	a.mu.RUnlock()
	errors.Invariant(page != nil, "link %d out of range [0, %d)", id, n)
	return &page[id&(pageSize-1)]
}

// collect returns every link reachable from root, breadth first.
func (a *arena[T]) collect(root LinkID) []LinkID {
	if root == NoLink {
		return nil
	}
	visited := make(map[LinkID]struct{})
	queue := []LinkID{root}
	var order []LinkID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		order = append(order, id)
		for _, e := range a.get(id).edges {
			if e.Pred != NoLink {
				queue = append(queue, e.Pred)
			}
		}
	}
	return order
}

// collapseEdges keeps the cheapest back-edge per predecessor cursor. Ties go
// to the entry that sorts first under (cursor, cost), stably.
func collapseEdges[T Cursor[T]](edges []BackEdge[T]) []BackEdge[T] {
	slices.SortStableFunc(edges, func(x, y BackEdge[T]) int {
		if c := x.Cursor.Compare(y.Cursor); c != 0 {
			return c
		}
		return cmp.Compare(x.Cost, y.Cost)
	})
	return slices.CompactFunc(edges, func(x, y BackEdge[T]) bool {
		return x.Cursor == y.Cursor
	})
}

// trimEdges sorts by cost and cuts the list at the first source sentinel.
// A sentinel at the head survives alone; a later sentinel is dropped together
// with everything more expensive than it.
func trimEdges[T Cursor[T]](edges []BackEdge[T]) []BackEdge[T] {
	slices.SortStableFunc(edges, func(x, y BackEdge[T]) int {
		return cmp.Compare(x.Cost, y.Cost)
	})
	for i, e := range edges {
		if !e.Cursor.IsEmpty() {
			continue
		}
		if i == 0 {
			return edges[:1]
		}
		return edges[:i]
	}
	return edges
}

func minCost[T Cursor[T]](edges []BackEdge[T]) float64 {
	best := math.Inf(1)
	for _, e := range edges {
		best = min(best, e.Cost)
	}
	return best
}
