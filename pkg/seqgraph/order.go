package seqgraph

import (
	"container/heap"
)

// TopoOrder returns every node such that each edge points forward. Among
// nodes that are ready at the same time the smallest cursor comes first, so
// the order is deterministic. It returns [ErrGraphHasCycle] when no such
// order exists.
func (g *Graph) TopoOrder() ([]Cursor, error) {
	indeg := make([]int, g.Len())
	ready := &cursorHeap{}
	for i, p := range g.pred {
		indeg[i] = len(p)
		if indeg[i] == 0 {
			*ready = append(*ready, Cursor(i+1))
		}
	}
	heap.Init(ready)

	order := make([]Cursor, 0, g.Len())
	for ready.Len() > 0 {
		c := heap.Pop(ready).(Cursor)
		order = append(order, c)
		for _, s := range g.succ[c-1] {
			indeg[s-1]--
			if indeg[s-1] == 0 {
				heap.Push(ready, s)
			}
		}
	}
	if len(order) != g.Len() {
		return nil, ErrGraphHasCycle
	}
	return order, nil
}

// Validate checks that the graph is acyclic.
func (g *Graph) Validate() error {
	_, err := g.TopoOrder()
	return err
}

// Components returns the weakly connected components of the graph, each in
// topological order. Components are ordered by their smallest cursor.
func (g *Graph) Components() ([][]Cursor, error) {
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	comp := make([]int, g.Len())
	for i := range comp {
		comp[i] = -1
	}
	n := 0
	for start := range comp {
		if comp[start] >= 0 {
			continue
		}
		stack := []Cursor{Cursor(start + 1)}
		comp[start] = n
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, adj := range [][]Cursor{g.succ[c-1], g.pred[c-1]} {
				for _, o := range adj {
					if comp[o-1] < 0 {
						comp[o-1] = n
						stack = append(stack, o)
					}
				}
			}
		}
		n++
	}

	out := make([][]Cursor, n)
	for _, c := range order {
		out[comp[c-1]] = append(out[comp[c-1]], c)
	}
	return out, nil
}

type cursorHeap []Cursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)        { *h = append(*h, x.(Cursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
