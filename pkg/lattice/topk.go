package lattice

import (
	"container/heap"
	"math"

	"github.com/charmbracelet/log"
)

// Option configures a top-K query.
type Option func(*searchOptions)

type searchOptions struct {
	minScore float64
	metrics  *Metrics
	logger   *log.Logger
}

func defaultSearchOptions() searchOptions {
	return searchOptions{
		minScore: math.Inf(-1),
		logger:   log.Default(),
	}
}

// WithMinScore stops the search at the first completed path scoring below s.
// Without it every path is eligible.
func WithMinScore(s float64) Option {
	return func(o *searchOptions) { o.minScore = s }
}

// WithMetrics records search counters into m.
func WithMetrics(m *Metrics) Option {
	return func(o *searchOptions) { o.metrics = m }
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *searchOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// searchNode is a position in the search tree: a cursor paired with the link
// whose back-edges are expanded next. parent indexes the search arena; the
// synthetic root has parent -1.
type searchNode[T Cursor[T]] struct {
	cursor T
	link   LinkID
	parent int32
}

type queueItem struct {
	node int32
	cost float64
	seq  uint64
}

// searchQueue is a min-heap on cost; equal costs pop in push order.
type searchQueue []queueItem

func (q searchQueue) Len() int { return len(q) }
func (q searchQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *searchQueue) Push(x any)   { *q = append(*q, x.(queueItem)) }
func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// TopK returns up to k distinct best paths ending in the sink, best first.
// Paths are distinct by cursor sequence. The lattice must have been frozen
// (collapsed) before querying; [Builder.Freeze] guarantees it.
func (ps *PathSet[T]) TopK(k int, opts ...Option) []AnnotatedPath[T] {
	return ps.TopKFrom(ps.root, k, opts...)
}

// TopKFrom is [PathSet.TopK] for paths ending in link from instead of the
// sink.
func (ps *PathSet[T]) TopKFrom(from LinkID, k int, opts ...Option) []AnnotatedPath[T] {
	cfg := defaultSearchOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if k <= 0 {
		return nil
	}
	s := &search[T]{arena: ps.arena, cfg: cfg, seen: newTrie[T]()}
	return s.run(from, k)
}

// search holds the mutable state of one top-K query.
type search[T Cursor[T]] struct {
	arena *arena[T]
	cfg   searchOptions
	nodes []searchNode[T]
	queue searchQueue
	seq   uint64
	seen  *trie[T]

	// bestEdges maps a link to the successor positions it was first reached
	// from. A link entered from the sink cannot also be entered from a real
	// successor, and vice versa.
	bestEdges map[LinkID]map[T]LinkID
}

func (s *search[T]) push(n searchNode[T], cost float64) {
	s.nodes = append(s.nodes, n)
	heap.Push(&s.queue, queueItem{node: int32(len(s.nodes) - 1), cost: cost, seq: s.seq})
	s.seq++
	s.cfg.metrics.add(searchPushes, 1)
}

func (s *search[T]) run(from LinkID, k int) []AnnotatedPath[T] {
	var empty T
	s.bestEdges = make(map[LinkID]map[T]LinkID)
	s.push(searchNode[T]{cursor: empty, link: from, parent: -1}, s.arena.get(from).score)

	var result []AnnotatedPath[T]
	for s.queue.Len() > 0 && len(result) < k {
		item := heap.Pop(&s.queue).(queueItem)
		s.cfg.metrics.add(searchPops, 1)
		node := s.nodes[item.node]

		if node.parent >= 0 && s.dominated(node) {
			continue
		}

		if node.cursor.IsEmpty() && node.parent >= 0 {
			if -item.cost < s.cfg.minScore {
				break
			}
			path := s.reconstruct(item.node, item.cost)
			if path.Empty() {
				s.cfg.logger.Warn("empty path reconstructed by top-k search, stopping", "found", len(result))
				break
			}
			if s.seen.tryAdd(path.Path) {
				result = append(result, path)
				s.cfg.metrics.add(pathsReported, 1)
			} else {
				s.cfg.metrics.add(duplicatePaths, 1)
			}
			continue
		}

		l := s.arena.get(node.link)
		for _, e := range l.edges {
			s.push(searchNode[T]{cursor: e.Cursor, link: e.Pred, parent: item.node}, item.cost+(e.Cost-l.score))
		}
	}
	return result
}

// dominated applies the best-edges bookkeeping for a popped non-root node
// and reports whether the branch must be skipped.
func (s *search[T]) dominated(node searchNode[T]) bool {
	var empty T
	parent := s.nodes[node.parent]
	be := s.bestEdges[node.link]
	if be == nil {
		be = make(map[T]LinkID)
		s.bestEdges[node.link] = be
	}
	if parent.cursor.IsEmpty() {
		be[parent.cursor] = parent.link
		for cur := range be {
			if !cur.IsEmpty() {
				return true
			}
		}
	} else if _, ok := be[empty]; ok {
		return true
	}
	if _, ok := be[parent.cursor]; !ok {
		be[parent.cursor] = parent.link
	}
	return false
}

// reconstruct walks parent indices from a completed search node to the
// synthetic root. The walk visits positions from the start of the path to
// its end; empty placeholders are skipped.
func (s *search[T]) reconstruct(idx int32, cost float64) AnnotatedPath[T] {
	var path AnnotatedPath[T]
	for i := idx; i >= 0; i = s.nodes[i].parent {
		n := s.nodes[i]
		if n.cursor.IsEmpty() {
			continue
		}
		path.Path = append(path.Path, n.cursor)
		path.Events = append(path.Events, s.arena.get(n.link).emission)
	}
	path.Score = -cost
	return path
}
