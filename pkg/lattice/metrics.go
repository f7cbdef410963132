package lattice

import "sync/atomic"

// Metrics counts lattice construction and search work. A Metrics value is
// passed explicitly to [NewBuilder] and to queries through [WithMetrics];
// counters are atomic so concurrent workers may share one.
//
// A nil *Metrics is valid and discards everything.
type Metrics struct {
	LinksCreated   atomic.Int64
	EdgesAdded     atomic.Int64
	EdgesCollapsed atomic.Int64 // removed as cost-dominated duplicates
	EdgesTrimmed   atomic.Int64 // removed past a source sentinel
	EdgesFiltered  atomic.Int64 // removed by SetFinishes
	SearchPops     atomic.Int64
	SearchPushes   atomic.Int64
	DuplicatePaths atomic.Int64
	PathsReported  atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	LinksCreated   int64 `json:"links_created"`
	EdgesAdded     int64 `json:"edges_added"`
	EdgesCollapsed int64 `json:"edges_collapsed"`
	EdgesTrimmed   int64 `json:"edges_trimmed"`
	EdgesFiltered  int64 `json:"edges_filtered"`
	SearchPops     int64 `json:"search_pops"`
	SearchPushes   int64 `json:"search_pushes"`
	DuplicatePaths int64 `json:"duplicate_paths"`
	PathsReported  int64 `json:"paths_reported"`
}

// Snapshot copies the current counter values. It returns the zero snapshot
// for a nil receiver.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		LinksCreated:   m.LinksCreated.Load(),
		EdgesAdded:     m.EdgesAdded.Load(),
		EdgesCollapsed: m.EdgesCollapsed.Load(),
		EdgesTrimmed:   m.EdgesTrimmed.Load(),
		EdgesFiltered:  m.EdgesFiltered.Load(),
		SearchPops:     m.SearchPops.Load(),
		SearchPushes:   m.SearchPushes.Load(),
		DuplicatePaths: m.DuplicatePaths.Load(),
		PathsReported:  m.PathsReported.Load(),
	}
}

// add increments the counter selected by f when m is non-nil.
func (m *Metrics) add(f func(*Metrics) *atomic.Int64, n int64) {
	if m == nil || n == 0 {
		return
	}
	f(m).Add(n)
}

func linksCreated(m *Metrics) *atomic.Int64   { return &m.LinksCreated }
func edgesAdded(m *Metrics) *atomic.Int64     { return &m.EdgesAdded }
func edgesCollapsed(m *Metrics) *atomic.Int64 { return &m.EdgesCollapsed }
func edgesTrimmed(m *Metrics) *atomic.Int64   { return &m.EdgesTrimmed }
func edgesFiltered(m *Metrics) *atomic.Int64  { return &m.EdgesFiltered }
func searchPops(m *Metrics) *atomic.Int64     { return &m.SearchPops }
func searchPushes(m *Metrics) *atomic.Int64   { return &m.SearchPushes }
func duplicatePaths(m *Metrics) *atomic.Int64 { return &m.DuplicatePaths }
func pathsReported(m *Metrics) *atomic.Int64  { return &m.PathsReported }
