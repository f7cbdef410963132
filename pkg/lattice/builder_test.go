package lattice

import (
	"math"
	"sync"
	"testing"
)

func TestCreate(t *testing.T) {
	b := NewBuilder[pos](nil)
	id := b.Create()
	if !math.IsInf(b.Score(id), 1) {
		t.Errorf("Score() = %v, want +Inf", b.Score(id))
	}
	if n := len(b.Edges(id)); n != 0 {
		t.Errorf("len(Edges()) = %d, want 0", n)
	}
	if b.Emission(id).IsSet() {
		t.Error("new link should have no emission")
	}
}

func TestCreateSource(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	if b.Score(src) != 0 {
		t.Errorf("Score() = %v, want 0", b.Score(src))
	}
	edges := b.Edges(src)
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	if !edges[0].Cursor.IsEmpty() || edges[0].Pred != NoLink || edges[0].Cost != 0 {
		t.Errorf("source edge = %+v, want empty cursor, no predecessor, cost 0", edges[0])
	}
}

func TestUpdateScore(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	id := b.Create()

	tests := []struct {
		cost      float64
		improved  bool
		wantScore float64
	}{
		{5, true, 5},
		{3, true, 3},
		{4, false, 3},
		{3, false, 3},
		{-1, true, -1},
	}

	for _, tt := range tests {
		got := b.Update(id, "A", tt.cost, src)
		if got != tt.improved {
			t.Errorf("Update(cost=%v) = %v, want %v", tt.cost, got, tt.improved)
		}
		if b.Score(id) != tt.wantScore {
			t.Errorf("after Update(cost=%v): Score() = %v, want %v", tt.cost, b.Score(id), tt.wantScore)
		}
	}
	if n := len(b.Edges(id)); n != len(tests) {
		t.Errorf("len(Edges()) = %d, want %d (duplicates kept until collapse)", n, len(tests))
	}
}

func TestUpdateInvalid(t *testing.T) {
	b := NewBuilder[pos](nil)
	id := b.Create()

	mustPanic(t, "Update(NaN)", func() { b.Update(id, "A", math.NaN(), NoLink) })
	mustPanic(t, "Update(unknown pred)", func() { b.Update(id, "A", 1, 42) })
	mustPanic(t, "Update(unknown link)", func() { b.Update(7, "A", 1, NoLink) })
}

func TestCollapseAndTrimDedup(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	inter := b.Create()
	b.Update(inter, "A", 1, src)
	sink := b.Create()
	b.Update(sink, "B", 3, inter)
	b.Update(sink, "B", 2, inter)

	if b.IsCollapsed(sink) {
		t.Error("IsCollapsed() = true before collapse")
	}
	b.CollapseAndTrim(sink)
	if !b.IsCollapsed(sink) {
		t.Error("IsCollapsed() = false after collapse")
	}

	edges := b.Edges(sink)
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	if edges[0].Cursor != "B" || edges[0].Cost != 2 || edges[0].Pred != inter {
		t.Errorf("Edges()[0] = %+v, want {B 2 %d}", edges[0], inter)
	}
}

func TestCollapseAndTrimIdempotent(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	id := b.Create()
	for i, c := range []pos{"C", "A", "B", "A", "C", "C"} {
		b.Update(id, c, float64(6-i), src)
	}

	b.CollapseAndTrim(id)
	first := edgeCursors(b.Edges(id))
	b.CollapseAndTrim(id)
	second := edgeCursors(b.Edges(id))

	if !equalStrings(first, second) {
		t.Errorf("second collapse changed edges: %v -> %v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("len(Edges()) = %d, want one per distinct cursor (3)", len(first))
	}
}

func TestTrim(t *testing.T) {
	type in struct {
		cur  pos
		cost float64
	}
	tests := []struct {
		name  string
		edges []in
		want  []string
	}{
		{"lone sentinel", []in{{"", 0}}, []string{""}},
		{"lone edge", []in{{"A", 1}}, []string{"A"}},
		{"sentinel cheapest", []in{{"A", 1}, {"", 0}}, []string{""}},
		{"sentinel after edge", []in{{"A", 0}, {"", 1}}, []string{"A"}},
		{"no sentinel", []in{{"B", 2}, {"A", 1}}, []string{"A", "B"}},
		{"sentinel tie sorts first", []in{{"A", 1}, {"", 1}}, []string{""}},
		{"sentinel in the middle", []in{{"A", 1}, {"", 2}, {"B", 3}}, []string{"A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder[pos](nil)
			src := b.CreateSource()
			id := b.Create()
			for _, e := range tt.edges {
				pred := src
				if e.cur.IsEmpty() {
					pred = NoLink
				}
				b.Update(id, e.cur, e.cost, pred)
			}
			b.CollapseAndTrim(id)
			got := edgeCursors(b.Edges(id))
			if !equalStrings(got, tt.want) {
				t.Errorf("edges after trim = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseAndTrimNeverGrows(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	for n := 1; n <= 8; n++ {
		id := b.Create()
		for i := 0; i < n; i++ {
			cur := pos(string(rune('A' + i%3)))
			b.Update(id, cur, float64((i*7)%5), src)
		}
		b.CollapseAndTrim(id)
		got := len(b.Edges(id))
		if got == 0 || got > n {
			t.Errorf("n=%d: len(Edges()) = %d, want in [1, %d]", n, got, n)
		}
	}
}

func TestSetFinishes(t *testing.T) {
	b := NewBuilder[pos](nil)
	src := b.CreateSource()
	id := b.Create()
	b.Update(id, "A", 1, src)
	b.Update(id, "B", 2, src)
	b.Update(id, "C", 3, src)

	b.SetFinishes(id, map[pos]struct{}{"B": {}, "C": {}})

	got := edgeCursors(b.Edges(id))
	if !equalStrings(got, []string{"B", "C"}) {
		t.Errorf("Edges() = %q, want [B C]", got)
	}
	if b.Score(id) != 2 {
		t.Errorf("Score() = %v, want 2", b.Score(id))
	}

	b.SetFinishes(id, nil)
	if n := len(b.Edges(id)); n != 0 {
		t.Errorf("len(Edges()) = %d, want 0", n)
	}
	if !math.IsInf(b.Score(id), 1) {
		t.Errorf("Score() = %v, want +Inf", b.Score(id))
	}
}

func TestBestAncestor(t *testing.T) {
	b, ids := diamond(t, nil)
	got := b.BestAncestor(ids["sink"])
	if got.Cursor != "C" || got.Pred != ids["C"] {
		t.Errorf("BestAncestor(sink) = %+v, want cursor C from link %d", got, ids["C"])
	}

	empty := b.Create()
	mustPanic(t, "BestAncestor(no edges)", func() { b.BestAncestor(empty) })
}

func TestFreeze(t *testing.T) {
	b, ids := diamond(t, nil)
	ps := b.Freeze(ids["sink"])
	if ps.Root() != ids["sink"] {
		t.Errorf("Root() = %d, want %d", ps.Root(), ids["sink"])
	}
	for _, id := range ps.Collect() {
		if !b.IsCollapsed(id) {
			t.Errorf("link %d not collapsed after Freeze", id)
		}
	}

	mustPanic(t, "Create after Freeze", func() { b.Create() })
	mustPanic(t, "Update after Freeze", func() { b.Update(ids["C"], "A", 0, ids["A"]) })
	mustPanic(t, "second Freeze", func() { b.Freeze(ids["sink"]) })
}

func TestMetrics(t *testing.T) {
	m := &Metrics{}
	b, ids := diamond(t, m)
	b.Update(ids["sink"], "C", 9, ids["C"])
	b.Freeze(ids["sink"])

	s := m.Snapshot()
	if s.LinksCreated != 5 {
		t.Errorf("LinksCreated = %d, want 5", s.LinksCreated)
	}
	if s.EdgesAdded != 9 {
		t.Errorf("EdgesAdded = %d, want 9", s.EdgesAdded)
	}
	if s.EdgesCollapsed != 1 {
		t.Errorf("EdgesCollapsed = %d, want 1", s.EdgesCollapsed)
	}

	var nilMetrics *Metrics
	if got := nilMetrics.Snapshot(); got != (MetricsSnapshot{}) {
		t.Errorf("nil Snapshot() = %+v, want zero", got)
	}
}

func TestConcurrentConstruction(t *testing.T) {
	const (
		workers = 8
		perWork = 500
	)
	b := NewBuilder[pos](nil)
	src := b.CreateSource()

	var wg sync.WaitGroup
	tails := make([]LinkID, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			prev := src
			for i := 0; i < perWork; i++ {
				id := b.Create()
				b.Update(id, "A", float64(i+1), prev)
				b.SetEmission(id, i+1, EventMatch)
				prev = id
			}
			tails[w] = prev
		}(w)
	}
	wg.Wait()

	if got, want := b.Len(), 1+workers*perWork; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	for w, tail := range tails {
		if b.Score(tail) != perWork {
			t.Errorf("worker %d: tail score = %v, want %d", w, b.Score(tail), perWork)
		}
	}
}
