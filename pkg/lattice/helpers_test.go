package lattice

import (
	"slices"
	"strings"
	"testing"
)

// pos is a test cursor: a named position whose first byte is its residue.
type pos string

func (p pos) IsEmpty() bool     { return p == "" }
func (p pos) Compare(o pos) int { return strings.Compare(string(p), string(o)) }

type letters struct{}

func (letters) Letter(p pos) byte { return p[0] }

// diamond builds a lattice with two complete paths through C:
//
//	[A C] cost 2, [B C] cost 3
//
// plus the direct sink edges B (cost 4) and A (cost 6), which the search
// rejects because A and B are already transit positions.
func diamond(t *testing.T, m *Metrics) (*Builder[pos], map[string]LinkID) {
	t.Helper()
	b := NewBuilder[pos](m)
	src := b.CreateSource()
	la := b.Create()
	b.Update(la, "", 1, src)
	lb := b.Create()
	b.Update(lb, "", 2, src)
	lc := b.Create()
	b.Update(lc, "A", 2, la)
	b.Update(lc, "B", 3, lb)
	sink := b.Create()
	b.Update(sink, "C", 2, lc)
	b.Update(sink, "B", 4, lb)
	b.Update(sink, "A", 6, la)
	return b, map[string]LinkID{"src": src, "A": la, "B": lb, "C": lc, "sink": sink}
}

func cursors(p AnnotatedPath[pos]) []string {
	out := make([]string, len(p.Path))
	for i, c := range p.Path {
		out[i] = string(c)
	}
	return out
}

func edgeCursors(edges []BackEdge[pos]) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = string(e.Cursor)
	}
	return out
}

func equalStrings(a, b []string) bool { return slices.Equal(a, b) }

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
