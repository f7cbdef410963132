package lattice

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathlattice/pkg/errors"
	"github.com/matzehuels/pathlattice/pkg/hmm"
)

// AnnotatedPath is a materialized path: its positions from start to end, its
// score, and the emission event of every position.
type AnnotatedPath[T Cursor[T]] struct {
	Path   []T
	Score  float64
	Events []Event
}

// Empty reports whether the path has no positions.
func (p AnnotatedPath[T]) Empty() bool { return len(p.Path) == 0 }

// Len returns the number of positions.
func (p AnnotatedPath[T]) Len() int {
	errors.Invariant(len(p.Path) == len(p.Events), "path has %d positions and %d events", len(p.Path), len(p.Events))
	return len(p.Path)
}

// String returns the residues spelled by the path.
func (p AnnotatedPath[T]) String(ctx Context[T]) string {
	return PathString(p.Path, ctx)
}

// PathString returns the residues spelled by path. The path must not contain
// the empty cursor.
func PathString[T Cursor[T]](path []T, ctx Context[T]) string {
	var b strings.Builder
	b.Grow(len(path))
	for i, cur := range path {
		errors.Invariant(!cur.IsEmpty(), "empty cursor at position %d", i)
		b.WriteByte(ctx.Letter(cur))
	}
	return b.String()
}

// Alignment renders the path against the profile, one character per profile
// column or inserted residue: 'M' for a match to the consensus, 'X' for a
// mismatch, 'I' for an insertion and '-' for a skipped column, including
// trailing columns up to fees.M.
//
// An unset event, or a column outside the profile, means the lattice was
// built incorrectly. The violation is logged and returned as an
// [errors.ErrCodeInvariant] error.
func (p AnnotatedPath[T]) Alignment(fees *hmm.Fees, ctx Context[T]) (string, error) {
	n := p.Len()
	var b strings.Builder
	prev := 0
	for i := 0; i < n; i++ {
		ev := p.Events[i]
		if !ev.IsSet() || ev.Column() > fees.M || (ev.Kind() == EventMatch && ev.Column() == 0) {
			log.Error("invalid event on path",
				"position", i,
				"event", ev,
				"path", p.String(ctx),
				"alignment", b.String())
			return "", errors.Invariantf("event %v at position %d of a %d-column profile", ev, i, fees.M)
		}
		for j := prev + 1; j < ev.Column(); j++ {
			b.WriteByte('-')
		}
		prev = ev.Column()
		switch {
		case ev.Kind() == EventInsertion:
			b.WriteByte('I')
		case fees.ConsensusAt(ev.Column()) == ctx.Letter(p.Path[i]):
			b.WriteByte('M')
		default:
			b.WriteByte('X')
		}
	}
	for j := prev + 1; j <= fees.M; j++ {
		b.WriteByte('-')
	}
	return b.String(), nil
}

// PathList is the result of a top-K query with indexed rendering helpers.
type PathList[T Cursor[T]] struct {
	paths []AnnotatedPath[T]
}

// Len returns the number of paths.
func (l PathList[T]) Len() int { return len(l.paths) }

// Empty reports whether the query found nothing.
func (l PathList[T]) Empty() bool { return len(l.paths) == 0 }

// At returns path n.
func (l PathList[T]) At(n int) AnnotatedPath[T] { return l.paths[n] }

// All returns the paths, best first. The slice is shared.
func (l PathList[T]) All() []AnnotatedPath[T] { return l.paths }

// Str returns the residues of path n.
func (l PathList[T]) Str(n int, ctx Context[T]) string { return l.paths[n].String(ctx) }

// Alignment renders path n against fees.
func (l PathList[T]) Alignment(n int, fees *hmm.Fees, ctx Context[T]) (string, error) {
	return l.paths[n].Alignment(fees, ctx)
}
