package lattice

// Cursor is the contract for graph positions stored in a lattice.
//
// Implementations are small comparable values. The zero value must be the
// empty cursor and report IsEmpty; Compare must be a total order consistent
// with ==.
type Cursor[T any] interface {
	comparable
	// IsEmpty reports whether this is the empty cursor.
	IsEmpty() bool
	// Compare returns -1, 0 or +1 as the receiver sorts before, equal to or
	// after other.
	Compare(other T) int
}

// Context resolves cursors to residues. It is threaded through read-only
// queries and owned by the caller.
type Context[T any] interface {
	Letter(cur T) byte
}

// LinkID addresses a link in a lattice arena.
type LinkID int32

// NoLink is the null predecessor, used by source back-edges.
const NoLink LinkID = -1

// BackEdge is one scored way of reaching a link: the predecessor position,
// the cost of the link when reached through it, and the link that holds the
// predecessor position.
type BackEdge[T any] struct {
	Cursor T
	Cost   float64
	Pred   LinkID
}
