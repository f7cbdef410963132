package lattice

// trie records the cursor sequences already reported by a search.
type trie[T comparable] struct {
	root trieNode[T]
}

type trieNode[T comparable] struct {
	children map[T]*trieNode[T]
}

func newTrie[T comparable]() *trie[T] { return &trie[T]{} }

// tryAdd inserts seq and reports whether the insertion created a node. A
// sequence that repeats an earlier one, or is a prefix of one, adds nothing
// and is rejected.
func (t *trie[T]) tryAdd(seq []T) bool {
	n := &t.root
	added := false
	for _, c := range seq {
		child, ok := n.children[c]
		if !ok {
			if n.children == nil {
				n.children = make(map[T]*trieNode[T])
			}
			child = &trieNode[T]{}
			n.children[c] = child
			added = true
		}
		n = child
	}
	return added
}
