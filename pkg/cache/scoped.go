package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis without colliding.
//
// Example usage:
//
//	// Keys of the staging server
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LatticeKey generates a prefixed lattice key.
func (k *ScopedKeyer) LatticeKey(profileHash, graphHash string, opts LatticeKeyOpts) string {
	return k.prefix + k.inner.LatticeKey(profileHash, graphHash, opts)
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(latticeHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(latticeHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(latticeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(latticeHash, opts)
}
