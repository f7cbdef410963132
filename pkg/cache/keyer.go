package cache

import (
	"slices"
	"strconv"
)

// Keyer derives cache keys from the inputs of a computation.
type Keyer interface {
	// LatticeKey identifies the lattice built from a profile and a graph.
	LatticeKey(profileHash, graphHash string, opts LatticeKeyOpts) string

	// ResultKey identifies a top-K query against a lattice.
	ResultKey(latticeHash string, opts ResultKeyOpts) string

	// ArtifactKey identifies a rendered picture of a lattice.
	ArtifactKey(latticeHash string, opts ArtifactKeyOpts) string
}

// LatticeKeyOpts are the alignment options that change the lattice.
type LatticeKeyOpts struct {
	Finishes []int
}

// ResultKeyOpts are the query options that change the result.
type ResultKeyOpts struct {
	K        int
	MinScore float64
}

// ArtifactKeyOpts are the render options that change the artifact.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LatticeKey returns "lattice:<hash>". The order of finishes does not matter.
func (DefaultKeyer) LatticeKey(profileHash, graphHash string, opts LatticeKeyOpts) string {
	finishes := slices.Clone(opts.Finishes)
	slices.Sort(finishes)
	return hashKey("lattice", profileHash, graphHash, finishes)
}

// ResultKey returns "result:<hash>".
func (DefaultKeyer) ResultKey(latticeHash string, opts ResultKeyOpts) string {
	// JSON cannot encode infinities, so the score goes in as text.
	return hashKey("result", latticeHash, opts.K, strconv.FormatFloat(opts.MinScore, 'g', -1, 64))
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(latticeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", latticeHash, opts)
}

var _ Keyer = DefaultKeyer{}
