// Package hmm describes the scoring profile an alignment runs against: the
// profile length, its consensus residues and the costs of each transition.
//
// Profiles are read from TOML:
//
//	name = "zinc-finger"
//	consensus = """
//	CPECGKSFSQKSNLQKHQRTH
//	"""
//
//	[costs]
//	match = 0.0
//	mismatch = 1.0
//	insertion = 1.5
//	deletion = 1.5
//
// Whitespace inside the consensus is ignored. Missing costs take their value
// from [DefaultCosts]. Costs must be non-negative: the lattice treats them as
// shortest-path weights.
package hmm

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pathlattice/pkg/errors"
)

// Costs are the per-event costs of the profile. Lower is better.
type Costs struct {
	Match     float64 `toml:"match" json:"match"`
	Mismatch  float64 `toml:"mismatch" json:"mismatch"`
	Insertion float64 `toml:"insertion" json:"insertion"`
	Deletion  float64 `toml:"deletion" json:"deletion"`
}

// DefaultCosts is unit edit distance.
var DefaultCosts = Costs{Match: 0, Mismatch: 1, Insertion: 1, Deletion: 1}

// Fees is a linear profile: M columns with one consensus residue each.
type Fees struct {
	Name      string `json:"name,omitempty"`
	M         int    `json:"length"`
	Consensus string `json:"consensus"`
	Costs     Costs  `json:"costs"`
}

type profileFile struct {
	Name      string `toml:"name"`
	Length    int    `toml:"length"`
	Consensus string `toml:"consensus"`
	Costs     *Costs `toml:"costs"`
}

// New builds and validates a profile.
func New(name, consensus string, costs Costs) (*Fees, error) {
	f := &Fees{Name: name, M: len(consensus), Consensus: consensus, Costs: costs}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Parse decodes a TOML profile.
func Parse(data []byte) (*Fees, error) {
	costs := DefaultCosts
	pf := profileFile{Costs: &costs}
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&pf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "decode profile")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "unknown profile key %q", undecoded[0].String())
	}

	consensus := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, pf.Consensus)

	f, err := New(pf.Name, consensus, costs)
	if err != nil {
		return nil, err
	}
	if pf.Length != 0 && pf.Length != f.M {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "length %d does not match consensus length %d", pf.Length, f.M)
	}
	return f, nil
}

// Load reads a TOML profile from path.
func Load(path string) (*Fees, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile %s", path)
		}
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return f, nil
}

// Validate checks the consensus and the costs.
func (f *Fees) Validate() error {
	if err := errors.ValidateResidues(f.Consensus, 0); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProfile, err, "consensus")
	}
	if f.M != len(f.Consensus) {
		return errors.New(errors.ErrCodeInvalidProfile, "M = %d, consensus has %d residues", f.M, len(f.Consensus))
	}
	for name, c := range map[string]float64{
		"match":     f.Costs.Match,
		"mismatch":  f.Costs.Mismatch,
		"insertion": f.Costs.Insertion,
		"deletion":  f.Costs.Deletion,
	} {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New(errors.ErrCodeInvalidProfile, "%s cost must be a finite non-negative number, got %v", name, c)
		}
	}
	return nil
}

// ConsensusAt returns the consensus residue of 1-based column col.
func (f *Fees) ConsensusAt(col int) byte { return f.Consensus[col-1] }

// MatchCost is the cost of emitting residue at 1-based column col.
func (f *Fees) MatchCost(col int, residue byte) float64 {
	if f.ConsensusAt(col) == residue {
		return f.Costs.Match
	}
	return f.Costs.Mismatch
}
