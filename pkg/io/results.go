package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// PathResult is the JSON form of one extracted path.
type PathResult struct {
	Rank      int             `json:"rank"`
	Path      []int           `json:"path"`
	Sequence  string          `json:"sequence"`
	Score     float64         `json:"score"`
	Alignment string          `json:"alignment,omitempty"`
	Events    []lattice.Event `json:"events"`
}

// Results converts paths to their JSON form. Alignments are rendered only
// when fees is non-nil; a path that cannot be rendered fails the conversion.
func Results(paths []lattice.AnnotatedPath[seqgraph.Cursor], g *seqgraph.Graph, fees *hmm.Fees) ([]PathResult, error) {
	out := make([]PathResult, len(paths))
	for i, p := range paths {
		r := PathResult{
			Rank:     i + 1,
			Path:     make([]int, len(p.Path)),
			Sequence: p.String(g),
			Score:    p.Score,
			Events:   p.Events,
		}
		for j, c := range p.Path {
			r.Path[j] = g.ID(c)
		}
		if fees != nil {
			aln, err := p.Alignment(fees, g)
			if err != nil {
				return nil, fmt.Errorf("path %d: %w", i+1, err)
			}
			r.Alignment = aln
		}
		out[i] = r
	}
	return out, nil
}

// WriteResults encodes results as an indented JSON array.
func WriteResults(results []PathResult, w io.Writer) error {
	if results == nil {
		results = []PathResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
