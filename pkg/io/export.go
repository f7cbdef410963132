package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// Document is a lattice with the graph its cursors refer to.
type Document struct {
	Profile *hmm.Fees
	Graph   *seqgraph.Graph
	Paths   *lattice.PathSet[seqgraph.Cursor]
}

type document struct {
	Profile *hmm.Fees       `json:"profile,omitempty"`
	Graph   *seqgraph.Graph `json:"graph"`
	Root    int             `json:"root"`
	Links   []link          `json:"links"`
}

// link.Score is written for readers of the file; imports recompute it.
type link struct {
	Score    *float64      `json:"score,omitempty"`
	Emission lattice.Event `json:"emission"`
	Edges    []edge        `json:"edges"`
}

type edge struct {
	Cursor *int           `json:"cursor,omitempty"`
	Cost   float64        `json:"cost"`
	Pred   lattice.LinkID `json:"pred"`
}

func toDocument(doc Document) document {
	records := doc.Paths.Records()
	out := document{
		Profile: doc.Profile,
		Graph:   doc.Graph,
		Links:   make([]link, len(records)),
	}
	for i, r := range records {
		l := link{Emission: r.Emission, Edges: make([]edge, len(r.Edges))}
		if !math.IsInf(r.Score, 1) {
			score := r.Score
			l.Score = &score
		}
		for j, e := range r.Edges {
			ed := edge{Cost: e.Cost, Pred: e.Pred}
			if !e.Cursor.IsEmpty() {
				id := doc.Graph.ID(e.Cursor)
				ed.Cursor = &id
			}
			l.Edges[j] = ed
		}
		out.Links[i] = l
	}
	return out
}

// WriteJSON encodes doc as indented JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal encodes doc as compact JSON.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.Marshal(toDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
