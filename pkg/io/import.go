package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pathlattice/pkg/errors"
	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// ReadJSON decodes a lattice document from r.
//
// ReadJSON returns an errors.ErrCodeInvalidLattice error if the JSON is
// malformed, the graph is missing, an edge names an unknown node, or the
// links do not form an acyclic lattice rooted at "root". Graph and profile
// problems keep their own codes. Stored link scores are ignored and
// recomputed from the back-edge costs. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidLattice, err, "decode lattice")
	}
	return fromDocument(data)
}

// Unmarshal decodes bytes produced by [Marshal] or [WriteJSON].
func Unmarshal(data []byte) (*Document, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a lattice document from the file at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "lattice %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func fromDocument(data document) (*Document, error) {
	if data.Graph == nil {
		return nil, errors.New(errors.ErrCodeInvalidLattice, "lattice has no graph")
	}
	if data.Profile != nil {
		fees, err := hmm.New(data.Profile.Name, data.Profile.Consensus, data.Profile.Costs)
		if err != nil {
			return nil, err
		}
		data.Profile = fees
	}

	records := make([]lattice.Record[seqgraph.Cursor], len(data.Links))
	for i, l := range data.Links {
		r := lattice.Record[seqgraph.Cursor]{
			Emission: l.Emission,
			Edges:    make([]lattice.BackEdge[seqgraph.Cursor], len(l.Edges)),
		}
		for j, e := range l.Edges {
			var cur seqgraph.Cursor
			if e.Cursor != nil {
				c, ok := data.Graph.Lookup(*e.Cursor)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidLattice, "link %d edge %d: unknown node %d", i, j, *e.Cursor)
				}
				cur = c
			}
			r.Edges[j] = lattice.BackEdge[seqgraph.Cursor]{Cursor: cur, Cost: e.Cost, Pred: e.Pred}
		}
		records[i] = r
	}

	ps, err := lattice.FromRecords(lattice.LinkID(data.Root), records)
	if err != nil {
		return nil, err
	}
	return &Document{Profile: data.Profile, Graph: data.Graph, Paths: ps}, nil
}
