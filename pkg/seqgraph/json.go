package seqgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pathlattice/pkg/errors"
)

type graphFile struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type nodeJSON struct {
	ID     int    `json:"id"`
	Letter string `json:"letter"`
}

type edgeJSON struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ReadJSON decodes a graph from r and checks that it is acyclic. Every
// failure carries errors.ErrCodeInvalidGraph and names the offending node or
// edge. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var data graphFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode graph")
	}
	return data.build()
}

// UnmarshalJSON decodes the format read by [ReadJSON] into g.
func (g *Graph) UnmarshalJSON(b []byte) error {
	var data graphFile
	if err := json.Unmarshal(b, &data); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode graph")
	}
	built, err := data.build()
	if err != nil {
		return err
	}
	*g = *built
	return nil
}

// MarshalJSON encodes g in the format read by [ReadJSON].
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.file())
}

func (data graphFile) build() (*Graph, error) {
	g := New()
	for _, n := range data.Nodes {
		if len(n.Letter) != 1 {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, ErrInvalidLetter, "node %d: letter %q", n.ID, n.Letter)
		}
		if _, err := g.AddNode(n.ID, n.Letter[0]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %d->%d", e.From, e.To)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "graph")
	}
	return g, nil
}

// Load reads a JSON graph file.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes g in the format read by [ReadJSON].
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.file()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func (g *Graph) file() graphFile {
	out := graphFile{
		Nodes: make([]nodeJSON, g.Len()),
		Edges: make([]edgeJSON, 0, g.EdgeCount()),
	}
	for _, c := range g.Cursors() {
		out.Nodes[c-1] = nodeJSON{ID: g.ID(c), Letter: string(g.Letter(c))}
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{From: e.From, To: e.To})
	}
	return out
}
