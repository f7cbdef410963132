package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// chain builds the lattice of the single path "AC": source l0, links l1 and
// l2 for A and C, sink l3.
func chain(t *testing.T) (*lattice.PathSet[seqgraph.Cursor], *seqgraph.Graph) {
	t.Helper()
	g, err := seqgraph.FromSequence("AC")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := g.Lookup(1)
	c, _ := g.Lookup(2)

	b := lattice.NewBuilder[seqgraph.Cursor](nil)
	src := b.CreateSource()
	la := b.Create()
	b.Update(la, 0, 0, src)
	b.SetEmission(la, 1, lattice.EventMatch)
	lc := b.Create()
	b.Update(lc, a, 1, la)
	b.SetEmission(lc, 2, lattice.EventMatch)
	sink := b.Create()
	b.Update(sink, c, 1, lc)
	return b.Freeze(sink), g
}

func TestToDOT(t *testing.T) {
	ps, g := chain(t)
	dot := ToDOT(ps, g, Options{})

	want := []string{
		"digraph L {",
		"rankdir=LR;",
		`"start" [shape=point, width=0.15];`,
		`"l3" [label="3", shape=doublecircle, fillcolor=lightgrey];`,
		`"start" -> "l0" [label="", style=dashed];`,
		`"l0" -> "l1" [label="", style=dashed];`,
		`"l1" -> "l2" [label="A"];`,
		`"l2" -> "l3" [label="C"];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("ToDOT() missing %q\n%s", w, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("ToDOT() should end with a closing brace")
	}
}

func TestToDOTDetailed(t *testing.T) {
	ps, g := chain(t)
	dot := ToDOT(ps, g, Options{Detailed: true})

	want := []string{
		`"l1" [label="1\n0\nM1"];`,
		`"l1" -> "l2" [label="A 1"];`,
		`"l0" -> "l1" [label="0", style=dashed];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("ToDOT(Detailed) missing %q\n%s", w, dot)
		}
	}
}

func TestFmtCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{1.0 / 3, "0.333333"},
	}
	for _, tt := range tests {
		if got := fmtCost(tt.in); got != tt.want {
			t.Errorf("fmtCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox = %s, want unchanged", got)
	}
}

func TestRenderSVG(t *testing.T) {
	ps, g := chain(t)
	svg, err := RenderSVG(context.Background(), ToDOT(ps, g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() output is not SVG: %.80s", svg)
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() with broken DOT should fail")
	}
}
