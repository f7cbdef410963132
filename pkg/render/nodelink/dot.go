package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pathlattice/pkg/lattice"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes costs and emissions in labels.
	// When false, links show their ID and edges their residue only.
	Detailed bool
}

const startNode = "start"

// ToDOT converts the links reachable from the sink of ps to Graphviz DOT
// format. The resulting DOT string can be rendered using [RenderSVG].
//
// The sink is drawn as a double circle. Edges into the sink that carry the
// empty cursor are drawn dashed.
func ToDOT[T lattice.Cursor[T]](ps *lattice.PathSet[T], ctx lattice.Context[T], opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph L {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	ids := ps.Collect()
	hasStart := false
	for _, id := range ids {
		for _, e := range ps.Edges(id) {
			if e.Pred == lattice.NoLink {
				hasStart = true
			}
		}
	}
	if hasStart {
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.15];\n", startNode)
	}
	for _, id := range ids {
		attrs := []string{fmt.Sprintf("label=%q", linkLabel(ps, id, opts.Detailed))}
		if id == ps.Root() {
			attrs = append(attrs, "shape=doublecircle", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		for _, e := range ps.Edges(id) {
			from := startNode
			if e.Pred != lattice.NoLink {
				from = nodeName(e.Pred)
			}
			attrs := []string{fmt.Sprintf("label=%q", edgeLabel(e, ctx, opts.Detailed))}
			if e.Cursor.IsEmpty() {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", from, nodeName(id), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id lattice.LinkID) string {
	return "l" + strconv.Itoa(int(id))
}

func linkLabel[T lattice.Cursor[T]](ps *lattice.PathSet[T], id lattice.LinkID, detailed bool) string {
	label := strconv.Itoa(int(id))
	if !detailed {
		return label
	}
	return label + "\n" + fmtCost(ps.Score(id)) + "\n" + ps.Emission(id).String()
}

func edgeLabel[T lattice.Cursor[T]](e lattice.BackEdge[T], ctx lattice.Context[T], detailed bool) string {
	label := ""
	if !e.Cursor.IsEmpty() {
		label = string(ctx.Letter(e.Cursor))
	}
	if detailed {
		if label != "" {
			label += " "
		}
		label += fmtCost(e.Cost)
	}
	return label
}

func fmtCost(c float64) string {
	if math.IsInf(c, 1) {
		return "inf"
	}
	return strconv.FormatFloat(c, 'g', 6, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose viewBox
// starts at the origin, so the SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
