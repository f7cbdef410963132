// Package nodelink renders lattices as node-link diagrams.
//
// # Overview
//
// Every link reachable from the sink becomes a node and every back-edge an
// arrow from its predecessor to the link that owns it, so diagrams read from
// the path starts on the left to the sink on the right. Edges are labelled
// with the residue their cursor spells. Back-edges without a predecessor
// point from a shared "start" node.
//
// # Usage
//
// Convert a lattice to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(paths, g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, link labels include the best cost and emission,
//     and edge labels include the cumulative cost.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
