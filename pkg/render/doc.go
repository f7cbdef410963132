// Package render turns lattices into pictures.
//
// The [nodelink] subpackage renders a lattice as a directed graph with
// Graphviz: links are nodes and back-edges are arrows labelled with the
// residue they spell.
//
//	dot := nodelink.ToDOT(paths, g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/pathlattice/pkg/render/nodelink
package render
