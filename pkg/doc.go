// Package pkg provides the core libraries for pathlattice.
//
// # Overview
//
// Pathlattice aligns a linear scoring profile against a sequence graph and
// keeps every scored alignment in a path lattice: a DAG of links in which
// shared suffixes are stored once. The K best distinct paths are extracted
// from the lattice with a best-first search that never expands the same
// cursor sequence twice.
//
// # Architecture
//
// The typical data flow through pathlattice:
//
//	Profile (TOML) + Sequence graph (JSON)
//	         ↓
//	    [align] package (forward sweep builds the lattice)
//	         ↓
//	    [lattice] package (freeze, top-K, membership queries)
//	         ↓
//	    [io] package (lattice and result JSON)
//	         ↓
//	    [render/nodelink] package (DOT, SVG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pathlattice/pkg/align"
//	    "github.com/matzehuels/pathlattice/pkg/hmm"
//	)
//
//	fees, _ := hmm.Load("zinc.toml")
//	res, _ := align.Sequence(context.Background(), fees, "CPECGKSFSQ", align.Options{})
//	for _, p := range res.Paths.TopK(5) {
//	    fmt.Println(p.String(res.Graph), p.Score)
//	}
//
// # Main Packages
//
// ## Core Domain Logic
//
// [lattice] - The path lattice. A Builder records scored back-edges while a
// forward pass runs; Freeze collapses it into a read-only PathSet that
// answers top-K, best-path and has-sequence queries.
//
// [hmm] - Linear profiles: consensus residues and event costs.
//
// [seqgraph] - Lettered DAGs of sequence positions, with topological order
// and weakly connected components.
//
// [align] - The forward sweep that builds a lattice from a profile and a
// graph, one goroutine per component.
//
// ## Serialization and Rendering
//
// [io] - Lattice documents and path results as JSON.
//
// [render/nodelink] - Lattice diagrams using Graphviz.
//
// ## Infrastructure
//
// [pipeline] - The align → search → render pipeline with caching, used by
// the CLI and the HTTP server.
//
// [cache] - Cache backends (null, file, memory LRU, Redis) and key builders.
//
// [store] - Stores for uploaded lattices (memory, file, MongoDB).
//
// [server] - The HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/lattice/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
package pkg
