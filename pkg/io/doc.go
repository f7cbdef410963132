// Package io provides JSON import and export for lattices and for the paths
// extracted from them.
//
// # Lattice Documents
//
// A [Document] bundles a frozen lattice with the sequence graph its cursors
// point into and, optionally, the profile it was aligned against. Only the
// links reachable from the sink are written, renumbered breadth first so the
// sink is link 0. Shared links are written once and referenced by index, so
// the document is as compact as the lattice itself:
//
//	{
//	  "profile": {"name": "toy", "length": 3, "consensus": "ACG", "costs": {...}},
//	  "graph": {"nodes": [{"id": 1, "letter": "A"}], "edges": []},
//	  "root": 0,
//	  "links": [
//	    {"score": 2, "emission": "M3", "edges": [{"cursor": 1, "cost": 2, "pred": 1}]},
//	    {"score": 0, "emission": "M1", "edges": [{"cost": 0, "pred": 2}]},
//	    {"score": 0, "emission": "-", "edges": [{"cost": 0, "pred": -1}]}
//	  ]
//	}
//
// Edge cursors are graph node IDs; an edge without a cursor starts a path.
// A link without back-edges omits its score.
//
// Use [ExportJSON] and [ImportJSON] for files, or [WriteJSON] and [ReadJSON]
// for any stream. [Marshal] and [Unmarshal] produce compact bytes for
// caches and stores.
//
// # Results
//
// [Results] turns annotated paths into [PathResult] values with node IDs,
// residues, score and, when a profile is known, the rendered alignment.
// [WriteResults] encodes them as an indented JSON array.
//
// # Concurrency
//
// Reading a frozen lattice is safe from many goroutines, so documents can be
// exported while queries run against the same lattice.
package io
