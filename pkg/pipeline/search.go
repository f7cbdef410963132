package pipeline

import (
	"context"
	"time"

	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/observability"
)

// Search extracts the opts.K best paths of doc and converts them to their
// JSON form. Alignments are rendered when the document carries a profile.
func Search(ctx context.Context, doc *pathio.Document, opts Options) ([]pathio.PathResult, error) {
	if err := opts.ValidateForSearch(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := opts.Metrics
	if m == nil {
		m = new(lattice.Metrics)
	}
	pops := m.SearchPops.Load()

	hooks := observability.Pipeline()
	hooks.OnSearchStart(ctx, opts.K)
	start := time.Now()
	paths := doc.Paths.TopK(opts.K, opts.SearchOptions(m)...)
	hooks.OnSearchComplete(ctx, opts.K, len(paths), m.SearchPops.Load()-pops, time.Since(start))

	return pathio.Results(paths, doc.Graph, doc.Profile)
}
