package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pathlattice/pkg/align"
	"github.com/matzehuels/pathlattice/pkg/hmm"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/observability"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// Align builds the lattice of fees against g. It reports the stage to the
// registered pipeline hooks and does not touch any cache.
func Align(ctx context.Context, fees *hmm.Fees, g *seqgraph.Graph, opts Options) (*pathio.Document, error) {
	if err := opts.ValidateForAlign(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnAlignStart(ctx, fees.Name, g.Len())

	start := time.Now()
	res, err := align.Graph(ctx, fees, g, opts.AlignOptions())
	links := 0
	if err == nil {
		links = res.Paths.Len()
	}
	hooks.OnAlignComplete(ctx, fees.Name, links, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &pathio.Document{Profile: fees, Graph: g, Paths: res.Paths}, nil
}
