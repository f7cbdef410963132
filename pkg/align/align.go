package align

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pathlattice/pkg/errors"
	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// Options configures an alignment. The zero value is usable.
type Options struct {
	// Workers bounds the number of components swept at once.
	// Zero means GOMAXPROCS.
	Workers int

	// Finishes restricts the nodes a path may end in, by node ID.
	// Empty means any node.
	Finishes []int

	Metrics *lattice.Metrics
	Logger  *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be non-negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// Result is a frozen lattice together with what it was built from.
type Result struct {
	Paths      *lattice.PathSet[seqgraph.Cursor]
	Graph      *seqgraph.Graph
	Fees       *hmm.Fees
	Components int
	Duration   time.Duration
}

// exit is a candidate last position of a path: the state of cursor after the
// final column.
type exit struct {
	cursor seqgraph.Cursor
	state  state
}

// Sequence aligns fees against the linear graph spelling seq.
func Sequence(ctx context.Context, fees *hmm.Fees, seq string, opts Options) (*Result, error) {
	if err := errors.ValidateResidues(seq, 0); err != nil {
		return nil, err
	}
	g, err := seqgraph.FromSequence(seq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "sequence")
	}
	return Graph(ctx, fees, g, opts)
}

// Graph aligns fees against g and returns the frozen lattice. The sink of
// the lattice is reached from every node, or from the nodes named in
// [Options.Finishes].
func Graph(ctx context.Context, fees *hmm.Fees, g *seqgraph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	finishes, err := resolveFinishes(g, opts.Finishes)
	if err != nil {
		return nil, err
	}
	comps, err := g.Components()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "order graph")
	}

	start := time.Now()
	b := lattice.NewBuilder[seqgraph.Cursor](opts.Metrics)
	src := b.CreateSource()
	exits := make([][]exit, len(comps))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i, nodes := range comps {
		eg.Go(func() error {
			sw := &sweep{b: b, fees: fees, g: g, src: src, nodes: nodes}
			out, err := sw.run(egCtx)
			if err != nil {
				return fmt.Errorf("component %d: %w", i, err)
			}
			exits[i] = out
			opts.Logger.Debug("swept component", "component", i, "nodes", len(nodes))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sink := b.Create()
	for _, comp := range exits {
		for _, e := range comp {
			b.Update(sink, e.cursor, e.state.cost, e.state.link)
		}
	}
	if finishes != nil {
		b.SetFinishes(sink, finishes)
	}
	ps := b.Freeze(sink)

	res := &Result{
		Paths:      ps,
		Graph:      g,
		Fees:       fees,
		Components: len(comps),
		Duration:   time.Since(start),
	}
	opts.Logger.Info("built lattice",
		"profile", fees.Name,
		"columns", fees.M,
		"nodes", g.Len(),
		"components", len(comps),
		"links", ps.Len(),
		"best", ps.BestScore(),
		"duration", res.Duration)
	return res, nil
}

func resolveFinishes(g *seqgraph.Graph, ids []int) (map[seqgraph.Cursor]struct{}, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make(map[seqgraph.Cursor]struct{}, len(ids))
	for _, id := range ids {
		c, ok := g.Lookup(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "finish node %d not in graph", id)
		}
		out[c] = struct{}{}
	}
	return out, nil
}
