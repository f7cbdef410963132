package align

import (
	"context"

	"github.com/matzehuels/pathlattice/pkg/hmm"
	"github.com/matzehuels/pathlattice/pkg/lattice"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// state is the cheapest way found to reach a node at a column, and the link
// that records it.
type state struct {
	cost float64
	link lattice.LinkID
}

func (s state) better(o state) state {
	if o.cost < s.cost {
		return o
	}
	return s
}

// sweep aligns the profile against one weakly connected component. It only
// writes links it creates itself.
type sweep struct {
	b     *lattice.Builder[seqgraph.Cursor]
	fees  *hmm.Fees
	g     *seqgraph.Graph
	src   lattice.LinkID
	nodes []seqgraph.Cursor
}

func (s *sweep) run(ctx context.Context) ([]exit, error) {
	n := len(s.nodes)
	local := make(map[seqgraph.Cursor]int, n)
	for i, c := range s.nodes {
		local[c] = i
	}
	costs := s.fees.Costs

	// stay is the best match or insertion state of each node at the current
	// column; best additionally allows the column to be deleted after an
	// earlier state.
	prevBest := make([]state, n)
	stay := make([]state, n)
	best := make([]state, n)

	// Column 0 holds only leading insertions.
	for i, c := range s.nodes {
		id := s.b.Create()
		s.b.SetEmission(id, 0, lattice.EventInsertion)
		s.b.Update(id, 0, costs.Insertion, s.src)
		for _, p := range s.g.Predecessors(c) {
			ps := stay[local[p]]
			s.b.Update(id, p, ps.cost+costs.Insertion, ps.link)
		}
		stay[i] = state{cost: s.b.Score(id), link: id}
		best[i] = stay[i]
	}

	for m := 1; m <= s.fees.M; m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prevBest, best = best, prevBest
		skipped := float64(m-1) * costs.Deletion

		for i, c := range s.nodes {
			preds := s.g.Predecessors(c)
			mc := s.fees.MatchCost(m, s.g.Letter(c))

			match := s.b.Create()
			s.b.SetEmission(match, m, lattice.EventMatch)
			s.b.Update(match, 0, skipped+mc, s.src)
			for _, p := range preds {
				ps := prevBest[local[p]]
				s.b.Update(match, p, ps.cost+mc, ps.link)
			}
			stay[i] = state{cost: s.b.Score(match), link: match}

			if len(preds) > 0 {
				ins := s.b.Create()
				s.b.SetEmission(ins, m, lattice.EventInsertion)
				for _, p := range preds {
					ps := stay[local[p]]
					s.b.Update(ins, p, ps.cost+costs.Insertion, ps.link)
				}
				stay[i] = stay[i].better(state{cost: s.b.Score(ins), link: ins})
			}

			del := prevBest[i]
			del.cost += costs.Deletion
			best[i] = stay[i].better(del)
		}
	}

	exits := make([]exit, n)
	for i, c := range s.nodes {
		exits[i] = exit{cursor: c, state: best[i]}
	}
	return exits, nil
}
