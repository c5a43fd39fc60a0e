package eval

import (
	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
)

// GibbsEvaluator marginalizes over missing cells by Gibbs sampling: each
// missing cell is rescored once per candidate value and resampled with a
// log-scale probability wheel, once per sweep, until the stopping predicate
// fires (spec.md §4.6 "Gibbs variant").
type GibbsEvaluator struct {
	*base
}

// NewGibbs builds a Gibbs missing-data evaluator. burnin is the
// burn-in-period multiplier (default 10 per spec.md §6
// "gibbs.burnin"); stop may be nil to use DefaultStopping.
func NewGibbs(ds *data.Dataset, net *dag.DAG, p *prior.Prior, rng cpd.Rand, burnin int, stop StoppingFunc) *GibbsEvaluator {
	return &GibbsEvaluator{base: newBase(ds, net, p, rng, burnin, stop)}
}

func (g *GibbsEvaluator) assignMissingVals(indices [][2]int, state *GibbsState) {
	if state != nil {
		for i, idx := range indices {
			g.dataset.Set(idx[0], idx[1], state.AssignedVals[i])
		}
		return
	}
	for _, idx := range indices {
		arity := g.dataset.Arity(idx[1])
		g.dataset.Set(idx[0], idx[1], g.rng.Intn(arity))
	}
}

// ScoreNetwork runs one full Gibbs sampling pass to convergence (per the
// stopping predicate) and returns the averaged log score. A nil net
// continues with the network already owned by the evaluator; a nil stop
// uses the evaluator's configured stopping predicate; a nil state starts
// fresh (random initial assignment, full burn-in), a non-nil state resumes
// (no burn-in, its running average is folded in).
func (g *GibbsEvaluator) ScoreNetwork(net *dag.DAG, stop StoppingFunc, state *GibbsState) (float64, error) {
	if net != nil {
		g.network = net
	}
	if stop == nil {
		stop = g.stop
	}

	indices := g.dataset.MissingIndices()
	numMissing := len(indices)

	g.assignMissingVals(indices, state)
	g.initState()

	chosenScores := make([]float64, 0)
	iters := 0
	for !stop(iters, numMissing) {
		for _, idx := range indices {
			row, col := idx[0], idx[1]
			arity := g.dataset.Arity(col)
			scores := make([]float64, arity)
			for val := 0; val < arity; val++ {
				g.alterCell(row, col, val)
				scores[val] = g.scoreNetworkCore()
			}
			chosen := cpd.LogScaleProbWheel(scores, g.rng)
			g.alterCell(row, col, chosen)
			chosenScores = append(chosenScores, scores[chosen])
		}
		iters += numMissing
	}

	score, numScores := g.calculateScore(chosenScores, numMissing, state)
	g.score = score
	g.GibbsState = &GibbsState{AvgScore: score, NumScores: numScores, AssignedVals: g.assignedValsAt(indices)}
	return score, nil
}
