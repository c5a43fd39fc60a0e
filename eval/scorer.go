package eval

import "github.com/bnstruct/pebl/dag"

// Scorer is the score-only subset of the evaluator contract that
// learner.Exhaustive depends on: score a candidate network, nothing more.
// SmartEvaluator and ExactEvaluator already satisfy it directly; GibbsEvaluator
// and MaxEntropyGibbsEvaluator need their sampling parameters (stop, state)
// fixed first, via Scorer() below.
type Scorer interface {
	ScoreNetwork(net *dag.DAG) (float64, error)
}

type onceScorer func(net *dag.DAG) (float64, error)

func (f onceScorer) ScoreNetwork(net *dag.DAG) (float64, error) { return f(net) }

// Scorer adapts g to the single-argument Scorer contract: every call runs
// one independent sampling pass to convergence (nil state, no averaging
// carried between networks), matching Exhaustive's one-shot list-scoring
// usage rather than an iterative learner's resumable-chain usage.
func (g *GibbsEvaluator) Scorer() Scorer {
	return onceScorer(func(net *dag.DAG) (float64, error) { return g.ScoreNetwork(net, nil, nil) })
}

// Scorer adapts m the same way GibbsEvaluator.Scorer does.
func (m *MaxEntropyGibbsEvaluator) Scorer() Scorer {
	return onceScorer(func(net *dag.DAG) (float64, error) { return m.ScoreNetwork(net, nil, nil) })
}
