// Package learner implements the search-and-score learners of spec.md §4.7:
// greedy hill-climbing with restarts, simulated annealing, and exhaustive
// scoring of a supplied list of networks.
package learner

import (
	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/eval"
)

// proposeAndScore picks two distinct nodes (u,v) uniformly and submits the
// single local change spec.md §4.7 describes: reverse an existing edge,
// remove one, or add one where neither direction exists. On CyclicNetwork
// it retries with a new pair, up to n^2 attempts, before giving up with
// ErrCannotAlterNetwork (spec.md §4.7 "Greedy", step 1).
func proposeAndScore(ev *eval.SmartEvaluator, rng cpd.Rand) (float64, error) {
	net := ev.Network()
	n := net.N()
	if n < 2 {
		return 0, ErrCannotAlterNetwork
	}
	maxAttempts := n * n

	for attempt := 0; attempt < maxAttempts; attempt++ {
		u, v := distinctPair(rng, n)

		var add, remove []dag.Edge
		switch {
		case net.HasEdge(u, v):
			add, remove = []dag.Edge{{U: v, V: u}}, []dag.Edge{{U: u, V: v}}
		case net.HasEdge(v, u):
			remove = []dag.Edge{{U: v, V: u}}
		default:
			add = []dag.Edge{{U: u, V: v}}
		}

		score, err := ev.AlterNetwork(add, remove)
		if err == nil {
			return score, nil
		}
		if err == dag.ErrCyclic {
			continue
		}
		return 0, err
	}

	return 0, ErrCannotAlterNetwork
}

func distinctPair(rng cpd.Rand, n int) (int, int) {
	u := rng.Intn(n)
	v := rng.Intn(n)
	for v == u {
		v = rng.Intn(n)
	}
	return u, v
}
