package eval

import (
	"math"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
)

// ExactEvaluator enumerates every possible assignment of the missing cells
// and averages the resulting scores in log space (spec.md §4.6 "Exact
// variant"). Its cost is the product of arities over all missing cells, so
// it is intended for tiny datasets only.
type ExactEvaluator struct {
	*base
}

// NewExact builds an exact missing-data evaluator.
func NewExact(ds *data.Dataset, net *dag.DAG, p *prior.Prior) *ExactEvaluator {
	return &ExactEvaluator{base: newBase(ds, net, p, nil, 0, nil)}
}

// ScoreNetwork enumerates the Cartesian product of arities over every
// missing cell, scores each assignment, and returns logsum(scores) -
// ln(count).
func (x *ExactEvaluator) ScoreNetwork(net *dag.DAG) (float64, error) {
	if net != nil {
		x.network = net
	}

	indices := x.dataset.MissingIndices()
	x.initState()

	possibleVals := make([][]int, len(indices))
	for i, idx := range indices {
		possibleVals[i] = rangeInts(x.dataset.Arity(idx[1]))
	}

	scores := make([]float64, 0)
	cartesianProduct(possibleVals, func(assignment []int) {
		for i, idx := range indices {
			x.alterCell(idx[0], idx[1], assignment[i])
		}
		scores = append(scores, x.scoreNetworkCore())
	})

	x.score = cpd.LogSum(scores) - math.Log(float64(len(scores)))
	return x.score, nil
}

func rangeInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// cartesianProduct invokes visit once per combination drawn from choices, in
// odometer order (the last dimension varies fastest), without materializing
// the full product.
func cartesianProduct(choices [][]int, visit func([]int)) {
	if len(choices) == 0 {
		return
	}
	idx := make([]int, len(choices))
	current := make([]int, len(choices))
	for {
		for i, c := range choices {
			current[i] = c[idx[i]]
		}
		visit(current)

		pos := len(choices) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(choices[pos]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return
		}
	}
}
