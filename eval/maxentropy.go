package eval

import (
	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
)

// MaxEntropyGibbsEvaluator differs from GibbsEvaluator only in how missing
// cells are initialized and proposed: each missing-containing variable
// starts at a maximum-entropy assignment (as uniform a marginal as the
// observed cells allow) and proposals swap values between two samples of the
// same variable rather than resampling a single cell freely, so the chain
// walks only over assignments that preserve that marginal (spec.md §4.6
// "Max-entropy Gibbs variant").
type MaxEntropyGibbsEvaluator struct {
	*base
}

// NewMaxEntropyGibbs builds a max-entropy Gibbs missing-data evaluator.
func NewMaxEntropyGibbs(ds *data.Dataset, net *dag.DAG, p *prior.Prior, rng cpd.Rand, burnin int, stop StoppingFunc) *MaxEntropyGibbsEvaluator {
	return &MaxEntropyGibbsEvaluator{base: newBase(ds, net, p, rng, burnin, stop)}
}

// doMaxEntropyAssignment assigns values to variable v's missing samples so
// that, across *all* samples (observed and missing), each value of v occurs
// as close to numSamples/arity times as possible.
//
// When numSamples is not a multiple of arity, the reference implementation
// assigns the leftover slots the literal loop index (0, 1, 2, ...) rather
// than a value clamped to [0, arity) — a bias toward low values that the
// source itself calls out as dubious. That behavior is reproduced here
// faithfully rather than fixed.
func (m *MaxEntropyGibbsEvaluator) doMaxEntropyAssignment(v int) {
	arity := m.dataset.Arity(v)
	numSamples := m.dataset.NumSamples()

	var missingSamples, observedSamples []int
	for s := 0; s < numSamples; s++ {
		if m.dataset.Missing[s][v] {
			missingSamples = append(missingSamples, s)
		} else {
			observedSamples = append(observedSamples, s)
		}
	}

	numEach := numSamples / arity
	assignments := make([]int, 0, numSamples)
	for val := 0; val < arity; val++ {
		for i := 0; i < numEach; i++ {
			assignments = append(assignments, val)
		}
	}
	for i := 0; i < numSamples-len(assignments); i++ {
		assignments = append(assignments, i)
	}

	for _, s := range observedSamples {
		val := m.dataset.Get(s, v)
		assignments = removeFirst(assignments, val)
	}

	shuffle(assignments, m.rng)
	for i, s := range missingSamples {
		m.dataset.Set(s, v, assignments[i])
	}
}

func removeFirst(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func shuffle(s []int, rng cpd.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func (m *MaxEntropyGibbsEvaluator) assignMissingVals(missingVars []int, state *GibbsState) {
	if state != nil {
		indices := m.dataset.MissingIndices()
		for i, idx := range indices {
			m.dataset.Set(idx[0], idx[1], state.AssignedVals[i])
		}
		return
	}
	for _, v := range missingVars {
		m.doMaxEntropyAssignment(v)
	}
}

type swapRecord struct {
	sample1, var1, val1 int
	sample2, var2, val2 int
}

// swapData exchanges v's values between sample1 and some other sample drawn
// from choices, retrying up to len(choices)/2 times to find a distinct
// value (spec.md §4.6 "proposes swaps").
func (m *MaxEntropyGibbsEvaluator) swapData(v, sample1 int, choices []int) swapRecord {
	val1 := m.dataset.Get(sample1, v)

	sample2 := sample1
	val2 := val1
	tries := len(choices) / 2
	if tries < 1 {
		tries = 1
	}
	for i := 0; i < tries; i++ {
		sample2 = choices[m.rng.Intn(len(choices))]
		val2 = m.dataset.Get(sample2, v)
		if val1 != val2 {
			break
		}
	}

	m.alterCell(sample1, v, val2)
	m.alterCell(sample2, v, val1)
	return swapRecord{sample1, v, val1, sample2, v, val2}
}

func (m *MaxEntropyGibbsEvaluator) undoSwap(s swapRecord) {
	m.alterCell(s.sample1, s.var1, s.val1)
	m.alterCell(s.sample2, s.var2, s.val2)
}

// ScoreNetwork runs the max-entropy swap sampler to convergence and returns
// the averaged log score, with the same resumability contract as
// GibbsEvaluator.ScoreNetwork.
func (m *MaxEntropyGibbsEvaluator) ScoreNetwork(net *dag.DAG, stop StoppingFunc, state *GibbsState) (float64, error) {
	if net != nil {
		m.network = net
	}
	if stop == nil {
		stop = m.stop
	}

	indices := m.dataset.MissingIndices()
	numMissing := len(indices)

	var missingVars []int
	missingSamplesByVar := make(map[int][]int)
	for v := 0; v < m.dataset.NumVariables(); v++ {
		var samples []int
		for s := 0; s < m.dataset.NumSamples(); s++ {
			if m.dataset.Missing[s][v] {
				samples = append(samples, s)
			}
		}
		if len(samples) > 0 {
			missingVars = append(missingVars, v)
			missingSamplesByVar[v] = samples
		}
	}

	m.assignMissingVals(missingVars, state)
	m.initState()

	chosenScores := make([]float64, 0)
	iters := 0
	for !stop(iters, numMissing) {
		for _, v := range missingVars {
			for _, sample := range missingSamplesByVar[v] {
				score0 := m.scoreNetworkCore()
				swap := m.swapData(v, sample, missingSamplesByVar[v])
				score1 := m.scoreNetworkCore()

				chosen := cpd.LogScaleProbWheel([]float64{score0, score1}, m.rng)
				if chosen == 0 {
					m.undoSwap(swap)
					chosenScores = append(chosenScores, score0)
				} else {
					chosenScores = append(chosenScores, score1)
				}
			}
		}
		iters += numMissing
	}

	score, numScores := m.calculateScore(chosenScores, numMissing, state)
	m.score = score
	m.GibbsState = &GibbsState{AvgScore: score, NumScores: numScores, AssignedVals: m.assignedValsAt(indices)}
	return score, nil
}
