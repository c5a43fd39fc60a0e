package eval

import (
	"math"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
)

// StoppingFunc decides whether a sampler should stop, given the iteration
// count and the number of missing values (spec.md §4.6 "Stopping
// predicate").
type StoppingFunc func(iters, nMissing int) bool

// DefaultStopping implements the reference default "iters > n**2".
func DefaultStopping(iters, nMissing int) bool {
	return iters > nMissing*nMissing
}

// GibbsState captures a sampler's resumable state: the running average
// score, how many scores it was averaged over, and the most recent value
// assigned to every missing cell, in Dataset.MissingIndices order (spec.md
// §4.6 "GibbsSamplerState").
type GibbsState struct {
	AvgScore     float64
	NumScores    int
	AssignedVals []int
}

// ScoreSum returns the log-sum of scores underlying AvgScore.
func (s *GibbsState) ScoreSum() float64 {
	return s.AvgScore + math.Log(float64(s.NumScores))
}

// base holds the state shared by every missing-data evaluator variant: one
// owned (not cached) CPT per node, rebuilt on construction and mutated
// in-place as cells are edited, plus the dirty-node tracking used to rescore
// only what changed (spec.md §4.6 "Common state").
type base struct {
	dataset *data.Dataset
	network *dag.DAG
	prior   *prior.Prior
	rng     cpd.Rand
	burnin  int
	stop    StoppingFunc

	cpts        []*cpd.CPT
	localScores []float64
	dataDirty   map[int]bool
	score       float64

	GibbsState *GibbsState
}

func newBase(ds *data.Dataset, net *dag.DAG, p *prior.Prior, rng cpd.Rand, burnin int, stop StoppingFunc) *base {
	if p == nil {
		p = prior.Null()
	}
	if stop == nil {
		stop = DefaultStopping
	}
	return &base{
		dataset:     ds,
		network:     net,
		prior:       p,
		rng:         rng,
		burnin:      burnin,
		stop:        stop,
		cpts:        make([]*cpd.CPT, ds.NumVariables()),
		localScores: make([]float64, ds.NumVariables()),
		dataDirty:   make(map[int]bool, ds.NumVariables()),
	}
}

// Network returns the DAG currently owned by this evaluator.
func (m *base) Network() *dag.DAG { return m.network }

// Score returns the last computed global score.
func (m *base) Score() float64 { return m.score }

// initState rebuilds every node's CPT from scratch against the current
// network and dataset (spec.md §4.6 "_init_state").
func (m *base) initState() {
	for v := 0; v < m.dataset.NumVariables(); v++ {
		family := cpd.Family{Child: v, Parents: append([]int(nil), m.network.Parents(v)...)}
		table := cpd.Build(m.dataset, family)
		m.cpts[v] = table
		m.localScores[v] = table.LogMarginalLikelihood()
	}
	m.dataDirty = make(map[int]bool, m.dataset.NumVariables())
	for v := 0; v < m.dataset.NumVariables(); v++ {
		m.dataDirty[v] = true
	}
}

func (m *base) globalScore() float64 {
	sum := 0.0
	for _, s := range m.localScores {
		sum += s
	}
	return sum + m.prior.LogLikelihood(m.network)
}

// scoreNetworkCore rescores only the dirty nodes (spec.md §4.6
// "_score_network_core").
func (m *base) scoreNetworkCore() float64 {
	for node := range m.dataDirty {
		m.localScores[node] = m.cpts[node].LogMarginalLikelihood()
	}
	m.dataDirty = make(map[int]bool)
	m.score = m.globalScore()
	return m.score
}

// alterCell is the cell-edit primitive of spec.md §4.6: it records every
// affected family's projection of the sample (the variable itself plus its
// children) before writing the new value, then replaces that row in each
// family's sufficient statistics, skipping any family whose child was
// intervened on for this sample, and marks every touched node dirty.
func (m *base) alterCell(sample, v, newValue int) {
	affected := append([]int{v}, m.network.Children(v)...)

	oldProjections := make(map[int][]int, len(affected))
	for _, node := range affected {
		if m.dataset.Interventions[sample][node] {
			continue
		}
		oldProjections[node] = m.familyProjection(node, sample)
	}

	m.dataset.Set(sample, v, newValue)

	for _, node := range affected {
		oldProj, ok := oldProjections[node]
		if !ok {
			continue
		}
		newProj := m.familyProjection(node, sample)
		m.cpts[node].ReplaceRow(oldProj, newProj)
		m.dataDirty[node] = true
	}
}

func (m *base) familyProjection(node, sample int) []int {
	parents := m.cpts[node].Parents()
	proj := make([]int, 1+len(parents))
	proj[0] = m.dataset.Get(sample, node)
	for i, p := range parents {
		proj[i+1] = m.dataset.Get(sample, p)
	}
	return proj
}

// calculateScore discards a burn-in prefix (unless resuming from a prior
// GibbsState, in which case there is none) and averages the rest in log
// space (spec.md §4.6 "_calculate_score").
func (m *base) calculateScore(chosenScores []float64, numMissing int, state *GibbsState) (float64, int) {
	burninPeriod := m.burnin * numMissing

	var scoreSum float64
	var numScores int
	switch {
	case state != nil:
		scoreSum = cpd.LogAdd(cpd.LogSum(chosenScores), state.ScoreSum())
		numScores = len(chosenScores) + state.NumScores
	case len(chosenScores) > burninPeriod:
		nonBurn := chosenScores[burninPeriod:]
		scoreSum = cpd.LogSum(nonBurn)
		numScores = len(nonBurn)
	default:
		scoreSum = chosenScores[len(chosenScores)-1]
		numScores = 1
	}

	return scoreSum - math.Log(float64(numScores)), numScores
}

func (m *base) assignedValsAt(indices [][2]int) []int {
	vals := make([]int, len(indices))
	for i, idx := range indices {
		vals[i] = m.dataset.Get(idx[0], idx[1])
	}
	return vals
}
