// Package eval implements the network evaluator (spec.md §4.5-§4.6): the
// central object that composes a DAG, the local-score cache and a structural
// prior into a global score, with incremental re-scoring on edits and
// transactional one-deep undo, plus the missing-data variants that wrap the
// same machinery in a sampler over unobserved cells.
package eval

import (
	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/logging"
	"github.com/bnstruct/pebl/prior"
	"github.com/bnstruct/pebl/scoring"
)

// smartSavedState is the one-deep undo record of spec.md §4.5: the prior
// score and localscores snapshot plus the edits that produced the current
// state, so RestoreNetwork can invert them without re-checking acyclicity.
type smartSavedState struct {
	score       float64
	localScores []float64
	added       []dag.Edge
	removed     []dag.Edge
}

// SmartEvaluator is the complete-data network evaluator of spec.md §4.5. It
// refuses to operate over a dataset with any missing cell; use a
// MissingDataEvaluator variant for that case.
type SmartEvaluator struct {
	dataset *data.Dataset
	network *dag.DAG
	prior   *prior.Prior
	cache   *scoring.Cache

	localScores []float64
	dirty       map[int]bool
	score       float64
	saved       *smartSavedState
	log         *logging.Logger
}

// SetLogger attaches a debug logger used to trace dirty-node rescoring
// (SPEC_FULL.md §10). A nil evaluator logger is a silent no-op.
func (e *SmartEvaluator) SetLogger(l *logging.Logger) { e.log = l }

// NewSmart builds a SmartEvaluator over net (mutated in place by later
// AlterNetwork calls) and scores it fully.
func NewSmart(ds *data.Dataset, net *dag.DAG, p *prior.Prior) (*SmartEvaluator, error) {
	if ds.HasMissing() {
		return nil, ErrHasMissingData
	}
	if p == nil {
		p = prior.Null()
	}

	e := &SmartEvaluator{
		dataset:     ds,
		network:     net,
		prior:       p,
		cache:       scoring.New(ds),
		localScores: make([]float64, ds.NumVariables()),
		dirty:       make(map[int]bool, ds.NumVariables()),
	}
	for v := 0; v < ds.NumVariables(); v++ {
		e.dirty[v] = true
	}
	e.scoreNetworkCore()
	return e, nil
}

// Network returns the DAG currently owned by this evaluator.
func (e *SmartEvaluator) Network() *dag.DAG { return e.network }

// Score returns the last computed global score.
func (e *SmartEvaluator) Score() float64 { return e.score }

func (e *SmartEvaluator) globalScore() float64 {
	sum := 0.0
	for _, s := range e.localScores {
		sum += s
	}
	return sum + e.prior.LogLikelihood(e.network)
}

func (e *SmartEvaluator) scoreNetworkCore() float64 {
	if len(e.dirty) == 0 {
		return e.score
	}
	parents := make(map[int][]int, len(e.dirty))
	for node := range e.dirty {
		parents[node] = append([]int(nil), e.network.Parents(node)...)
	}
	for node, p := range parents {
		e.localScores[node] = e.cache.LocalScore(node, p)
	}
	if e.log != nil {
		e.log.Debug().Int("dirtyNodes", len(parents)).Msg("rescored dirty families")
	}
	e.dirty = make(map[int]bool)
	e.score = e.globalScore()
	return e.score
}

// ScoreNetwork treats net as a proposed full replacement, reduced internally
// to an AlterNetwork whose add/remove are the symmetric difference (spec.md
// §4.5). A nil net re-scores the current network unchanged.
func (e *SmartEvaluator) ScoreNetwork(net *dag.DAG) (float64, error) {
	var add, remove []dag.Edge
	if net != nil {
		add, remove = diffEdges(e.network, net)
	}
	return e.AlterNetwork(add, remove)
}

// AlterNetwork is the atomic transactional edit of spec.md §4.5: remove then
// add, check acyclicity (rolling back and returning dag.ErrCyclic on
// failure), mark the destination of every touched edge dirty, snapshot state
// for undo, and rescore.
func (e *SmartEvaluator) AlterNetwork(add, remove []dag.Edge) (float64, error) {
	e.network.RemoveEdges(remove)
	if err := e.network.AddEdges(add); err != nil {
		e.network.RemoveEdges(add)
		e.network.AddEdges(remove)
		return e.score, err
	}

	if !e.network.Acyclic() {
		e.network.RemoveEdges(add)
		e.network.AddEdges(remove)
		return e.score, dag.ErrCyclic
	}

	for _, ed := range add {
		e.dirty[ed.V] = true
	}
	for _, ed := range remove {
		e.dirty[ed.V] = true
	}

	e.saved = &smartSavedState{
		score:       e.score,
		localScores: append([]float64(nil), e.localScores...),
		added:       add,
		removed:     remove,
	}

	return e.scoreNetworkCore(), nil
}

// RestoreNetwork undoes the last accepted alter in O(|touched|): it
// re-applies the inverse edits without re-checking acyclicity (the prior
// state was, by induction, acyclic), restores the snapshotted score and
// localscores, and clears the undo record. A second call with no
// intervening alter is a no-op.
func (e *SmartEvaluator) RestoreNetwork() float64 {
	if e.saved == nil {
		return e.score
	}
	e.network.RemoveEdges(e.saved.added)
	e.network.AddEdges(e.saved.removed)
	e.score = e.saved.score
	e.localScores = e.saved.localScores
	e.dirty = make(map[int]bool)
	e.saved = nil
	return e.score
}

// ClearNetwork removes every edge and rescores.
func (e *SmartEvaluator) ClearNetwork() (float64, error) {
	return e.AlterNetwork(nil, e.network.Edges())
}

// RandomizeNetwork samples an adjacency matrix at density 1/n, zeroing the
// diagonal, forcing in any prior.Required edge and excluding any
// prior.Prohibited edge, and checks acyclicity, retrying with halved
// density on failure up to a bounded number of rounds (spec.md §4.5
// "randomize_network").
func (e *SmartEvaluator) RandomizeNetwork(rng cpd.Rand) (float64, error) {
	return e.randomizeAtDensity(rng, 1.0/float64(e.network.N()), 0)
}

const (
	randomizeMaxDensityRounds   = 20
	randomizeAttemptsPerDensity = 50
)

func (e *SmartEvaluator) randomizeAtDensity(rng cpd.Rand, density float64, round int) (float64, error) {
	if round > randomizeMaxDensityRounds {
		return e.score, ErrCannotRandomize
	}

	n := e.network.N()
	prohibited := make(map[dag.Edge]bool, len(e.prior.Prohibited))
	for _, ed := range e.prior.Prohibited {
		prohibited[ed] = true
	}

	for attempt := 0; attempt < randomizeAttemptsPerDensity; attempt++ {
		candidate := dag.New(n)
		for u := 0; u < n; u++ {
			for v := 0; v < n; v++ {
				if u == v || prohibited[dag.Edge{U: u, V: v}] {
					continue
				}
				if rng.Float64() < density {
					_ = candidate.AddEdge(u, v)
				}
			}
		}
		for _, ed := range e.prior.Required {
			_ = candidate.AddEdge(ed.U, ed.V)
		}
		if candidate.Acyclic() {
			return e.ScoreNetwork(candidate)
		}
	}
	return e.randomizeAtDensity(rng, density/2, round+1)
}

// diffEdges computes the add/remove sets that turn oldNet into newNet.
func diffEdges(oldNet, newNet *dag.DAG) (add, remove []dag.Edge) {
	oldEdges := oldNet.Edges()
	newEdges := newNet.Edges()

	oldSet := make(map[dag.Edge]bool, len(oldEdges))
	for _, e := range oldEdges {
		oldSet[e] = true
	}
	newSet := make(map[dag.Edge]bool, len(newEdges))
	for _, e := range newEdges {
		newSet[e] = true
	}

	for _, e := range newEdges {
		if !oldSet[e] {
			add = append(add, e)
		}
	}
	for _, e := range oldEdges {
		if !newSet[e] {
			remove = append(remove, e)
		}
	}
	return add, remove
}
