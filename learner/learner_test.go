package learner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourVarDataset(t *testing.T) *data.Dataset {
	t.Helper()
	rows := [][]int{
		{0, 1, 1, 0},
		{1, 0, 0, 1},
		{1, 1, 1, 0},
		{1, 1, 1, 0},
		{0, 0, 1, 1},
	}
	vs := make([]data.Variable, 4)
	for i := range vs {
		vs[i] = data.Variable{Name: string(rune('0' + i)), Kind: data.Discrete, Arity: 2}
	}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)
	return ds
}

func TestGreedyHaltsOnMaxIterationsAndRecordsBestScore(t *testing.T) {
	ds := fourVarDataset(t)
	g := &Greedy{
		Dataset:       ds,
		RNG:           rand.New(rand.NewSource(1)),
		MaxIterations: 50,
		MaxUnimproved: 5,
	}

	res, err := g.Run()
	require.NoError(t, err)

	assert.Equal(t, 51, g.Stats.Iterations) // loop runs while iterations <= max, so stops at max+1
	best, ok := res.Best()
	require.True(t, ok)
	assert.LessOrEqual(t, best.Score, g.Stats.BestScore+1e-9)
}

func TestGreedyBestScoreNeverBelowSeedScore(t *testing.T) {
	ds := fourVarDataset(t)
	seedEval, err := eval.NewSmart(ds, dag.New(4), nil)
	require.NoError(t, err)
	g := &Greedy{Dataset: ds, RNG: rand.New(rand.NewSource(2)), MaxIterations: 1, MaxUnimproved: 1000}
	_, err = g.Run()
	require.NoError(t, err)
	// a single iteration either improves (adopt) or doesn't (restore); either
	// way best score never decreases below the seed's score.
	assert.GreaterOrEqual(t, g.Stats.BestScore, seedEval.Score())
}

func TestSimulatedAnnealingHaltsBelowTemperatureOne(t *testing.T) {
	ds := fourVarDataset(t)
	sa := &SimulatedAnnealing{
		Dataset:        ds,
		RNG:            rand.New(rand.NewSource(3)),
		StartTemp:      4.0,
		DeltaTemp:      0.5,
		MaxItersAtTemp: 3,
	}
	_, err := sa.Run()
	require.NoError(t, err)
	assert.Less(t, sa.Stats.Temp, 1.0)
}

func TestExhaustiveScoresEveryNetwork(t *testing.T) {
	ds := fourVarDataset(t)
	net1 := dag.New(4)
	net2, err := dag.FromEdgeString(4, "1,0")
	require.NoError(t, err)

	x := &Exhaustive{Dataset: ds, Networks: []*dag.DAG{net1, net2}}
	res, err := x.Run()
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
}

func TestExhaustiveSplitCoversAllNetworks(t *testing.T) {
	ds := fourVarDataset(t)
	nets := make([]*dag.DAG, 5)
	for i := range nets {
		nets[i] = dag.New(4)
	}
	x := &Exhaustive{Dataset: ds, Networks: nets}

	parts := x.Split(2)
	total := 0
	for _, p := range parts {
		total += len(p.Networks)
	}
	assert.Equal(t, 5, total)
}

func TestGreedyStatsRuntimeAdvances(t *testing.T) {
	s := GreedyStats{StartTime: time.Now().Add(-time.Millisecond)}
	assert.Greater(t, s.Runtime(), time.Duration(0))
}

func fourVarDatasetWithMissing(t *testing.T) *data.Dataset {
	t.Helper()
	rows := [][]int{
		{0, 1, 1, 0},
		{1, 0, 0, 1},
		{1, 1, 1, 0},
		{1, 1, 1, 0},
		{0, 0, 1, 1},
	}
	vs := make([]data.Variable, 4)
	for i := range vs {
		vs[i] = data.Variable{Name: string(rune('0' + i)), Kind: data.Discrete, Arity: 2}
	}
	missing := make([][]bool, len(rows))
	for i := range missing {
		missing[i] = make([]bool, 4)
	}
	missing[2][1] = true
	ds, err := data.New(vs, nil, rows, missing, nil)
	require.NoError(t, err)
	return ds
}

func TestExhaustiveScoresMissingDataWithGibbs(t *testing.T) {
	ds := fourVarDatasetWithMissing(t)
	net := dag.New(4)

	x := &Exhaustive{Dataset: ds, Networks: []*dag.DAG{net}, RNGSeed: 1}
	res, err := x.Run()
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
}

func TestExhaustiveScoresMissingDataWithExact(t *testing.T) {
	ds := fourVarDatasetWithMissing(t)
	net := dag.New(4)

	x := &Exhaustive{Dataset: ds, Networks: []*dag.DAG{net}, MissingDataEvaluator: "exact"}
	res, err := x.Run()
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
}

func TestExhaustiveScoresMissingDataWithMaxEntropyGibbs(t *testing.T) {
	ds := fourVarDatasetWithMissing(t)
	net := dag.New(4)

	x := &Exhaustive{Dataset: ds, Networks: []*dag.DAG{net}, MissingDataEvaluator: "maxentropy_gibbs", RNGSeed: 2}
	res, err := x.Run()
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
}

func TestExhaustiveRejectsUnknownMissingDataEvaluator(t *testing.T) {
	ds := fourVarDatasetWithMissing(t)
	x := &Exhaustive{Dataset: ds, Networks: []*dag.DAG{dag.New(4)}, MissingDataEvaluator: "bogus"}
	_, err := x.Run()
	assert.Error(t, err)
}
