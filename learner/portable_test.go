package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
)

func portableTestDataset(t *testing.T) *data.Dataset {
	t.Helper()
	vars := []data.Variable{
		{Name: "a", Kind: data.Discrete, Arity: 2},
		{Name: "b", Kind: data.Discrete, Arity: 2},
		{Name: "c", Kind: data.Discrete, Arity: 2},
	}
	obs := [][]int{
		{0, 0, 1}, {1, 0, 1}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 1, 1}, {0, 1, 0}, {1, 0, 1},
	}
	missing := make([][]bool, len(obs))
	interventions := make([][]bool, len(obs))
	for i := range obs {
		missing[i] = make([]bool, 3)
		interventions[i] = make([]bool, 3)
	}
	ds, err := data.New(vars, nil, obs, missing, interventions)
	require.NoError(t, err)
	return ds
}

func TestGreedyMarshalUnmarshalRoundTrip(t *testing.T) {
	ds := portableTestDataset(t)
	seed, err := dag.FromEdgeString(3, "0,2")
	require.NoError(t, err)

	g := &Greedy{
		Dataset:       ds,
		Prior:         prior.Uniform(3, 1.0),
		Seed:          seed,
		RNGSeed:       42,
		MaxIterations: 5,
		MaxUnimproved: 2,
		ResultSize:    10,
	}

	b, err := g.Marshal()
	require.NoError(t, err)

	var restored Greedy
	require.NoError(t, restored.Unmarshal(b))

	assert.Nil(t, restored.RNG)
	assert.Equal(t, g.RNGSeed, restored.RNGSeed)
	assert.Equal(t, g.MaxIterations, restored.MaxIterations)
	assert.Equal(t, g.MaxUnimproved, restored.MaxUnimproved)
	assert.Equal(t, g.ResultSize, restored.ResultSize)
	assert.Equal(t, g.Seed.N(), restored.Seed.N())
	assert.Equal(t, g.Seed.Edges(), restored.Seed.Edges())
	assert.Equal(t, g.Prior.Weight, restored.Prior.Weight)

	res, err := restored.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Entries)
}

func TestGreedyMarshalUnmarshalIdenticalResultsOnSameSeed(t *testing.T) {
	ds := portableTestDataset(t)

	g := &Greedy{Dataset: ds, Prior: prior.Null(), RNGSeed: 7, MaxIterations: 5, MaxUnimproved: 1, ResultSize: 10}
	b, err := g.Marshal()
	require.NoError(t, err)

	direct := &Greedy{Dataset: ds, Prior: prior.Null(), RNGSeed: 7, MaxIterations: 5, MaxUnimproved: 1, ResultSize: 10}
	directResult, err := direct.Run()
	require.NoError(t, err)

	var restored Greedy
	require.NoError(t, restored.Unmarshal(b))
	restoredResult, err := restored.Run()
	require.NoError(t, err)

	require.Equal(t, len(directResult.Entries), len(restoredResult.Entries))
	for i := range directResult.Entries {
		assert.Equal(t, directResult.Entries[i].Score, restoredResult.Entries[i].Score)
		assert.Equal(t, directResult.Entries[i].Edges, restoredResult.Entries[i].Edges)
	}
}

func TestSimulatedAnnealingMarshalUnmarshalRoundTrip(t *testing.T) {
	ds := portableTestDataset(t)

	sa := &SimulatedAnnealing{
		Dataset: ds, Prior: prior.Null(), RNGSeed: 3,
		StartTemp: 10, DeltaTemp: 0.5, MaxItersAtTemp: 2, ResultSize: 5,
	}

	b, err := sa.Marshal()
	require.NoError(t, err)

	var restored SimulatedAnnealing
	require.NoError(t, restored.Unmarshal(b))

	assert.Nil(t, restored.RNG)
	assert.Equal(t, sa.StartTemp, restored.StartTemp)
	assert.Equal(t, sa.DeltaTemp, restored.DeltaTemp)
	assert.Equal(t, sa.MaxItersAtTemp, restored.MaxItersAtTemp)

	res, err := restored.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Entries)
}

func TestExhaustiveMarshalUnmarshalRoundTrip(t *testing.T) {
	ds := portableTestDataset(t)

	n1, err := dag.FromEdgeString(3, "0,2")
	require.NoError(t, err)
	n2, err := dag.FromEdgeString(3, "1,2")
	require.NoError(t, err)

	x := &Exhaustive{Dataset: ds, Prior: prior.Null(), Networks: []*dag.DAG{n1, n2}, ResultSize: 10}

	b, err := x.Marshal()
	require.NoError(t, err)

	var restored Exhaustive
	require.NoError(t, restored.Unmarshal(b))

	require.Len(t, restored.Networks, 2)
	assert.Equal(t, n1.Edges(), restored.Networks[0].Edges())
	assert.Equal(t, n2.Edges(), restored.Networks[1].Edges())

	res, err := restored.Run()
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
}

func TestPriorSnapshotDropsPredicates(t *testing.T) {
	called := false
	p := prior.New(2, nil, nil, nil, []prior.Predicate{func(d *dag.DAG) bool { called = true; return true }}, 1.0)

	snap := snapshotPrior(p)
	restored := snap.restore()

	assert.Empty(t, restored.Predicates)
	_ = called
}
