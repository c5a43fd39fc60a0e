package eval

import (
	"math"
	"math/rand"
	"testing"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/prior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryDataset(t *testing.T, rows [][]int) *data.Dataset {
	t.Helper()
	vs := make([]data.Variable, len(rows[0]))
	for i := range vs {
		vs[i] = data.Variable{Name: string(rune('0' + i)), Kind: data.Discrete, Arity: 2}
	}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)
	return ds
}

func testDataset(t *testing.T) *data.Dataset {
	return binaryDataset(t, [][]int{
		{0, 1, 1, 0},
		{1, 0, 0, 1},
		{1, 1, 1, 0},
		{1, 1, 1, 0},
		{0, 0, 1, 1},
	})
}

// S3 — Cycle rejection (spec.md §8).
func TestAlterNetworkRejectsCycle(t *testing.T) {
	ds := testDataset(t)
	net, err := dag.FromEdgeString(4, "1,0;2,0;3,0")
	require.NoError(t, err)

	ev, err := NewSmart(ds, net, nil)
	require.NoError(t, err)

	preEdges := net.Edges()
	preScore := ev.Score()
	preLocal := append([]float64(nil), ev.localScores...)

	_, err = ev.AlterNetwork([]dag.Edge{{U: 0, V: 1}}, nil)
	assert.ErrorIs(t, err, dag.ErrCyclic)

	assert.Equal(t, preEdges, net.Edges())
	assert.Equal(t, preScore, ev.Score())
	assert.Equal(t, preLocal, ev.localScores)
}

// Invariant 2 — incremental equivalence: a sequence of accepted edits from
// an empty DAG scores the same as a from-scratch evaluator on the resulting
// DAG.
func TestIncrementalMatchesScratch(t *testing.T) {
	ds := testDataset(t)
	net := dag.New(4)
	ev, err := NewSmart(ds, net, nil)
	require.NoError(t, err)

	_, err = ev.AlterNetwork([]dag.Edge{{U: 1, V: 0}, {U: 2, V: 0}, {U: 3, V: 0}}, nil)
	require.NoError(t, err)
	_, err = ev.AlterNetwork([]dag.Edge{{U: 2, V: 3}}, nil)
	require.NoError(t, err)
	score, err := ev.AlterNetwork([]dag.Edge{{U: 1, V: 2}}, []dag.Edge{{U: 1, V: 0}})
	require.NoError(t, err)

	scratchNet := net.Copy()
	scratch, err := NewSmart(ds, scratchNet, nil)
	require.NoError(t, err)

	assert.InDelta(t, scratch.Score(), score, 1e-9)
}

// Invariant 3 — undo law: alter then restore leaves the evaluator
// byte-identical to its pre-alter state.
func TestRestoreNetworkUndoesAlter(t *testing.T) {
	ds := testDataset(t)
	net, err := dag.FromEdgeString(4, "1,0;2,0")
	require.NoError(t, err)

	ev, err := NewSmart(ds, net, nil)
	require.NoError(t, err)

	preEdges := net.Edges()
	preScore := ev.Score()
	preLocal := append([]float64(nil), ev.localScores...)

	_, err = ev.AlterNetwork([]dag.Edge{{U: 3, V: 0}}, []dag.Edge{{U: 2, V: 0}})
	require.NoError(t, err)

	restored := ev.RestoreNetwork()

	assert.Equal(t, preEdges, net.Edges())
	assert.Equal(t, preScore, restored)
	assert.Equal(t, preLocal, ev.localScores)
	assert.Empty(t, ev.dirty)
	assert.Nil(t, ev.saved)
}

func TestRestoreNetworkTwiceIsNoop(t *testing.T) {
	ds := testDataset(t)
	net := dag.New(4)
	ev, err := NewSmart(ds, net, nil)
	require.NoError(t, err)

	_, err = ev.AlterNetwork([]dag.Edge{{U: 1, V: 0}}, nil)
	require.NoError(t, err)
	ev.RestoreNetwork()
	again := ev.RestoreNetwork()
	assert.Equal(t, ev.Score(), again)
}

func TestClearNetworkRemovesAllEdges(t *testing.T) {
	ds := testDataset(t)
	net, err := dag.FromEdgeString(4, "1,0;2,0;3,0")
	require.NoError(t, err)
	ev, err := NewSmart(ds, net, nil)
	require.NoError(t, err)

	_, err = ev.ClearNetwork()
	require.NoError(t, err)
	assert.Empty(t, net.Edges())
}

func TestNewSmartRejectsMissingData(t *testing.T) {
	ds := testDataset(t)
	ds.Missing[0][0] = true
	_, err := NewSmart(ds, dag.New(4), nil)
	assert.ErrorIs(t, err, ErrHasMissingData)
}

func TestRandomizeNetworkHonorsRequiredAndProhibitedEdges(t *testing.T) {
	ds := testDataset(t)
	p := prior.New(4, nil, []dag.Edge{{U: 1, V: 0}}, []dag.Edge{{U: 2, V: 0}}, nil, 0)
	ev, err := NewSmart(ds, dag.New(4), p)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		score, err := ev.RandomizeNetwork(rng)
		require.NoError(t, err)
		assert.False(t, math.IsInf(score, -1))
		assert.True(t, ev.Network().HasEdge(1, 0))
		assert.False(t, ev.Network().HasEdge(2, 0))
	}
}
