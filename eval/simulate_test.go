package eval

import (
	"math/rand"
	"testing"

	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// continuousChainDataset builds A -> B where B = 2 + 3*A + small noise, A
// itself drawn from a standard normal, both stored as Continuous columns.
func continuousChainDataset(t *testing.T, n int) *data.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(11))

	vs := []data.Variable{
		{Name: "A", Kind: data.Continuous},
		{Name: "B", Kind: data.Continuous},
	}
	rows := make([][]int, n)
	for i := range rows {
		rows[i] = make([]int, 2)
	}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		a := rng.NormFloat64()
		b := 2 + 3*a + rng.NormFloat64()*0.01
		ds.SetContinuous(i, 0, a)
		ds.SetContinuous(i, 1, b)
	}
	return ds
}

func TestSimulateMixedContinuousChainMatchesFittedRelationship(t *testing.T) {
	ds := continuousChainDataset(t, 300)
	net := dag.New(2)
	require.NoError(t, net.AddEdge(0, 1))

	rng := rand.New(rand.NewSource(99))
	samples, err := SimulateMixed(ds, net, 500, rng)
	require.NoError(t, err)
	require.Len(t, samples, 500)

	var sumDiff float64
	for _, row := range samples {
		sumDiff += row[1] - (2 + 3*row[0])
	}
	assert.InDelta(t, 0, sumDiff/500, 0.2)
}

func TestSimulateMixedRejectsDiscreteChildOfContinuousParent(t *testing.T) {
	vs := []data.Variable{
		{Name: "A", Kind: data.Continuous},
		{Name: "B", Kind: data.Discrete, Arity: 2},
	}
	rows := [][]int{{0, 0}, {0, 1}, {0, 0}}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)
	for i := range rows {
		ds.SetContinuous(i, 0, float64(i))
	}

	net := dag.New(2)
	require.NoError(t, net.AddEdge(0, 1))

	_, err = SimulateMixed(ds, net, 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestSimulateMixedPureDiscreteMatchesEmpiricalMajority(t *testing.T) {
	vs := []data.Variable{
		{Name: "A", Kind: data.Discrete, Arity: 2},
		{Name: "B", Kind: data.Discrete, Arity: 2},
	}
	rows := make([][]int, 0, 50)
	for i := 0; i < 50; i++ {
		if i < 45 {
			rows = append(rows, []int{0, 1})
		} else {
			rows = append(rows, []int{1, 0})
		}
	}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)

	net := dag.New(2)
	require.NoError(t, net.AddEdge(0, 1))

	samples, err := SimulateMixed(ds, net, 300, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	zeros := 0
	for _, row := range samples {
		if row[0] == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 150)
}
