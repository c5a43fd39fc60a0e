package learner

import (
	"math/rand"
	"testing"

	"github.com/bnstruct/pebl/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainDataset generates samples from A -> B -> C: A is a coin flip, B
// copies A, C copies B, so a correct PC run should find A and C
// conditionally independent given B. Because the copies are exact, A and B
// also test independent given C, so the skeleton keeps only B - C.
func chainDataset(t *testing.T, n int) *data.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	rows := make([][]int, n)
	for i := range rows {
		a := rng.Intn(2)
		b := a
		c := b
		rows[i] = []int{a, b, c}
	}
	vs := []data.Variable{
		{Name: "A", Kind: data.Discrete, Arity: 2},
		{Name: "B", Kind: data.Discrete, Arity: 2},
		{Name: "C", Kind: data.Discrete, Arity: 2},
	}
	ds, err := data.New(vs, nil, rows, nil, nil)
	require.NoError(t, err)
	return ds
}

func TestPCFindsAAndCIndependentGivenB(t *testing.T) {
	ds := chainDataset(t, 400)
	pc := &PC{Dataset: ds, Alpha: 0.05}

	net, err := pc.Estimate()
	require.NoError(t, err)

	// A and C are deterministic functions of B, so conditioning on B should
	// separate them: no direct A-C edge should survive in either direction.
	assert.False(t, net.HasEdge(0, 2))
	assert.False(t, net.HasEdge(2, 0))
}

func TestPCDefaultsAlpha(t *testing.T) {
	ds := chainDataset(t, 50)
	pc := &PC{Dataset: ds}
	_, err := pc.Estimate()
	require.NoError(t, err)
	assert.Equal(t, 0.0, pc.Alpha) // Estimate uses a local default, doesn't mutate the field
}

func TestPCProducesAcyclicNetwork(t *testing.T) {
	ds := chainDataset(t, 200)
	pc := &PC{Dataset: ds, Alpha: 0.05}

	net, err := pc.Estimate()
	require.NoError(t, err)
	assert.True(t, net.Acyclic())
}
