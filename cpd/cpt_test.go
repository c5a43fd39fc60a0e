package cpd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/bnstruct/pebl/data"
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

// S1 — Cooper-Herskovits hand calculation (spec.md §8).
func TestLogMarginalLikelihoodHandCalculation(t *testing.T) {
	rows := [][]int{
		{0, 1, 1, 0},
		{1, 0, 0, 1},
		{1, 1, 1, 0},
		{1, 1, 1, 0},
		{0, 0, 1, 1},
	}
	ds := binaryDataset(t, rows)

	family := Family{Child: 0, Parents: []int{1, 2, 3}}
	c := Build(ds, family)

	// parent config (1,1,0) -> row index = 1*1 + 1*2 + 0*4 = 3
	row := c.counts[3]
	assert.Equal(t, []int{1, 2, 3}, row)

	got := c.LogMarginalLikelihood()
	want := math.Log(1.0 / 48.0)
	assert.InDelta(t, want, got, 1e-9)
}

// S2 — Null-parent family (spec.md §8).
func TestLogMarginalLikelihoodNullParent(t *testing.T) {
	rows := [][]int{{1}, {0}, {1}, {1}, {0}}
	ds := binaryDataset(t, rows)

	c := Build(ds, Family{Child: 0, Parents: nil})
	got := c.LogMarginalLikelihood()
	want := math.Log(1.0 / 60.0)
	assert.InDelta(t, want, got, 1e-9)
}

// Invariant 6: intervened samples excluded from sufficient statistics.
func TestInterventionExcludesSample(t *testing.T) {
	rows := [][]int{{0, 1}, {1, 0}, {1, 1}}
	ds := binaryDataset(t, rows)
	ds.Interventions[1][0] = true

	withIntervention := Build(ds, Family{Child: 0, Parents: []int{1}}).LogMarginalLikelihood()

	// Removing the intervened sample entirely should match exactly.
	rowsWithout := [][]int{{0, 1}, {1, 1}}
	dsWithout := binaryDataset(t, rowsWithout)
	without := Build(dsWithout, Family{Child: 0, Parents: []int{1}}).LogMarginalLikelihood()

	assert.InDelta(t, without, withIntervention, 1e-12)
}

// Invariant 4/3: rebuilding after a ReplaceRow matches a from-scratch CPT.
func TestReplaceRowMatchesRebuild(t *testing.T) {
	rows := [][]int{{0, 1}, {1, 0}, {1, 1}, {0, 0}}
	ds := binaryDataset(t, rows)
	family := Family{Child: 0, Parents: []int{1}}

	c := Build(ds, family)

	oldProjection := []int{ds.Observations[2][0], ds.Observations[2][1]}
	ds.Observations[2][0] = 0
	newProjection := []int{ds.Observations[2][0], ds.Observations[2][1]}
	c.ReplaceRow(oldProjection, newProjection)

	fresh := Build(ds, family)
	assert.Equal(t, fresh.counts, c.counts)
	assert.InDelta(t, fresh.LogMarginalLikelihood(), c.LogMarginalLikelihood(), 1e-12)
}

// Backs eval.SimulateMixed's discrete sampling step.
func TestSampleGivenParentsFavorsMajorityValue(t *testing.T) {
	rows := make([][]int, 0, 40)
	for i := 0; i < 40; i++ {
		if i < 36 {
			rows = append(rows, []int{1, 0})
		} else {
			rows = append(rows, []int{0, 0})
		}
	}
	ds := binaryDataset(t, rows)
	c := Build(ds, Family{Child: 0, Parents: []int{1}})

	rng := rand.New(rand.NewSource(7))
	ones := 0
	const draws = 500
	for i := 0; i < draws; i++ {
		if c.SampleGivenParents([]int{0}, rng) == 1 {
			ones++
		}
	}
	assert.Greater(t, ones, draws/2)
}

func TestLogAddAndLogSum(t *testing.T) {
	a := math.Log(2.0)
	b := math.Log(3.0)
	assert.InDelta(t, math.Log(5.0), LogAdd(a, b), 1e-9)
	assert.InDelta(t, math.Log(9.0), LogSum([]float64{a, b, math.Log(4.0)}), 1e-9)
	assert.Equal(t, a, LogAdd(a, math.Inf(-1)))
}
