package scoring

import (
	"testing"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *data.Dataset {
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

func TestCacheHitMissAndCorrectness(t *testing.T) {
	ds := testDataset(t)
	c := New(ds)

	score1 := c.LocalScore(0, []int{1, 2, 3})
	assert.Equal(t, int64(0), c.Hits)
	assert.Equal(t, int64(1), c.Misses)

	score2 := c.LocalScore(0, []int{1, 2, 3})
	assert.Equal(t, int64(1), c.Hits)
	assert.Equal(t, score1, score2)

	fresh := cpd.Build(ds, cpd.Family{Child: 0, Parents: []int{1, 2, 3}}).LogMarginalLikelihood()
	assert.InDelta(t, fresh, score1, 1e-12)
}

func TestCacheCanonicalizesParentOrder(t *testing.T) {
	ds := testDataset(t)
	c := New(ds)

	a := c.LocalScore(0, []int{1, 2, 3})
	b := c.LocalScore(0, []int{3, 2, 1})

	assert.Equal(t, a, b)
	assert.Equal(t, int64(1), c.Misses, "second call with a different parent order must hit, not miss")
}

func TestCacheMaxSizeEvicts(t *testing.T) {
	ds := testDataset(t)
	c := New(ds)
	c.MaxSize = 1

	c.LocalScore(0, []int{1})
	c.LocalScore(0, []int{2})
	assert.LessOrEqual(t, c.Len(), 1)
}
