package cpd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinearGaussianRecoversKnownCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var parentValues [][]float64
	var values []float64
	for i := 0; i < 500; i++ {
		x := rng.Float64() * 10
		y := 2.0 + 3.0*x + rng.NormFloat64()*0.01
		parentValues = append(parentValues, []float64{x})
		values = append(values, y)
	}

	g, err := FitLinearGaussian(1, []int{0}, parentValues, values)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, g.Intercept, 0.1)
	assert.InDelta(t, 3.0, g.Coefficients[0], 0.05)
	assert.Less(t, g.Variance, 0.01)
}

func TestFitLinearGaussianNoParents(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	g, err := FitLinearGaussian(0, nil, make([][]float64, len(values)), values)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g.Intercept, 1e-9)
}

func TestLinearGaussianSampleIsCenteredOnMean(t *testing.T) {
	g := &LinearGaussian{Variable: 0, Intercept: 5, Variance: 0.0001}
	rng := rand.New(rand.NewSource(2))

	total := 0.0
	const draws = 2000
	for i := 0; i < draws; i++ {
		total += g.Sample(nil, rng)
	}
	assert.InDelta(t, 5.0, total/draws, 0.05)
}

func TestLinearGaussianPDFPeaksAtMean(t *testing.T) {
	g := &LinearGaussian{Variable: 0, Intercept: 0, Variance: 1}
	assert.Greater(t, g.PDF(0, nil), g.PDF(1, nil))
	assert.InDelta(t, 1.0/math.Sqrt(2*math.Pi), g.PDF(0, nil), 1e-9)
}

func TestFitLinearGaussianRejectsEmptyData(t *testing.T) {
	_, err := FitLinearGaussian(0, nil, nil, nil)
	assert.Error(t, err)
}
