package learner

import (
	"math"

	"github.com/bnstruct/pebl/data"
)

// chiSquareTest tests conditional independence of variables x and y given
// the variable set z over ds, skipping samples with a missing cell in any
// of x, y or z (spec.md's missing-cell convention applied to a non-scored
// learner). Returns the test statistic and its p-value.
func chiSquareTest(ds *data.Dataset, x, y int, z []int) (float64, float64) {
	zCard := 1
	for _, zv := range z {
		zCard *= ds.Arity(zv)
	}
	xCard, yCard := ds.Arity(x), ds.Arity(y)

	counts := make([][][]float64, xCard)
	for i := range counts {
		counts[i] = make([][]float64, yCard)
		for j := range counts[i] {
			counts[i][j] = make([]float64, zCard)
		}
	}
	totals := make([]float64, zCard)

	for s := 0; s < ds.NumSamples(); s++ {
		if ds.Missing[s][x] || ds.Missing[s][y] {
			continue
		}
		zIdx, zStride, ok := 0, 1, true
		for i := len(z) - 1; i >= 0; i-- {
			if ds.Missing[s][z[i]] {
				ok = false
				break
			}
			zIdx += ds.Get(s, z[i]) * zStride
			zStride *= ds.Arity(z[i])
		}
		if !ok {
			continue
		}
		counts[ds.Get(s, x)][ds.Get(s, y)][zIdx]++
		totals[zIdx]++
	}

	chiSquare := 0.0
	for k := 0; k < zCard; k++ {
		if totals[k] < 5 {
			continue
		}
		xMarginal := make([]float64, xCard)
		yMarginal := make([]float64, yCard)
		for i := 0; i < xCard; i++ {
			for j := 0; j < yCard; j++ {
				xMarginal[i] += counts[i][j][k]
				yMarginal[j] += counts[i][j][k]
			}
		}
		for i := 0; i < xCard; i++ {
			for j := 0; j < yCard; j++ {
				expected := xMarginal[i] * yMarginal[j] / totals[k]
				if expected > 0 {
					chiSquare += math.Pow(counts[i][j][k]-expected, 2) / expected
				}
			}
		}
	}

	df := float64((xCard - 1) * (yCard - 1) * zCard)
	return chiSquare, chiSquarePValue(chiSquare, df)
}

// chiSquarePValue computes P(X > chiSquare) for a chi-square distribution
// with df degrees of freedom, via the regularized incomplete gamma function.
func chiSquarePValue(chiSquare, df float64) float64 {
	if df <= 0 {
		return 1.0
	}
	if chiSquare > 1000 {
		return 0.0
	}
	if chiSquare < 0.001 {
		return 1.0
	}

	p := 1.0 - regularizedGammaP(df/2, chiSquare/2)
	switch {
	case p > 1.0:
		return 1.0
	case p < 0.0:
		return 0.0
	default:
		return p
	}
}

// regularizedGammaP computes the regularized lower incomplete gamma function
// P(a,x), via series expansion for x < a+1 and a continued fraction
// otherwise (Numerical Recipes' gammp).
func regularizedGammaP(a, x float64) float64 {
	if x < 0 || a <= 0 || x == 0 {
		return 0.0
	}
	if x < a+1 {
		return gammaSeries(a, x)
	}
	return 1.0 - gammaContinuedFraction(a, x)
}

func gammaSeries(a, x float64) float64 {
	const maxIter = 200
	const epsilon = 1e-10

	ap, sum := a, 1.0/a
	del := sum
	for n := 0; n < maxIter; n++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*epsilon {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-logGamma(a))
}

func gammaContinuedFraction(a, x float64) float64 {
	const maxIter = 200
	const epsilon = 1e-10
	const fpmin = 1e-30

	b, c, d := x+1.0-a, 1.0/fpmin, 0.0
	d = 1.0 / b
	h := d
	for i := 1; i <= maxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2.0
		d = an*d + b
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = b + an/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1.0 / d
		del := d * c
		h *= del
		if math.Abs(del-1.0) < epsilon {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-logGamma(a)) * h
}

// logGamma is the Lanczos approximation of ln(Gamma(x)).
func logGamma(x float64) float64 {
	const g = 7.0
	coef := []float64{
		0.99999999999980993,
		676.5203681218851,
		-1259.1392167224028,
		771.32342877765313,
		-176.61502916214059,
		12.507343278686905,
		-0.13857109526572012,
		9.9843695780195716e-6,
		1.5056327351493116e-7,
	}
	if x < 0.5 {
		return math.Log(math.Pi) - math.Log(math.Sin(math.Pi*x)) - logGamma(1-x)
	}
	x--
	base := x + g + 0.5
	sum := coef[0]
	for i := 1; i < len(coef); i++ {
		sum += coef[i] / (x + float64(i))
	}
	return math.Log(sum) + math.Log(math.Sqrt(2*math.Pi)) - base + (x+0.5)*math.Log(base)
}
