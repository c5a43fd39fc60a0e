package cpd

import (
	"fmt"
	"math"
)

// LinearGaussian is the continuous-variable CPD of SPEC_FULL.md §9.1: a
// post-learning simulation utility, never part of the discrete scoring core
// (spec.md's Non-goals exclude continuous-variable likelihoods from
// structure search itself). X = Intercept + sum_i Coefficients[i]*parent_i
// + N(0, Variance), fit from a dataset's continuous observations by
// ordinary least squares.
type LinearGaussian struct {
	Variable     int
	Parents      []int
	Intercept    float64
	Coefficients []float64 // one per Parents entry, same order
	Variance     float64
}

// FitLinearGaussian estimates a LinearGaussian's parameters from rows of
// (parent values..., variable value) by ordinary least squares (normal
// equations), the simulation-fitting counterpart to the discrete family's
// sufficient-statistics counting in cpd.Family.
func FitLinearGaussian(variable int, parents []int, parentValues [][]float64, values []float64) (*LinearGaussian, error) {
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("cpd: cannot fit LinearGaussian from zero samples")
	}
	p := len(parents)

	// Design matrix column 0 is the intercept (all ones).
	cols := p + 1
	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	xty := make([]float64, cols)

	row := make([]float64, cols)
	for s := 0; s < n; s++ {
		row[0] = 1
		copy(row[1:], parentValues[s])
		for i := 0; i < cols; i++ {
			xty[i] += row[i] * values[s]
			for j := 0; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}

	beta, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("cpd: fit LinearGaussian: %w", err)
	}

	residual := 0.0
	for s := 0; s < n; s++ {
		pred := beta[0]
		for i, pv := range parentValues[s] {
			pred += beta[i+1] * pv
		}
		diff := values[s] - pred
		residual += diff * diff
	}
	variance := residual / float64(n)
	if variance <= 0 {
		variance = 1e-6 // degenerate (perfectly fit) data still needs a samplable distribution
	}

	return &LinearGaussian{
		Variable: variable, Parents: append([]int(nil), parents...),
		Intercept: beta[0], Coefficients: beta[1:], Variance: variance,
	}, nil
}

// Mean returns the conditional mean given parent values, in Parents order.
func (g *LinearGaussian) Mean(parentValues []float64) float64 {
	mean := g.Intercept
	for i, v := range parentValues {
		mean += g.Coefficients[i] * v
	}
	return mean
}

// Sample draws one value from N(Mean(parentValues), Variance).
func (g *LinearGaussian) Sample(parentValues []float64, rng Rand) float64 {
	return rng.NormFloat64()*math.Sqrt(g.Variance) + g.Mean(parentValues)
}

// PDF evaluates the Gaussian density at x given parentValues.
func (g *LinearGaussian) PDF(x float64, parentValues []float64) float64 {
	mean := g.Mean(parentValues)
	std := math.Sqrt(g.Variance)
	diff := x - mean
	return math.Exp(-(diff*diff)/(2*g.Variance)) / (std * math.Sqrt(2*math.Pi))
}

// solveLinearSystem solves Ax = b via Gaussian elimination with partial
// pivoting. A is square; small systems only (one per node's parent set).
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
		m[i] = append(m[i], b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if math.Abs(m[col][col]) < 1e-12 {
			return nil, fmt.Errorf("singular design matrix (collinear parents?)")
		}
		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := m[r][n]
		for c := r + 1; c < n; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x, nil
}
