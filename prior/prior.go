// Package prior implements the structural prior over DAGs (spec.md §4.4):
// an energy matrix, hard required/prohibited edge constraints, arbitrary
// adjacency predicates, and a scalar weight.
package prior

import (
	"math"

	"github.com/bnstruct/pebl/dag"
)

// Predicate inspects a proposed DAG and reports whether it is acceptable;
// a false result gates the whole network's prior to -Inf, just like a
// violated required/prohibited edge.
type Predicate func(d *dag.DAG) bool

// Prior is the structural prior of spec.md §4.4. Log-prior of a DAG G is
// -Inf if Required edges are missing, any Prohibited edge is present, or
// any Predicate rejects G; otherwise -Weight * sum of EnergyMatrix[i][j]
// over edges present in G.
type Prior struct {
	N            int
	EnergyMatrix [][]float64 // nil means "no soft cost", i.e. 0 energy everywhere
	Required     []dag.Edge
	Prohibited   []dag.Edge
	Predicates   []Predicate
	Weight       float64
}

// New builds a Prior over n nodes with the given energy matrix (may be nil)
// and weight.
func New(n int, energyMatrix [][]float64, required, prohibited []dag.Edge, predicates []Predicate, weight float64) *Prior {
	return &Prior{
		N:            n,
		EnergyMatrix: energyMatrix,
		Required:     required,
		Prohibited:   prohibited,
		Predicates:   predicates,
		Weight:       weight,
	}
}

// LogLikelihood returns the log-prior of DAG d under this Prior (spec.md
// §4.4).
func (p *Prior) LogLikelihood(d *dag.DAG) float64 {
	for _, e := range p.Required {
		if !d.HasEdge(e.U, e.V) {
			return math.Inf(-1)
		}
	}
	for _, e := range p.Prohibited {
		if d.HasEdge(e.U, e.V) {
			return math.Inf(-1)
		}
	}
	for _, pred := range p.Predicates {
		if !pred(d) {
			return math.Inf(-1)
		}
	}

	if p.EnergyMatrix == nil {
		return 0.0
	}

	energy := 0.0
	for _, e := range d.Edges() {
		energy += p.EnergyMatrix[e.U][e.V]
	}
	return -p.Weight * energy
}

// Null returns the 0-unconditionally prior (spec.md §4.4 "NullPrior"). It
// still enforces hard constraints if given any, but a bare Null() has none.
func Null() *Prior {
	return &Prior{Weight: 0}
}

// Uniform returns a Prior whose energy matrix is uniformly 0.5 (spec.md
// §4.4 "UniformPrior").
func Uniform(n int, weight float64) *Prior {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = 0.5
		}
	}
	return New(n, m, nil, nil, nil, weight)
}
