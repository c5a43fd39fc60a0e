package eval

import (
	"fmt"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
)

// SimulateMixed draws n forward samples from a learned network over a
// dataset that mixes discrete and continuous columns (SPEC_FULL.md §9.1).
// It is a post-learning utility only: structure search itself never sees a
// continuous likelihood (spec.md's Non-goals), so this runs once against a
// finished net, fitting a cpd.LinearGaussian per continuous node (by
// ordinary least squares over ds's existing rows) and a cpd.CPT per discrete
// node, then samples every node in topological order per draw. A discrete
// node with a continuous parent is rejected: the multinomial family has no
// notion of a continuous parent value.
func SimulateMixed(ds *data.Dataset, net *dag.DAG, n int, rng cpd.Rand) ([][]float64, error) {
	order, err := net.TopologicalSort()
	if err != nil {
		return nil, err
	}

	gaussians := make(map[int]*cpd.LinearGaussian, ds.NumVariables())
	tables := make(map[int]*cpd.CPT, ds.NumVariables())

	for _, v := range order {
		parents := net.Parents(v)
		if ds.Variables[v].Kind == data.Continuous {
			g, err := fitNode(ds, v, parents)
			if err != nil {
				return nil, err
			}
			gaussians[v] = g
			continue
		}
		for _, p := range parents {
			if ds.Variables[p].Kind == data.Continuous {
				return nil, fmt.Errorf("eval: discrete variable %d has continuous parent %d, unsupported by the multinomial family", v, p)
			}
		}
		tables[v] = cpd.Build(ds, cpd.Family{Child: v, Parents: parents})
	}

	samples := make([][]float64, n)
	for s := 0; s < n; s++ {
		row := make([]float64, ds.NumVariables())
		for _, v := range order {
			parents := net.Parents(v)
			if g, ok := gaussians[v]; ok {
				parentValues := make([]float64, len(parents))
				for i, p := range parents {
					parentValues[i] = row[p]
				}
				row[v] = g.Sample(parentValues, rng)
				continue
			}
			parentValues := make([]int, len(parents))
			for i, p := range parents {
				parentValues[i] = int(row[p])
			}
			row[v] = float64(tables[v].SampleGivenParents(parentValues, rng))
		}
		samples[s] = row
	}
	return samples, nil
}

// fitNode gathers v's existing (parent values, value) rows, skipping any
// sample with a missing cell in v or one of its parents, and fits a
// LinearGaussian to them.
func fitNode(ds *data.Dataset, v int, parents []int) (*cpd.LinearGaussian, error) {
	var parentRows [][]float64
	var values []float64

	for s := 0; s < ds.NumSamples(); s++ {
		if ds.Missing[s][v] {
			continue
		}
		row := make([]float64, len(parents))
		ok := true
		for i, p := range parents {
			if ds.Missing[s][p] {
				ok = false
				break
			}
			if ds.Variables[p].Kind == data.Continuous {
				row[i] = ds.Continuous(s, p)
			} else {
				row[i] = float64(ds.Get(s, p))
			}
		}
		if !ok {
			continue
		}
		parentRows = append(parentRows, row)
		values = append(values, ds.Continuous(s, v))
	}

	return cpd.FitLinearGaussian(v, parents, parentRows, values)
}
