package data

import "fmt"

// ErrArity is returned when a declared arity is smaller than the number of
// distinct observed values for a discrete variable (spec.md §7, "Arity
// error" — fatal at dataset construction).
type ErrArity struct {
	Variable       string
	DeclaredArity  int
	ObservedValues int
}

func (e *ErrArity) Error() string {
	return fmt.Sprintf("data: variable %q declares arity %d but has %d distinct observed values",
		e.Variable, e.DeclaredArity, e.ObservedValues)
}

// Dataset is a fixed-shape table of observations, once constructed (spec.md
// §3). Rows are samples, columns are variables. Missing and Interventions
// are boolean masks of the same shape as Observations.
type Dataset struct {
	Variables     []Variable
	Samples       []Sample
	Observations  [][]int
	Missing       [][]bool
	Interventions [][]bool

	// ContinuousObservations holds the true float64 value of every
	// Continuous-kind cell, same shape as Observations; non-continuous
	// columns are left at zero. The scoring core never reads this field (it
	// is int-only, per spec.md's discrete Non-goal); it exists solely for
	// the post-learning simulation utilities of SPEC_FULL.md §9.1. Nil until
	// SetContinuous is called at least once.
	ContinuousObservations [][]float64
}

// SetContinuous records the true float64 value of a Continuous cell,
// allocating ContinuousObservations on first use.
func (ds *Dataset) SetContinuous(sample, variable int, value float64) {
	if ds.ContinuousObservations == nil {
		ds.ContinuousObservations = make([][]float64, ds.NumSamples())
		for i := range ds.ContinuousObservations {
			ds.ContinuousObservations[i] = make([]float64, ds.NumVariables())
		}
	}
	ds.ContinuousObservations[sample][variable] = value
}

// Continuous reads the true float64 value of a Continuous cell, or 0 if
// none was ever recorded.
func (ds *Dataset) Continuous(sample, variable int) float64 {
	if ds.ContinuousObservations == nil {
		return 0
	}
	return ds.ContinuousObservations[sample][variable]
}

// New validates and wraps the given matrices into a Dataset. observations,
// missing and interventions must all share the same shape
// (len(samples) x len(variables)); missing or interventions may be nil, in
// which case they are treated as all-false.
func New(variables []Variable, samples []Sample, observations [][]int, missing, interventions [][]bool) (*Dataset, error) {
	nSamples := len(observations)
	nVars := len(variables)

	if len(samples) != 0 && len(samples) != nSamples {
		return nil, fmt.Errorf("data: %d sample annotations for %d rows", len(samples), nSamples)
	}
	for i, row := range observations {
		if len(row) != nVars {
			return nil, fmt.Errorf("data: row %d has %d columns, expected %d", i, len(row), nVars)
		}
	}

	if missing == nil {
		missing = makeFalseMatrix(nSamples, nVars)
	}
	if interventions == nil {
		interventions = makeFalseMatrix(nSamples, nVars)
	}
	if len(missing) != nSamples || len(interventions) != nSamples {
		return nil, fmt.Errorf("data: mask matrices must match observation row count")
	}

	ds := &Dataset{
		Variables:     variables,
		Samples:       samples,
		Observations:  observations,
		Missing:       missing,
		Interventions: interventions,
	}

	if err := ds.checkArities(); err != nil {
		return nil, err
	}
	return ds, nil
}

func makeFalseMatrix(rows, cols int) [][]bool {
	m := make([][]bool, rows)
	for i := range m {
		m[i] = make([]bool, cols)
	}
	return m
}

// checkArities enforces spec.md §3: "Any declared arity must be >= the
// number of distinct observed values" for every discrete/class variable.
func (ds *Dataset) checkArities() error {
	for v, variable := range ds.Variables {
		if variable.Kind == Continuous {
			continue
		}
		seen := make(map[int]bool)
		for s := range ds.Observations {
			if ds.Missing[s][v] {
				continue
			}
			val := ds.Observations[s][v]
			if val < 0 {
				return fmt.Errorf("data: variable %q has negative observation %d at sample %d", variable.Name, val, s)
			}
			seen[val] = true
		}
		if len(seen) > variable.Arity {
			return &ErrArity{Variable: variable.Name, DeclaredArity: variable.Arity, ObservedValues: len(seen)}
		}
	}
	return nil
}

// NumSamples returns the number of rows.
func (ds *Dataset) NumSamples() int { return len(ds.Observations) }

// NumVariables returns the number of columns.
func (ds *Dataset) NumVariables() int { return len(ds.Variables) }

// HasMissing reports whether any cell is marked missing.
func (ds *Dataset) HasMissing() bool {
	for _, row := range ds.Missing {
		for _, m := range row {
			if m {
				return true
			}
		}
	}
	return false
}

// Arity returns the arity of variable v.
func (ds *Dataset) Arity(v int) int { return ds.Variables[v].Arity }

// Set writes a new value into cell (sample, variable) and returns the value
// that was there before. It does not touch the missing/intervention masks —
// callers (the missing-data evaluator's cell-edit primitive) are
// responsible for keeping CPT sufficient statistics in lock-step.
func (ds *Dataset) Set(sample, variable, value int) int {
	old := ds.Observations[sample][variable]
	ds.Observations[sample][variable] = value
	return old
}

// Get reads cell (sample, variable).
func (ds *Dataset) Get(sample, variable int) int {
	return ds.Observations[sample][variable]
}

// MissingIndices returns the (sample, variable) coordinates of every
// missing cell, in row-major order.
func (ds *Dataset) MissingIndices() [][2]int {
	idx := make([][2]int, 0)
	for s, row := range ds.Missing {
		for v, m := range row {
			if m {
				idx = append(idx, [2]int{s, v})
			}
		}
	}
	return idx
}
