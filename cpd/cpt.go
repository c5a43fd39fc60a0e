package cpd

import "github.com/bnstruct/pebl/data"

// Family is a node plus its parent set, in canonical (sorted) order —
// spec.md §3 "Family". Two Families with the same Child and the same
// Parents (regardless of the order they were assembled in, as long as they
// are stored sorted) denote the same cache key.
type Family struct {
	Child   int
	Parents []int
}

// CPT holds the sufficient statistics for one family under the multinomial
// model: a qv x (rv+1) count table, qv = product of parent arities, rv =
// child arity, the extra column being each row's total Nij (spec.md §3
// "Family", §4.2).
type CPT struct {
	childArity int
	parents    []int
	offsets    []int // offsets[i] multiplies parents[i]'s value into the row index
	counts     [][]int
}

// rowIndex computes a parent-configuration row index from parent values,
// using offset1=1, offset_{i+1}=offset_i*arity(parents[i]) (spec.md §3).
func rowIndex(parentValues []int, offsets []int) int {
	idx := 0
	for i, v := range parentValues {
		idx += v * offsets[i]
	}
	return idx
}

func computeOffsets(ds *data.Dataset, parents []int) []int {
	offsets := make([]int, len(parents))
	if len(parents) == 0 {
		return offsets
	}
	offsets[0] = 1
	for i := 1; i < len(parents); i++ {
		offsets[i] = offsets[i-1] * ds.Arity(parents[i-1])
	}
	return offsets
}

func numRows(ds *data.Dataset, parents []int) int {
	n := 1
	for _, p := range parents {
		n *= ds.Arity(p)
	}
	return n
}

// Build constructs a CPT for the given family by iterating every sample not
// intervened on the child (spec.md §3 "A sample s contributes to v's family
// iff interventions[s,v] is false").
func Build(ds *data.Dataset, family Family) *CPT {
	childArity := ds.Arity(family.Child)
	offsets := computeOffsets(ds, family.Parents)
	qv := numRows(ds, family.Parents)

	counts := make([][]int, qv)
	for i := range counts {
		counts[i] = make([]int, childArity+1)
	}

	c := &CPT{
		childArity: childArity,
		parents:    append([]int(nil), family.Parents...),
		offsets:    offsets,
		counts:     counts,
	}

	EnsureLnFactorial(ds.NumSamples() + childArity)

	parentVals := make([]int, len(family.Parents))
	for s := 0; s < ds.NumSamples(); s++ {
		if ds.Interventions[s][family.Child] {
			continue
		}
		for i, p := range family.Parents {
			parentVals[i] = ds.Observations[s][p]
		}
		row := rowIndex(parentVals, offsets)
		col := ds.Observations[s][family.Child]
		counts[row][col]++
		counts[row][childArity]++
	}

	return c
}

// ReplaceRow applies the effect of a single sample's value changing from
// oldProjection to newProjection, where projection[0] is the child's value
// and projection[1:] are the parents' values in the CPT's own parent order
// (spec.md §4.2 "replace_row"). O(1): two cells decremented, two
// incremented.
func (c *CPT) ReplaceRow(oldProjection, newProjection []int) {
	oldRow := rowIndex(oldProjection[1:], c.offsets)
	newRow := rowIndex(newProjection[1:], c.offsets)

	c.counts[oldRow][oldProjection[0]]--
	c.counts[oldRow][c.childArity]--

	c.counts[newRow][newProjection[0]]++
	c.counts[newRow][c.childArity]++
}

// LogMarginalLikelihood computes the log of the Cooper-Herskovits g
// function (spec.md §4.2):
//
//	sum over parent configs j of
//	  ln((rv-1)!) - ln((Nij + rv - 1)!) + sum over child values k of ln(Nijk!)
func (c *CPT) LogMarginalLikelihood() float64 {
	ri := c.childArity
	lnRiMinus1Fact := LnFactorial(ri - 1)

	result := 0.0
	for _, row := range c.counts {
		total := row[ri]
		result += lnRiMinus1Fact - LnFactorial(total+ri-1)
		for k := 0; k < ri; k++ {
			result += LnFactorial(row[k])
		}
	}
	return result
}

// SampleGivenParents draws a child value from the row's posterior predictive
// distribution under a uniform (Nijk+1)/(Nij+rv) Dirichlet(1,...,1) prior —
// the same virtual-count assumption Cooper-Herskovits scoring already makes
// — given parentValues in this CPT's own parent order. Used by
// eval.SimulateMixed (SPEC_FULL.md §9.1), never by structure search itself.
func (c *CPT) SampleGivenParents(parentValues []int, rng Rand) int {
	row := c.counts[rowIndex(parentValues, c.offsets)]
	total := 0.0
	for k := 0; k < c.childArity; k++ {
		total += float64(row[k] + 1)
	}
	draw := rng.Float64() * total
	cum := 0.0
	for k := 0; k < c.childArity; k++ {
		cum += float64(row[k] + 1)
		if draw < cum {
			return k
		}
	}
	return c.childArity - 1
}

// ChildArity returns the arity of the family's child variable.
func (c *CPT) ChildArity() int { return c.childArity }

// Parents returns the CPT's canonical parent order (a copy of what Build
// was given).
func (c *CPT) Parents() []int { return c.parents }
