package learner

import (
	"github.com/bnstruct/pebl/dag"
	"github.com/bnstruct/pebl/data"
	"github.com/bnstruct/pebl/graph"
)

// PC learns a network structure via the PC (Peter-Clark) constraint-based
// algorithm (SPEC_FULL.md §9.2): chi-square conditional-independence tests
// prune a complete undirected skeleton, then v-structures and Meek's rules
// orient as many remaining edges as the data determines. It does not go
// through any eval evaluator at all — there is no score here, only a sequence
// of independence tests, so it is useful standalone or as a seed network
// for Greedy/SimulatedAnnealing rather than as a member of that scored
// family.
type PC struct {
	Dataset *data.Dataset
	Alpha   float64 // independence-test significance level; 0 defaults to 0.05
}

// sepSets records, for each pair of variables found independent during
// skeleton construction, the conditioning set that made them so. Needed by
// orientation's v-structure rule.
type sepSets map[[2]int][]int

func (s sepSets) get(x, y int) ([]int, bool) {
	set, ok := s[[2]int{x, y}]
	if !ok {
		set, ok = s[[2]int{y, x}]
	}
	return set, ok
}

func (s sepSets) set(x, y int, cond []int) {
	s[[2]int{x, y}] = cond
	s[[2]int{y, x}] = cond
}

// Estimate runs the PC algorithm and returns the resulting (possibly
// partially directed, remaining undirected edges resolved arbitrarily)
// network.
func (p *PC) Estimate() (*dag.DAG, error) {
	alpha := p.Alpha
	if alpha <= 0 {
		alpha = 0.05
	}
	n := p.Dataset.NumVariables()

	ug := graph.NewUndirectedGraph(n)
	seps := sepSets{}

	maxCondSetSize := n - 2
	for condSetSize := 0; condSetSize <= maxCondSetSize; condSetSize++ {
		changed := p.pruneAtSize(ug, seps, condSetSize, alpha)
		if !changed && condSetSize > 0 {
			break
		}
	}

	return p.orient(ug, seps), nil
}

// pruneAtSize tests every adjacent pair against every conditioning set of
// the given size drawn from one endpoint's other neighbors, removing the
// edge on the first set that renders the pair independent.
func (p *PC) pruneAtSize(ug *graph.UndirectedGraph, seps sepSets, condSetSize int, alpha float64) bool {
	changed := false
	for x := 0; x < ug.N(); x++ {
		for _, y := range append([]int(nil), ug.Neighbors(x)...) {
			if !ug.HasEdge(x, y) {
				continue // removed earlier this pass by a prior (x, y') test
			}
			others := make([]int, 0, len(ug.Neighbors(x)))
			for _, nb := range ug.Neighbors(x) {
				if nb != y {
					others = append(others, nb)
				}
			}
			for _, cond := range combinationsInt(others, condSetSize) {
				_, pValue := chiSquareTest(p.Dataset, x, y, cond)
				if pValue > alpha {
					ug.RemoveEdge(x, y)
					seps.set(x, y, cond)
					changed = true
					break
				}
			}
		}
	}
	return changed
}

// orient converts the pruned skeleton to a DAG: v-structures first, then
// Meek's four completion rules applied to a fixpoint, then any edges Meek
// leaves unoriented are fixed low-to-high so the result is always acyclic.
func (p *PC) orient(ug *graph.UndirectedGraph, seps sepSets) *dag.DAG {
	n := ug.N()
	oriented := make([][]bool, n) // oriented[u][v]: u -> v fixed
	unoriented := make([][]bool, n)
	for i := range oriented {
		oriented[i] = make([]bool, n)
		unoriented[i] = make([]bool, n)
	}
	for _, e := range ug.Edges() {
		unoriented[e.U][e.V] = true
		unoriented[e.V][e.U] = true
	}

	orientEdge := func(u, v int) {
		oriented[u][v] = true
		unoriented[u][v] = false
		unoriented[v][u] = false
	}

	// v-structures: x -> z <- y whenever x, y not adjacent and z not in
	// their separating set.
	for z := 0; z < n; z++ {
		neighbors := ug.Neighbors(z)
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				x, y := neighbors[i], neighbors[j]
				if ug.HasEdge(x, y) {
					continue
				}
				cond, _ := seps.get(x, y)
				if !containsInt(cond, z) {
					orientEdge(x, z)
					orientEdge(y, z)
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		changed = p.meekRule1(ug, oriented, unoriented, orientEdge) || changed
		changed = p.meekRule2(oriented, unoriented, orientEdge) || changed
		changed = p.meekRule3(ug, oriented, unoriented, orientEdge) || changed
		changed = p.meekRule4(ug, oriented, unoriented, orientEdge) || changed
	}

	d := dag.New(n)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if oriented[u][v] && !d.HasEdge(u, v) {
				_ = d.AddEdge(u, v)
			}
		}
	}
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if unoriented[u][v] && unoriented[v][u] && !d.HasEdge(u, v) && !d.HasEdge(v, u) {
				_ = d.AddEdge(u, v)
			}
		}
	}
	return d
}

// meekRule1 orients i - j as i -> j when k -> i exists and k, j are not
// adjacent (otherwise a new v-structure k -> i <- j would appear).
func (p *PC) meekRule1(ug *graph.UndirectedGraph, oriented, unoriented [][]bool, orientEdge func(int, int)) bool {
	changed := false
	n := len(oriented)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !unoriented[i][j] || !unoriented[j][i] {
				continue
			}
			for k := 0; k < n; k++ {
				if oriented[k][i] && k != j && !ug.HasEdge(k, j) {
					orientEdge(i, j)
					changed = true
					break
				}
			}
		}
	}
	return changed
}

// meekRule2 orients i - j as i -> j when a chain i -> k -> j exists
// (otherwise a cycle i -> k -> j -> i would appear).
func (p *PC) meekRule2(oriented, unoriented [][]bool, orientEdge func(int, int)) bool {
	changed := false
	n := len(oriented)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !unoriented[i][j] || !unoriented[j][i] {
				continue
			}
			for k := 0; k < n; k++ {
				if oriented[i][k] && oriented[k][j] && k != j {
					orientEdge(i, j)
					changed = true
					break
				}
			}
		}
	}
	return changed
}

// meekRule3 orients i - j as i -> j when two chains i - k -> j and
// i - l -> j exist with k, l not adjacent.
func (p *PC) meekRule3(ug *graph.UndirectedGraph, oriented, unoriented [][]bool, orientEdge func(int, int)) bool {
	changed := false
	n := len(oriented)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !unoriented[i][j] || !unoriented[j][i] {
				continue
			}
			var candidates []int
			for k := 0; k < n; k++ {
				if unoriented[i][k] && oriented[k][j] && k != j {
					candidates = append(candidates, k)
				}
			}
			for a := 0; a < len(candidates) && !changed; a++ {
				for b := a + 1; b < len(candidates); b++ {
					if !ug.HasEdge(candidates[a], candidates[b]) {
						orientEdge(i, j)
						changed = true
						break
					}
				}
			}
		}
	}
	return changed
}

// meekRule4 orients i - j as i -> j when a chain i - k, k -> l, l -> j
// exists with k, j not adjacent.
func (p *PC) meekRule4(ug *graph.UndirectedGraph, oriented, unoriented [][]bool, orientEdge func(int, int)) bool {
	changed := false
	n := len(oriented)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !unoriented[i][j] || !unoriented[j][i] {
				continue
			}
			for k := 0; k < n && !changed; k++ {
				if !unoriented[i][k] || ug.HasEdge(k, j) || k == j {
					continue
				}
				for l := 0; l < n; l++ {
					if oriented[k][l] && oriented[l][j] && l != j {
						orientEdge(i, j)
						changed = true
						break
					}
				}
			}
		}
	}
	return changed
}

func containsInt(s []int, x int) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}

// combinationsInt returns every size-k subset of elements.
func combinationsInt(elements []int, k int) [][]int {
	if k == 0 {
		return [][]int{{}}
	}
	if len(elements) < k {
		return nil
	}
	var result [][]int
	withFirst := combinationsInt(elements[1:], k-1)
	for _, combo := range withFirst {
		next := make([]int, 0, k)
		next = append(next, elements[0])
		next = append(next, combo...)
		result = append(result, next)
	}
	result = append(result, combinationsInt(elements[1:], k)...)
	return result
}
