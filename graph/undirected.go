// Package graph provides the undirected skeleton used by learner.PC during
// its edge-removal phase, before orientation turns it into a dag.DAG.
package graph

import (
	"sort"

	"github.com/bnstruct/pebl/dag"
)

// UndirectedGraph is an undirected graph over the node ids {0,...,n-1},
// index-addressed the same way dag.DAG is rather than string-keyed.
type UndirectedGraph struct {
	n   int
	adj [][]int // adj[u] = sorted neighbors of u
}

// NewUndirectedGraph creates a complete graph over n nodes: PC's first phase
// starts from "no independence established yet" and removes edges as tests
// pass, rather than adding them one at a time.
func NewUndirectedGraph(n int) *UndirectedGraph {
	g := &UndirectedGraph{n: n, adj: make([][]int, n)}
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u != v {
				g.adj[u] = append(g.adj[u], v)
			}
		}
	}
	return g
}

// N returns the number of nodes.
func (g *UndirectedGraph) N() int { return g.n }

// HasEdge reports whether u and v are adjacent.
func (g *UndirectedGraph) HasEdge(u, v int) bool {
	for _, w := range g.adj[u] {
		if w == v {
			return true
		}
	}
	return false
}

// RemoveEdge deletes the edge between u and v, if present.
func (g *UndirectedGraph) RemoveEdge(u, v int) {
	g.adj[u] = removeInt(g.adj[u], v)
	g.adj[v] = removeInt(g.adj[v], u)
}

// Neighbors returns u's neighbors in ascending order.
func (g *UndirectedGraph) Neighbors(u int) []int { return g.adj[u] }

// Edges returns each undirected edge once, as a dag.Edge with U < V.
func (g *UndirectedGraph) Edges() []dag.Edge {
	var edges []dag.Edge
	for u := 0; u < g.n; u++ {
		for _, v := range g.adj[u] {
			if u < v {
				edges = append(edges, dag.Edge{U: u, V: v})
			}
		}
	}
	return edges
}

func removeInt(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	if i < len(s) && s[i] == x {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
