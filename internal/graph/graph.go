// Package graph provides the small graph and combinatorics toolkit the
// pattern detectors search with: an undirected, edge-labelled adjacency
// structure, a disjoint-set partitioner, and choose-k / permutation
// generators over ordered element lists.
package graph

import (
	"cmp"
	"slices"
)

// Graph is an undirected graph whose edges carry a label. Parallel edges
// with the same label collapse; edges with different labels coexist.
// Self-loops are ignored.
type Graph[N cmp.Ordered, L comparable] struct {
	// adjacency maps label → node → set of neighbours.
	adjacency map[L]map[N]map[N]bool
	nodes     map[N]bool
}

// New creates an empty graph.
func New[N cmp.Ordered, L comparable]() *Graph[N, L] {
	return &Graph[N, L]{
		adjacency: make(map[L]map[N]map[N]bool),
		nodes:     make(map[N]bool),
	}
}

// AddEdge connects a and b under label. It reports whether the edge is new.
func (g *Graph[N, L]) AddEdge(a, b N, label L) bool {
	if a == b {
		return false
	}
	adj, ok := g.adjacency[label]
	if !ok {
		adj = make(map[N]map[N]bool)
		g.adjacency[label] = adj
	}
	if adj[a][b] {
		return false
	}
	if adj[a] == nil {
		adj[a] = make(map[N]bool)
	}
	if adj[b] == nil {
		adj[b] = make(map[N]bool)
	}
	adj[a][b] = true
	adj[b][a] = true
	g.nodes[a] = true
	g.nodes[b] = true
	return true
}

// Has reports whether a and b are connected under label, in either
// direction.
func (g *Graph[N, L]) Has(a, b N, label L) bool {
	return g.adjacency[label][a][b]
}

// Neighbors returns the nodes connected to n under label, sorted.
func (g *Graph[N, L]) Neighbors(n N, label L) []N {
	set := g.adjacency[label][n]
	out := make([]N, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of neighbours of n under label. If within is
// non-nil, only neighbours contained in within are counted.
func (g *Graph[N, L]) Degree(n N, label L, within map[N]bool) int {
	set := g.adjacency[label][n]
	if within == nil {
		return len(set)
	}
	count := 0
	for m := range set {
		if within[m] {
			count++
		}
	}
	return count
}

// Nodes returns every node touching an edge of label, sorted.
func (g *Graph[N, L]) Nodes(label L) []N {
	adj := g.adjacency[label]
	out := make([]N, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Pairs returns every edge of label once, as (lo, hi) with lo < hi, sorted.
func (g *Graph[N, L]) Pairs(label L) [][2]N {
	var out [][2]N
	for a, set := range g.adjacency[label] {
		for b := range set {
			if a < b {
				out = append(out, [2]N{a, b})
			}
		}
	}
	slices.SortFunc(out, func(x, y [2]N) int {
		if c := cmp.Compare(x[0], y[0]); c != 0 {
			return c
		}
		return cmp.Compare(x[1], y[1])
	})
	return out
}

// Len returns the number of distinct nodes.
func (g *Graph[N, L]) Len() int {
	return len(g.nodes)
}
