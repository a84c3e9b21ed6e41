package graph

// UnionFind implements a disjoint-set (union-find) data structure with
// path compression and union by rank. It partitions a set of elements into
// equivalence classes that can be queried efficiently.
type UnionFind[T comparable] struct {
	parent map[T]T
	rank   map[T]int
	order  []T
}

// NewUnionFind creates an empty UnionFind.
func NewUnionFind[T comparable]() *UnionFind[T] {
	return &UnionFind[T]{
		parent: make(map[T]T),
		rank:   make(map[T]int),
	}
}

// Add inserts an element as its own singleton set. If the element
// already exists, this is a no-op.
func (uf *UnionFind[T]) Add(x T) {
	if _, ok := uf.parent[x]; ok {
		return
	}
	uf.parent[x] = x
	uf.rank[x] = 0
	uf.order = append(uf.order, x)
}

// Find returns the representative (root) of the set containing x.
// If x has not been added, it is auto-added as a singleton first.
func (uf *UnionFind[T]) Find(x T) T {
	if _, ok := uf.parent[x]; !ok {
		uf.Add(x)
		return x
	}
	if uf.parent[x] != x {
		uf.parent[x] = uf.Find(uf.parent[x]) // path compression
	}
	return uf.parent[x]
}

// Union merges the sets containing x and y. Both elements are auto-added
// if not already present.
func (uf *UnionFind[T]) Union(x, y T) {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}

// Connected reports whether x and y belong to the same set.
func (uf *UnionFind[T]) Connected(x, y T) bool {
	return uf.Find(x) == uf.Find(y)
}

// Components returns the disjoint sets. Members keep insertion order and
// components are ordered by their first-inserted member, so the result is
// deterministic for a deterministic sequence of Add/Union calls.
func (uf *UnionFind[T]) Components() [][]T {
	index := make(map[T]int)
	var groups [][]T
	for _, x := range uf.order {
		root := uf.Find(x)
		i, ok := index[root]
		if !ok {
			i = len(groups)
			index[root] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], x)
	}
	return groups
}
