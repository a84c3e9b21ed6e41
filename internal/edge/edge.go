// Package edge turns previously-detected two-body aspect records into typed,
// time-bounded relationship edges and answers the sampling question every
// detector asks: which relationships hold at instant t?
package edge

import (
	"fmt"
	"sort"
	"time"

	"github.com/papapumpkin/syzygy/internal/graph"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// Edge is one active two-body aspect over a closed validity interval.
// A and B are stored in chart order; the relationship is undirected.
type Edge struct {
	A, B   sky.Body
	Aspect sky.AspectKind
	From   time.Time
	To     time.Time
}

// NewEdge builds an edge with its bodies in canonical order.
func NewEdge(a, b sky.Body, aspect sky.AspectKind, from, to time.Time) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b, Aspect: aspect, From: from, To: to}
}

// Contains reports whether t lies within the edge's validity interval,
// inclusive at both ends.
func (e Edge) Contains(t time.Time) bool {
	return !t.Before(e.From) && !t.After(e.To)
}

// String formats the edge for logs.
func (e Edge) String() string {
	return fmt.Sprintf("%s %s %s [%s, %s]", e.A, e.Aspect, e.B,
		e.From.UTC().Format(time.RFC3339), e.To.UTC().Format(time.RFC3339))
}

// Set is an immutable collection of edges, indexed by start time so that
// active-edge queries skip edges that have not yet begun.
type Set struct {
	edges []Edge
	// maxSpan is the longest validity interval, used to bound the scan.
	maxSpan time.Duration
}

// NewSet builds a Set from edges. The input slice is copied.
func NewSet(edges []Edge) *Set {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.Before(sorted[j].From)
	})
	var maxSpan time.Duration
	for _, e := range sorted {
		if d := e.To.Sub(e.From); d > maxSpan {
			maxSpan = d
		}
	}
	return &Set{edges: sorted, maxSpan: maxSpan}
}

// Len returns the number of edges, duplicates included.
func (s *Set) Len() int {
	return len(s.edges)
}

// Bounds returns the earliest start and latest end across all edges. ok is
// false for an empty set.
func (s *Set) Bounds() (from, to time.Time, ok bool) {
	if len(s.edges) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from = s.edges[0].From
	for _, e := range s.edges {
		if e.To.After(to) {
			to = e.To
		}
	}
	return from, to, true
}

// Active returns the edges whose interval contains t.
func (s *Set) Active(t time.Time) []Edge {
	// Edges starting after t can never be active; edges starting before
	// t-maxSpan have already ended.
	hi := sort.Search(len(s.edges), func(i int) bool {
		return s.edges[i].From.After(t)
	})
	earliest := t.Add(-s.maxSpan)
	lo := sort.Search(hi, func(i int) bool {
		return !s.edges[i].From.Before(earliest)
	})
	var out []Edge
	for _, e := range s.edges[lo:hi] {
		if e.Contains(t) {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns the active edges at t as a queryable graph.
func (s *Set) Snapshot(t time.Time) *Snapshot {
	return NewSnapshot(t, s.Active(t))
}

// Snapshot is the relationship graph at a single instant. Duplicate edges
// collapse, so queries answer existence rather than count.
type Snapshot struct {
	At    time.Time
	graph *graph.Graph[sky.Body, sky.AspectKind]
}

// NewSnapshot builds a snapshot from edges already known to be active at t.
func NewSnapshot(t time.Time, active []Edge) *Snapshot {
	g := graph.New[sky.Body, sky.AspectKind]()
	for _, e := range active {
		g.AddEdge(e.A, e.B, e.Aspect)
	}
	return &Snapshot{At: t, graph: g}
}

// Has reports whether a and b are in aspect kind at the snapshot instant.
func (s *Snapshot) Has(a, b sky.Body, kind sky.AspectKind) bool {
	return s.graph.Has(a, b, kind)
}

// Pairs returns every distinct body pair in aspect kind, in chart order.
func (s *Snapshot) Pairs(kind sky.AspectKind) [][2]sky.Body {
	return s.graph.Pairs(kind)
}

// Bodies returns every body with at least one edge of kind, sorted.
func (s *Snapshot) Bodies(kind sky.AspectKind) []sky.Body {
	return s.graph.Nodes(kind)
}

// Neighbors returns the bodies in aspect kind with body, sorted.
func (s *Snapshot) Neighbors(body sky.Body, kind sky.AspectKind) []sky.Body {
	return s.graph.Neighbors(body, kind)
}

// Degree counts body's kind-neighbours, restricted to within when non-nil.
func (s *Snapshot) Degree(body sky.Body, kind sky.AspectKind, within map[sky.Body]bool) int {
	return s.graph.Degree(body, kind, within)
}

// Len returns the number of distinct bodies with any active edge.
func (s *Snapshot) Len() int {
	return s.graph.Len()
}
