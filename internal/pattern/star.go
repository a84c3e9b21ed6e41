package pattern

import (
	"time"

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/graph"
	"github.com/papapumpkin/syzygy/internal/prefilter"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// Pentagram finds five bodies joined by a five-pointed star of quintiles.
// Any labeling that satisfies the star confirms the body set; each set is
// reported once.
type Pentagram struct {
	def   Definition
	chain *prefilter.Chain
}

// NewPentagram builds the detector.
func NewPentagram(opts Options) *Pentagram {
	return &Pentagram{
		def: mustLookup(sky.Pentagram),
		chain: opts.chain(
			prefilter.MinDegree(sky.Quintile, 2),
			prefilter.NearAngle("near-quintile", sky.Quintile.Angle(), opts.window()),
		),
	}
}

// Kind implements Detector.
func (d *Pentagram) Kind() sky.PatternKind { return sky.Pentagram }

// Detect implements Detector.
func (d *Pentagram) Detect(f *Frame, t time.Time) ([]Instant, error) {
	snap := f.Snapshot(t)
	em := newEmitter(sky.Pentagram, t)
	pool := withDegree(snap, snap.Bodies(sky.Quintile), 2, sky.Quintile)
	for combo := range graph.Choose(pool, 5) {
		if !f.pass(d.chain, t, snap, combo) {
			continue
		}
		slots, ok := d.label(snap, combo)
		if !ok {
			continue
		}
		bodies := cloneBodies(combo)
		cand := NewCandidate(slots, nil)
		if !em.claim(cand) {
			continue
		}
		if p, ok := f.boundary(t, func(s *edge.Snapshot) bool {
			_, ok := d.label(s, bodies)
			return ok
		}); ok {
			em.add(cand, p)
		}
	}
	return em.out, nil
}

// label searches for an ordering of bodies that satisfies the star. The
// first body is pinned to slot 0 since every rotation of a valid labeling
// is also valid.
func (d *Pentagram) label(s *edge.Snapshot, bodies []sky.Body) ([]sky.Body, bool) {
	slots := make([]sky.Body, len(bodies))
	slots[0] = bodies[0]
	for perm := range graph.Permutations(bodies[1:]) {
		copy(slots[1:], perm)
		if d.def.Satisfied(s, slots) {
			return slots, true
		}
	}
	return nil, false
}

// Hexagram finds two vertex-disjoint grand trines interlaced by a ring of
// six sextiles. Triangles are discovered structurally, never by assuming a
// fixed slot order.
type Hexagram struct {
	def   Definition
	chain *prefilter.Chain
}

// NewHexagram builds the detector.
func NewHexagram(opts Options) *Hexagram {
	return &Hexagram{
		def: mustLookup(sky.Hexagram),
		chain: opts.chain(
			prefilter.MinDegree(sky.Trine, 2),
			prefilter.MinDegree(sky.Sextile, 2),
			prefilter.NearAngle("near-opposition", 180, opts.window()),
		),
	}
}

// Kind implements Detector.
func (d *Hexagram) Kind() sky.PatternKind { return sky.Hexagram }

// Detect implements Detector.
func (d *Hexagram) Detect(f *Frame, t time.Time) ([]Instant, error) {
	snap := f.Snapshot(t)
	em := newEmitter(sky.Hexagram, t)
	pool := withDegree(snap, snap.Bodies(sky.Trine), 2, sky.Trine, sky.Sextile)
	for combo := range graph.Choose(pool, 6) {
		if !f.pass(d.chain, t, snap, combo) {
			continue
		}
		slots, ok := d.label(snap, combo)
		if !ok {
			continue
		}
		bodies := cloneBodies(combo)
		cand := NewCandidate(slots, nil)
		if !em.claim(cand) {
			continue
		}
		if p, ok := f.boundary(t, func(s *edge.Snapshot) bool {
			_, ok := d.label(s, bodies)
			return ok
		}); ok {
			em.add(cand, p)
		}
	}
	return em.out, nil
}

// label partitions bodies into exactly two trine triangles and searches
// the 3!×3! interleavings for a cyclic sextile ring. The returned slots
// alternate triangles: even slots from one, odd slots from the other.
func (d *Hexagram) label(s *edge.Snapshot, bodies []sky.Body) ([]sky.Body, bool) {
	tris, ok := triangles(s, bodies)
	if !ok {
		return nil, false
	}
	slots := make([]sky.Body, 6)
	for p := range graph.Permutations(tris[0][:]) {
		for q := range graph.Permutations(tris[1][:]) {
			for i := 0; i < 3; i++ {
				slots[2*i] = p[i]
				slots[2*i+1] = q[i]
			}
			if d.def.Satisfied(s, slots) {
				return slots, true
			}
		}
	}
	return nil, false
}

// triangles finds the complete trine triangles inside bodies: a body whose
// trine-degree within the set is exactly two, with its two trine neighbours
// trine to each other. It succeeds only when exactly two disjoint triangles
// cover all six bodies.
func triangles(s *edge.Snapshot, bodies []sky.Body) ([2][3]sky.Body, bool) {
	within := make(map[sky.Body]bool, len(bodies))
	for _, b := range bodies {
		within[b] = true
	}
	seen := make(map[[3]sky.Body]bool)
	var found [][3]sky.Body
	for _, b := range bodies {
		var ns []sky.Body
		for _, n := range s.Neighbors(b, sky.Trine) {
			if within[n] {
				ns = append(ns, n)
			}
		}
		if len(ns) != 2 || !s.Has(ns[0], ns[1], sky.Trine) {
			continue
		}
		tri := []sky.Body{b, ns[0], ns[1]}
		sky.SortBodies(tri)
		key := [3]sky.Body{tri[0], tri[1], tri[2]}
		if !seen[key] {
			seen[key] = true
			found = append(found, key)
		}
	}
	if len(found) != 2 {
		return [2][3]sky.Body{}, false
	}
	covered := make(map[sky.Body]bool, 6)
	for _, tri := range found {
		for _, b := range tri {
			covered[b] = true
		}
	}
	if len(covered) != len(bodies) {
		return [2][3]sky.Body{}, false
	}
	return [2][3]sky.Body{found[0], found[1]}, true
}

// withDegree keeps the bodies that have at least min neighbours in every
// listed aspect kind. A body below the minimum cannot sit in the pattern.
func withDegree(s *edge.Snapshot, bodies []sky.Body, min int, kinds ...sky.AspectKind) []sky.Body {
	out := make([]sky.Body, 0, len(bodies))
	for _, b := range bodies {
		ok := true
		for _, k := range kinds {
			if s.Degree(b, k, nil) < min {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, b)
		}
	}
	return out
}
