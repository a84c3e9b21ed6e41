package pattern

import (
	"sort"
	"time"

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// GrandCross finds pairs of oppositions whose four ends are mutually
// square. The pattern has no privileged body. Candidates come straight from
// active opposition edges and carry no pre-filter chain.
type GrandCross struct {
	def Definition
}

// NewGrandCross builds the detector.
func NewGrandCross(Options) *GrandCross {
	return &GrandCross{def: mustLookup(sky.GrandCross)}
}

// Kind implements Detector.
func (d *GrandCross) Kind() sky.PatternKind { return sky.GrandCross }

// Detect implements Detector.
func (d *GrandCross) Detect(f *Frame, t time.Time) ([]Instant, error) {
	snap := f.Snapshot(t)
	em := newEmitter(sky.GrandCross, t)
	opps := snap.Pairs(sky.Opposite)
	for i := 0; i < len(opps); i++ {
		for j := i + 1; j < len(opps); j++ {
			// Slots 0/2 and 1/3 are the diametric partners.
			slots := []sky.Body{opps[i][0], opps[j][0], opps[i][1], opps[j][1]}
			if !distinct(slots) {
				continue
			}
			if !d.def.Satisfied(snap, slots) {
				continue
			}
			cand := NewCandidate(slots, nil)
			if !em.claim(cand) {
				continue
			}
			if p, ok := f.boundary(t, func(s *edge.Snapshot) bool { return d.def.Satisfied(s, slots) }); ok {
				em.add(cand, p)
			}
		}
	}
	return em.out, nil
}

// grandTrines returns every triple of mutually trine bodies in the
// snapshot, each once, sorted.
func grandTrines(s *edge.Snapshot) [][3]sky.Body {
	seen := make(map[[3]sky.Body]bool)
	var out [][3]sky.Body
	for _, p := range s.Pairs(sky.Trine) {
		a, b := p[0], p[1]
		for _, c := range s.Neighbors(a, sky.Trine) {
			if c == b || !s.Has(b, c, sky.Trine) {
				continue
			}
			tri := []sky.Body{a, b, c}
			sky.SortBodies(tri)
			key := [3]sky.Body{tri[0], tri[1], tri[2]}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

// GrandTrine finds triples of mutually trine bodies.
type GrandTrine struct {
	def Definition
}

// NewGrandTrine builds the detector.
func NewGrandTrine(Options) *GrandTrine {
	return &GrandTrine{def: mustLookup(sky.GrandTrine)}
}

// Kind implements Detector.
func (d *GrandTrine) Kind() sky.PatternKind { return sky.GrandTrine }

// Detect implements Detector.
func (d *GrandTrine) Detect(f *Frame, t time.Time) ([]Instant, error) {
	snap := f.Snapshot(t)
	em := newEmitter(sky.GrandTrine, t)
	for _, tri := range grandTrines(snap) {
		slots := tri[:]
		cand := NewCandidate(slots, nil)
		if !em.claim(cand) {
			continue
		}
		if p, ok := f.boundary(t, func(s *edge.Snapshot) bool { return d.def.Satisfied(s, slots) }); ok {
			em.add(cand, p)
		}
	}
	return em.out, nil
}

// Kite finds grand trines with a focal body opposite one vertex and sextile
// to the other two. The vertex opposite the focal body is the apex; each
// apex choice is a distinct kite.
type Kite struct {
	def Definition
}

// NewKite builds the detector.
func NewKite(Options) *Kite {
	return &Kite{def: mustLookup(sky.Kite)}
}

// Kind implements Detector.
func (d *Kite) Kind() sky.PatternKind { return sky.Kite }

// Detect implements Detector.
func (d *Kite) Detect(f *Frame, t time.Time) ([]Instant, error) {
	snap := f.Snapshot(t)
	em := newEmitter(sky.Kite, t)
	for _, tri := range grandTrines(snap) {
		for vi, apex := range tri {
			o1, o2 := tri[(vi+1)%3], tri[(vi+2)%3]
			for _, focal := range snap.Neighbors(apex, sky.Opposite) {
				if focal == o1 || focal == o2 {
					continue
				}
				slots := []sky.Body{apex, o1, o2, focal}
				if !d.def.Satisfied(snap, slots) {
					continue
				}
				cand := NewCandidate(slots, d.def.roleMap(slots))
				if !em.claim(cand) {
					continue
				}
				if p, ok := f.boundary(t, func(s *edge.Snapshot) bool { return d.def.Satisfied(s, slots) }); ok {
					em.add(cand, p)
				}
			}
		}
	}
	return em.out, nil
}

// TSquare finds oppositions with an apex square to both ends.
type TSquare struct {
	def Definition
}

// NewTSquare builds the detector.
func NewTSquare(Options) *TSquare {
	return &TSquare{def: mustLookup(sky.TSquare)}
}

// Kind implements Detector.
func (d *TSquare) Kind() sky.PatternKind { return sky.TSquare }

// Detect implements Detector.
func (d *TSquare) Detect(f *Frame, t time.Time) ([]Instant, error) {
	return apexDetect(f, t, d.def, sky.Opposite, sky.Square), nil
}

// Yod finds sextiles whose ends are both quincunx an apex.
type Yod struct {
	def Definition
}

// NewYod builds the detector.
func NewYod(Options) *Yod {
	return &Yod{def: mustLookup(sky.Yod)}
}

// Kind implements Detector.
func (d *Yod) Kind() sky.PatternKind { return sky.Yod }

// Detect implements Detector.
func (d *Yod) Detect(f *Frame, t time.Time) ([]Instant, error) {
	return apexDetect(f, t, d.def, sky.Sextile, sky.Quincunx), nil
}

// apexDetect handles three-body patterns built from a base pair in aspect
// base and an apex in aspect arm with both ends.
func apexDetect(f *Frame, t time.Time, def Definition, base, arm sky.AspectKind) []Instant {
	snap := f.Snapshot(t)
	em := newEmitter(def.Kind, t)
	for _, p := range snap.Pairs(base) {
		for _, apex := range snap.Neighbors(p[0], arm) {
			if apex == p[1] {
				continue
			}
			slots := []sky.Body{p[0], p[1], apex}
			if !def.Satisfied(snap, slots) {
				continue
			}
			cand := NewCandidate(slots, def.roleMap(slots))
			if !em.claim(cand) {
				continue
			}
			if ph, ok := f.boundary(t, func(s *edge.Snapshot) bool { return def.Satisfied(s, slots) }); ok {
				em.add(cand, ph)
			}
		}
	}
	return em.out
}
