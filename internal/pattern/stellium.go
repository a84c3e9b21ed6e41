package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/papapumpkin/syzygy/internal/graph"
	"github.com/papapumpkin/syzygy/internal/phase"
	"github.com/papapumpkin/syzygy/internal/prefilter"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// StelliumOptions tunes the stellium proximity rule.
type StelliumOptions struct {
	// Orb is the maximum circular span of a stellium, in degrees.
	// Defaults to the conjunction orb.
	Orb float64
	// MaxSize caps the combination size. Defaults to 12.
	MaxSize int
	// Epsilon is the flat-trend threshold in degrees. Defaults to 0.01.
	Epsilon float64
	// PrefilterFactor scales Orb into the coarse span pre-filter limit.
	// Defaults to 1.5.
	PrefilterFactor float64
}

func (o StelliumOptions) withDefaults() StelliumOptions {
	if o.Orb <= 0 {
		o.Orb = sky.Conjunct.Orb()
	}
	if o.MaxSize <= 0 {
		o.MaxSize = 12
	}
	if o.Epsilon <= 0 {
		o.Epsilon = phase.DefaultEpsilon
	}
	if o.PrefilterFactor < 1 {
		o.PrefilterFactor = 1.5
	}
	return o
}

// Stellium finds clusters of three or more bodies whose longitudes fit in
// the conjunction orb. Unlike the rigid patterns its phase comes from the
// tightness trend, so it is the one detector that reports Exact.
//
// Stellium reads longitudes from the frame's ephemeris rather than edges.
// A missing longitude fails only the affected combination and minute.
type Stellium struct {
	opts  StelliumOptions
	chain *prefilter.Chain
}

// NewStellium builds the detector.
func NewStellium(opts Options) *Stellium {
	so := opts.Stellium.withDefaults()
	return &Stellium{
		opts:  so,
		chain: opts.chain(prefilter.SpanWithin(so.Orb * so.PrefilterFactor)),
	}
}

// Kind implements Detector.
func (d *Stellium) Kind() sky.PatternKind { return sky.Stellium }

// Detect implements Detector.
func (d *Stellium) Detect(f *Frame, t time.Time) ([]Instant, error) {
	if f.Ephemeris == nil {
		return nil, fmt.Errorf("stellium: %w", ErrNoEphemeris)
	}
	var errs []error

	// Bodies with a longitude at t; the rest fail for this minute.
	var present []sky.Body
	lons := make(map[sky.Body]float64)
	for _, b := range f.Ephemeris.Bodies() {
		deg, err := f.Cache.Longitude(f.Ephemeris, t, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("stellium: %w", err))
			continue
		}
		present = append(present, b)
		lons[b] = deg
	}

	// Bodies further apart than the coarse limit can never share a
	// stellium, so combinations only need to be drawn inside components.
	limit := d.opts.Orb * d.opts.PrefilterFactor
	uf := graph.NewUnionFind[sky.Body]()
	for i, a := range present {
		uf.Add(a)
		for _, b := range present[i+1:] {
			if sky.AngleBetween(lons[a], lons[b]) <= limit {
				uf.Union(a, b)
			}
		}
	}

	em := newEmitter(sky.Stellium, t)
	for _, comp := range uf.Components() {
		if len(comp) < 3 {
			continue
		}
		sky.SortBodies(comp)
		maxK := min(d.opts.MaxSize, len(comp))
		for k := 3; k <= maxK; k++ {
			for combo := range graph.Choose(comp, k) {
				if !f.pass(d.chain, t, nil, combo) {
					continue
				}
				if spanOf(combo, lons) > d.opts.Orb {
					continue
				}
				bodies := cloneBodies(combo)
				cand := NewCandidate(bodies, nil)
				if !em.claim(cand) {
					continue
				}
				p, tight, ok, err := phase.Trend(func(at time.Time) (float64, error) {
					return d.span(f, at, bodies)
				}, t, f.step(), d.opts.Epsilon)
				if err != nil {
					errs = append(errs, fmt.Errorf("stellium %s: %w", sky.JoinBodies(bodies), err))
					continue
				}
				if ok {
					em.out = append(em.out, Instant{
						At:        t,
						Pattern:   sky.Stellium,
						Phase:     p,
						Candidate: cand,
						Tightness: tight,
					})
				}
			}
		}
	}
	return em.out, errors.Join(errs...)
}

// span measures the circular span of bodies at t via the frame cache.
func (d *Stellium) span(f *Frame, t time.Time, bodies []sky.Body) (float64, error) {
	lons := make([]float64, len(bodies))
	for i, b := range bodies {
		deg, err := f.Cache.Longitude(f.Ephemeris, t, b)
		if err != nil {
			return 0, err
		}
		lons[i] = deg
	}
	return sky.CircularSpan(lons), nil
}

func spanOf(bodies []sky.Body, lons map[sky.Body]float64) float64 {
	vals := make([]float64, len(bodies))
	for i, b := range bodies {
		vals[i] = lons[b]
	}
	return sky.CircularSpan(vals)
}
