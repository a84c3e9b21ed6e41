package pattern

import (
	"fmt"

	"github.com/papapumpkin/syzygy/internal/prefilter"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// DefaultOppositionWindow is how far, in degrees, a pair may sit from an
// exact angle and still pass the coarse geometric pre-filters.
const DefaultOppositionWindow = 20

// Options configures detector construction.
type Options struct {
	// Prefilter enables the cull chains. Chains run ahead of exact
	// verification, so results are identical either way as long as the
	// ephemeris agrees with the edges.
	Prefilter bool
	// OppositionWindow is the coarse tolerance of the near-angle checks.
	OppositionWindow float64
	Stellium         StelliumOptions
}

// DefaultOptions returns options with pre-filters enabled.
func DefaultOptions() Options {
	return Options{Prefilter: true, OppositionWindow: DefaultOppositionWindow}
}

func (o Options) window() float64 {
	if o.OppositionWindow <= 0 {
		return DefaultOppositionWindow
	}
	return o.OppositionWindow
}

func (o Options) chain(checks ...prefilter.Check) *prefilter.Chain {
	if !o.Prefilter {
		return nil
	}
	return prefilter.NewChain(checks...)
}

// New builds the detector for kind.
func New(kind sky.PatternKind, opts Options) (Detector, error) {
	switch kind {
	case sky.GrandCross:
		return NewGrandCross(opts), nil
	case sky.Kite:
		return NewKite(opts), nil
	case sky.Pentagram:
		return NewPentagram(opts), nil
	case sky.Hexagram:
		return NewHexagram(opts), nil
	case sky.Stellium:
		return NewStellium(opts), nil
	case sky.GrandTrine:
		return NewGrandTrine(opts), nil
	case sky.TSquare:
		return NewTSquare(opts), nil
	case sky.Yod:
		return NewYod(opts), nil
	}
	return nil, fmt.Errorf("pattern: %w: %v", sky.ErrUnknownPattern, kind)
}

// NewSet builds detectors for kinds, or for every pattern kind when kinds
// is empty.
func NewSet(kinds []sky.PatternKind, opts Options) ([]Detector, error) {
	if len(kinds) == 0 {
		kinds = sky.AllPatterns()
	}
	out := make([]Detector, 0, len(kinds))
	seen := make(map[sky.PatternKind]bool)
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		d, err := New(k, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Chains returns the pre-filter chain of each detector that has one, keyed
// by pattern kind, for cull statistics.
func Chains(detectors []Detector) map[sky.PatternKind]*prefilter.Chain {
	out := make(map[sky.PatternKind]*prefilter.Chain)
	for _, d := range detectors {
		var ch *prefilter.Chain
		switch d := d.(type) {
		case *Pentagram:
			ch = d.chain
		case *Hexagram:
			ch = d.chain
		case *Stellium:
			ch = d.chain
		}
		if ch != nil {
			out[d.Kind()] = ch
		}
	}
	return out
}
