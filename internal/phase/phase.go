// Package phase decides whether a configuration is forming, exact or
// dissolving at an instant by sampling it at the previous, current and next
// step.
//
// Rigid patterns only report boundary crossings: a configuration that holds
// for an hour produces one forming and one dissolving instant, not sixty.
package phase

import (
	"fmt"
	"math"
	"time"

	"github.com/papapumpkin/syzygy/internal/sky"
)

// DefaultStep is the sampling interval of the upstream ephemeris.
const DefaultStep = time.Minute

// DefaultEpsilon is the tightness change, in degrees, below which a trend
// counts as flat.
const DefaultEpsilon = 0.01

// Boundary evaluates holds at t-step, t and t+step. It returns ok=false when
// the configuration does not hold at t, or holds at all three samples.
// Otherwise it returns Forming when the previous sample did not hold, else
// Dissolving.
func Boundary(holds func(time.Time) bool, t time.Time, step time.Duration) (p sky.Phase, ok bool) {
	if !holds(t) {
		return 0, false
	}
	if !holds(t.Add(-step)) {
		return sky.Forming, true
	}
	if !holds(t.Add(step)) {
		return sky.Dissolving, true
	}
	return 0, false
}

// Trend classifies a continuous tightness measure (smaller is tighter)
// sampled at t-step, t and t+step:
//
//   - Exact when both changes are below epsilon;
//   - Forming when tightness decreased into t and does not increase toward
//     the next sample;
//   - Dissolving when tightness increased into t and does not decrease
//     toward the next sample;
//   - no event otherwise (turning points).
//
// The current measure is returned alongside the phase. A measurement error
// at any sample is returned wrapped with the failing timestamp.
func Trend(measure func(time.Time) (float64, error), t time.Time, step time.Duration, epsilon float64) (p sky.Phase, current float64, ok bool, err error) {
	prev, err := sample(measure, t.Add(-step))
	if err != nil {
		return 0, 0, false, err
	}
	cur, err := sample(measure, t)
	if err != nil {
		return 0, 0, false, err
	}
	next, err := sample(measure, t.Add(step))
	if err != nil {
		return 0, 0, false, err
	}

	dPrev := cur - prev
	dNext := next - cur
	switch {
	case math.Abs(dPrev) < epsilon && math.Abs(dNext) < epsilon:
		return sky.Exact, cur, true, nil
	case dPrev < 0 && dNext <= 0:
		return sky.Forming, cur, true, nil
	case dPrev > 0 && dNext >= 0:
		return sky.Dissolving, cur, true, nil
	}
	return 0, cur, false, nil
}

func sample(measure func(time.Time) (float64, error), t time.Time) (float64, error) {
	v, err := measure(t)
	if err != nil {
		return 0, fmt.Errorf("phase: sample at %s: %w", t.UTC().Format(time.RFC3339), err)
	}
	return v, nil
}
