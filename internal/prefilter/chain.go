package prefilter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// Check is a single named check in the chain. Fn returns nil to let the
// combination through, an error wrapping ErrRejected to cull it, or any
// other error when the check could not be evaluated.
type Check struct {
	Name string
	Fn   func(c *Combo) error
}

// Chain runs checks sequentially, stopping on first failure. It keeps
// per-check cull counters and is safe for concurrent use. A nil *Chain
// passes everything.
type Chain struct {
	Checks []Check

	mu     sync.Mutex
	culled map[string]int
	runs   int
}

// NewChain builds a chain from checks.
func NewChain(checks ...Check) *Chain {
	return &Chain{Checks: checks}
}

// Run executes each check in sequence and stops on the first failure.
func (ch *Chain) Run(c *Combo) Result {
	if ch == nil {
		return Result{Passed: true}
	}
	for _, check := range ch.Checks {
		if err := check.Fn(c); err != nil {
			ch.record(check.Name)
			return Result{Passed: false, Failed: check.Name, Err: err}
		}
	}
	ch.record("")
	return Result{Passed: true}
}

// Pass reports whether c survives every check.
func (ch *Chain) Pass(c *Combo) bool {
	return ch.Run(c).Passed
}

func (ch *Chain) record(failed string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.runs++
	if failed == "" {
		return
	}
	if ch.culled == nil {
		ch.culled = make(map[string]int)
	}
	ch.culled[failed]++
}

// Culled returns how many combinations each check rejected, and the total
// number of combinations evaluated.
func (ch *Chain) Culled() (perCheck map[string]int, total int) {
	if ch == nil {
		return nil, 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make(map[string]int, len(ch.culled))
	for k, v := range ch.culled {
		out[k] = v
	}
	return out, ch.runs
}

// NearAngle passes when at least one pair of members is within window
// degrees of target. Without an ephemeris it passes unconditionally. A
// missing longitude is reported as an evaluation error.
func NearAngle(name string, target, window float64) Check {
	return Check{
		Name: name,
		Fn: func(c *Combo) error {
			if c.Ephemeris == nil {
				return nil
			}
			for i := 0; i < len(c.Bodies); i++ {
				for j := i + 1; j < len(c.Bodies); j++ {
					sep, err := c.Cache.Angle(c.Ephemeris, c.At, c.Bodies[i], c.At, c.Bodies[j])
					if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					if abs(sep-target) <= window {
						return nil
					}
				}
			}
			return fmt.Errorf("%w: no pair within %.0f° of %.0f°", ErrRejected, window, target)
		},
	}
}

// MinDegree passes when every member has at least min neighbours in aspect
// kind inside the combination.
func MinDegree(kind sky.AspectKind, min int) Check {
	return Check{
		Name: fmt.Sprintf("min-%s-degree-%d", kind, min),
		Fn: func(c *Combo) error {
			within := c.Members()
			for _, b := range c.Bodies {
				if c.Snapshot.Degree(b, kind, within) < min {
					return fmt.Errorf("%w: %s has fewer than %d %s partners", ErrRejected, b, min, kind)
				}
			}
			return nil
		},
	}
}

// SpanWithin passes when the members' circular span is at most limit
// degrees. It requires an ephemeris; without one it passes.
func SpanWithin(limit float64) Check {
	return Check{
		Name: "span-within",
		Fn: func(c *Combo) error {
			if c.Ephemeris == nil {
				return nil
			}
			lons := make([]float64, len(c.Bodies))
			for i, b := range c.Bodies {
				deg, err := c.Cache.Longitude(c.Ephemeris, c.At, b)
				if err != nil {
					return fmt.Errorf("span-within: %w", err)
				}
				lons[i] = deg
			}
			if span := sky.CircularSpan(lons); span > limit {
				return fmt.Errorf("%w: span %.2f° exceeds %.2f°", ErrRejected, span, limit)
			}
			return nil
		},
	}
}

// IsMissingData reports whether a failed Result was caused by absent
// ephemeris data rather than a geometric rejection.
func IsMissingData(r Result) bool {
	return !r.Passed && errors.Is(r.Err, ephemeris.ErrMissing)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
