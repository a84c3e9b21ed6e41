// Package prefilter provides cheap necessary-condition checks that cull
// body combinations before exact pattern verification. A combination that
// fails any check cannot satisfy the pattern; one that passes still has to
// be verified against the edge snapshot.
package prefilter

import (
	"errors"
	"time"

	"github.com/papapumpkin/syzygy/internal/cache"
	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrRejected is the error checks return when a combination is culled.
var ErrRejected = errors.New("combination rejected")

// Combo is a candidate body combination at one instant, along with the
// lookups checks may consult. Ephemeris may be nil, in which case
// geometric checks pass without looking.
type Combo struct {
	At        time.Time
	Bodies    []sky.Body
	Snapshot  *edge.Snapshot
	Ephemeris ephemeris.Source
	Cache     *cache.Cache

	members map[sky.Body]bool
}

// Members returns the combination as a set.
func (c *Combo) Members() map[sky.Body]bool {
	if c.members == nil {
		c.members = make(map[sky.Body]bool, len(c.Bodies))
		for _, b := range c.Bodies {
			c.members[b] = true
		}
	}
	return c.members
}

// Result is the outcome of running a chain against one combination.
type Result struct {
	Passed bool
	// Failed names the check that rejected the combination.
	Failed string
	Err    error
}
