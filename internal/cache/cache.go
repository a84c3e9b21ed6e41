// Package cache memoizes the lookups the detectors repeat while sampling
// the previous, current and next minute: active-edge snapshots, body
// longitudes, and pairwise angles. A Cache belongs to one processing batch
// and one edge set; create a new one (or Clear) per batch. Losing or
// clearing it never changes results, only speed.
package cache

import (
	"sync"
	"time"

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

type lonKey struct {
	at   int64
	body sky.Body
}

// angleKey is normalized so that (tA, a, tB, b) and (tB, b, tA, a) collide.
type angleKey struct {
	atA, atB int64
	a, b     sky.Body
}

func newAngleKey(tA time.Time, a sky.Body, tB time.Time, b sky.Body) angleKey {
	ka := lonKey{at: tA.UnixNano(), body: a}
	kb := lonKey{at: tB.UnixNano(), body: b}
	if kb.at < ka.at || (kb.at == ka.at && kb.body < ka.body) {
		ka, kb = kb, ka
	}
	return angleKey{atA: ka.at, atB: kb.at, a: ka.body, b: kb.body}
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

// Cache is safe for concurrent use. A nil *Cache is a valid pass-through
// that computes every lookup directly.
type Cache struct {
	mu         sync.Mutex
	snapshots  map[int64]*edge.Snapshot
	longitudes map[lonKey]float64
	angles     map[angleKey]float64
	hits       int
	misses     int
}

// New creates an empty cache.
func New() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.snapshots = make(map[int64]*edge.Snapshot)
	c.longitudes = make(map[lonKey]float64)
	c.angles = make(map[angleKey]float64)
	c.hits = 0
	c.misses = 0
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Stats returns a point-in-time copy of the counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.snapshots) + len(c.longitudes) + len(c.angles),
	}
}

// Snapshot returns the active-edge snapshot of set at t.
func (c *Cache) Snapshot(set *edge.Set, t time.Time) *edge.Snapshot {
	if c == nil {
		return set.Snapshot(t)
	}
	key := t.UnixNano()
	c.mu.Lock()
	if s, ok := c.snapshots[key]; ok {
		c.hits++
		c.mu.Unlock()
		return s
	}
	c.misses++
	c.mu.Unlock()

	// Built outside the lock; a concurrent miss may build the same
	// snapshot twice, and either result is equivalent.
	s := set.Snapshot(t)

	c.mu.Lock()
	c.snapshots[key] = s
	c.mu.Unlock()
	return s
}

// Longitude returns body's longitude at t from src. Errors are not cached.
func (c *Cache) Longitude(src ephemeris.Source, t time.Time, body sky.Body) (float64, error) {
	if c == nil {
		return src.Longitude(t, body)
	}
	key := lonKey{at: t.UnixNano(), body: body}
	c.mu.Lock()
	if deg, ok := c.longitudes[key]; ok {
		c.hits++
		c.mu.Unlock()
		return deg, nil
	}
	c.misses++
	c.mu.Unlock()

	deg, err := src.Longitude(t, body)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.longitudes[key] = deg
	c.mu.Unlock()
	return deg, nil
}

// Angle returns the separation between body a at tA and body b at tB.
func (c *Cache) Angle(src ephemeris.Source, tA time.Time, a sky.Body, tB time.Time, b sky.Body) (float64, error) {
	if c == nil {
		return angle(nil, src, tA, a, tB, b)
	}
	key := newAngleKey(tA, a, tB, b)
	c.mu.Lock()
	if deg, ok := c.angles[key]; ok {
		c.hits++
		c.mu.Unlock()
		return deg, nil
	}
	c.misses++
	c.mu.Unlock()

	deg, err := angle(c, src, tA, a, tB, b)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.angles[key] = deg
	c.mu.Unlock()
	return deg, nil
}

func angle(c *Cache, src ephemeris.Source, tA time.Time, a sky.Body, tB time.Time, b sky.Body) (float64, error) {
	la, err := c.Longitude(src, tA, a)
	if err != nil {
		return 0, err
	}
	lb, err := c.Longitude(src, tB, b)
	if err != nil {
		return 0, err
	}
	return sky.AngleBetween(la, lb), nil
}
