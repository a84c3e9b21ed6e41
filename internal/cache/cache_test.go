package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

var t0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// countingSource wraps a table and counts lookups.
type countingSource struct {
	mu    sync.Mutex
	calls int
	tab   *ephemeris.Table
}

func (s *countingSource) Longitude(t time.Time, b sky.Body) (float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.tab.Longitude(t, b)
}

func (s *countingSource) Bodies() []sky.Body { return s.tab.Bodies() }

func newSource() *countingSource {
	tab := ephemeris.NewTable()
	tab.Set(t0, sky.Sun, 10)
	tab.Set(t0, sky.Mars, 200)
	return &countingSource{tab: tab}
}

func TestAngleMemoized(t *testing.T) {
	t.Parallel()

	src := newSource()
	c := New()

	for i := 0; i < 3; i++ {
		got, err := c.Angle(src, t0, sky.Sun, t0, sky.Mars)
		if err != nil {
			t.Fatalf("Angle: %v", err)
		}
		if got != 170 {
			t.Errorf("Angle = %v, want 170", got)
		}
	}
	// Reversed argument order hits the same entry.
	if _, err := c.Angle(src, t0, sky.Mars, t0, sky.Sun); err != nil {
		t.Fatalf("Angle reversed: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("source called %d times, want 2", src.calls)
	}
	st := c.Stats()
	if st.Hits != 3 || st.Entries != 3 {
		t.Errorf("Stats = %+v, want 3 hits and 3 entries", st)
	}

	c.Clear()
	if st := c.Stats(); st.Entries != 0 || st.Hits != 0 {
		t.Errorf("after Clear Stats = %+v", st)
	}
	got, _ := c.Angle(src, t0, sky.Sun, t0, sky.Mars)
	if got != 170 {
		t.Errorf("after Clear Angle = %v, want 170", got)
	}
}

func TestMissingNotCached(t *testing.T) {
	t.Parallel()

	src := newSource()
	c := New()
	for i := 0; i < 2; i++ {
		if _, err := c.Longitude(src, t0, sky.Moon); !errors.Is(err, ephemeris.ErrMissing) {
			t.Fatalf("got %v, want ErrMissing", err)
		}
	}
	if src.calls != 2 {
		t.Errorf("missing lookups should not be cached; calls = %d", src.calls)
	}
}

func TestNilCachePassThrough(t *testing.T) {
	t.Parallel()

	var c *Cache
	src := newSource()
	got, err := c.Angle(src, t0, sky.Sun, t0, sky.Mars)
	if err != nil || got != 170 {
		t.Errorf("nil cache Angle = %v, %v", got, err)
	}
	set := edge.NewSet([]edge.Edge{edge.NewEdge(sky.Sun, sky.Mars, sky.Opposite, t0, t0.Add(time.Hour))})
	if !c.Snapshot(set, t0).Has(sky.Sun, sky.Mars, sky.Opposite) {
		t.Error("nil cache Snapshot should compute directly")
	}
	c.Clear()
	if st := c.Stats(); st != (Stats{}) {
		t.Errorf("nil Stats = %+v", st)
	}
}

func TestSnapshotConcurrent(t *testing.T) {
	t.Parallel()

	set := edge.NewSet([]edge.Edge{edge.NewEdge(sky.Sun, sky.Moon, sky.Trine, t0, t0.Add(time.Hour))})
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := c.Snapshot(set, t0.Add(time.Duration(i%4)*time.Minute))
			if !s.Has(sky.Sun, sky.Moon, sky.Trine) {
				t.Error("snapshot missing edge")
			}
		}(i)
	}
	wg.Wait()
	if st := c.Stats(); st.Hits+st.Misses != 16 {
		t.Errorf("Stats = %+v, want 16 lookups", st)
	}
}
