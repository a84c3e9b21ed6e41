package ephemeris

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/papapumpkin/syzygy/internal/sky"
)

func TestTable(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tab := NewTable()
	tab.Add(
		Sample{At: at, Body: sky.Sun, Degrees: 280.5},
		Sample{At: at, Body: sky.Moon, Degrees: -10},
		Sample{At: at.Add(time.Minute), Body: sky.Sun, Degrees: 280.6},
	)

	got, err := tab.Longitude(at, sky.Moon)
	if err != nil {
		t.Fatalf("Longitude: %v", err)
	}
	if got != 350 {
		t.Errorf("Moon = %v, want 350 (normalized)", got)
	}

	// Lookups are keyed in UTC regardless of the caller's location.
	local := at.In(time.FixedZone("X", 3600))
	if _, err := tab.Longitude(local, sky.Sun); err != nil {
		t.Errorf("zone-shifted lookup failed: %v", err)
	}

	if _, err := tab.Longitude(at.Add(time.Minute), sky.Moon); !errors.Is(err, ErrMissing) {
		t.Errorf("got %v, want ErrMissing", err)
	}
	if n := tab.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
	if b := tab.Bodies(); len(b) != 2 || b[0] != sky.Sun {
		t.Errorf("Bodies() = %v", b)
	}
}

func TestLinear(t *testing.T) {
	t.Parallel()

	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := Linear{
		Epoch:  epoch,
		Start:  map[sky.Body]float64{sky.Moon: 350},
		PerDay: map[sky.Body]float64{sky.Moon: 13.2},
	}
	got, err := l.Longitude(epoch.Add(24*time.Hour), sky.Moon)
	if err != nil {
		t.Fatalf("Longitude: %v", err)
	}
	if math.Abs(got-3.2) > 1e-9 {
		t.Errorf("Moon after a day = %v, want 3.2", got)
	}
	if _, err := l.Longitude(epoch, sky.Sun); !errors.Is(err, ErrMissing) {
		t.Errorf("got %v, want ErrMissing", err)
	}
}
