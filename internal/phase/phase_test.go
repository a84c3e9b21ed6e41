package phase

import (
	"errors"
	"testing"
	"time"

	"github.com/papapumpkin/syzygy/internal/sky"
)

var t0 = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// existence builds a holds function from the three sampled truth values.
func existence(prev, cur, next bool) func(time.Time) bool {
	return func(t time.Time) bool {
		switch {
		case t.Before(t0):
			return prev
		case t.After(t0):
			return next
		default:
			return cur
		}
	}
}

func TestBoundaryTruthTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prev, cur, next bool
		want            sky.Phase
		wantOK          bool
	}{
		{false, false, false, 0, false},
		{true, false, true, 0, false},
		{true, false, false, 0, false},
		{false, false, true, 0, false},
		{false, true, true, sky.Forming, true},
		{false, true, false, sky.Forming, true},
		{true, true, false, sky.Dissolving, true},
		{true, true, true, 0, false},
	}
	for _, tt := range tests {
		got, ok := Boundary(existence(tt.prev, tt.cur, tt.next), t0, DefaultStep)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Boundary(prev=%v cur=%v next=%v) = %v, %v; want %v, %v",
				tt.prev, tt.cur, tt.next, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBoundarySamplesAtStep(t *testing.T) {
	t.Parallel()

	var seen []time.Duration
	holds := func(at time.Time) bool {
		seen = append(seen, at.Sub(t0))
		return true
	}
	Boundary(holds, t0, 5*time.Minute)
	want := []time.Duration{0, -5 * time.Minute, 5 * time.Minute}
	if len(seen) != len(want) {
		t.Fatalf("sampled %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("sample %d at %v, want %v", i, seen[i], want[i])
		}
	}
}

func measures(prev, cur, next float64) func(time.Time) (float64, error) {
	return func(t time.Time) (float64, error) {
		switch {
		case t.Before(t0):
			return prev, nil
		case t.After(t0):
			return next, nil
		default:
			return cur, nil
		}
	}
}

func TestTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		prev, cur, next float64
		want            sky.Phase
		wantOK          bool
	}{
		{"tightening", 5, 4.8, 4.6, sky.Forming, true},
		{"tightening then flat", 5, 4.8, 4.8, sky.Forming, true},
		{"loosening", 4.6, 4.8, 5, sky.Dissolving, true},
		{"flat", 4.800, 4.805, 4.809, sky.Exact, true},
		{"minimum", 5, 4.8, 5, 0, false},
		{"maximum", 4.6, 4.8, 4.6, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, cur, ok, err := Trend(measures(tt.prev, tt.cur, tt.next), t0, DefaultStep, DefaultEpsilon)
			if err != nil {
				t.Fatalf("Trend: %v", err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Trend = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
			if cur != tt.cur {
				t.Errorf("current = %v, want %v", cur, tt.cur)
			}
		})
	}
}

func TestTrendError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no data")
	_, _, _, err := Trend(func(t time.Time) (float64, error) {
		if t.After(t0) {
			return 0, boom
		}
		return 1, nil
	}, t0, DefaultStep, DefaultEpsilon)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}
