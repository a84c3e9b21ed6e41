package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

func TestStellium(t *testing.T) {
	t.Parallel()

	opts := Options{Prefilter: true, Stellium: StelliumOptions{Orb: 8}}
	tests := []struct {
		name  string
		start map[sky.Body]float64
		speed map[sky.Body]float64
		want  int
		phase sky.Phase
		span  float64
	}{
		{
			name:  "static cluster is exact",
			start: map[sky.Body]float64{sky.Sun: 10, sky.Moon: 12, sky.Mercury: 15},
			want:  1, phase: sky.Exact, span: 5,
		},
		{
			name:  "spread bodies",
			start: map[sky.Body]float64{sky.Sun: 10, sky.Moon: 30, sky.Mercury: 50},
			want:  0,
		},
		{
			name:  "closing in",
			start: map[sky.Body]float64{sky.Sun: 10, sky.Moon: 15, sky.Mercury: 12},
			speed: map[sky.Body]float64{sky.Moon: -30},
			want:  1, phase: sky.Forming, span: 5,
		},
		{
			name:  "spreading out",
			start: map[sky.Body]float64{sky.Sun: 10, sky.Moon: 15, sky.Mercury: 12},
			speed: map[sky.Body]float64{sky.Moon: 30},
			want:  1, phase: sky.Dissolving, span: 5,
		},
		{
			name:  "across zero aries",
			start: map[sky.Body]float64{sky.Sun: 358, sky.Moon: 1, sky.Mercury: 3},
			want:  1, phase: sky.Exact, span: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := frame(nil)
			f.Ephemeris = ephemeris.Linear{Epoch: t0, Start: tt.start, PerDay: tt.speed}
			got := detect(t, NewStellium(opts), f, t0)
			if len(got) != tt.want {
				t.Fatalf("got %d stelliums, want %d: %+v", len(got), tt.want, got)
			}
			if tt.want == 0 {
				return
			}
			if got[0].Phase != tt.phase {
				t.Errorf("phase = %s, want %s", got[0].Phase, tt.phase)
			}
			if diff := got[0].Tightness - tt.span; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("tightness = %f, want %f", got[0].Tightness, tt.span)
			}
			if got[0].Name() != "Stellium-3" {
				t.Errorf("Name() = %q", got[0].Name())
			}
		})
	}
}

func TestStelliumSubsets(t *testing.T) {
	t.Parallel()

	f := frame(nil)
	f.Ephemeris = ephemeris.Linear{Epoch: t0, Start: map[sky.Body]float64{
		sky.Sun: 10, sky.Moon: 12, sky.Mercury: 14, sky.Venus: 16, sky.Saturn: 200,
	}}
	got := detect(t, NewStellium(DefaultOptions()), f, t0)
	// Four 3-subsets plus the full 4-body cluster.
	if len(got) != 5 {
		t.Fatalf("got %d, want 5", len(got))
	}
	sizes := map[int]int{}
	for _, in := range got {
		sizes[in.Candidate.Size()]++
		for _, b := range in.Candidate.Bodies {
			if b == sky.Saturn {
				t.Errorf("Saturn should not join a stellium: %v", in.Candidate.Bodies)
			}
		}
	}
	if sizes[3] != 4 || sizes[4] != 1 {
		t.Errorf("sizes = %v", sizes)
	}
}

func TestStelliumMaxSize(t *testing.T) {
	t.Parallel()

	f := frame(nil)
	f.Ephemeris = ephemeris.Linear{Epoch: t0, Start: map[sky.Body]float64{
		sky.Sun: 10, sky.Moon: 11, sky.Mercury: 12, sky.Venus: 13,
	}}
	got := detect(t, NewStellium(Options{Stellium: StelliumOptions{MaxSize: 3}}), f, t0)
	for _, in := range got {
		if in.Candidate.Size() > 3 {
			t.Errorf("size %d exceeds max", in.Candidate.Size())
		}
	}
	if len(got) != 4 {
		t.Errorf("got %d, want 4", len(got))
	}
}

func TestStelliumMissingData(t *testing.T) {
	t.Parallel()

	t.Run("no source", func(t *testing.T) {
		t.Parallel()
		_, err := NewStellium(DefaultOptions()).Detect(frame(nil), t0)
		if !errors.Is(err, ErrNoEphemeris) {
			t.Errorf("got %v, want ErrNoEphemeris", err)
		}
	})

	t.Run("missing sample", func(t *testing.T) {
		t.Parallel()
		tbl := ephemeris.NewTable()
		for _, at := range []time.Time{t0.Add(-time.Minute), t0, t0.Add(time.Minute)} {
			tbl.Set(at, sky.Sun, 10)
			tbl.Set(at, sky.Moon, 12)
		}
		// Mercury is only known at t0, so its trend cannot be sampled.
		tbl.Set(t0, sky.Mercury, 14)
		f := frame(nil)
		f.Ephemeris = tbl

		got, err := NewStellium(DefaultOptions()).Detect(f, t0)
		if !errors.Is(err, ephemeris.ErrMissing) {
			t.Errorf("got %v, want ErrMissing", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d instants, want 0", len(got))
		}
	})
}
