package compact

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/sky"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	cross = pattern.NewCandidate([]sky.Body{sky.Sun, sky.Mars, sky.Moon, sky.Jupiter}, nil)
	trine = pattern.NewCandidate([]sky.Body{sky.Venus, sky.Saturn, sky.Neptune}, nil)
)

func at(minutes int, kind sky.PatternKind, c pattern.Candidate, p sky.Phase) pattern.Instant {
	return pattern.Instant{At: t0.Add(time.Duration(minutes) * time.Minute), Pattern: kind, Phase: p, Candidate: c}
}

type span struct {
	start, end int
}

func spans(ds []Duration) []span {
	out := make([]span, len(ds))
	for i, d := range ds {
		out[i] = span{int(d.Start.Sub(t0) / time.Minute), int(d.End.Sub(t0) / time.Minute)}
	}
	return out
}

func TestPair(t *testing.T) {
	t.Parallel()

	f := func(m int) pattern.Instant { return at(m, sky.GrandCross, cross, sky.Forming) }
	d := func(m int) pattern.Instant { return at(m, sky.GrandCross, cross, sky.Dissolving) }
	x := func(m int) pattern.Instant { return at(m, sky.GrandCross, cross, sky.Exact) }

	tests := []struct {
		name  string
		group []pattern.Instant
		want  []span
	}{
		{"simple", []pattern.Instant{f(0), d(10)}, []span{{0, 10}}},
		{"two spans", []pattern.Instant{f(0), d(10), f(20), d(30)}, []span{{0, 10}, {20, 30}}},
		{"unordered input", []pattern.Instant{d(30), f(20), d(10), f(0)}, []span{{0, 10}, {20, 30}}},
		{"trailing forming", []pattern.Instant{f(0), d(10), f(20)}, []span{{0, 10}}},
		{"leading dissolving", []pattern.Instant{d(5), f(10), d(20)}, []span{{10, 20}}},
		{"repeated forming keeps earliest", []pattern.Instant{f(0), f(5), d(10)}, []span{{0, 10}}},
		{"exact ignored", []pattern.Instant{x(0), f(1), x(5), d(10), x(11)}, []span{{1, 10}}},
		{"empty", nil, []span{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := spans(Pair(tt.group))
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(span{})); diff != "" {
				t.Errorf("spans (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompactGroupsByCandidate(t *testing.T) {
	t.Parallel()

	instants := []pattern.Instant{
		at(0, sky.GrandCross, cross, sky.Forming),
		at(5, sky.GrandTrine, trine, sky.Forming),
		at(10, sky.GrandCross, cross, sky.Dissolving),
		at(15, sky.GrandTrine, trine, sky.Dissolving),
		// Same bodies, different pattern: its own group.
		at(20, sky.GrandTrine, cross, sky.Dissolving),
	}
	got := Compact(instants)
	if len(got) != 2 {
		t.Fatalf("got %d durations, want 2", len(got))
	}
	if got[0].Pattern != sky.GrandCross || got[1].Pattern != sky.GrandTrine {
		t.Errorf("order = %s, %s", got[0].Pattern, got[1].Pattern)
	}
	if diff := cmp.Diff([]span{{0, 10}, {5, 15}}, spans(got), cmp.AllowUnexported(span{})); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestCompactKeepsRolesApart(t *testing.T) {
	t.Parallel()

	bodies := []sky.Body{sky.Sun, sky.Moon, sky.Mars}
	apexMars := pattern.NewCandidate(bodies, map[sky.Body]sky.Role{sky.Mars: sky.RoleApex})
	apexSun := pattern.NewCandidate(bodies, map[sky.Body]sky.Role{sky.Sun: sky.RoleApex})

	got := Compact([]pattern.Instant{
		at(0, sky.TSquare, apexMars, sky.Forming),
		at(10, sky.TSquare, apexSun, sky.Dissolving),
	})
	if len(got) != 0 {
		t.Errorf("paired instants of different role assignments: %+v", got)
	}
}

func TestDurationLabels(t *testing.T) {
	t.Parallel()

	d := Duration{
		Pattern:   sky.GrandCross,
		Candidate: cross,
		Start:     t0,
		End:       t0.Add(3 * time.Hour),
	}
	if d.Length() != 3*time.Hour {
		t.Errorf("Length() = %s", d.Length())
	}
	if d.Span() != "3 hours" {
		t.Errorf("Span() = %q", d.Span())
	}
	l := d.Labels()
	if l.Summary != "Grand Cross: Sun, Moon, Mars, Jupiter" {
		t.Errorf("Summary = %q", l.Summary)
	}
	if !strings.Contains(l.Description, "3 hours") {
		t.Errorf("Description = %q", l.Description)
	}
	if l.Categories[0] != "Pattern" || l.Categories[2] != "duration" {
		t.Errorf("Categories = %v", l.Categories)
	}

	moved := d
	moved.End = moved.End.Add(time.Minute)
	if d.ID() == moved.ID() {
		t.Error("ID should depend on the span")
	}
}
