// Package compact folds pattern instants into duration events: each
// forming instant is paired with the next dissolving instant of the same
// pattern and candidate.
package compact

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/sky"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/papapumpkin/syzygy/duration"))

// Duration is a closed span during which one candidate satisfied a pattern.
type Duration struct {
	Pattern   sky.PatternKind
	Candidate pattern.Candidate
	Start     time.Time
	End       time.Time
}

// Length returns End - Start.
func (d Duration) Length() time.Duration {
	return d.End.Sub(d.Start)
}

// Span renders the length for humans, e.g. "3 hours".
func (d Duration) Span() string {
	return strings.TrimSpace(humanize.RelTime(d.Start, d.End, "", ""))
}

// Name is the human-readable pattern name.
func (d Duration) Name() string {
	return pattern.Title(d.Pattern, d.Candidate.Size())
}

// ID returns a deterministic UUID for the span.
func (d Duration) ID() string {
	name := fmt.Sprintf("%s|%s|%d|%d", d.Pattern.Slug(), d.Candidate.Key(), d.Start.Unix(), d.End.Unix())
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// Labels builds the span's label set.
func (d Duration) Labels() pattern.Labels {
	bodies := sky.JoinBodies(d.Candidate.Bodies)
	desc := fmt.Sprintf("%s from %s to %s (%s).",
		d.Name(),
		d.Start.UTC().Format("2006-01-02 15:04 MST"),
		d.End.UTC().Format("2006-01-02 15:04 MST"),
		d.Span())
	cats := []string{"Pattern", d.Name(), "duration"}
	for _, b := range d.Candidate.Bodies {
		cats = append(cats, b.String())
	}
	return pattern.Labels{
		Summary:     fmt.Sprintf("%s: %s", d.Name(), bodies),
		Description: desc,
		Categories:  cats,
	}
}

// Pair walks one group's instants in chronological order. Each forming
// instant opens a span that the next later dissolving instant closes;
// further forming instants while a span is open are ignored, and exact
// instants are ignored entirely. A trailing open span yields nothing.
func Pair(group []pattern.Instant) []Duration {
	sorted := make([]pattern.Instant, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	var out []Duration
	var open *pattern.Instant
	for i := range sorted {
		in := &sorted[i]
		switch in.Phase {
		case sky.Forming:
			if open == nil {
				open = in
			}
		case sky.Dissolving:
			if open == nil || !in.At.After(open.At) {
				continue
			}
			out = append(out, Duration{
				Pattern:   open.Pattern,
				Candidate: open.Candidate,
				Start:     open.At,
				End:       in.At,
			})
			open = nil
		}
	}
	return out
}

// Compact groups instants by pattern and candidate key and pairs each
// group. The result is ordered by start, pattern, then key.
func Compact(instants []pattern.Instant) []Duration {
	type groupKey struct {
		kind sky.PatternKind
		key  string
	}
	groups := make(map[groupKey][]pattern.Instant)
	var order []groupKey
	for _, in := range instants {
		k := groupKey{in.Pattern, in.Candidate.Key()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], in)
	}

	var out []Duration
	for _, k := range order {
		out = append(out, Pair(groups[k])...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if !x.Start.Equal(y.Start) {
			return x.Start.Before(y.Start)
		}
		if x.Pattern != y.Pattern {
			return x.Pattern < y.Pattern
		}
		return x.Candidate.Key() < y.Candidate.Key()
	})
	return out
}
