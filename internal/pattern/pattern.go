// Package pattern detects multi-body configurations (Grand Cross, Kite,
// Pentagram, Hexagram, Stellium and the smaller Grand Trine, T-Square and
// Yod) in the two-body edge graph, and reports the instants at which each
// concrete body combination starts or stops satisfying one.
//
// Every detector follows the same pipeline: take the active-edge snapshot
// at t, enumerate structurally plausible combinations, cull them with the
// pre-filter chain, verify every required relation, then ask the phase
// detector whether t is a boundary. Only boundaries produce instants.
package pattern

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/syzygy/internal/cache"
	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/phase"
	"github.com/papapumpkin/syzygy/internal/prefilter"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrNoEphemeris is returned by detectors that need longitudes when the
// frame carries no ephemeris source.
var ErrNoEphemeris = errors.New("no ephemeris source")

// idNamespace seeds the name-based UUIDs of instants and durations.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/papapumpkin/syzygy"))

// Candidate is a concrete assignment of distinct bodies to a pattern's
// slots. Bodies is the sorted body set; Slots keeps the labeling that
// satisfied the pattern's definition; Roles marks distinguished slots.
type Candidate struct {
	Bodies []sky.Body
	Slots  []sky.Body
	Roles  map[sky.Body]sky.Role
}

// NewCandidate copies slots and derives the sorted body set.
func NewCandidate(slots []sky.Body, roles map[sky.Body]sky.Role) Candidate {
	s := make([]sky.Body, len(slots))
	copy(s, slots)
	b := make([]sky.Body, len(slots))
	copy(b, slots)
	sky.SortBodies(b)
	return Candidate{Bodies: b, Slots: s, Roles: roles}
}

// Key identifies the candidate for grouping: the sorted body set, plus the
// role assignments for role-bearing patterns.
func (c Candidate) Key() string {
	var sb strings.Builder
	for i, b := range c.Bodies {
		if i > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(b.String())
	}
	if len(c.Roles) > 0 {
		roles := make([]string, 0, len(c.Roles))
		for b, r := range c.Roles {
			roles = append(roles, string(r)+"="+b.String())
		}
		sort.Strings(roles)
		sb.WriteByte('|')
		sb.WriteString(strings.Join(roles, ","))
	}
	return sb.String()
}

// Size returns the number of bodies.
func (c Candidate) Size() int {
	return len(c.Bodies)
}

// Distinct reports whether no body fills two slots.
func (c Candidate) Distinct() bool {
	for i := 1; i < len(c.Bodies); i++ {
		if c.Bodies[i] == c.Bodies[i-1] {
			return false
		}
	}
	return true
}

// RoleOf returns the role assigned to body, if any.
func (c Candidate) RoleOf(body sky.Body) (sky.Role, bool) {
	r, ok := c.Roles[body]
	return r, ok
}

// Instant is a boundary crossing of one candidate at one timestamp.
type Instant struct {
	At        time.Time
	Pattern   sky.PatternKind
	Phase     sky.Phase
	Candidate Candidate
	// Tightness is the circular span in degrees; set for stelliums only.
	Tightness float64
}

// Name is the human-readable pattern name, e.g. "Grand Cross" or
// "Stellium-4".
func (i Instant) Name() string {
	return Title(i.Pattern, i.Candidate.Size())
}

// ID returns a deterministic UUID for the instant, stable across re-runs.
func (i Instant) ID() string {
	name := fmt.Sprintf("%s|%s|%s|%d", i.Pattern.Slug(), i.Candidate.Key(), i.Phase, i.At.Unix())
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// Labels is the human-readable label set downstream calendar writers build
// summaries, descriptions and category tags from.
type Labels struct {
	Summary     string
	Description string
	Categories  []string
}

// Labels builds the instant's label set.
func (i Instant) Labels() Labels {
	desc := fmt.Sprintf("%s %s at %s.", i.Name(), i.Phase, i.At.UTC().Format("2006-01-02 15:04 MST"))
	if roles := describeRoles(i.Candidate); roles != "" {
		desc += " " + roles
	}
	if i.Pattern == sky.Stellium {
		desc += fmt.Sprintf(" Span %.2f°.", i.Tightness)
	}
	return Labels{
		Summary:     fmt.Sprintf("%s %s: %s", i.Name(), i.Phase, sky.JoinBodies(i.Candidate.Bodies)),
		Description: desc,
		Categories:  categories(i.Pattern, i.Phase, i.Candidate),
	}
}

// Title renders a pattern kind for display. size is used for stelliums.
func Title(kind sky.PatternKind, size int) string {
	switch kind {
	case sky.GrandCross:
		return "Grand Cross"
	case sky.Kite:
		return "Kite"
	case sky.Pentagram:
		return "Pentagram"
	case sky.Hexagram:
		return "Hexagram"
	case sky.Stellium:
		return fmt.Sprintf("Stellium-%d", size)
	case sky.GrandTrine:
		return "Grand Trine"
	case sky.TSquare:
		return "T-Square"
	case sky.Yod:
		return "Yod"
	default:
		return kind.String()
	}
}

func describeRoles(c Candidate) string {
	if len(c.Roles) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.Roles))
	for _, b := range c.Bodies {
		if r, ok := c.Roles[b]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(string(r[:1]))+string(r[1:]), b))
		}
	}
	return strings.Join(parts, "; ") + "."
}

func categories(kind sky.PatternKind, p sky.Phase, c Candidate) []string {
	out := []string{"Pattern", Title(kind, c.Size()), p.String()}
	for _, b := range c.Bodies {
		out = append(out, b.String())
	}
	return out
}

// SortInstants orders instants by time, pattern, candidate key and phase.
func SortInstants(instants []Instant) {
	sort.SliceStable(instants, func(a, b int) bool {
		x, y := instants[a], instants[b]
		if !x.At.Equal(y.At) {
			return x.At.Before(y.At)
		}
		if x.Pattern != y.Pattern {
			return x.Pattern < y.Pattern
		}
		if kx, ky := x.Candidate.Key(), y.Candidate.Key(); kx != ky {
			return kx < ky
		}
		return x.Phase < y.Phase
	})
}

// Detector finds one pattern kind at a timestamp. Detect returns the
// instants found; a non-nil error reports combinations that could not be
// evaluated and does not invalidate the returned instants.
type Detector interface {
	Kind() sky.PatternKind
	Detect(f *Frame, t time.Time) ([]Instant, error)
}

// Frame is the evaluation context shared by detectors within a batch.
type Frame struct {
	Edges     *edge.Set
	Step      time.Duration
	Cache     *cache.Cache
	Ephemeris ephemeris.Source
	Logger    *slog.Logger
}

// Snapshot returns the active-edge snapshot at t through the cache.
func (f *Frame) Snapshot(t time.Time) *edge.Snapshot {
	return f.Cache.Snapshot(f.Edges, t)
}

func (f *Frame) step() time.Duration {
	if f.Step <= 0 {
		return phase.DefaultStep
	}
	return f.Step
}

func (f *Frame) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// boundary runs the boundary phase detector with holds evaluated against
// cached snapshots.
func (f *Frame) boundary(t time.Time, holds func(*edge.Snapshot) bool) (sky.Phase, bool) {
	return phase.Boundary(func(at time.Time) bool {
		return holds(f.Snapshot(at))
	}, t, f.step())
}

// pass runs chain against bodies. Missing ephemeris data cannot prove a
// combination impossible, so it lets the combination through.
func (f *Frame) pass(chain *prefilter.Chain, t time.Time, snap *edge.Snapshot, bodies []sky.Body) bool {
	if chain == nil {
		return true
	}
	r := chain.Run(&prefilter.Combo{
		At:        t,
		Bodies:    bodies,
		Snapshot:  snap,
		Ephemeris: f.Ephemeris,
		Cache:     f.Cache,
	})
	if r.Passed {
		return true
	}
	if prefilter.IsMissingData(r) {
		f.logger().Debug("pattern: prefilter skipped", "check", r.Failed, "error", r.Err)
		return true
	}
	return false
}

// emitter collects instants for one detector run, deduplicating candidates
// by key.
type emitter struct {
	kind sky.PatternKind
	at   time.Time
	seen map[string]bool
	out  []Instant
}

func newEmitter(kind sky.PatternKind, at time.Time) *emitter {
	return &emitter{kind: kind, at: at, seen: make(map[string]bool)}
}

// claim reports whether the candidate key is new for this run.
func (e *emitter) claim(c Candidate) bool {
	k := c.Key()
	if e.seen[k] {
		return false
	}
	e.seen[k] = true
	return true
}

func (e *emitter) add(c Candidate, p sky.Phase) {
	e.out = append(e.out, Instant{At: e.at, Pattern: e.kind, Phase: p, Candidate: c})
}

func distinct(bodies []sky.Body) bool {
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i] == bodies[j] {
				return false
			}
		}
	}
	return true
}

func cloneBodies(bodies []sky.Body) []sky.Body {
	out := make([]sky.Body, len(bodies))
	copy(out, bodies)
	return out
}
