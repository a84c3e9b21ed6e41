// Package ephemeris defines the longitude lookup the stellium detector and
// the geometric pre-filters consume, plus an in-memory table implementation
// filled from the input store.
package ephemeris

import (
	"errors"
	"fmt"
	"time"

	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrMissing is returned when no longitude is available for a body at a
// timestamp.
var ErrMissing = errors.New("ephemeris data missing")

// Source looks up ecliptic longitudes in degrees.
type Source interface {
	Longitude(t time.Time, body sky.Body) (float64, error)
	// Bodies returns the bodies the source tracks, in chart order.
	Bodies() []sky.Body
}

// Sample is one longitude observation.
type Sample struct {
	At      time.Time
	Body    sky.Body
	Degrees float64
}

// Table is an exact-timestamp lookup table. It is not safe for concurrent
// writes; fill it before handing it to the engine.
type Table struct {
	rows   map[time.Time]map[sky.Body]float64
	bodies map[sky.Body]bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		rows:   make(map[time.Time]map[sky.Body]float64),
		bodies: make(map[sky.Body]bool),
	}
}

// Set records a longitude, normalized to [0, 360).
func (t *Table) Set(at time.Time, body sky.Body, degrees float64) {
	at = at.UTC().Truncate(time.Second)
	row, ok := t.rows[at]
	if !ok {
		row = make(map[sky.Body]float64)
		t.rows[at] = row
	}
	row[body] = sky.Normalize(degrees)
	t.bodies[body] = true
}

// Add records every sample.
func (t *Table) Add(samples ...Sample) {
	for _, s := range samples {
		t.Set(s.At, s.Body, s.Degrees)
	}
}

// Longitude implements Source.
func (t *Table) Longitude(at time.Time, body sky.Body) (float64, error) {
	deg, ok := t.rows[at.UTC().Truncate(time.Second)][body]
	if !ok {
		return 0, fmt.Errorf("%w: %s at %s", ErrMissing, body, at.UTC().Format(time.RFC3339))
	}
	return deg, nil
}

// Bodies implements Source.
func (t *Table) Bodies() []sky.Body {
	out := make([]sky.Body, 0, len(t.bodies))
	for b := range t.bodies {
		out = append(out, b)
	}
	sky.SortBodies(out)
	return out
}

// Len returns the number of stored samples.
func (t *Table) Len() int {
	n := 0
	for _, row := range t.rows {
		n += len(row)
	}
	return n
}

// Linear is a Source that models each body as moving at constant speed from
// a starting longitude. It backs synthetic scenarios and tests.
type Linear struct {
	Epoch  time.Time
	Start  map[sky.Body]float64
	PerDay map[sky.Body]float64
}

// Longitude implements Source.
func (l Linear) Longitude(at time.Time, body sky.Body) (float64, error) {
	start, ok := l.Start[body]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissing, body)
	}
	days := at.Sub(l.Epoch).Hours() / 24
	return sky.Normalize(start + l.PerDay[body]*days), nil
}

// Bodies implements Source.
func (l Linear) Bodies() []sky.Body {
	out := make([]sky.Body, 0, len(l.Start))
	for b := range l.Start {
		out = append(out, b)
	}
	sky.SortBodies(out)
	return out
}
