package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrNoFixture is returned when the fixture file does not exist.
var ErrNoFixture = errors.New("fixture not found")

// Fixture is a TOML scan input:
//
//	[[aspect]]
//	id = "a1"
//	bodies = ["Sun", "Moon"]
//	aspect = "opposite"
//	phase = "forming"
//	start = 2026-03-20T12:00:00Z
//	end = 2026-03-22T12:00:00Z
//
//	[[longitude]]
//	at = 2026-03-20T12:00:00Z
//	body = "Sun"
//	degrees = 0.5
type Fixture struct {
	Aspects    []AspectRow    `toml:"aspect"`
	Longitudes []LongitudeRow `toml:"longitude"`
}

// AspectRow is one [[aspect]] table. Aspect holds the usual single kind;
// Aspects lists extra kinds for compound records.
type AspectRow struct {
	ID      string    `toml:"id"`
	Bodies  []string  `toml:"bodies"`
	Aspect  string    `toml:"aspect"`
	Aspects []string  `toml:"aspects"`
	Phase   string    `toml:"phase"`
	Start   time.Time `toml:"start"`
	End     time.Time `toml:"end"`
}

// LongitudeRow is one [[longitude]] table.
type LongitudeRow struct {
	At      time.Time `toml:"at"`
	Body    string    `toml:"body"`
	Degrees float64   `toml:"degrees"`
}

// LoadFixture reads and decodes the fixture at path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("store: %s: %w", path, ErrNoFixture)
		}
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture TOML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("store: parsing fixture: %w", err)
	}
	return &f, nil
}

// Records converts the aspect rows. Rows without an id are numbered by
// position.
func (f *Fixture) Records() []edge.Record {
	out := make([]edge.Record, len(f.Aspects))
	for i, a := range f.Aspects {
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("aspect-%d", i+1)
		}
		var kinds []string
		if a.Aspect != "" {
			kinds = append(kinds, a.Aspect)
		}
		kinds = append(kinds, a.Aspects...)
		out[i] = edge.Record{
			ID:      id,
			Bodies:  a.Bodies,
			Aspects: kinds,
			Phase:   a.Phase,
			Start:   a.Start.UTC(),
			End:     a.End.UTC(),
		}
	}
	return out
}

// Samples converts the longitude rows.
func (f *Fixture) Samples() ([]ephemeris.Sample, error) {
	out := make([]ephemeris.Sample, 0, len(f.Longitudes))
	for i, l := range f.Longitudes {
		body, err := sky.ParseBody(l.Body)
		if err != nil {
			return nil, fmt.Errorf("store: longitude %d: %w", i+1, err)
		}
		out = append(out, ephemeris.Sample{At: l.At.UTC(), Body: body, Degrees: l.Degrees})
	}
	return out, nil
}

// Ephemeris returns the longitude rows as a lookup table, or nil when the
// fixture has none.
func (f *Fixture) Ephemeris() (ephemeris.Source, error) {
	if len(f.Longitudes) == 0 {
		return nil, nil
	}
	samples, err := f.Samples()
	if err != nil {
		return nil, err
	}
	tbl := ephemeris.NewTable()
	tbl.Add(samples...)
	return tbl, nil
}
