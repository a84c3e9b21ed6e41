package edge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papapumpkin/syzygy/internal/sky"
)

// ErrMalformed is returned (wrapped) for records that do not describe
// exactly one aspect between exactly two distinct bodies.
var ErrMalformed = errors.New("malformed aspect record")

// Record is a two-body aspect event as stored by the upstream detector.
// Tags are the raw strings from storage; Aspects normally holds a single
// entry but compound records may list several.
type Record struct {
	ID      string
	Bodies  []string
	Aspects []string
	Phase   string
	Start   time.Time
	End     time.Time
}

// Skipped describes a record that extraction dropped.
type Skipped struct {
	Record Record
	Err    error
}

// Parse validates a single record and converts it to an edge.
func Parse(r Record) (Edge, error) {
	if len(r.Bodies) != 2 {
		return Edge{}, fmt.Errorf("%w: %d bodies", ErrMalformed, len(r.Bodies))
	}
	if len(r.Aspects) != 1 {
		return Edge{}, fmt.Errorf("%w: %d aspects", ErrMalformed, len(r.Aspects))
	}
	a, err := sky.ParseBody(r.Bodies[0])
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	b, err := sky.ParseBody(r.Bodies[1])
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if a == b {
		return Edge{}, fmt.Errorf("%w: body %s repeated", ErrMalformed, a)
	}
	kind, err := sky.ParseAspect(r.Aspects[0])
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if r.Phase != "" {
		if _, err := sky.ParsePhase(r.Phase); err != nil {
			return Edge{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	if r.Start.IsZero() || r.End.Before(r.Start) {
		return Edge{}, fmt.Errorf("%w: invalid interval %s..%s", ErrMalformed,
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return NewEdge(a, b, kind, r.Start, r.End), nil
}

// Extract converts records into an edge set. Malformed records are logged
// at warn level and returned in skipped; they never fail the extraction.
func Extract(records []Record, logger *slog.Logger) (*Set, []Skipped) {
	if logger == nil {
		logger = slog.Default()
	}
	edges := make([]Edge, 0, len(records))
	var skipped []Skipped
	for _, r := range records {
		e, err := Parse(r)
		if err != nil {
			logger.Warn("edge: skipping record", "id", r.ID, "bodies", r.Bodies, "aspects", r.Aspects, "error", err)
			skipped = append(skipped, Skipped{Record: r, Err: err})
			continue
		}
		edges = append(edges, e)
	}
	logger.Debug("edge: extracted", "edges", len(edges), "skipped", len(skipped))
	return NewSet(edges), skipped
}
