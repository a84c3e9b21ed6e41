package engine

import (
	"time"

	"github.com/papapumpkin/syzygy/internal/compact"
	"github.com/papapumpkin/syzygy/internal/pattern"
)

// instantPayload is the telemetry shape of a pattern instant.
type instantPayload struct {
	Pattern     string            `json:"pattern"`
	Name        string            `json:"name"`
	Phase       string            `json:"phase"`
	At          time.Time         `json:"at"`
	Bodies      []string          `json:"bodies"`
	Roles       map[string]string `json:"roles,omitempty"`
	Tightness   float64           `json:"tightness,omitempty"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Categories  []string          `json:"categories"`
}

type durationPayload struct {
	Pattern     string            `json:"pattern"`
	Name        string            `json:"name"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Bodies      []string          `json:"bodies"`
	Roles       map[string]string `json:"roles,omitempty"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Categories  []string          `json:"categories"`
}

func instantData(in pattern.Instant) instantPayload {
	l := in.Labels()
	return instantPayload{
		Pattern:     in.Pattern.Slug(),
		Name:        in.Name(),
		Phase:       in.Phase.String(),
		At:          in.At,
		Bodies:      bodyNames(in.Candidate),
		Roles:       roleNames(in.Candidate),
		Tightness:   in.Tightness,
		Summary:     l.Summary,
		Description: l.Description,
		Categories:  l.Categories,
	}
}

func durationData(d compact.Duration) durationPayload {
	l := d.Labels()
	return durationPayload{
		Pattern:     d.Pattern.Slug(),
		Name:        d.Name(),
		Start:       d.Start,
		End:         d.End,
		Bodies:      bodyNames(d.Candidate),
		Roles:       roleNames(d.Candidate),
		Summary:     l.Summary,
		Description: l.Description,
		Categories:  l.Categories,
	}
}

func bodyNames(c pattern.Candidate) []string {
	out := make([]string, len(c.Bodies))
	for i, b := range c.Bodies {
		out[i] = b.String()
	}
	return out
}

func roleNames(c pattern.Candidate) map[string]string {
	if len(c.Roles) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Roles))
	for b, r := range c.Roles {
		out[string(r)] = b.String()
	}
	return out
}
