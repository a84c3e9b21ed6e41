package sky

import (
	"errors"
	"fmt"
)

// ErrUnknownPhase is returned when a phase tag is not recognized.
var ErrUnknownPhase = errors.New("unknown phase")

// Phase is the lifecycle position of a relationship relative to three
// consecutive samples.
type Phase int

// Phases. The zero value means "no event".
const (
	Forming Phase = iota + 1
	Exact
	Dissolving
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Forming:
		return "forming"
	case Exact:
		return "exact"
	case Dissolving:
		return "dissolving"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ParsePhase resolves a phase tag. "applying" and "separating" are accepted
// as synonyms for forming and dissolving.
func ParsePhase(s string) (Phase, error) {
	switch normalizeTag(s) {
	case "forming", "applying":
		return Forming, nil
	case "exact":
		return Exact, nil
	case "dissolving", "separating":
		return Dissolving, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}
