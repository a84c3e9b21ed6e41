package sky

import (
	"errors"
	"fmt"
)

// ErrUnknownPattern is returned when a pattern name is not recognized.
var ErrUnknownPattern = errors.New("unknown pattern")

// PatternKind names a multi-body configuration.
type PatternKind int

// Pattern kinds.
const (
	GrandCross PatternKind = iota + 1
	Kite
	Pentagram
	Hexagram
	Stellium
	GrandTrine
	TSquare
	Yod
)

var patternNames = [...]string{
	GrandCross: "grand cross",
	Kite:       "kite",
	Pentagram:  "pentagram",
	Hexagram:   "hexagram",
	Stellium:   "stellium",
	GrandTrine: "grand trine",
	TSquare:    "t-square",
	Yod:        "yod",
}

// AllPatterns returns every pattern kind.
func AllPatterns() []PatternKind {
	out := make([]PatternKind, 0, len(patternNames)-1)
	for p := GrandCross; p <= Yod; p++ {
		out = append(out, p)
	}
	return out
}

// Valid reports whether p is a known pattern kind.
func (p PatternKind) Valid() bool {
	return p >= GrandCross && p <= Yod
}

// String returns the display name of the pattern.
func (p PatternKind) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PatternKind(%d)", int(p))
	}
	return patternNames[p]
}

// Slug returns the pattern name in lower-kebab form, e.g. "grand-cross".
func (p PatternKind) Slug() string {
	switch p {
	case GrandCross:
		return "grand-cross"
	case GrandTrine:
		return "grand-trine"
	default:
		return p.String()
	}
}

// ParsePattern resolves a pattern name such as "grand cross", "grand_cross"
// or "stellium-4" (the size suffix is ignored).
func ParsePattern(s string) (PatternKind, error) {
	key := normalizeTag(s)
	for p := GrandCross; p <= Yod; p++ {
		if normalizeTag(patternNames[p]) == key {
			return p, nil
		}
	}
	if len(key) > len("stellium") && key[:len("stellium")] == "stellium" {
		return Stellium, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}

// Role labels a distinguished slot in a role-bearing pattern.
type Role string

// Roles.
const (
	RoleFocal Role = "focal"
	RoleApex  Role = "apex"
)
