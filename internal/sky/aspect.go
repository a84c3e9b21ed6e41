package sky

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownAspect is returned when an aspect tag is not recognized.
var ErrUnknownAspect = errors.New("unknown aspect")

// AspectKind is a named two-body angular relationship.
type AspectKind int

// Aspect kinds, ordered by idealized angle.
const (
	Conjunct AspectKind = iota + 1
	SemiSextile
	SemiSquare
	Sextile
	Quintile
	Square
	Trine
	Sesquisquare
	BiQuintile
	Quincunx
	Opposite
)

type aspectInfo struct {
	name  string
	angle float64
	orb   float64
}

var aspects = [...]aspectInfo{
	Conjunct:     {"conjunct", 0, 8},
	SemiSextile:  {"semisextile", 30, 2},
	SemiSquare:   {"semisquare", 45, 2},
	Sextile:      {"sextile", 60, 6},
	Quintile:     {"quintile", 72, 2},
	Square:       {"square", 90, 8},
	Trine:        {"trine", 120, 8},
	Sesquisquare: {"sesquisquare", 135, 2},
	BiQuintile:   {"biquintile", 144, 2},
	Quincunx:     {"quincunx", 150, 3},
	Opposite:     {"opposite", 180, 8},
}

var aspectAliases = map[string]AspectKind{
	"conjunction":    Conjunct,
	"opposition":     Opposite,
	"inconjunct":     Quincunx,
	"sesquiquadrate": Sesquisquare,
	"semisquare":     SemiSquare,
	"octile":         SemiSquare,
}

// Valid reports whether k is a known aspect kind.
func (k AspectKind) Valid() bool {
	return k >= Conjunct && k <= Opposite
}

// String returns the aspect name.
func (k AspectKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("AspectKind(%d)", int(k))
	}
	return aspects[k].name
}

// Angle returns the idealized separation in degrees.
func (k AspectKind) Angle() float64 {
	if !k.Valid() {
		return math.NaN()
	}
	return aspects[k].angle
}

// Orb returns the tolerance in degrees.
func (k AspectKind) Orb() float64 {
	if !k.Valid() {
		return 0
	}
	return aspects[k].orb
}

// Matches reports whether a separation in [0, 180] falls within this
// aspect's orb.
func (k AspectKind) Matches(separation float64) bool {
	if !k.Valid() {
		return false
	}
	return math.Abs(separation-aspects[k].angle) <= aspects[k].orb
}

// ParseAspect resolves an aspect tag such as "square" or "Opposition".
func ParseAspect(s string) (AspectKind, error) {
	key := normalizeTag(s)
	for k := Conjunct; k <= Opposite; k++ {
		if aspects[k].name == key {
			return k, nil
		}
	}
	if k, ok := aspectAliases[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAspect, s)
}
