// Package sky defines the closed vocabularies the composition engine works
// in: tracked bodies, two-body aspect kinds, lifecycle phases, and pattern
// kinds. It also holds the longitude geometry shared by every detector.
//
// Strings only appear at the input boundary (Parse* functions) and in labels;
// everything past extraction switches on these typed values.
package sky

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownBody is returned when a body identifier is not recognized.
var ErrUnknownBody = errors.New("unknown body")

// Body identifies a tracked celestial body.
type Body int

// Tracked bodies, in conventional chart order. The zero value is invalid.
const (
	Sun Body = iota + 1
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Chiron
	Ceres
	Pallas
	Juno
	Vesta
	TrueNode
	Lilith
)

var bodyNames = [...]string{
	Sun:      "Sun",
	Moon:     "Moon",
	Mercury:  "Mercury",
	Venus:    "Venus",
	Mars:     "Mars",
	Jupiter:  "Jupiter",
	Saturn:   "Saturn",
	Uranus:   "Uranus",
	Neptune:  "Neptune",
	Pluto:    "Pluto",
	Chiron:   "Chiron",
	Ceres:    "Ceres",
	Pallas:   "Pallas",
	Juno:     "Juno",
	Vesta:    "Vesta",
	TrueNode: "True Node",
	Lilith:   "Lilith",
}

// bodyAliases maps normalized spellings to bodies.
var bodyAliases = map[string]Body{
	"northnode":       TrueNode,
	"truenode":        TrueNode,
	"node":            TrueNode,
	"meannode":        TrueNode,
	"blackmoonlilith": Lilith,
	"bml":             Lilith,
}

// AllBodies returns every tracked body in chart order.
func AllBodies() []Body {
	out := make([]Body, 0, len(bodyNames)-1)
	for b := Sun; b <= Lilith; b++ {
		out = append(out, b)
	}
	return out
}

// Valid reports whether b is one of the tracked bodies.
func (b Body) Valid() bool {
	return b >= Sun && b <= Lilith
}

// String returns the display name of the body.
func (b Body) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// ParseBody resolves a body identifier, ignoring case, spaces, dashes and
// underscores.
func ParseBody(s string) (Body, error) {
	key := normalizeTag(s)
	if key == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownBody)
	}
	for b := Sun; b <= Lilith; b++ {
		if normalizeTag(bodyNames[b]) == key {
			return b, nil
		}
	}
	if b, ok := bodyAliases[key]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, s)
}

// SortBodies sorts bodies in chart order, in place.
func SortBodies(bodies []Body) {
	sort.Slice(bodies, func(i, j int) bool { return bodies[i] < bodies[j] })
}

// JoinBodies renders bodies as a comma-separated list.
func JoinBodies(bodies []Body) string {
	names := make([]string, len(bodies))
	for i, b := range bodies {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
