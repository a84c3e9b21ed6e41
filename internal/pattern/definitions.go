package pattern

import (
	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// Requirement says slots A and B must be in the given aspect.
type Requirement struct {
	A, B   int
	Aspect sky.AspectKind
}

// Definition describes a configuration: how many bodies it needs, which
// aspects must join which slots, and which slots carry roles. Proximity
// patterns (stellium) have no requirements and a size range instead.
type Definition struct {
	Kind         sky.PatternKind
	Slots        int
	MaxSlots     int
	Requirements []Requirement
	Roles        map[int]sky.Role
	Proximity    bool
	Summary      string
}

// ring returns requirements joining consecutive slots cyclically.
func ring(aspect sky.AspectKind, slots ...int) []Requirement {
	out := make([]Requirement, len(slots))
	for i := range slots {
		out[i] = Requirement{A: slots[i], B: slots[(i+1)%len(slots)], Aspect: aspect}
	}
	return out
}

func concat(parts ...[]Requirement) []Requirement {
	var out []Requirement
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var definitions = []Definition{
	{
		Kind:  sky.GrandCross,
		Slots: 4,
		Requirements: concat(
			[]Requirement{{0, 2, sky.Opposite}, {1, 3, sky.Opposite}},
			ring(sky.Square, 0, 1, 2, 3),
		),
		Summary: "two oppositions whose ends are all square to each other",
	},
	{
		Kind:  sky.Kite,
		Slots: 4,
		Requirements: concat(
			ring(sky.Trine, 0, 1, 2),
			[]Requirement{{0, 3, sky.Opposite}, {1, 3, sky.Sextile}, {2, 3, sky.Sextile}},
		),
		Roles:   map[int]sky.Role{0: sky.RoleApex, 3: sky.RoleFocal},
		Summary: "a grand trine with a focal body opposite one vertex and sextile the other two",
	},
	{
		Kind:         sky.Pentagram,
		Slots:        5,
		Requirements: ring(sky.Quintile, 0, 2, 4, 1, 3),
		Summary:      "five bodies linked by a star of quintiles",
	},
	{
		Kind:  sky.Hexagram,
		Slots: 6,
		Requirements: concat(
			ring(sky.Trine, 0, 2, 4),
			ring(sky.Trine, 1, 3, 5),
			ring(sky.Sextile, 0, 1, 2, 3, 4, 5),
		),
		Summary: "two interlaced grand trines joined by a ring of sextiles",
	},
	{
		Kind:      sky.Stellium,
		Slots:     3,
		MaxSlots:  12,
		Proximity: true,
		Summary:   "three or more bodies within conjunction orb",
	},
	{
		Kind:         sky.GrandTrine,
		Slots:        3,
		Requirements: ring(sky.Trine, 0, 1, 2),
		Summary:      "three bodies mutually trine",
	},
	{
		Kind:  sky.TSquare,
		Slots: 3,
		Requirements: []Requirement{
			{0, 1, sky.Opposite}, {0, 2, sky.Square}, {1, 2, sky.Square},
		},
		Roles:   map[int]sky.Role{2: sky.RoleApex},
		Summary: "an opposition with an apex square to both ends",
	},
	{
		Kind:  sky.Yod,
		Slots: 3,
		Requirements: []Requirement{
			{0, 1, sky.Sextile}, {0, 2, sky.Quincunx}, {1, 2, sky.Quincunx},
		},
		Roles:   map[int]sky.Role{2: sky.RoleApex},
		Summary: "a sextile whose ends are both quincunx an apex",
	},
}

// Definitions returns every pattern definition.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for kind.
func Lookup(kind sky.PatternKind) (Definition, bool) {
	for _, d := range definitions {
		if d.Kind == kind {
			return d, true
		}
	}
	return Definition{}, false
}

// Satisfied reports whether slots fill the definition at the snapshot:
// the slot count fits and every requirement holds. Proximity definitions
// only check the count and distinctness.
func (d Definition) Satisfied(s *edge.Snapshot, slots []sky.Body) bool {
	if !distinct(slots) {
		return false
	}
	if d.Proximity {
		return len(slots) >= d.Slots && (d.MaxSlots == 0 || len(slots) <= d.MaxSlots)
	}
	if len(slots) != d.Slots {
		return false
	}
	for _, r := range d.Requirements {
		if !s.Has(slots[r.A], slots[r.B], r.Aspect) {
			return false
		}
	}
	return true
}

// roleMap translates slot roles into body roles for a labeling.
func (d Definition) roleMap(slots []sky.Body) map[sky.Body]sky.Role {
	if len(d.Roles) == 0 {
		return nil
	}
	out := make(map[sky.Body]sky.Role, len(d.Roles))
	for i, r := range d.Roles {
		out[slots[i]] = r
	}
	return out
}

func mustLookup(kind sky.PatternKind) Definition {
	d, ok := Lookup(kind)
	if !ok {
		panic("pattern: no definition for " + kind.String())
	}
	return d
}
