package sky

import (
	"errors"
	"math"
	"testing"
)

func TestParseBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Body
	}{
		{"Sun", Sun},
		{"  moon ", Moon},
		{"True Node", TrueNode},
		{"north_node", TrueNode},
		{"Black-Moon Lilith", Lilith},
		{"VESTA", Vesta},
	}
	for _, tt := range tests {
		got, err := ParseBody(tt.in)
		if err != nil {
			t.Errorf("ParseBody(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBody(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "Vulcan", "sun moon"} {
		if _, err := ParseBody(bad); !errors.Is(err, ErrUnknownBody) {
			t.Errorf("ParseBody(%q) error = %v, want ErrUnknownBody", bad, err)
		}
	}
}

func TestAllBodiesRoundTrip(t *testing.T) {
	t.Parallel()

	bodies := AllBodies()
	if len(bodies) != 17 {
		t.Fatalf("AllBodies() has %d entries, want 17", len(bodies))
	}
	for _, b := range bodies {
		got, err := ParseBody(b.String())
		if err != nil || got != b {
			t.Errorf("ParseBody(%q) = %v, %v; want %v", b.String(), got, err, b)
		}
	}
}

func TestParseAspect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want AspectKind
	}{
		{"conjunct", Conjunct},
		{"Conjunction", Conjunct},
		{"opposition", Opposite},
		{"opposite", Opposite},
		{"inconjunct", Quincunx},
		{"Quintile", Quintile},
		{"semi-sextile", SemiSextile},
	}
	for _, tt := range tests {
		got, err := ParseAspect(tt.in)
		if err != nil {
			t.Errorf("ParseAspect(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAspect(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseAspect("square trine"); !errors.Is(err, ErrUnknownAspect) {
		t.Errorf("got %v, want ErrUnknownAspect", err)
	}
}

func TestAspectMatches(t *testing.T) {
	t.Parallel()

	if !Square.Matches(95) {
		t.Error("square should match 95 (orb 8)")
	}
	if Square.Matches(99) {
		t.Error("square should not match 99")
	}
	if !Quintile.Matches(73.5) {
		t.Error("quintile should match 73.5")
	}
	if AspectKind(0).Matches(0) {
		t.Error("invalid kind should never match")
	}
	if Conjunct.Orb() != 8 {
		t.Errorf("conjunct orb = %v, want 8", Conjunct.Orb())
	}
}

func TestParsePhase(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Phase{
		"forming":    Forming,
		"Applying":   Forming,
		"exact":      Exact,
		"separating": Dissolving,
		"dissolving": Dissolving,
	} {
		got, err := ParsePhase(in)
		if err != nil || got != want {
			t.Errorf("ParsePhase(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePhase("waxing"); !errors.Is(err, ErrUnknownPhase) {
		t.Errorf("got %v, want ErrUnknownPhase", err)
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]PatternKind{
		"grand cross": GrandCross,
		"grand_cross": GrandCross,
		"Kite":        Kite,
		"t-square":    TSquare,
		"stellium-5":  Stellium,
		"hexagram":    Hexagram,
	} {
		got, err := ParsePattern(in)
		if err != nil || got != want {
			t.Errorf("ParsePattern(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePattern("mystic rectangle"); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("got %v, want ErrUnknownPattern", err)
	}
	if GrandCross.Slug() != "grand-cross" {
		t.Errorf("Slug() = %q", GrandCross.Slug())
	}
}

func TestAngleBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want float64
	}{
		{10, 20, 10},
		{350, 10, 20},
		{0, 180, 180},
		{-30, 30, 60},
		{720, 90, 90},
		{100, 290, 170},
	}
	for _, tt := range tests {
		if got := AngleBetween(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleBetween(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCircularSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lons []float64
		want float64
	}{
		{"tight", []float64{10, 12, 15}, 5},
		{"spread", []float64{10, 30, 50}, 40},
		{"wraps zero", []float64{355, 2, 358}, 7},
		{"single", []float64{42}, 0},
		{"empty", nil, 0},
		{"opposed pair plus one", []float64{0, 178, 357}, 181},
		{"three points straddling zero", []float64{0, 7, 353}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CircularSpan(tt.lons); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CircularSpan(%v) = %v, want %v", tt.lons, got, tt.want)
			}
		})
	}
}
