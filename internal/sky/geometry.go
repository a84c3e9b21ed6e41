package sky

import (
	"math"
	"sort"
)

// Normalize maps a longitude into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngleBetween returns the shortest angular separation between two ecliptic
// longitudes, in [0, 180].
func AngleBetween(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// CircularSpan returns the length of the smallest arc that contains every
// longitude: 360 minus the largest gap between sorted neighbours. For a
// cluster straddling 0° this agrees with min(max-min, 360-(max-min)).
func CircularSpan(lons []float64) float64 {
	if len(lons) < 2 {
		return 0
	}
	sorted := make([]float64, len(lons))
	for i, l := range lons {
		sorted[i] = Normalize(l)
	}
	sort.Float64s(sorted)

	// Wrap gap from the last longitude back around to the first.
	largest := sorted[0] + 360 - sorted[len(sorted)-1]
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i] - sorted[i-1]; gap > largest {
			largest = gap
		}
	}
	return 360 - largest
}
