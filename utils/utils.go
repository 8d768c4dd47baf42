package utils

import (
	"math"
)

func Deg(rads float64) float64 {
	return rads / (math.Pi / 180)
}

func Rad(degrees float64) float64 {
	return (math.Pi / 180) * degrees
}

// Clamp constrains v to the closed range [lo, hi]. NaN is mapped to lo, so a
// degenerate calculation can never escape the range.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}

	return math.Max(math.Min(v, hi), lo)
}
