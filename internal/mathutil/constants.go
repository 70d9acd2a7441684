package mathutil

import "math"

// Epsilon is the length below which vectors are treated as zero.
const Epsilon = 1e-9

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(a float64) float64 {
	d := math.Mod(a, 360)
	if d < 0 {
		d += 360
	}
	return d
}
