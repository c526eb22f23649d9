package systems

import "math"

// distance returns the Euclidean distance for a displacement.
func distance(dx, dy float32) float32 {
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// maxf returns the larger of two float32 values.
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
