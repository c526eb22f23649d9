package game

import "math"

// starVertices is the outline vertex count. Vertices alternate between the
// full and half radius.
const starVertices = 5

// growFrames is how long a new entity takes to reach its full drawn size.
const growFrames = 15

// starOutline fills dst with the outline of an entity centered at (x, y),
// rotated by heading, with outer radius r. Vertices are ordered with
// decreasing angle, which is counter-clockwise on a y-down screen.
func starOutline(dst *[starVertices]vec2, x, y, heading, r float32) {
	for i := 0; i < starVertices; i++ {
		radius := r
		if i%2 == 1 {
			radius = r / 2
		}
		a := float64(heading) - float64(i)/starVertices*2*math.Pi
		dst[i] = vec2{
			X: x + float32(math.Cos(a))*radius,
			Y: y + float32(math.Sin(a))*radius,
		}
	}
}

// drawScale is the spawn grow-in factor for an entity of the given age.
func drawScale(age int64) float32 {
	if age >= growFrames {
		return 1
	}
	if age < 0 {
		return 0
	}
	return float32(age+1) / float32(growFrames+1)
}

// vec2 avoids pulling raylib into pure geometry helpers.
type vec2 struct {
	X, Y float32
}
