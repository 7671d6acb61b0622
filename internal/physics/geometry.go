package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultPivot is the screen-space pivot of an 800x600 view.
var DefaultPivot = r2.Vec{X: 400, Y: 200}

// Positions maps the angles of s to bob coordinates. phi = 0 hangs
// straight down (+y) and increasing phi swings toward +x.
func Positions(p Params, s State, pivot r2.Vec) (bob1, bob2 r2.Vec) {
	bob1 = r2.Add(pivot, r2.Vec{X: p.L1 * math.Sin(s.Phi1), Y: p.L1 * math.Cos(s.Phi1)})
	bob2 = r2.Add(bob1, r2.Vec{X: p.L2 * math.Sin(s.Phi2), Y: p.L2 * math.Cos(s.Phi2)})
	return bob1, bob2
}

// BobOrientation returns the rotation applied to each bob's artwork.
func BobOrientation(s State) (rot1, rot2 float64) {
	return -s.Phi1, -s.Phi2
}
