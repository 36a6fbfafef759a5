package systems

import "gonum.org/v1/gonum/spatial/r3"

// Thresholds below which a constraint evaluation is skipped for the iteration.
const (
	minEdgeLength  = 1e-9
	minDenominator = 1e-9
	minVolumeError = 1e-9
	minGradientSum = 1e-9
)

// TetVolume returns the signed volume of the tetrahedron p1..p4.
// Positive when (p2-p1, p3-p1, p4-p1) form a right-handed frame.
func TetVolume(p1, p2, p3, p4 r3.Vec) float64 {
	return r3.Dot(r3.Sub(p2, p1), r3.Cross(r3.Sub(p3, p1), r3.Sub(p4, p1))) / 6
}

// tetGradients returns the gradient of TetVolume with respect to each vertex.
// Each is a face normal scaled by the face area / 3.
func tetGradients(p1, p2, p3, p4 r3.Vec) (g1, g2, g3, g4 r3.Vec) {
	const sixth = 1.0 / 6.0
	g1 = r3.Scale(sixth, r3.Cross(r3.Sub(p2, p3), r3.Sub(p4, p3)))
	g2 = r3.Scale(sixth, r3.Cross(r3.Sub(p3, p1), r3.Sub(p4, p1)))
	g3 = r3.Scale(sixth, r3.Cross(r3.Sub(p1, p2), r3.Sub(p4, p2)))
	g4 = r3.Scale(sixth, r3.Cross(r3.Sub(p1, p3), r3.Sub(p2, p3)))
	return g1, g2, g3, g4
}

// addScaled returns v + f*u.
func addScaled(v r3.Vec, f float64, u r3.Vec) r3.Vec {
	return r3.Vec{X: v.X + f*u.X, Y: v.Y + f*u.Y, Z: v.Z + f*u.Z}
}
