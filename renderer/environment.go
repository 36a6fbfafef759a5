package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/systems"
)

// EnvironmentRenderer draws the floor, the picker plane and wind arrows.
type EnvironmentRenderer struct {
	Center   r3.Vec  // floor grid center (Y ignored)
	HalfSize float64 // floor grid half extent
	Spacing  float64

	windSamples []float64
}

// NewEnvironmentRenderer creates a renderer for a floor of the given extent.
func NewEnvironmentRenderer(center r3.Vec, halfSize, spacing float64) *EnvironmentRenderer {
	return &EnvironmentRenderer{Center: center, HalfSize: halfSize, Spacing: spacing}
}

// DrawFloor renders a grid at height y.
func (e *EnvironmentRenderer) DrawFloor(y float64) {
	center := Vec3(r3.Vec{X: e.Center.X, Y: y, Z: e.Center.Z})
	size := float32(2 * e.HalfSize)
	rl.DrawPlane(center, rl.Vector2{X: size, Y: size}, rl.Color{R: 35, G: 40, B: 48, A: 255})

	lineColor := rl.Color{R: 70, G: 80, B: 95, A: 255}
	lift := y + 0.01
	for off := -e.HalfSize; off <= e.HalfSize+1e-9; off += e.Spacing {
		rl.DrawLine3D(
			Vec3(r3.Vec{X: e.Center.X + off, Y: lift, Z: e.Center.Z - e.HalfSize}),
			Vec3(r3.Vec{X: e.Center.X + off, Y: lift, Z: e.Center.Z + e.HalfSize}),
			lineColor,
		)
		rl.DrawLine3D(
			Vec3(r3.Vec{X: e.Center.X - e.HalfSize, Y: lift, Z: e.Center.Z + off}),
			Vec3(r3.Vec{X: e.Center.X + e.HalfSize, Y: lift, Z: e.Center.Z + off}),
			lineColor,
		)
	}
}

// DrawPickPlane outlines the horizontal plane the picker is dragged on.
func (e *EnvironmentRenderer) DrawPickPlane(y float64) {
	color := rl.Color{R: 255, G: 200, B: 60, A: 120}
	h := e.HalfSize
	c := e.Center
	corners := [4]rl.Vector3{
		Vec3(r3.Vec{X: c.X - h, Y: y, Z: c.Z - h}),
		Vec3(r3.Vec{X: c.X + h, Y: y, Z: c.Z - h}),
		Vec3(r3.Vec{X: c.X + h, Y: y, Z: c.Z + h}),
		Vec3(r3.Vec{X: c.X - h, Y: y, Z: c.Z + h}),
	}
	for i := range corners {
		rl.DrawLine3D(corners[i], corners[(i+1)%4], color)
	}
}

// WindSamples fills dst with the wind acceleration magnitude along the wind
// direction at n evenly spaced x positions in [x0, x1], for a unit-mass particle.
func WindSamples(dst []float64, w systems.Wind, t, x0, x1 float64, n int) []float64 {
	dst = dst[:0]
	for i := 0; i < n; i++ {
		x := x0
		if n > 1 {
			x = x0 + (x1-x0)*float64(i)/float64(n-1)
		}
		a := w.Acceleration(t, x, 1)
		sign := 1.0
		if r3.Dot(a, w.Direction) < 0 {
			sign = -1
		}
		dst = append(dst, sign*r3.Norm(a))
	}
	return dst
}

// DrawWind renders arrows along the X axis at height y showing the gust field.
func (e *EnvironmentRenderer) DrawWind(w systems.Wind, t, y float64) {
	const n = 24
	x0 := e.Center.X - e.HalfSize
	x1 := e.Center.X + e.HalfSize
	e.windSamples = WindSamples(e.windSamples, w, t, x0, x1, n)

	if r3.Norm2(w.Direction) == 0 || w.Strength == 0 {
		return
	}
	dir := r3.Unit(w.Direction)
	scale := 1.0 / w.Strength // full strength draws a unit-length arrow
	for i, s := range e.windSamples {
		x := x0 + (x1-x0)*float64(i)/float64(n-1)
		base := r3.Vec{X: x, Y: y, Z: e.Center.Z}
		tip := r3.Add(base, r3.Scale(s*scale, dir))
		color := rl.Color{R: 120, G: 200, B: 255, A: 200}
		if s < 0 {
			color = rl.Color{R: 255, G: 140, B: 120, A: 200}
		}
		rl.DrawLine3D(Vec3(base), Vec3(tip), color)
		rl.DrawSphere(Vec3(tip), 0.04, color)
	}
}
