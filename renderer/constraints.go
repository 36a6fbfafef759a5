package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/scene"
	"github.com/pthm-cable/softbody/systems"
)

// bodyPalette colors bodies in store order.
var bodyPalette = []rl.Color{
	{R: 120, G: 180, B: 255, A: 255},
	{R: 140, G: 230, B: 140, A: 255},
	{R: 240, G: 170, B: 90, A: 255},
	{R: 200, G: 140, B: 240, A: 255},
	{R: 240, G: 120, B: 160, A: 255},
}

// Strain and volume color ramps saturate at this relative error.
const fullScaleError = 0.1

// BodyColor returns the palette color for the i-th body.
func BodyColor(i int) rl.Color {
	return bodyPalette[i%len(bodyPalette)]
}

// StrainColor maps a relative length error to blue (compressed), white (rest)
// or red (stretched).
func StrainColor(relErr float64) rl.Color {
	t := math.Min(math.Abs(relErr)/fullScaleError, 1)
	fade := uint8(255 * (1 - t))
	if relErr >= 0 {
		return rl.Color{R: 255, G: fade, B: fade, A: 255}
	}
	return rl.Color{R: fade, G: fade, B: 255, A: 255}
}

// VolumeColor maps a relative volume error to a translucent green→red ramp.
func VolumeColor(relErr float64) rl.Color {
	t := math.Min(math.Abs(relErr)/fullScaleError, 1)
	return rl.Color{R: uint8(80 + 175*t), G: uint8(200 * (1 - t)), B: 90, A: 90}
}

// ConstraintRenderer draws distance constraints as lines and volume constraints
// as shaded tetrahedra.
type ConstraintRenderer struct {
	world     *ecs.World
	transform *ecs.Map[components.Transform]
}

// NewConstraintRenderer creates a constraint renderer over w.
func NewConstraintRenderer(w *ecs.World) *ConstraintRenderer {
	return &ConstraintRenderer{
		world:     w,
		transform: ecs.NewMap[components.Transform](w),
	}
}

func (r *ConstraintRenderer) position(e ecs.Entity) (r3.Vec, bool) {
	if e.IsZero() || !r.world.Alive(e) || !r.transform.Has(e) {
		return r3.Vec{}, false
	}
	return r.transform.Get(e).Position, true
}

// DrawLinks renders every distance constraint. With strain set, lines are
// colored by relative stretch instead of by body.
func (r *ConstraintRenderer) DrawLinks(sc *scene.Scene, strain bool) {
	i := 0
	sc.EachBody(func(_ ecs.Entity, _ string, body *components.DeformableBody) {
		color := BodyColor(i)
		i++
		for _, c := range body.DistanceConstraints {
			a, okA := r.position(c.P1)
			b, okB := r.position(c.P2)
			if !okA || !okB {
				continue
			}
			if strain && c.RestLength > 0 {
				color = StrainColor((r3.Norm(r3.Sub(b, a)) - c.RestLength) / c.RestLength)
			}
			rl.DrawLine3D(Vec3(a), Vec3(b), color)
		}
	})
}

// DrawTetrahedra shades every volume constraint by its relative volume error.
func (r *ConstraintRenderer) DrawTetrahedra(sc *scene.Scene) {
	sc.EachBody(func(_ ecs.Entity, _ string, body *components.DeformableBody) {
		for _, c := range body.VolumeConstraints {
			p1, ok1 := r.position(c.P1)
			p2, ok2 := r.position(c.P2)
			p3, ok3 := r.position(c.P3)
			p4, ok4 := r.position(c.P4)
			if !ok1 || !ok2 || !ok3 || !ok4 || c.RestVolume == 0 {
				continue
			}
			relErr := (systems.TetVolume(p1, p2, p3, p4) - c.RestVolume) / c.RestVolume
			color := VolumeColor(relErr)
			v1, v2, v3, v4 := Vec3(p1), Vec3(p2), Vec3(p3), Vec3(p4)

			// Both windings so faces show from either side
			for _, f := range [4][3]rl.Vector3{{v1, v2, v3}, {v1, v2, v4}, {v1, v3, v4}, {v2, v3, v4}} {
				rl.DrawTriangle3D(f[0], f[1], f[2], color)
				rl.DrawTriangle3D(f[0], f[2], f[1], color)
			}
		}
	})
}
