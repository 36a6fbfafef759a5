// Package renderer draws the soft-body scene in 3D with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/camera"
	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/scene"
)

// Particle colors
var (
	ColorDynamic  = rl.Color{R: 230, G: 230, B: 240, A: 255}
	ColorStatic   = rl.Color{R: 220, G: 80, B: 70, A: 255}
	ColorPicker   = rl.Color{R: 255, G: 200, B: 60, A: 255}
	ColorSelected = rl.Color{R: 90, G: 220, B: 255, A: 255}
)

// Vec3 converts a simulation vector to a raylib vector.
func Vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// FromVec3 converts a raylib vector to a simulation vector.
func FromVec3(v rl.Vector3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Camera3D builds the raylib camera for an orbit camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   Vec3(c.Position()),
		Target:     Vec3(c.Target),
		Up:         rl.Vector3{Y: 1},
		Fovy:       float32(c.FOV),
		Projection: rl.CameraPerspective,
	}
}

// ParticleRenderer draws particles as spheres sized by their transform scale.
type ParticleRenderer struct {
	Rings, Slices int32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{Rings: 6, Slices: 8}
}

// ParticleColor picks the draw color for a particle.
func ParticleColor(p *components.Particle, isPicker, isSelected bool) rl.Color {
	switch {
	case isSelected:
		return ColorSelected
	case isPicker:
		return ColorPicker
	case p.IsStatic():
		return ColorStatic
	default:
		return ColorDynamic
	}
}

// Draw renders every particle in the scene. Must be called inside BeginMode3D.
func (r *ParticleRenderer) Draw(sc *scene.Scene, picker, selected ecs.Entity) {
	sc.EachParticle(func(e ecs.Entity, tr *components.Transform, p *components.Particle) {
		radius := float32(tr.Scale.X)
		if radius <= 0 {
			radius = scene.ParticleScale
		}
		color := ParticleColor(p, e == picker, e == selected)
		rl.DrawSphereEx(Vec3(tr.Position), radius, r.Rings, r.Slices, color)
	})
}
