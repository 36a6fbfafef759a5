// Package camera provides an orbit camera for the 3D viewport and the
// ray/plane helper used to drag the mouse picker.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orbit limits.
const (
	MinDistance = 2.0
	MaxDistance = 200.0
	MaxPitch    = 1.5 // just short of straight down/up
	MinFOV      = 10.0
	MaxFOV      = 120.0
)

// Camera orbits a target point. Yaw rotates around +Y, pitch tilts above the
// XZ plane.
type Camera struct {
	Target   r3.Vec
	Distance float64
	Yaw      float64 // radians
	Pitch    float64 // radians
	FOV      float64 // vertical, degrees

	home placement // restored by Reset
}

type placement struct {
	target                    r3.Vec
	distance, yaw, pitch, fov float64
}

// New creates a camera at the given placement, clamped to the orbit limits.
func New(target r3.Vec, distance, yaw, pitch, fov float64) *Camera {
	c := &Camera{Target: target, Distance: distance, Yaw: yaw, Pitch: pitch, FOV: fov}
	c.clampAll()
	c.home = placement{c.Target, c.Distance, c.Yaw, c.Pitch, c.FOV}
	return c
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Target, c.Position()))
}

// Rotate orbits by the given yaw and pitch deltas in radians.
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// Pan moves the target in the camera's screen plane. dx, dy are in world
// units at the target distance.
func (c *Camera) Pan(dx, dy float64) {
	fwd := c.Forward()
	right := r3.Unit(r3.Cross(fwd, r3.Vec{Y: 1}))
	up := r3.Cross(right, fwd)
	c.Target = r3.Add(c.Target, r3.Add(r3.Scale(dx, right), r3.Scale(dy, up)))
}

// ZoomBy multiplies the orbit distance by factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetDistance(c.Distance * factor)
}

// SetDistance sets the orbit distance, clamped to the limits.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, MinDistance, MaxDistance)
}

// Reset returns the camera to the placement it was created with.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Distance = c.home.distance
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.FOV = c.home.fov
}

func (c *Camera) clampAll() {
	c.Distance = clamp(c.Distance, MinDistance, MaxDistance)
	c.Pitch = clamp(c.Pitch, -MaxPitch, MaxPitch)
	c.FOV = clamp(c.FOV, MinFOV, MaxFOV)
}

// RayPlane intersects the ray origin + t*dir with the plane through planePoint
// with the given normal. It reports false when the ray is parallel to the
// plane or the hit lies behind the origin.
func RayPlane(origin, dir, planePoint, normal r3.Vec) (r3.Vec, bool) {
	denom := r3.Dot(dir, normal)
	if math.Abs(denom) <= 1e-6 {
		return r3.Vec{}, false
	}
	t := r3.Dot(r3.Sub(planePoint, origin), normal) / denom
	if t < 0 {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(t, dir)), true
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
