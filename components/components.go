// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quat is a rotation quaternion. The solver never touches it; it is carried
// so renderers and scene scripts have somewhere to keep orientation.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// Transform is the externally visible placement of an entity.
// Physics only ever writes Position.
type Transform struct {
	Position    r3.Vec `inspect:"vec,fmt:%.3f"`
	Orientation Quat   `inspect:"skip"`
	Scale       r3.Vec `inspect:"vec,fmt:%.2f"`
}

// NewTransform returns a transform at pos with identity rotation and the given uniform scale.
func NewTransform(pos r3.Vec, scale float64) Transform {
	return Transform{
		Position:    pos,
		Orientation: IdentityQuat(),
		Scale:       r3.Vec{X: scale, Y: scale, Z: scale},
	}
}

// Particle is a point mass driven by the solver.
type Particle struct {
	PredictedPosition r3.Vec  `inspect:"vec,fmt:%.3f"`
	Velocity          r3.Vec  `inspect:"vec,fmt:%.3f"`
	InverseMass       float64 `inspect:"label,fmt:%.3f"` // 0 = static / infinite mass
}

// IsStatic reports whether the particle has infinite mass.
func (p *Particle) IsStatic() bool {
	return p.InverseMass == 0
}

// DistanceConstraint keeps two particles at RestLength apart.
// P1 and P2 are weak handles into the world; the constraint never owns them.
type DistanceConstraint struct {
	P1, P2     ecs.Entity
	RestLength float64
	Compliance float64 // inverse stiffness, 0 = rigid
	Lambda     float64 // accumulated Lagrange multiplier
}

// NewDistanceConstraint creates a constraint with a zero multiplier.
func NewDistanceConstraint(p1, p2 ecs.Entity, restLength, compliance float64) DistanceConstraint {
	return DistanceConstraint{P1: p1, P2: p2, RestLength: restLength, Compliance: compliance}
}

// VolumeConstraint preserves the signed volume of tetrahedron P1..P4.
type VolumeConstraint struct {
	P1, P2, P3, P4 ecs.Entity
	RestVolume     float64
	Compliance     float64
	Lambda         float64
}

// NewVolumeConstraint creates a constraint with a zero multiplier.
func NewVolumeConstraint(p1, p2, p3, p4 ecs.Entity, restVolume, compliance float64) VolumeConstraint {
	return VolumeConstraint{P1: p1, P2: p2, P3: p3, P4: p4, RestVolume: restVolume, Compliance: compliance}
}

// DeformableBody groups every constraint belonging to one simulated object.
// Slice order is solve order.
type DeformableBody struct {
	DistanceConstraints []DistanceConstraint
	VolumeConstraints   []VolumeConstraint
}

// ConstraintCount returns the total number of constraints in the body.
func (b *DeformableBody) ConstraintCount() int {
	return len(b.DistanceConstraints) + len(b.VolumeConstraints)
}

// ResetLambdas zeroes every accumulated multiplier.
func (b *DeformableBody) ResetLambdas() {
	for i := range b.DistanceConstraints {
		b.DistanceConstraints[i].Lambda = 0
	}
	for i := range b.VolumeConstraints {
		b.VolumeConstraints[i].Lambda = 0
	}
}

// Name labels an entity for lookup by scene scripts.
type Name struct {
	Value string `inspect:"label"`
}
