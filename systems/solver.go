package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
)

// skipReason records why a constraint evaluation applied no correction.
type skipReason uint8

const (
	applied skipReason = iota
	skipZeroMass
	skipShortEdge
	skipSatisfied
	skipFlatGradient
)

// solveDistance projects one distance constraint (XPBD).
// alphaTilde uses the full step so stiffness does not depend on the iteration count.
func solveDistance(c *components.DistanceConstraint, p1, p2 *components.Particle, dt float64) skipReason {
	w := p1.InverseMass + p2.InverseMass
	if w == 0 {
		return skipZeroMass
	}

	delta := r3.Sub(p2.PredictedPosition, p1.PredictedPosition)
	dist := r3.Norm(delta)
	if dist < minEdgeLength {
		return skipShortEdge
	}

	C := dist - c.RestLength
	alphaTilde := c.Compliance / (dt * dt)
	denom := w + alphaTilde
	if math.Abs(denom) < minDenominator {
		return skipZeroMass
	}

	dLambda := -(C + alphaTilde*c.Lambda) / denom
	c.Lambda += dLambda

	correction := r3.Scale(dLambda/dist, delta)
	p1.PredictedPosition = addScaled(p1.PredictedPosition, -p1.InverseMass, correction)
	p2.PredictedPosition = addScaled(p2.PredictedPosition, p2.InverseMass, correction)
	return applied
}

// solveVolume projects one tetrahedral volume constraint (XPBD).
func solveVolume(c *components.VolumeConstraint, p1, p2, p3, p4 *components.Particle, dt float64) skipReason {
	x1, x2, x3, x4 := p1.PredictedPosition, p2.PredictedPosition, p3.PredictedPosition, p4.PredictedPosition

	C := TetVolume(x1, x2, x3, x4) - c.RestVolume
	if math.Abs(C) < minVolumeError {
		return skipSatisfied
	}

	g1, g2, g3, g4 := tetGradients(x1, x2, x3, x4)
	sum := p1.InverseMass*r3.Norm2(g1) +
		p2.InverseMass*r3.Norm2(g2) +
		p3.InverseMass*r3.Norm2(g3) +
		p4.InverseMass*r3.Norm2(g4)
	if sum < minGradientSum {
		return skipFlatGradient
	}

	alphaTilde := c.Compliance / (dt * dt)
	dLambda := -(C + alphaTilde*c.Lambda) / (sum + alphaTilde)
	c.Lambda += dLambda

	p1.PredictedPosition = addScaled(x1, dLambda*p1.InverseMass, g1)
	p2.PredictedPosition = addScaled(x2, dLambda*p2.InverseMass, g2)
	p3.PredictedPosition = addScaled(x3, dLambda*p3.InverseMass, g3)
	p4.PredictedPosition = addScaled(x4, dLambda*p4.InverseMass, g4)
	return applied
}
