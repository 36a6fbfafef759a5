package telemetry

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/systems"
)

// Sample is a point-in-time measurement of the scene.
type Sample struct {
	Particles      int
	Speeds         []float64 // dynamic particles only
	KineticEnergy  float64
	MinHeight      float64
	DistanceErrors []float64 // |length - rest| per live distance constraint
	VolumeErrors   []float64 // |volume - rest| / |rest| per live volume constraint
}

// Sampler reads particle and constraint state from a world.
type Sampler struct {
	world     *ecs.World
	particles *ecs.Filter2[components.Transform, components.Particle]
	bodies    *ecs.Filter1[components.DeformableBody]
	transform *ecs.Map[components.Transform]

	sample Sample
}

// NewSampler creates a sampler over w.
func NewSampler(w *ecs.World) *Sampler {
	return &Sampler{
		world:     w,
		particles: ecs.NewFilter2[components.Transform, components.Particle](w),
		bodies:    ecs.NewFilter1[components.DeformableBody](w),
		transform: ecs.NewMap[components.Transform](w),
	}
}

// Sample measures the world. The returned slices are reused by the next call.
func (s *Sampler) Sample() Sample {
	out := &s.sample
	out.Particles = 0
	out.Speeds = out.Speeds[:0]
	out.KineticEnergy = 0
	out.MinHeight = math.Inf(1)
	out.DistanceErrors = out.DistanceErrors[:0]
	out.VolumeErrors = out.VolumeErrors[:0]

	pq := s.particles.Query()
	for pq.Next() {
		tr, p := pq.Get()
		out.Particles++
		if tr.Position.Y < out.MinHeight {
			out.MinHeight = tr.Position.Y
		}
		if p.InverseMass <= 0 {
			continue
		}
		v2 := r3.Norm2(p.Velocity)
		out.Speeds = append(out.Speeds, math.Sqrt(v2))
		out.KineticEnergy += 0.5 * v2 / p.InverseMass
	}
	if out.Particles == 0 {
		out.MinHeight = 0
	}

	bq := s.bodies.Query()
	for bq.Next() {
		body := bq.Get()
		for _, c := range body.DistanceConstraints {
			a, okA := s.position(c.P1)
			b, okB := s.position(c.P2)
			if !okA || !okB {
				continue
			}
			out.DistanceErrors = append(out.DistanceErrors, math.Abs(r3.Norm(r3.Sub(b, a))-c.RestLength))
		}
		for _, c := range body.VolumeConstraints {
			p1, ok1 := s.position(c.P1)
			p2, ok2 := s.position(c.P2)
			p3, ok3 := s.position(c.P3)
			p4, ok4 := s.position(c.P4)
			if !ok1 || !ok2 || !ok3 || !ok4 || c.RestVolume == 0 {
				continue
			}
			v := systems.TetVolume(p1, p2, p3, p4)
			out.VolumeErrors = append(out.VolumeErrors, math.Abs(v-c.RestVolume)/math.Abs(c.RestVolume))
		}
	}

	return *out
}

func (s *Sampler) position(e ecs.Entity) (r3.Vec, bool) {
	if e.IsZero() || !s.world.Alive(e) || !s.transform.Has(e) {
		return r3.Vec{}, false
	}
	return s.transform.Get(e).Position, true
}
