// Package scene owns entity creation for the sandbox: particles, deformable
// bodies and the builders that wire them together.
package scene

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
)

// ParticleScale is the render scale given to particles created by builders.
const ParticleScale = 0.05

// Scene wraps an ECS world with typed mappers and a name index.
type Scene struct {
	world *ecs.World

	particleMapper *ecs.Map2[components.Transform, components.Particle]
	bodyMapper     *ecs.Map2[components.DeformableBody, components.Name]
	particleFilter *ecs.Filter2[components.Transform, components.Particle]
	bodyFilter     *ecs.Filter2[components.DeformableBody, components.Name]

	transformMap *ecs.Map[components.Transform]
	particleMap  *ecs.Map[components.Particle]
	bodyMap      *ecs.Map[components.DeformableBody]

	named map[string]ecs.Entity
}

// New creates a scene over w.
func New(w *ecs.World) *Scene {
	return &Scene{
		world:          w,
		particleMapper: ecs.NewMap2[components.Transform, components.Particle](w),
		bodyMapper:     ecs.NewMap2[components.DeformableBody, components.Name](w),
		particleFilter: ecs.NewFilter2[components.Transform, components.Particle](w),
		bodyFilter:     ecs.NewFilter2[components.DeformableBody, components.Name](w),
		transformMap:   ecs.NewMap[components.Transform](w),
		particleMap:    ecs.NewMap[components.Particle](w),
		bodyMap:        ecs.NewMap[components.DeformableBody](w),
		named:          make(map[string]ecs.Entity),
	}
}

// World returns the underlying ECS world.
func (s *Scene) World() *ecs.World {
	return s.world
}

// CreateParticle adds a particle at rest at pos. invMass 0 pins it.
func (s *Scene) CreateParticle(pos r3.Vec, invMass float64) ecs.Entity {
	tr := components.NewTransform(pos, ParticleScale)
	p := components.Particle{PredictedPosition: pos, InverseMass: invMass}
	return s.particleMapper.NewEntity(&tr, &p)
}

// AddBody stores body as a new entity. A non-empty name registers it for lookup;
// a later body with the same name replaces the index entry.
func (s *Scene) AddBody(name string, body components.DeformableBody) ecs.Entity {
	n := components.Name{Value: name}
	e := s.bodyMapper.NewEntity(&body, &n)
	if name != "" {
		if _, ok := s.named[name]; ok {
			slog.Warn("entity name reused", "name", name)
		}
		s.named[name] = e
	}
	return e
}

// Entity returns the live entity registered under name.
func (s *Scene) Entity(name string) (ecs.Entity, bool) {
	e, ok := s.named[name]
	if !ok || !s.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Exists reports whether a live entity is registered under name.
func (s *Scene) Exists(name string) bool {
	_, ok := s.Entity(name)
	return ok
}

// Destroy removes e from the world and from the name index.
// Handles held by constraints become dead and are skipped by the solver.
func (s *Scene) Destroy(e ecs.Entity) {
	for name, named := range s.named {
		if named == e {
			delete(s.named, name)
		}
	}
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
}

// Body returns the deformable body stored on e, or nil.
func (s *Scene) Body(e ecs.Entity) *components.DeformableBody {
	if !s.world.Alive(e) || !s.bodyMap.Has(e) {
		return nil
	}
	return s.bodyMap.Get(e)
}

// Particle returns the particle and transform of e, or nils.
func (s *Scene) Particle(e ecs.Entity) (*components.Transform, *components.Particle) {
	if !s.world.Alive(e) || !s.particleMap.Has(e) || !s.transformMap.Has(e) {
		return nil, nil
	}
	return s.transformMap.Get(e), s.particleMap.Get(e)
}

// Position returns the published position of a particle entity.
func (s *Scene) Position(e ecs.Entity) (r3.Vec, bool) {
	if !s.world.Alive(e) || !s.transformMap.Has(e) {
		return r3.Vec{}, false
	}
	return s.transformMap.Get(e).Position, true
}

// Counts returns the number of particles, bodies and constraints in the scene.
func (s *Scene) Counts() (particles, bodies, distance, volume int) {
	pq := s.particleFilter.Query()
	for pq.Next() {
		particles++
	}
	bq := s.bodyFilter.Query()
	for bq.Next() {
		body, _ := bq.Get()
		bodies++
		distance += len(body.DistanceConstraints)
		volume += len(body.VolumeConstraints)
	}
	return particles, bodies, distance, volume
}

// EachBody calls fn for every body in store order.
func (s *Scene) EachBody(fn func(e ecs.Entity, name string, body *components.DeformableBody)) {
	query := s.bodyFilter.Query()
	for query.Next() {
		body, name := query.Get()
		fn(query.Entity(), name.Value, body)
	}
}

// EachParticle calls fn for every particle in store order.
func (s *Scene) EachParticle(fn func(e ecs.Entity, tr *components.Transform, p *components.Particle)) {
	query := s.particleFilter.Query()
	for query.Next() {
		tr, p := query.Get()
		fn(query.Entity(), tr, p)
	}
}
