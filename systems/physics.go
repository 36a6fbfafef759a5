// Package systems contains ECS systems for the simulation.
package systems

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/config"
)

// Default solver parameters.
const (
	DefaultFixedStep        = 1.0 / 60.0
	DefaultSolverIterations = 40
	DefaultFloorHeight      = -2.0
	DefaultDamping          = 0.995
)

// PhaseRecorder receives phase boundaries for profiling.
// telemetry.PerfCollector satisfies it.
type PhaseRecorder interface {
	StartPhase(phase string)
}

// StepReport summarises what the solver did during the last Tick.
type StepReport struct {
	Steps        int // fixed steps simulated
	DroppedSteps int // whole steps discarded by MaxStepsPerTick

	SkippedZeroMass       int // distance constraints between two static particles
	SkippedShortEdge      int // distance constraints with coincident endpoints
	SkippedSatisfied      int // volume constraints already at rest volume
	SkippedFlatGradient   int // volume constraints with vanishing weighted gradient
	SkippedDeadHandle     int // constraints referencing removed particles (counted once per step)
	FloorContacts         int // particle clamps against the floor
	ParticleCount         int
	DistanceConstraintCnt int
	VolumeConstraintCnt   int
}

// Skipped returns the total number of skipped constraint evaluations.
func (r StepReport) Skipped() int {
	return r.SkippedZeroMass + r.SkippedShortEdge + r.SkippedSatisfied + r.SkippedFlatGradient + r.SkippedDeadHandle
}

// boundDistance is a distance constraint with its particles resolved for one step.
type boundDistance struct {
	c      *components.DistanceConstraint
	p1, p2 *components.Particle
}

// boundVolume is a volume constraint with its particles resolved for one step.
type boundVolume struct {
	c              *components.VolumeConstraint
	p1, p2, p3, p4 *components.Particle
}

// boundBody holds one body's resolved constraints in solve order.
type boundBody struct {
	distance []boundDistance
	volume   []boundVolume
}

// PhysicsSystem advances particles and deformable bodies with XPBD in fixed steps.
type PhysicsSystem struct {
	// Runtime-tunable parameters.
	SolverIterations int
	Gravity          r3.Vec
	Wind             Wind
	FloorHeight      float64
	Damping          float64
	MaxStepsPerTick  int // 0 = unbounded catch-up

	fixedStep   float64
	accumulator float64
	totalTime   float64
	frameTime   float64 // last currentTime passed to Tick

	kinematic    *ecs.Filter2[components.Transform, components.Particle]
	particles    *ecs.Filter1[components.Particle]
	bodies       *ecs.Filter1[components.DeformableBody]
	particleMap  *ecs.Map[components.Particle]
	transformMap *ecs.Map[components.Transform]
	picker       ecs.Entity
	recorder     PhaseRecorder
	report       StepReport
	origins      []r3.Vec
	bound        []boundBody
	onStep       []func(step int, simTime float64)
}

// NewPhysicsSystem creates a physics system with default parameters.
func NewPhysicsSystem(w *ecs.World) *PhysicsSystem {
	return &PhysicsSystem{
		SolverIterations: DefaultSolverIterations,
		Gravity:          r3.Vec{Y: -9.81},
		Wind:             DefaultWind(),
		FloorHeight:      DefaultFloorHeight,
		Damping:          DefaultDamping,
		fixedStep:        DefaultFixedStep,
		kinematic:        ecs.NewFilter2[components.Transform, components.Particle](w),
		particles:        ecs.NewFilter1[components.Particle](w),
		bodies:           ecs.NewFilter1[components.DeformableBody](w),
		particleMap:      ecs.NewMap[components.Particle](w),
		transformMap:     ecs.NewMap[components.Transform](w),
	}
}

// NewPhysicsSystemFromConfig creates a physics system with parameters from cfg.
func NewPhysicsSystemFromConfig(w *ecs.World, cfg *config.Config) *PhysicsSystem {
	s := NewPhysicsSystem(w)
	s.fixedStep = cfg.Physics.FixedStep
	s.SolverIterations = cfg.Physics.SolverIterations
	s.Gravity = cfg.Physics.Gravity.R3()
	s.FloorHeight = cfg.Physics.FloorHeight
	s.Damping = cfg.Physics.Damping
	s.MaxStepsPerTick = cfg.Physics.MaxStepsPerTick
	s.Wind = Wind{
		Direction:  cfg.Wind.Direction.R3(),
		Strength:   cfg.Wind.Strength,
		Frequency:  cfg.Wind.Frequency,
		Turbulence: cfg.Wind.Turbulence,
	}
	return s
}

// SetPhaseRecorder installs a profiler. nil disables profiling.
func (s *PhysicsSystem) SetPhaseRecorder(r PhaseRecorder) {
	s.recorder = r
}

// OnStep registers a callback run after every completed fixed step.
func (s *PhysicsSystem) OnStep(fn func(step int, simTime float64)) {
	s.onStep = append(s.onStep, fn)
}

// FixedStep returns the simulation step size in seconds.
func (s *PhysicsSystem) FixedStep() float64 { return s.fixedStep }

// Accumulator returns the unsimulated frame time carried to the next Tick.
func (s *PhysicsSystem) Accumulator() float64 { return s.accumulator }

// TotalTime returns the simulated time in seconds.
func (s *PhysicsSystem) TotalTime() float64 { return s.totalTime }

// FrameTime returns the currentTime passed to the last Tick.
func (s *PhysicsSystem) FrameTime() float64 { return s.frameTime }

// LastReport returns the report for the most recent Tick.
func (s *PhysicsSystem) LastReport() StepReport { return s.report }

// Tick consumes deltaTime of frame time and runs as many whole fixed steps as fit.
// It does nothing when deltaTime <= 0 or SolverIterations <= 0.
func (s *PhysicsSystem) Tick(w *ecs.World, deltaTime, currentTime float64) {
	s.report = StepReport{}
	if deltaTime <= 0 || s.SolverIterations <= 0 {
		return
	}
	s.frameTime = currentTime
	s.accumulator += deltaTime

	for s.accumulator >= s.fixedStep {
		if s.MaxStepsPerTick > 0 && s.report.Steps >= s.MaxStepsPerTick {
			dropped := 0
			for s.accumulator >= s.fixedStep {
				s.accumulator -= s.fixedStep
				dropped++
			}
			s.report.DroppedSteps += dropped
			slog.Warn("physics falling behind, dropping steps",
				"dropped", dropped,
				"max_steps_per_tick", s.MaxStepsPerTick,
				"delta_time", deltaTime,
			)
			break
		}

		s.simulateStep(w, s.fixedStep)
		s.accumulator -= s.fixedStep
		s.totalTime += s.fixedStep
		s.report.Steps++

		for _, fn := range s.onStep {
			fn(s.report.Steps, s.totalTime)
		}
	}
}

// simulateStep runs prediction, constraint projection and finalisation once.
func (s *PhysicsSystem) simulateStep(w *ecs.World, dt float64) {
	s.startPhase(PhasePredict)
	s.snapshotOrigins()
	s.predict(dt)

	s.startPhase(PhaseBind)
	s.bind(w)

	for i := 0; i < s.SolverIterations; i++ {
		s.startPhase(PhaseSolve)
		s.solveConstraints(dt)
		s.startPhase(PhaseCollide)
		s.projectCollisions()
	}

	s.startPhase(PhaseFinalize)
	s.finalize(dt)
}

func (s *PhysicsSystem) startPhase(phase string) {
	if s.recorder != nil {
		s.recorder.StartPhase(phase)
	}
}

// snapshotOrigins records every transform position before any particle is touched.
// Query order is stable between here and predict/finalize since the step makes
// no structural changes.
func (s *PhysicsSystem) snapshotOrigins() {
	s.origins = s.origins[:0]
	query := s.kinematic.Query()
	for query.Next() {
		tr, _ := query.Get()
		s.origins = append(s.origins, tr.Position)
	}
	s.report.ParticleCount = len(s.origins)
}

// predict integrates gravity and wind into predicted positions.
func (s *PhysicsSystem) predict(dt float64) {
	i := 0
	query := s.kinematic.Query()
	for query.Next() {
		_, p := query.Get()
		origin := s.origins[i]
		i++

		if p.InverseMass <= 0 {
			p.PredictedPosition = origin
			continue
		}

		accel := r3.Add(s.Gravity, s.Wind.Acceleration(s.totalTime, origin.X, p.InverseMass))
		p.PredictedPosition = r3.Add(addScaled(origin, dt, p.Velocity), r3.Scale(dt*dt, accel))
	}
}

// bind resolves constraint handles to particle pointers and zeroes multipliers.
// Dead handles are dropped for this step.
func (s *PhysicsSystem) bind(w *ecs.World) {
	s.report.DistanceConstraintCnt = 0
	s.report.VolumeConstraintCnt = 0

	n := 0
	query := s.bodies.Query()
	for query.Next() {
		body := query.Get()
		body.ResetLambdas()

		if n == len(s.bound) {
			s.bound = append(s.bound, boundBody{})
		}
		bb := &s.bound[n]
		n++
		bb.distance = bb.distance[:0]
		bb.volume = bb.volume[:0]

		for i := range body.DistanceConstraints {
			c := &body.DistanceConstraints[i]
			p1, ok1 := s.particle(w, c.P1)
			p2, ok2 := s.particle(w, c.P2)
			if !ok1 || !ok2 {
				s.report.SkippedDeadHandle++
				continue
			}
			bb.distance = append(bb.distance, boundDistance{c: c, p1: p1, p2: p2})
		}
		for i := range body.VolumeConstraints {
			c := &body.VolumeConstraints[i]
			p1, ok1 := s.particle(w, c.P1)
			p2, ok2 := s.particle(w, c.P2)
			p3, ok3 := s.particle(w, c.P3)
			p4, ok4 := s.particle(w, c.P4)
			if !ok1 || !ok2 || !ok3 || !ok4 {
				s.report.SkippedDeadHandle++
				continue
			}
			bb.volume = append(bb.volume, boundVolume{c: c, p1: p1, p2: p2, p3: p3, p4: p4})
		}
		s.report.DistanceConstraintCnt += len(body.DistanceConstraints)
		s.report.VolumeConstraintCnt += len(body.VolumeConstraints)
	}
	s.bound = s.bound[:n]
}

// particle returns the Particle component of e if e is alive and has one.
func (s *PhysicsSystem) particle(w *ecs.World, e ecs.Entity) (*components.Particle, bool) {
	if e.IsZero() || !w.Alive(e) || !s.particleMap.Has(e) {
		return nil, false
	}
	return s.particleMap.Get(e), true
}

// solveConstraints runs one Gauss-Seidel pass over every bound constraint.
func (s *PhysicsSystem) solveConstraints(dt float64) {
	for bi := range s.bound {
		bb := &s.bound[bi]
		for i := range bb.distance {
			d := &bb.distance[i]
			switch solveDistance(d.c, d.p1, d.p2, dt) {
			case skipZeroMass:
				s.report.SkippedZeroMass++
			case skipShortEdge:
				s.report.SkippedShortEdge++
			}
		}
		for i := range bb.volume {
			v := &bb.volume[i]
			switch solveVolume(v.c, v.p1, v.p2, v.p3, v.p4, dt) {
			case skipSatisfied:
				s.report.SkippedSatisfied++
			case skipFlatGradient:
				s.report.SkippedFlatGradient++
			}
		}
	}
}

// projectCollisions clamps every particle's predicted position above the floor.
func (s *PhysicsSystem) projectCollisions() {
	query := s.particles.Query()
	for query.Next() {
		p := query.Get()
		if p.PredictedPosition.Y < s.FloorHeight {
			p.PredictedPosition.Y = s.FloorHeight
			s.report.FloorContacts++
		}
	}
}

// finalize derives velocities from displacement and publishes positions.
func (s *PhysicsSystem) finalize(dt float64) {
	i := 0
	query := s.kinematic.Query()
	for query.Next() {
		tr, p := query.Get()
		origin := s.origins[i]
		i++

		if p.InverseMass <= 0 {
			continue
		}
		p.Velocity = r3.Scale(s.Damping/dt, r3.Sub(p.PredictedPosition, origin))
		tr.Position = p.PredictedPosition
	}
}

// SetMousePicker designates the particle moved by UpdateMousePickerPosition.
func (s *PhysicsSystem) SetMousePicker(e ecs.Entity) {
	s.picker = e
}

// MousePicker returns the designated picker entity, or the zero entity if none.
func (s *PhysicsSystem) MousePicker() ecs.Entity {
	return s.picker
}

// ClearMousePicker removes the picker designation.
func (s *PhysicsSystem) ClearMousePicker() {
	s.picker = ecs.Entity{}
}

// UpdateMousePickerPosition teleports the picker's transform to worldPos,
// bypassing prediction and constraints. Returns false if nothing was moved.
func (s *PhysicsSystem) UpdateMousePickerPosition(w *ecs.World, worldPos r3.Vec) bool {
	if s.picker.IsZero() || !w.Alive(s.picker) || !s.transformMap.Has(s.picker) {
		return false
	}
	s.transformMap.Get(s.picker).Position = worldPos
	return true
}

// Wind is a deterministic gust model: a sine in time, phase-shifted by x.
type Wind struct {
	Direction  r3.Vec
	Strength   float64
	Frequency  float64
	Turbulence float64
}

// DefaultWind returns the sandbox gust parameters.
func DefaultWind() Wind {
	return Wind{
		Direction:  r3.Vec{Y: -1, Z: 1},
		Strength:   16,
		Frequency:  0.2,
		Turbulence: 5,
	}
}

// Acceleration returns the wind acceleration at simulated time t for a particle
// whose step-start x coordinate is x. Only x shifts the phase.
func (w Wind) Acceleration(t, x, inverseMass float64) r3.Vec {
	wave := math.Sin(t*w.Frequency + x*w.Turbulence)
	return r3.Scale(w.Strength*wave*inverseMass, w.Direction)
}
