package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
)

// testWorld bundles a world with the mappers the tests need.
type testWorld struct {
	w         *ecs.World
	particles *ecs.Map2[components.Transform, components.Particle]
	bodies    *ecs.Map1[components.DeformableBody]
	transform *ecs.Map[components.Transform]
	particle  *ecs.Map[components.Particle]
	body      *ecs.Map[components.DeformableBody]
}

func newTestWorld() *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		w:         w,
		particles: ecs.NewMap2[components.Transform, components.Particle](w),
		bodies:    ecs.NewMap1[components.DeformableBody](w),
		transform: ecs.NewMap[components.Transform](w),
		particle:  ecs.NewMap[components.Particle](w),
		body:      ecs.NewMap[components.DeformableBody](w),
	}
}

func (tw *testWorld) addParticle(pos r3.Vec, invMass float64) ecs.Entity {
	tr := components.NewTransform(pos, 0.05)
	p := components.Particle{PredictedPosition: pos, InverseMass: invMass}
	return tw.particles.NewEntity(&tr, &p)
}

func (tw *testWorld) addBody(body components.DeformableBody) ecs.Entity {
	return tw.bodies.NewEntity(&body)
}

func (tw *testWorld) pos(e ecs.Entity) r3.Vec {
	return tw.transform.Get(e).Position
}

// addChain creates n+1 particles from start to end linked by rigid constraints.
func (tw *testWorld) addChain(start, end r3.Vec, n int, pinFirst bool) []ecs.Entity {
	var ents []ecs.Entity
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		invMass := 1.0
		if i == 0 && pinFirst {
			invMass = 0
		}
		ents = append(ents, tw.addParticle(r3.Add(start, r3.Scale(t, r3.Sub(end, start))), invMass))
	}
	rest := r3.Norm(r3.Sub(end, start)) / float64(n)
	var body components.DeformableBody
	for i := 0; i < n; i++ {
		body.DistanceConstraints = append(body.DistanceConstraints,
			components.NewDistanceConstraint(ents[i], ents[i+1], rest, 0))
	}
	tw.addBody(body)
	return ents
}

// addGrid creates a w x h cloth pinned at its top-left corner, and at its
// top-right corner too when pinRight is set.
func (tw *testWorld) addGrid(origin r3.Vec, w, h int, spacing, compliance float64, pinRight bool) []ecs.Entity {
	ents := make([]ecs.Entity, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			invMass := 1.0
			if j == h-1 && (i == 0 || (pinRight && i == w-1)) {
				invMass = 0
			}
			ents[j*w+i] = tw.addParticle(r3.Add(origin, r3.Vec{X: float64(i) * spacing, Y: float64(j) * spacing}), invMass)
		}
	}
	var body components.DeformableBody
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if i < w-1 {
				body.DistanceConstraints = append(body.DistanceConstraints,
					components.NewDistanceConstraint(ents[j*w+i], ents[j*w+i+1], spacing, compliance))
			}
			if j < h-1 {
				body.DistanceConstraints = append(body.DistanceConstraints,
					components.NewDistanceConstraint(ents[j*w+i], ents[(j+1)*w+i], spacing, compliance))
			}
		}
	}
	tw.addBody(body)
	return ents
}

// calm returns a system with gravity and wind disabled and the floor far away.
func calm(w *ecs.World) *PhysicsSystem {
	s := NewPhysicsSystem(w)
	s.Gravity = r3.Vec{}
	s.Wind = Wind{}
	s.FloorHeight = -1e6
	return s
}

func runSteps(s *PhysicsSystem, w *ecs.World, n int) {
	for i := 0; i < n; i++ {
		s.Tick(w, s.FixedStep(), s.TotalTime()+s.FixedStep())
	}
}

func TestDistanceConstraintConverges(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 r3.Vec
		rest   float64
	}{
		{"stretched", r3.Vec{}, r3.Vec{X: 2}, 1},
		{"compressed", r3.Vec{}, r3.Vec{X: 0.25, Y: 0.1}, 1},
		{"diagonal", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: -2, Y: 0, Z: 5}, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWorld()
			a := tw.addParticle(tc.p1, 1)
			b := tw.addParticle(tc.p2, 1)
			tw.addBody(components.DeformableBody{DistanceConstraints: []components.DistanceConstraint{
				components.NewDistanceConstraint(a, b, tc.rest, 0),
			}})

			s := calm(tw.w)
			runSteps(s, tw.w, 1)

			got := r3.Norm(r3.Sub(tw.pos(b), tw.pos(a)))
			if math.Abs(got-tc.rest) > 1e-6 {
				t.Errorf("distance = %v, want %v", got, tc.rest)
			}
		})
	}
}

func TestClothConstraintsConverge(t *testing.T) {
	tw := newTestWorld()
	tw.addGrid(r3.Vec{Y: 5}, 6, 6, 0.25, 0, false)

	s := NewPhysicsSystem(tw.w)
	runSteps(s, tw.w, 60)

	body := ecs.NewFilter1[components.DeformableBody](tw.w).Query()
	for body.Next() {
		for _, c := range body.Get().DistanceConstraints {
			d := r3.Norm(r3.Sub(tw.pos(c.P2), tw.pos(c.P1)))
			if math.Abs(d-c.RestLength) > 1e-3 {
				t.Errorf("edge length %v, rest %v", d, c.RestLength)
			}
		}
	}
}

func TestStaticParticleNeverMoves(t *testing.T) {
	tw := newTestWorld()
	start := r3.Vec{X: 15, Y: 15}
	chain := tw.addChain(start, r3.Vec{X: 15, Y: 15, Z: 15}, 20, true)
	below := tw.addParticle(r3.Vec{Y: -5}, 0)

	s := NewPhysicsSystem(tw.w)
	runSteps(s, tw.w, 120)

	if got := tw.pos(chain[0]); got != start {
		t.Errorf("pinned particle moved to %v", got)
	}
	if v := tw.particle.Get(chain[0]).Velocity; v != (r3.Vec{}) {
		t.Errorf("pinned particle has velocity %v", v)
	}
	if got := tw.pos(below); got != (r3.Vec{Y: -5}) {
		t.Errorf("static particle below floor moved to %v", got)
	}
}

func TestTetrahedronVolumeConverges(t *testing.T) {
	tests := []struct {
		name    string
		perturb r3.Vec
	}{
		{"inflated", r3.Vec{X: 0.3, Y: 0.4, Z: 0.5}},
		{"squashed", r3.Vec{X: -0.2, Y: -0.3, Z: -0.4}},
		{"sheared", r3.Vec{X: 0.5, Y: -0.1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			corners := [4]r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
			rest := TetVolume(corners[0], corners[1], corners[2], corners[3])

			tw := newTestWorld()
			var ents [4]ecs.Entity
			for i, c := range corners {
				if i == 3 {
					c = r3.Add(c, tc.perturb)
				}
				ents[i] = tw.addParticle(c, 1)
			}
			tw.addBody(components.DeformableBody{VolumeConstraints: []components.VolumeConstraint{
				components.NewVolumeConstraint(ents[0], ents[1], ents[2], ents[3], rest, 0),
			}})

			s := calm(tw.w)
			runSteps(s, tw.w, 1)

			got := TetVolume(tw.pos(ents[0]), tw.pos(ents[1]), tw.pos(ents[2]), tw.pos(ents[3]))
			if math.Abs(got-rest) > 1e-6 {
				t.Errorf("volume = %v, want %v", got, rest)
			}
		})
	}
}

func TestTetGradientsMatchFiniteDifference(t *testing.T) {
	p := [4]r3.Vec{
		{X: 0.1, Y: -0.2, Z: 0.3},
		{X: 1.2, Y: 0.1, Z: -0.1},
		{X: -0.3, Y: 0.9, Z: 0.2},
		{X: 0.4, Y: 0.3, Z: 1.1},
	}
	g1, g2, g3, g4 := tetGradients(p[0], p[1], p[2], p[3])
	grads := [4]r3.Vec{g1, g2, g3, g4}

	const h = 1e-6
	for i := range p {
		for axis := 0; axis < 3; axis++ {
			plus, minus := p, p
			bump(&plus[i], axis, h)
			bump(&minus[i], axis, -h)
			numeric := (TetVolume(plus[0], plus[1], plus[2], plus[3]) -
				TetVolume(minus[0], minus[1], minus[2], minus[3])) / (2 * h)
			analytic := component(grads[i], axis)
			if math.Abs(numeric-analytic) > 1e-6 {
				t.Errorf("grad[%d][%d] = %v, finite difference %v", i, axis, analytic, numeric)
			}
		}
	}

	sum := r3.Add(r3.Add(g1, g2), r3.Add(g3, g4))
	if r3.Norm(sum) > 1e-12 {
		t.Errorf("gradients should sum to zero, got %v", sum)
	}
}

func bump(v *r3.Vec, axis int, d float64) {
	switch axis {
	case 0:
		v.X += d
	case 1:
		v.Y += d
	default:
		v.Z += d
	}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func TestDeterminism(t *testing.T) {
	build := func() (*testWorld, []ecs.Entity) {
		tw := newTestWorld()
		ents := tw.addChain(r3.Vec{X: 3, Y: 6}, r3.Vec{X: 3, Y: 6, Z: 4}, 8, true)
		ents = append(ents, tw.addGrid(r3.Vec{Y: 2}, 5, 5, 0.3, 1e-6, true)...)
		return tw, ents
	}

	twA, entsA := build()
	twB, entsB := build()
	sA := NewPhysicsSystem(twA.w)
	sB := NewPhysicsSystem(twB.w)

	frames := []float64{0.016, 0.021, 0.009, 0.05, 0.0166, 0.1}
	now := 0.0
	for i := 0; i < 20; i++ {
		dt := frames[i%len(frames)]
		now += dt
		sA.Tick(twA.w, dt, now)
		sB.Tick(twB.w, dt, now)
	}

	for i := range entsA {
		if a, b := twA.pos(entsA[i]), twB.pos(entsB[i]); a != b {
			t.Fatalf("particle %d diverged: %v vs %v", i, a, b)
		}
	}
	if sA.TotalTime() != sB.TotalTime() {
		t.Errorf("total time diverged: %v vs %v", sA.TotalTime(), sB.TotalTime())
	}
}

func TestAccumulatorRunsWholeSteps(t *testing.T) {
	tw := newTestWorld()
	tw.addParticle(r3.Vec{Y: 10}, 1)
	s := NewPhysicsSystem(tw.w)

	calls := 0
	s.OnStep(func(step int, simTime float64) { calls++ })

	s.Tick(tw.w, 0.1, 0.1)

	if got := s.LastReport().Steps; got != 6 {
		t.Errorf("steps = %d, want 6", got)
	}
	if calls != 6 {
		t.Errorf("OnStep called %d times, want 6", calls)
	}
	want := 0.1 - 6.0/60.0
	if math.Abs(s.Accumulator()-want) > 1e-12 {
		t.Errorf("accumulator = %v, want ~%v", s.Accumulator(), want)
	}
	if math.Abs(s.TotalTime()-0.1) > 1e-12 {
		t.Errorf("total time = %v, want 0.1", s.TotalTime())
	}
	if s.FrameTime() != 0.1 {
		t.Errorf("frame time = %v, want 0.1", s.FrameTime())
	}
}

func TestShortFrameCarriesOver(t *testing.T) {
	tw := newTestWorld()
	s := NewPhysicsSystem(tw.w)

	s.Tick(tw.w, 0.01, 0.01)
	if s.LastReport().Steps != 0 {
		t.Fatalf("expected no step for a short frame")
	}
	s.Tick(tw.w, 0.01, 0.02)
	if s.LastReport().Steps != 1 {
		t.Errorf("expected carried time to produce one step, got %d", s.LastReport().Steps)
	}
}

func TestTickNoOp(t *testing.T) {
	tests := []struct {
		name       string
		dt         float64
		iterations int
	}{
		{"zero dt", 0, DefaultSolverIterations},
		{"negative dt", -0.5, DefaultSolverIterations},
		{"zero iterations", 0.1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWorld()
			e := tw.addParticle(r3.Vec{Y: 3}, 1)
			s := NewPhysicsSystem(tw.w)
			s.SolverIterations = tc.iterations

			s.Tick(tw.w, tc.dt, 1)

			if s.LastReport().Steps != 0 {
				t.Errorf("steps = %d, want 0", s.LastReport().Steps)
			}
			if s.Accumulator() != 0 || s.TotalTime() != 0 {
				t.Errorf("state changed: accumulator=%v total=%v", s.Accumulator(), s.TotalTime())
			}
			if got := tw.pos(e); got != (r3.Vec{Y: 3}) {
				t.Errorf("particle moved to %v", got)
			}
		})
	}
}

func TestRigidRodScenario(t *testing.T) {
	tw := newTestWorld()
	a := tw.addParticle(r3.Vec{}, 0)
	b := tw.addParticle(r3.Vec{X: 1}, 1)
	tw.addBody(components.DeformableBody{DistanceConstraints: []components.DistanceConstraint{
		components.NewDistanceConstraint(a, b, 1, 0),
	}})

	s := NewPhysicsSystem(tw.w)
	s.Wind = Wind{}
	runSteps(s, tw.w, 60)

	if got := tw.pos(a); got != (r3.Vec{}) {
		t.Errorf("anchor moved to %v", got)
	}
	d := r3.Norm(r3.Sub(tw.pos(b), tw.pos(a)))
	if math.Abs(d-1) > 1e-3 {
		t.Errorf("rod length = %v, want 1", d)
	}
	if tw.pos(b).Y >= 0 {
		t.Errorf("free end should swing down, y = %v", tw.pos(b).Y)
	}
}

func TestFreeFall(t *testing.T) {
	tw := newTestWorld()
	e := tw.addParticle(r3.Vec{Y: 10}, 1)

	s := NewPhysicsSystem(tw.w)
	s.Wind = Wind{}
	dt := s.FixedStep()
	g := s.Gravity.Y

	prevY := tw.pos(e).Y
	wantV := 0.0
	clamped := false
	for n := 1; n <= 200; n++ {
		runSteps(s, tw.w, 1)
		y := tw.pos(e).Y

		if y > prevY {
			t.Fatalf("step %d: y increased from %v to %v", n, prevY, y)
		}
		if y < DefaultFloorHeight {
			t.Fatalf("step %d: y = %v below floor", n, y)
		}
		if y == DefaultFloorHeight {
			clamped = true
		}

		if !clamped {
			wantV = (wantV + g*dt) * DefaultDamping
			v := tw.particle.Get(e).Velocity.Y
			if math.Abs(v-wantV) > 1e-9 {
				t.Fatalf("step %d: vy = %v, want %v", n, v, wantV)
			}
			// Damped velocity lies between the undamped value and its 0.995^n scaling.
			free := g * float64(n) * dt
			damped := free * math.Pow(DefaultDamping, float64(n))
			if v < free-1e-9 || v > damped+1e-9 {
				t.Fatalf("step %d: vy = %v outside [%v, %v]", n, v, free, damped)
			}
		}
		prevY = y
	}

	if !clamped {
		t.Fatal("particle never reached the floor")
	}
	if got := tw.pos(e).Y; got != DefaultFloorHeight {
		t.Errorf("resting y = %v, want %v", got, DefaultFloorHeight)
	}
}

func TestDegenerateConstraintsAreSkipped(t *testing.T) {
	tw := newTestWorld()
	s := calm(tw.w)
	s.SolverIterations = 4

	pinA := tw.addParticle(r3.Vec{}, 0)
	pinB := tw.addParticle(r3.Vec{X: 2}, 0)
	same1 := tw.addParticle(r3.Vec{Y: 1}, 1)
	same2 := tw.addParticle(r3.Vec{Y: 1}, 1)

	corners := [4]r3.Vec{{X: 5}, {X: 6}, {X: 5, Y: 1}, {X: 5, Z: 1}}
	var rest, flat [4]ecs.Entity
	for i, c := range corners {
		rest[i] = tw.addParticle(c, 1)
		flat[i] = tw.addParticle(r3.Add(c, r3.Vec{Z: 10}), 0)
	}
	vol := TetVolume(corners[0], corners[1], corners[2], corners[3])

	tw.addBody(components.DeformableBody{
		DistanceConstraints: []components.DistanceConstraint{
			components.NewDistanceConstraint(pinA, pinB, 1, 0),
			components.NewDistanceConstraint(same1, same2, 1, 0),
		},
		VolumeConstraints: []components.VolumeConstraint{
			components.NewVolumeConstraint(rest[0], rest[1], rest[2], rest[3], vol, 0),
			components.NewVolumeConstraint(flat[0], flat[1], flat[2], flat[3], 2*vol, 0),
		},
	})

	runSteps(s, tw.w, 1)
	r := s.LastReport()

	if r.SkippedZeroMass != 4 {
		t.Errorf("SkippedZeroMass = %d, want 4", r.SkippedZeroMass)
	}
	if r.SkippedShortEdge != 4 {
		t.Errorf("SkippedShortEdge = %d, want 4", r.SkippedShortEdge)
	}
	if r.SkippedSatisfied != 4 {
		t.Errorf("SkippedSatisfied = %d, want 4", r.SkippedSatisfied)
	}
	if r.SkippedFlatGradient != 4 {
		t.Errorf("SkippedFlatGradient = %d, want 4", r.SkippedFlatGradient)
	}
	if r.Skipped() != 16 {
		t.Errorf("Skipped() = %d, want 16", r.Skipped())
	}
	if got := tw.pos(same1); got != (r3.Vec{Y: 1}) {
		t.Errorf("coincident particle moved to %v", got)
	}
}

func TestLambdaResetEachStep(t *testing.T) {
	tw := newTestWorld()
	a := tw.addParticle(r3.Vec{}, 1)
	b := tw.addParticle(r3.Vec{X: 1}, 1)
	bodyEnt := tw.addBody(components.DeformableBody{DistanceConstraints: []components.DistanceConstraint{
		{P1: a, P2: b, RestLength: 1, Compliance: 1e-3, Lambda: 123},
	}})

	s := calm(tw.w)
	runSteps(s, tw.w, 1)

	if got := tw.body.Get(bodyEnt).DistanceConstraints[0].Lambda; got != 0 {
		t.Errorf("lambda = %v, want 0 for a satisfied constraint", got)
	}
}

func TestDeadHandlesAreSkipped(t *testing.T) {
	tw := newTestWorld()
	a := tw.addParticle(r3.Vec{}, 0)
	b := tw.addParticle(r3.Vec{X: 1}, 1)
	c := tw.addParticle(r3.Vec{X: 2}, 1)
	tw.addBody(components.DeformableBody{DistanceConstraints: []components.DistanceConstraint{
		components.NewDistanceConstraint(a, b, 1, 0),
		components.NewDistanceConstraint(b, c, 1, 0),
		components.NewDistanceConstraint(c, ecs.Entity{}, 1, 0),
	}})
	tw.w.RemoveEntity(b)

	s := NewPhysicsSystem(tw.w)
	runSteps(s, tw.w, 1)

	r := s.LastReport()
	if r.SkippedDeadHandle != 3 {
		t.Errorf("SkippedDeadHandle = %d, want 3", r.SkippedDeadHandle)
	}
	if r.DistanceConstraintCnt != 3 {
		t.Errorf("DistanceConstraintCnt = %d, want 3", r.DistanceConstraintCnt)
	}
	if r.ParticleCount != 2 {
		t.Errorf("ParticleCount = %d, want 2", r.ParticleCount)
	}
}

func TestMousePicker(t *testing.T) {
	tw := newTestWorld()
	s := NewPhysicsSystem(tw.w)

	if !s.MousePicker().IsZero() {
		t.Fatal("picker should start unset")
	}
	if s.UpdateMousePickerPosition(tw.w, r3.Vec{X: 1}) {
		t.Error("update without picker should report false")
	}

	picker := tw.addParticle(r3.Vec{Y: 5}, 0)
	s.SetMousePicker(picker)
	if s.MousePicker() != picker {
		t.Fatalf("MousePicker = %v, want %v", s.MousePicker(), picker)
	}

	target := r3.Vec{X: 2, Y: 5, Z: -3}
	if !s.UpdateMousePickerPosition(tw.w, target) {
		t.Fatal("update should move the picker")
	}
	runSteps(s, tw.w, 10)
	if got := tw.pos(picker); got != target {
		t.Errorf("picker at %v after ticks, want %v", got, target)
	}

	s.ClearMousePicker()
	if s.UpdateMousePickerPosition(tw.w, r3.Vec{}) {
		t.Error("update after clear should report false")
	}

	s.SetMousePicker(picker)
	tw.w.RemoveEntity(picker)
	if s.UpdateMousePickerPosition(tw.w, r3.Vec{}) {
		t.Error("update on a removed picker should report false")
	}
}

func TestMaxStepsPerTick(t *testing.T) {
	tw := newTestWorld()
	tw.addParticle(r3.Vec{Y: 10}, 1)
	s := NewPhysicsSystem(tw.w)
	s.MaxStepsPerTick = 2

	s.Tick(tw.w, 0.1, 0.1)
	r := s.LastReport()

	if r.Steps != 2 {
		t.Errorf("steps = %d, want 2", r.Steps)
	}
	if r.DroppedSteps != 4 {
		t.Errorf("dropped = %d, want 4", r.DroppedSteps)
	}
	if s.Accumulator() >= s.FixedStep() || s.Accumulator() < 0 {
		t.Errorf("accumulator = %v, want [0, %v)", s.Accumulator(), s.FixedStep())
	}
	if math.Abs(s.TotalTime()-2*s.FixedStep()) > 1e-12 {
		t.Errorf("total time = %v, want %v", s.TotalTime(), 2*s.FixedStep())
	}
}

func TestWindPhaseUsesXOnly(t *testing.T) {
	tw := newTestWorld()
	a := tw.addParticle(r3.Vec{X: 1, Y: 0, Z: 0}, 1)
	b := tw.addParticle(r3.Vec{X: 1, Y: 3, Z: -7}, 1)
	c := tw.addParticle(r3.Vec{X: 1.3, Y: 0, Z: 0}, 1)

	s := calm(tw.w)
	s.Wind = DefaultWind()
	runSteps(s, tw.w, 5)

	da := r3.Sub(tw.pos(a), r3.Vec{X: 1})
	db := r3.Sub(tw.pos(b), r3.Vec{X: 1, Y: 3, Z: -7})
	dc := r3.Sub(tw.pos(c), r3.Vec{X: 1.3})
	if r3.Norm(r3.Sub(da, db)) > 1e-12 {
		t.Errorf("same x should see the same wind: %v vs %v", da, db)
	}
	if r3.Norm(r3.Sub(da, dc)) < 1e-9 {
		t.Errorf("different x should see different wind: %v vs %v", da, dc)
	}
}

func TestWindAcceleration(t *testing.T) {
	w := DefaultWind()
	got := w.Acceleration(1.5, 0.4, 2)
	wave := math.Sin(1.5*0.2 + 0.4*5)
	want := r3.Scale(16*wave*2, r3.Vec{Y: -1, Z: 1})
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("Acceleration = %v, want %v", got, want)
	}
	if (Wind{}).Acceleration(3, 3, 1) != (r3.Vec{}) {
		t.Error("zero wind should produce no acceleration")
	}
}

type phaseLog []string

func (p *phaseLog) StartPhase(phase string) { *p = append(*p, phase) }

func TestPhaseOrder(t *testing.T) {
	tw := newTestWorld()
	tw.addParticle(r3.Vec{}, 1)
	s := NewPhysicsSystem(tw.w)
	s.SolverIterations = 2

	var log phaseLog
	s.SetPhaseRecorder(&log)
	runSteps(s, tw.w, 1)

	want := []string{PhasePredict, PhaseBind, PhaseSolve, PhaseCollide, PhaseSolve, PhaseCollide, PhaseFinalize}
	if len(log) != len(want) {
		t.Fatalf("phases = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("phase[%d] = %q, want %q", i, log[i], want[i])
		}
	}

	reg := NewSystemRegistry()
	for _, id := range want {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("phase %q not registered", id)
		}
	}
}

func TestFloorContactsCounted(t *testing.T) {
	tw := newTestWorld()
	tw.addParticle(r3.Vec{Y: DefaultFloorHeight}, 1)

	s := NewPhysicsSystem(tw.w)
	s.Wind = Wind{}
	s.SolverIterations = 3
	runSteps(s, tw.w, 1)

	if got := s.LastReport().FloorContacts; got != 3 {
		t.Errorf("FloorContacts = %d, want 3", got)
	}
}

func BenchmarkClothStep(b *testing.B) {
	tw := newTestWorld()
	tw.addGrid(r3.Vec{Y: 5}, 30, 30, 0.25, 1e-6, true)
	s := NewPhysicsSystem(tw.w)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Tick(tw.w, s.FixedStep(), float64(n)*s.FixedStep())
	}
}
