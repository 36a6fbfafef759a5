// Package game ties the scene, solver, telemetry and viewer together.
package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/camera"
	"github.com/pthm-cable/softbody/config"
	"github.com/pthm-cable/softbody/inspector"
	"github.com/pthm-cable/softbody/renderer"
	"github.com/pthm-cable/softbody/scene"
	"github.com/pthm-cable/softbody/systems"
	"github.com/pthm-cable/softbody/telemetry"
	"github.com/pthm-cable/softbody/ui"
)

// Game holds the complete sandbox state.
type Game struct {
	cfg *config.Config

	world   *ecs.World
	scene   *scene.Scene
	built   scene.Built
	physics *systems.PhysicsSystem
	tracked ecs.Entity // particle whose trajectory is traced and plotted

	// Viewer (nil when headless)
	camera      *camera.Camera
	inspector   *inspector.Inspector
	hud         *ui.HUD
	statsPanel  *ui.StatsPanel
	perfPanel   *ui.PerfPanel
	controls    *ui.ControlsPanel
	overlays    *ui.OverlayRegistry
	particles   *renderer.ParticleRenderer
	links       *renderer.ConstraintRenderer
	environment *renderer.EnvironmentRenderer

	// Telemetry
	registry         *systems.SystemRegistry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	sampler          *telemetry.Sampler
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats
	statsWindow      float64
	logStats         bool

	// State
	step         int32   // fixed steps simulated since the last reset
	frameClock   float64 // frame time fed to the solver
	paused       bool
	stepOnce     bool
	resetPending bool
	dragging     bool
	headless     bool

	screenWidth, screenHeight int32
}

// NewGameWithOptions creates a game from the global config.
// config.Init must have been called.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	window := opts.StatsWindow
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
	}

	g := &Game{
		cfg:           cfg,
		registry:      systems.NewSystemRegistry(),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: om,
		statsWindow:   window,
		logStats:      opts.LogStats,
		headless:      opts.Headless,
		screenWidth:   int32(cfg.Screen.Width),
		screenHeight:  int32(cfg.Screen.Height),
	}

	g.setupWorld(nil)

	if !opts.Headless {
		g.camera = camera.New(cfg.Camera.Target.R3(), cfg.Camera.Distance, cfg.Camera.Yaw, cfg.Camera.Pitch, cfg.Camera.FOV)
		g.inspector = inspector.NewInspector(g.screenWidth, g.screenHeight)
		g.hud = ui.NewHUD()
		g.statsPanel = ui.NewStatsPanel()
		g.perfPanel = ui.NewPerfPanel(10, 110)
		g.controls = ui.NewControlsPanel(10, 110, 240)
		g.overlays = ui.NewOverlayRegistry()
		g.particles = renderer.NewParticleRenderer()
		g.environment = renderer.NewEnvironmentRenderer(cfg.Camera.Target.R3(), 20, 1)
	}

	slog.Info("game created",
		"headless", opts.Headless,
		"stats_window", window,
		"output_dir", opts.OutputDir,
		"fixed_step", cfg.Physics.FixedStep,
	)
	return g, nil
}

// setupWorld builds a fresh world, scene, solver and telemetry windows. When prev is non-nil its
// runtime-tuned parameters carry over.
func (g *Game) setupWorld(prev *systems.PhysicsSystem) {
	g.world = ecs.NewWorld()
	g.scene = scene.New(g.world)
	g.built = g.scene.BuildFromConfig(g.cfg)

	g.physics = systems.NewPhysicsSystemFromConfig(g.world, g.cfg)
	if prev != nil {
		g.physics.SolverIterations = prev.SolverIterations
		g.physics.Gravity = prev.Gravity
		g.physics.Wind = prev.Wind
		g.physics.FloorHeight = prev.FloorHeight
		g.physics.Damping = prev.Damping
		g.physics.MaxStepsPerTick = prev.MaxStepsPerTick
	}
	g.physics.SetPhaseRecorder(g.perfCollector)
	if !g.built.Picker.IsZero() {
		g.physics.SetMousePicker(g.built.Picker)
	}

	g.tracked = trackedParticle(g.built)
	g.physics.OnStep(g.afterStep)

	g.sampler = telemetry.NewSampler(g.world)
	g.collector = telemetry.NewCollector(g.statsWindow, g.physics.FixedStep())
	g.bookmarkDetector = telemetry.NewBookmarkDetector(5)
	if !g.headless {
		g.links = renderer.NewConstraintRenderer(g.world)
	}
	g.step = 0
	g.frameClock = 0
	g.lastStats = telemetry.WindowStats{}
}

// trackedParticle picks the particle whose height is traced: the rod tip,
// else the bottom-middle of the cloth, else the first soft-box corner.
func trackedParticle(b scene.Built) ecs.Entity {
	switch {
	case b.Rod != nil && len(b.Rod.Particles) > 0:
		return b.Rod.Particles[len(b.Rod.Particles)-1]
	case b.Cloth != nil && len(b.Cloth.Particles) > 0:
		return b.Cloth.At(b.Cloth.Width/2, 0)
	case b.SoftBox != nil && len(b.SoftBox.Particles) > 0:
		return b.SoftBox.Particles[0]
	}
	return ecs.Entity{}
}

// afterStep runs after every fixed step.
func (g *Game) afterStep(_ int, simTime float64) {
	g.step++
	if g.outputManager == nil {
		return
	}
	pos, ok := g.scene.Position(g.tracked)
	if !ok {
		return
	}
	row := telemetry.TraceRow{Step: g.step, SimTime: simTime, X: pos.X, Y: pos.Y, Z: pos.Z}
	if err := g.outputManager.WriteTrace(row); err != nil {
		slog.Error("failed to write trace", "error", err)
	}
}

// simulate feeds dt seconds of frame time to the solver.
func (g *Game) simulate(dt float64) {
	g.frameClock += dt
	g.physics.Tick(g.world, dt, g.frameClock)
	g.collector.RecordReport(g.physics.LastReport())
}

// UpdateHeadless advances one frame of dt seconds without graphics.
func (g *Game) UpdateHeadless(dt float64) {
	g.perfCollector.StartTick()
	g.simulate(dt)
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// Reset rebuilds the scene from config, keeping tuned solver parameters.
func (g *Game) Reset() {
	g.setupWorld(g.physics)
	g.dragging = false
	if g.inspector != nil {
		g.inspector.Deselect()
	}
	slog.Info("scene reset")
}

// SetStatsCallback installs a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Physics returns the solver.
func (g *Game) Physics() *systems.PhysicsSystem {
	return g.physics
}

// Scene returns the current scene.
func (g *Game) Scene() *scene.Scene {
	return g.scene
}

// Built returns the handles created for the current scene.
func (g *Game) Built() scene.Built {
	return g.built
}

// TrackedPosition returns the position of the traced particle.
func (g *Game) TrackedPosition() (r3.Vec, bool) {
	return g.scene.Position(g.tracked)
}

// Tick returns the number of fixed steps simulated since the last reset.
func (g *Game) Tick() int32 {
	return g.step
}

// SimTime returns the simulated time in seconds.
func (g *Game) SimTime() float64 {
	return g.physics.TotalTime()
}

// Unload releases resources. The window itself is closed by the caller.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
