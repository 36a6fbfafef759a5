package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/softbody/renderer"
	"github.com/pthm-cable/softbody/systems"
	"github.com/pthm-cable/softbody/ui"
)

var backgroundColor = rl.Color{R: 18, G: 20, B: 26, A: 255}

// Draw renders the scene and UI, then closes the perf tick opened by Update.
func (g *Game) Draw() {
	g.perfCollector.StartPhase(systems.PhaseRender)
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.drawWorld()
	rl.EndMode3D()

	g.drawUI()

	g.perfCollector.EndTick()
	rl.EndDrawing()
}

// drawWorld renders the enabled 3D overlays. Must be called inside BeginMode3D.
func (g *Game) drawWorld() {
	o := g.overlays
	if o.IsEnabled(ui.OverlayFloorGrid) {
		g.environment.DrawFloor(g.physics.FloorHeight)
	}
	if o.IsEnabled(ui.OverlayPickPlane) {
		g.environment.DrawPickPlane(g.cfg.Picker.PlaneHeight)
	}
	if o.IsEnabled(ui.OverlayWind) {
		g.environment.DrawWind(g.physics.Wind, g.physics.TotalTime(), g.physics.FloorHeight+windArrowLift)
	}
	if o.IsEnabled(ui.OverlayTetrahedra) {
		g.links.DrawTetrahedra(g.scene)
	}
	if strain := o.IsEnabled(ui.OverlayStrain); strain || o.IsEnabled(ui.OverlayConstraints) {
		g.links.DrawLinks(g.scene, strain)
	}
	if o.IsEnabled(ui.OverlayParticles) {
		selected, ok := g.inspector.Selected()
		if !ok {
			selected = ecs.Entity{}
		}
		g.particles.Draw(g.scene, g.physics.MousePicker(), selected)
	}
}

// drawUI renders the 2D HUD and panels.
func (g *Game) drawUI() {
	particles, bodies, distance, volume := g.scene.Counts()
	g.hud.Draw(ui.HUDData{
		Title:               Title,
		Particles:           particles,
		Bodies:              bodies,
		DistanceConstraints: distance,
		VolumeConstraints:   volume,
		Step:                int(g.step),
		SimTime:             g.physics.TotalTime(),
		FPS:                 rl.GetFPS(),
		Paused:              g.paused,
		Picking:             g.dragging,
	})
	g.hud.DrawControls(g.screenWidth, g.screenHeight, controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.Draw(g.statsData(), g.screenWidth, g.screenHeight)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		perf := g.perfCollector.Stats()
		g.perfPanel.SetPosition(g.perfPanelX(), 110)
		g.perfPanel.Draw(ui.PerfPanelData{
			SystemTimes: perf.PhaseAvg,
			Total:       totalDuration(perf.PhaseAvg),
			Registry:    g.registry,
		}, sortedPhases(perf.PhaseAvg))
	}

	g.applyControls(g.controls.Draw(g.overlays, g.physics, g.paused))
	g.inspector.Draw(g.scene)
}

// perfPanelX places the perf panel beside the controls panel when it is open.
func (g *Game) perfPanelX() int32 {
	if g.controls.IsVisible() {
		return 260
	}
	return 10
}

// statsData assembles the solver stats panel contents.
func (g *Game) statsData() ui.StatsData {
	return ui.StatsData{
		Report:         g.physics.LastReport(),
		Iterations:     g.physics.SolverIterations,
		FixedStep:      g.physics.FixedStep(),
		Accumulator:    g.physics.Accumulator(),
		DistanceErrMax: g.lastStats.DistanceErrMax,
		VolumeErrMax:   g.lastStats.VolumeErrMax,
		KineticEnergy:  g.lastStats.KineticEnergy,
	}
}

// applyControls handles button presses from the controls panel.
// Step and reset take effect on the next Update.
func (g *Game) applyControls(action ui.ControlsAction) {
	if action.TogglePause {
		g.paused = !g.paused
	}
	if action.Step {
		g.paused = true
		g.stepOnce = true
	}
	if action.Reset {
		g.resetPending = true
	}
}
