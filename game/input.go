package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/camera"
	"github.com/pthm-cable/softbody/renderer"
	"github.com/pthm-cable/softbody/systems"
	"github.com/pthm-cable/softbody/telemetry"
)

// Update advances one rendered frame: input, picker, solver and telemetry.
// The perf tick is closed by Draw so rendering is included.
func (g *Game) Update() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(systems.PhaseInput)
	g.handleInput()
	if g.resetPending {
		g.resetPending = false
		g.Reset()
	}

	g.perfCollector.StartPhase(systems.PhasePicker)
	g.updatePicker()

	switch {
	case g.stepOnce:
		g.stepOnce = false
		g.simulate(g.physics.FixedStep())
	case !g.paused:
		g.simulate(float64(rl.GetFrameTime()))
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		g.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.resetPending = true
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}

	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			enabled := g.overlays.Toggle(desc.ID)
			slog.Debug("overlay toggled", "overlay", string(desc.ID), "enabled", enabled)
		}
	}

	g.handleCameraInput()

	mouse := rl.GetMousePosition()
	if shiftDown() || g.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	cam := renderer.Camera3D(g.camera)
	eye := g.camera.Position()
	forward := g.camera.Forward()
	g.inspector.HandleInput(mouse.X, mouse.Y, g.scene, func(pos r3.Vec) (float32, float32, bool) {
		if r3.Dot(r3.Sub(pos, eye), forward) <= 0 {
			return 0, 0, false
		}
		p := rl.GetWorldToScreen(renderer.Vec3(pos), cam)
		return p.X, p.Y, true
	})
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.inspector.Resize(w, h)
}

// handleCameraInput orbits, pans and zooms the camera.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		delta := rl.GetMouseDelta()
		if shiftDown() {
			scale := g.camera.Distance * 0.002
			g.camera.Pan(-float64(delta.X)*scale, float64(delta.Y)*scale)
		} else {
			g.camera.Rotate(-float64(delta.X)*orbitSensitivity, float64(delta.Y)*orbitSensitivity)
		}
	}

	step := g.camera.Distance * panSpeed
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(step, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -step)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 - float64(wheel)*zoomStep)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// updatePicker drags the picker particle across its horizontal plane while
// Shift+left mouse is held.
func (g *Game) updatePicker() {
	if g.physics.MousePicker().IsZero() {
		return
	}

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && shiftDown() && !g.controls.Contains(mouse.X, mouse.Y) {
		g.dragging = true
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
	}
	if !g.dragging {
		return
	}

	ray := rl.GetScreenToWorldRay(mouse, renderer.Camera3D(g.camera))
	if pos, ok := pickerTarget(renderer.FromVec3(ray.Position), renderer.FromVec3(ray.Direction), g.cfg.Picker.PlaneHeight); ok {
		g.physics.UpdateMousePickerPosition(g.world, pos)
	}
}

// pickerTarget intersects a view ray with the horizontal plane y = height.
func pickerTarget(origin, dir r3.Vec, height float64) (r3.Vec, bool) {
	return camera.RayPlane(origin, dir, r3.Vec{Y: height}, r3.Vec{Y: 1})
}

func shiftDown() bool {
	return rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
}
