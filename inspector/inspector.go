package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/scene"
)

// Panel dimensions
const (
	PanelWidth   = 340
	PanelPadding = 10
	HeaderHeight = 30

	pickRadius = 12 // screen pixels
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Projector maps a world position to the screen. ok is false when the point
// is behind the camera.
type Projector func(pos r3.Vec) (x, y float32, ok bool)

// Candidate is a particle's projected screen position.
type Candidate struct {
	Entity ecs.Entity
	X, Y   float32
}

// Nearest returns the candidate closest to (mx, my) within radius pixels.
func Nearest(mx, my float32, candidates []Candidate, radius float32) (ecs.Entity, bool) {
	var closest ecs.Entity
	closestDist := radius * radius
	found := false
	for _, c := range candidates {
		dx := mx - c.X
		dy := my - c.Y
		dist := dx*dx + dy*dy
		if dist <= closestDist {
			closest = c.Entity
			closestDist = dist
			found = true
		}
	}
	return closest, found
}

// Inspector manages particle selection and panel rendering.
type Inspector struct {
	selected     ecs.Entity
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32

	candidates []Candidate
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	return &Inspector{
		panelX:       screenWidth - PanelWidth - 10,
		panelY:       10,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
	}
}

// Resize keeps the panel anchored to the right edge after a window resize.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
}

// HandleInput processes click detection for particle selection.
// It returns true when the click was consumed by the panel or a selection.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, sc *scene.Scene, project Projector) bool {
	// Right click or Escape to deselect
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return false
	}

	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return false
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return true
		}

		// Clicks inside the panel are ignored
		if int32(mouseX) >= ins.panelX && int32(mouseX) <= ins.panelX+PanelWidth &&
			int32(mouseY) >= ins.panelY && int32(mouseY) <= ins.panelY+ins.panelHeight() {
			return true
		}
	}

	ins.candidates = ins.candidates[:0]
	sc.EachParticle(func(e ecs.Entity, tr *components.Transform, _ *components.Particle) {
		if x, y, ok := project(tr.Position); ok {
			ins.candidates = append(ins.candidates, Candidate{Entity: e, X: x, Y: y})
		}
	})

	if e, ok := Nearest(mouseX, mouseY, ins.candidates, pickRadius); ok {
		ins.selected = e
		ins.hasSelected = true
		return true
	}
	return false
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected particle.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the inspector panel if a particle is selected.
func (ins *Inspector) Draw(sc *scene.Scene) {
	if !ins.hasSelected {
		return
	}

	tr, p := sc.Particle(ins.selected)
	if tr == nil {
		// Particle was removed
		ins.Deselect()
		return
	}

	panelHeight := ins.panelHeight()

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	kind := "dynamic"
	if p.IsStatic() {
		kind = "static"
	}
	rl.DrawText(fmt.Sprintf("Entity: %d  (%s)", ins.selected.ID(), kind), x, y, 14, ColorHeaderText)
	y += 22

	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	ins.drawSectionHeader(x, y, "TRANSFORM")
	y += 20
	for _, f := range ExtractFields(tr) {
		y += DrawField(x, y, f)
	}

	ins.drawSectionHeader(x, y, "PARTICLE")
	y += 20
	for _, f := range ExtractFields(p) {
		y += DrawField(x, y, f)
	}

	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	ins.drawSectionHeader(x, y, "CONSTRAINTS")
	y += 20
	sc.EachBody(func(_ ecs.Entity, name string, body *components.DeformableBody) {
		dist, vol := countReferences(body, ins.selected)
		if dist == 0 && vol == 0 {
			return
		}
		if name == "" {
			name = "(unnamed)"
		}
		y += DrawLabel(x, y, name, fmt.Sprintf("%d distance, %d volume", dist, vol), nil)
	})
}

// countReferences counts constraints in body that reference e.
func countReferences(body *components.DeformableBody, e ecs.Entity) (dist, vol int) {
	for _, c := range body.DistanceConstraints {
		if c.P1 == e || c.P2 == e {
			dist++
		}
	}
	for _, c := range body.VolumeConstraints {
		if c.P1 == e || c.P2 == e || c.P3 == e || c.P4 == e {
			vol++
		}
	}
	return dist, vol
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight computes the panel height.
func (ins *Inspector) panelHeight() int32 {
	height := HeaderHeight + PanelPadding // header
	height += 22                           // entity line
	height += 8                            // separator
	height += 20 + 18*2                    // transform
	height += 20 + 18*2 + 20               // particle
	height += 12                           // separator
	height += 20 + 20*3                    // constraints
	height += PanelPadding
	return int32(height)
}
