package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/softbody/systems"
)

// SliderDescriptor binds a raygui slider to one tunable on the physics system.
type SliderDescriptor struct {
	Label    string
	Min, Max float32
	Format   string
	Get      func(*systems.PhysicsSystem) float64
	Set      func(*systems.PhysicsSystem, float64)
}

// PhysicsSliders returns the sliders shown in the controls panel, in order.
func PhysicsSliders() []SliderDescriptor {
	return []SliderDescriptor{
		{
			Label: "Iterations", Min: 0, Max: 100, Format: "%.0f",
			Get: func(p *systems.PhysicsSystem) float64 { return float64(p.SolverIterations) },
			Set: func(p *systems.PhysicsSystem, v float64) { p.SolverIterations = int(math.Round(v)) },
		},
		{
			Label: "Gravity Y", Min: -30, Max: 0, Format: "%.2f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.Gravity.Y },
			Set: func(p *systems.PhysicsSystem, v float64) { p.Gravity.Y = v },
		},
		{
			Label: "Wind", Min: 0, Max: 40, Format: "%.2f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.Wind.Strength },
			Set: func(p *systems.PhysicsSystem, v float64) { p.Wind.Strength = v },
		},
		{
			Label: "Gust freq", Min: 0, Max: 2, Format: "%.2f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.Wind.Frequency },
			Set: func(p *systems.PhysicsSystem, v float64) { p.Wind.Frequency = v },
		},
		{
			Label: "Turbulence", Min: 0, Max: 10, Format: "%.2f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.Wind.Turbulence },
			Set: func(p *systems.PhysicsSystem, v float64) { p.Wind.Turbulence = v },
		},
		{
			Label: "Damping", Min: 0.9, Max: 1, Format: "%.3f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.Damping },
			Set: func(p *systems.PhysicsSystem, v float64) { p.Damping = v },
		},
		{
			Label: "Floor", Min: -10, Max: 5, Format: "%.2f",
			Get: func(p *systems.PhysicsSystem) float64 { return p.FloorHeight },
			Set: func(p *systems.PhysicsSystem, v float64) { p.FloorHeight = v },
		},
	}
}

// ControlsAction reports which buttons were pressed this frame.
type ControlsAction struct {
	TogglePause bool
	Step        bool
	Reset       bool
}

// ControlsPanel renders the left-side panel with physics sliders and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	sliders  []SliderDescriptor
	x, y     int32
	width    int32
	visible  bool

	lastHeight int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		sliders:  PhysicsSliders(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the panel as last drawn.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.lastHeight)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	lineHeight := c.renderer.Theme.LineHeight
	padding := c.renderer.Theme.Padding
	h := padding*2 + lineHeight + 4
	h += int32(len(c.sliders))*sliderRowHeight + buttonRowHeight
	for _, cat := range overlays.Categories() {
		h += int32(len(overlays.ByCategory(cat))+1)*lineHeight + 4
	}
	return h
}

const (
	sliderRowHeight = 34
	buttonRowHeight = 36
)

// Draw renders the controls panel, applying slider edits to phys.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, phys *systems.PhysicsSystem, paused bool) ControlsAction {
	var action ControlsAction
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	c.lastHeight = c.height(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.lastHeight)

	x := c.x + padding
	y := c.y + padding
	inner := float32(c.width - padding*2)

	rl.DrawText("Physics", x, y, 16, rl.White)
	y += lineHeight + 4

	for _, s := range c.sliders {
		current := s.Get(phys)
		rl.DrawText(s.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		valueText := fmt.Sprintf(s.Format, current)
		valueWidth := rl.MeasureText(valueText, r.Theme.FontSize)
		rl.DrawText(valueText, x+int32(inner)-valueWidth, y, r.Theme.FontSize, r.Theme.ValueColor)

		next := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y + 14), Width: inner, Height: 14},
			"", "",
			float32(current), s.Min, s.Max,
		)
		if next != float32(current) {
			s.Set(phys, float64(next))
		}
		y += sliderRowHeight
	}

	buttonWidth := (inner - 10) / 3
	bx := float32(x)
	if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: buttonWidth, Height: 26}, toggleText(paused, "Resume", "Pause")) {
		action.TogglePause = true
	}
	bx += buttonWidth + 5
	if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: buttonWidth, Height: 26}, "Step") {
		action.Step = true
	}
	bx += buttonWidth + 5
	if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: buttonWidth, Height: 26}, "Reset") {
		action.Reset = true
	}
	y += buttonRowHeight

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			c.drawToggle(x, y, desc, enabled, c.width-padding*2)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return action
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
