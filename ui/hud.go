package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/softbody/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title               string
	Particles           int
	Bodies              int
	DistanceConstraints int
	VolumeConstraints   int
	Step                int
	SimTime             float64
	FPS                 int32
	Paused              bool
	Picking             bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Bodies: %d | Links: %d | Tets: %d",
			data.Particles, data.Bodies, data.DistanceConstraints, data.VolumeConstraints),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Step: %d | Time: %.2fs | FPS: %d", data.Step, data.SimTime, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Picking {
		statusText += " | dragging picker"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsData is what the solver stats panel displays.
type StatsData struct {
	Report         systems.StepReport
	Iterations     int
	FixedStep      float64
	Accumulator    float64
	DistanceErrMax float64
	VolumeErrMax   float64
	KineticEnergy  float64
}

// StatsPanelDescriptor lays out the solver stats panel.
func StatsPanelDescriptor() PanelDescriptor {
	report := func(f func(systems.StepReport) int) func(any) string {
		return func(d any) string { return fmt.Sprintf("%d", f(d.(StatsData).Report)) }
	}
	return PanelDescriptor{
		ID:     "solver_stats",
		Title:  "Solver",
		Width:  230,
		Anchor: AnchorBottomRight,
		Sections: []SectionDescriptor{
			{
				ID:    "frame",
				Title: "Last frame",
				Fields: []FieldDescriptor{
					{ID: "steps", Label: "Steps", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.Steps })},
					{ID: "dropped", Label: "Dropped", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.DroppedSteps })},
					{ID: "iterations", Label: "Iters", Widget: WidgetText, TextGetter: func(d any) string { return fmt.Sprintf("%d", d.(StatsData).Iterations) }},
					{ID: "accumulator", Label: "Accum", Widget: WidgetBar, Getter: func(d any) float32 {
						sd := d.(StatsData)
						if sd.FixedStep <= 0 {
							return 0
						}
						return float32(sd.Accumulator / sd.FixedStep)
					}},
					{ID: "floor", Label: "Floor", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.FloorContacts })},
				},
			},
			{
				ID:    "skips",
				Title: "Skipped",
				Visible: func(d any) bool {
					return d.(StatsData).Report.Skipped() > 0
				},
				Fields: []FieldDescriptor{
					{ID: "zero_mass", Label: "Static", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.SkippedZeroMass })},
					{ID: "short_edge", Label: "Short", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.SkippedShortEdge })},
					{ID: "satisfied", Label: "At rest", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.SkippedSatisfied })},
					{ID: "flat", Label: "Flat", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.SkippedFlatGradient })},
					{ID: "dead", Label: "Dead", Widget: WidgetText, TextGetter: report(func(r systems.StepReport) int { return r.SkippedDeadHandle })},
				},
			},
			{
				ID:    "residuals",
				Title: "Residuals",
				Fields: []FieldDescriptor{
					{ID: "dist_err", Label: "Edge max", Widget: WidgetText, Format: "%.2e", Getter: func(d any) float32 { return float32(d.(StatsData).DistanceErrMax) }},
					{ID: "vol_err", Label: "Vol max", Widget: WidgetText, Format: "%.2e", Getter: func(d any) float32 { return float32(d.(StatsData).VolumeErrMax) }},
					{ID: "ke", Label: "KE", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 { return float32(d.(StatsData).KineticEnergy) }},
				},
			},
		},
	}
}

// StatsPanel renders solver statistics from a descriptor.
type StatsPanel struct {
	renderer *Renderer
	layout   PanelDescriptor
}

// NewStatsPanel creates a stats panel.
func NewStatsPanel() *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		layout:   StatsPanelDescriptor(),
	}
}

// Draw renders the panel anchored inside a screen of the given size.
func (s *StatsPanel) Draw(data StatsData, screenWidth, screenHeight int32) {
	r := s.renderer
	height := s.height(data)
	x, y := anchorPosition(s.layout.Anchor, s.layout.Width, height, screenWidth, screenHeight, r.Theme.Padding)

	r.DrawPanel(x, y, s.layout.Width, height)
	cy := y + r.Theme.Padding
	rl.DrawText(s.layout.Title, x+r.Theme.Padding, cy, 16, rl.White)
	cy += r.Theme.LineHeight + 4
	for _, sec := range s.layout.Sections {
		cy = r.DrawSection(x+r.Theme.Padding, cy, sec, data, s.layout.Width-2*r.Theme.Padding)
	}
}

func (s *StatsPanel) height(data StatsData) int32 {
	t := s.renderer.Theme
	h := t.Padding*2 + t.LineHeight + 4
	for _, sec := range s.layout.Sections {
		if sec.Visible != nil && !sec.Visible(data) {
			continue
		}
		h += t.LineHeight + 4
		for _, f := range sec.Fields {
			h += t.LineHeight
			if f.Widget == WidgetBar {
				h += 2
			}
		}
	}
	return h
}

// anchorPosition returns the top-left corner of a panel placed at anchor.
func anchorPosition(anchor PanelAnchor, w, h, screenW, screenH, margin int32) (int32, int32) {
	switch anchor {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomLeft:
		return margin, screenH - h - margin
	case AnchorBottomRight:
		return screenW - w - margin, screenH - h - margin
	case AnchorCenter:
		return (screenW - w) / 2, (screenH - h) / 2
	default:
		return margin, margin
	}
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	SystemTimes map[string]time.Duration
	Total       time.Duration
	Registry    *systems.SystemRegistry
}

// PerfPanel renders the system performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData, sortedNames []string) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for i, name := range sortedNames {
		if i >= 12 {
			break
		}

		avg := data.SystemTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		// Use registry to get display name if available
		displayName := name
		if data.Registry != nil {
			displayName = data.Registry.GetName(name)
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %6s %5.1f%%", displayName, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
