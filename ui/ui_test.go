package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/softbody/systems"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	for _, id := range []OverlayID{OverlayParticles, OverlayConstraints, OverlayFloorGrid, OverlayStats} {
		if !reg.IsEnabled(id) {
			t.Errorf("%s should be enabled by default", id)
		}
	}
	for _, id := range []OverlayID{OverlayStrain, OverlayTetrahedra, OverlayWind, OverlayPerf} {
		if reg.IsEnabled(id) {
			t.Errorf("%s should be disabled by default", id)
		}
	}

	cats := reg.Categories()
	if len(cats) != 2 || cats[0] != "visual" || cats[1] != "debug" {
		t.Errorf("categories = %v", cats)
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayStrain) {
		t.Fatal("toggling strain on should report enabled")
	}
	if reg.IsEnabled(OverlayConstraints) {
		t.Error("strain should disable plain constraint lines")
	}

	reg.SetEnabled(OverlayConstraints, true)
	if reg.IsEnabled(OverlayStrain) {
		t.Error("constraints should disable strain")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyW)
	if !ok || id != OverlayWind || !on {
		t.Errorf("HandleKeyPress(W) = %v, %v, %v", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}

	enabled := reg.EnabledOverlays()
	found := false
	for _, e := range enabled {
		if e == OverlayWind {
			found = true
		}
	}
	if !found {
		t.Errorf("wind missing from enabled overlays %v", enabled)
	}
}

func TestPhysicsSlidersEditSystem(t *testing.T) {
	phys := systems.NewPhysicsSystem(ecs.NewWorld())

	for _, s := range PhysicsSliders() {
		t.Run(s.Label, func(t *testing.T) {
			mid := float64(s.Min+s.Max) / 2
			s.Set(phys, mid)
			got := s.Get(phys)
			if s.Label == "Iterations" {
				if got != 50 {
					t.Errorf("iterations = %v, want 50", got)
				}
				return
			}
			if got != mid {
				t.Errorf("got %v after setting %v", got, mid)
			}
		})
	}

	if phys.Wind.Direction != systems.DefaultWind().Direction {
		t.Error("sliders should leave the wind direction alone")
	}
}

func TestStatsPanelFields(t *testing.T) {
	data := StatsData{
		Report:      systems.StepReport{Steps: 6, SkippedShortEdge: 2},
		Iterations:  40,
		FixedStep:   0.02,
		Accumulator: 0.01,
	}
	layout := StatsPanelDescriptor()

	fields := map[string]FieldDescriptor{}
	for _, sec := range layout.Sections {
		for _, f := range sec.Fields {
			fields[f.ID] = f
		}
		if sec.ID == "skips" && !sec.Visible(data) {
			t.Error("skips section should show when constraints were skipped")
		}
	}

	if got := fields["steps"].TextGetter(data); got != "6" {
		t.Errorf("steps = %q", got)
	}
	if got := fields["short_edge"].TextGetter(data); got != "2" {
		t.Errorf("short_edge = %q", got)
	}
	if got := fields["accumulator"].Getter(data); got != 0.5 {
		t.Errorf("accumulator fill = %v, want 0.5", got)
	}
	if got := fields["accumulator"].Getter(StatsData{}); got != 0 {
		t.Errorf("accumulator fill with no step = %v, want 0", got)
	}
}

func TestAnchorPosition(t *testing.T) {
	tests := []struct {
		anchor PanelAnchor
		x, y   int32
	}{
		{AnchorTopLeft, 10, 10},
		{AnchorTopRight, 690, 10},
		{AnchorBottomLeft, 10, 490},
		{AnchorBottomRight, 690, 490},
		{AnchorCenter, 350, 250},
	}
	for _, tt := range tests {
		x, y := anchorPosition(tt.anchor, 100, 100, 800, 600, 10)
		if x != tt.x || y != tt.y {
			t.Errorf("anchor %d = (%d, %d), want (%d, %d)", tt.anchor, x, y, tt.x, tt.y)
		}
	}
}
