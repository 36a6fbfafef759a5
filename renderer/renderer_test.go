package renderer

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/softbody/camera"
	"github.com/pthm-cable/softbody/components"
	"github.com/pthm-cable/softbody/systems"
)

func TestVec3RoundTrip(t *testing.T) {
	v := r3.Vec{X: 1.5, Y: -2, Z: 0.25}
	if got := FromVec3(Vec3(v)); got != v {
		t.Errorf("round trip = %v, want %v", got, v)
	}
}

func TestCamera3D(t *testing.T) {
	cam := camera.New(r3.Vec{X: 1, Y: 2, Z: 3}, 10, 0, 0, 60)
	c3 := Camera3D(cam)

	if c3.Target.X != 1 || c3.Target.Y != 2 || c3.Target.Z != 3 {
		t.Errorf("target = %v", c3.Target)
	}
	if c3.Position.Z != 13 {
		t.Errorf("position = %v, want z 13", c3.Position)
	}
	if c3.Fovy != 60 || c3.Up.Y != 1 {
		t.Errorf("fovy = %v, up = %v", c3.Fovy, c3.Up)
	}
}

func TestParticleColor(t *testing.T) {
	static := &components.Particle{}
	dynamic := &components.Particle{InverseMass: 1}

	tests := []struct {
		name     string
		p        *components.Particle
		picker   bool
		selected bool
		want     string
	}{
		{"dynamic", dynamic, false, false, "dynamic"},
		{"static", static, false, false, "static"},
		{"picker", static, true, false, "picker"},
		{"selected wins", static, true, true, "selected"},
	}
	colors := map[string]rl.Color{
		"dynamic":  ColorDynamic,
		"static":   ColorStatic,
		"picker":   ColorPicker,
		"selected": ColorSelected,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParticleColor(tt.p, tt.picker, tt.selected); got != colors[tt.want] {
				t.Errorf("color = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestStrainColor(t *testing.T) {
	rest := StrainColor(0)
	if rest.R != 255 || rest.G != 255 || rest.B != 255 {
		t.Errorf("rest color = %v, want white", rest)
	}
	stretched := StrainColor(0.5)
	if stretched.R != 255 || stretched.G != 0 || stretched.B != 0 {
		t.Errorf("saturated stretch = %v, want red", stretched)
	}
	compressed := StrainColor(-0.05)
	if compressed.B != 255 || compressed.R >= 255 || compressed.R == 0 {
		t.Errorf("half compression = %v, want light blue", compressed)
	}
}

func TestVolumeColor(t *testing.T) {
	rest := VolumeColor(0)
	lost := VolumeColor(-1)
	if rest.G <= lost.G || rest.R >= lost.R {
		t.Errorf("rest %v should be greener than collapsed %v", rest, lost)
	}
	if rest.A == 255 {
		t.Error("tetrahedra should be translucent")
	}
}

func TestBodyColorCycles(t *testing.T) {
	if BodyColor(0) != BodyColor(len(bodyPalette)) {
		t.Error("palette should cycle")
	}
	if BodyColor(0) == BodyColor(1) {
		t.Error("adjacent bodies should differ")
	}
}

func TestWindSamples(t *testing.T) {
	w := systems.Wind{Direction: r3.Vec{X: 1}, Strength: 2, Frequency: 0, Turbulence: math.Pi / 2}

	samples := WindSamples(nil, w, 0, 0, 3, 4)
	// sin(x*pi/2) at x = 0, 1, 2, 3
	want := []float64{0, 2, 0, -2}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if math.Abs(samples[i]-want[i]) > 1e-9 {
			t.Errorf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}

	// Buffer is reused
	again := WindSamples(samples, w, 0, 0, 3, 2)
	if len(again) != 2 || &again[0] != &samples[0] {
		t.Error("WindSamples should reuse dst")
	}
}
