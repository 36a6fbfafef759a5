// Wind preview tool - interactive space-time view of the gust field with sliders.
//
// Usage: go run ./cmd/windpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/softbody/config"
	"github.com/pthm-cable/softbody/renderer"
	"github.com/pthm-cable/softbody/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 256
)

// windSlider edits one field of the wind model.
type windSlider struct {
	label    string
	min, max float32
	format   string
	get      func(w *systems.Wind) float64
	set      func(w *systems.Wind, v float64)
}

func windSliders() []windSlider {
	return []windSlider{
		{"Strength", 0, 40, "%.1f",
			func(w *systems.Wind) float64 { return w.Strength },
			func(w *systems.Wind, v float64) { w.Strength = v }},
		{"Frequency (rad/s)", 0, 2, "%.2f",
			func(w *systems.Wind) float64 { return w.Frequency },
			func(w *systems.Wind, v float64) { w.Frequency = v }},
		{"Turbulence (rad/unit x)", 0, 10, "%.2f",
			func(w *systems.Wind) float64 { return w.Turbulence },
			func(w *systems.Wind, v float64) { w.Turbulence = v }},
		{"Direction X", -1, 1, "%.2f",
			func(w *systems.Wind) float64 { return w.Direction.X },
			func(w *systems.Wind, v float64) { w.Direction.X = v }},
		{"Direction Y", -1, 1, "%.2f",
			func(w *systems.Wind) float64 { return w.Direction.Y },
			func(w *systems.Wind, v float64) { w.Direction.Y = v }},
		{"Direction Z", -1, 1, "%.2f",
			func(w *systems.Wind) float64 { return w.Direction.Z },
			func(w *systems.Wind, v float64) { w.Direction.Z = v }},
	}
}

// windFromConfig builds the wind model from cfg.
func windFromConfig(cfg *config.Config) systems.Wind {
	return systems.Wind{
		Direction:  cfg.Wind.Direction.R3(),
		Strength:   cfg.Wind.Strength,
		Frequency:  cfg.Wind.Frequency,
		Turbulence: cfg.Wind.Turbulence,
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	span := flag.Float64("span", 20, "Width of the previewed x range, in world units")
	window := flag.Float64("window", 30, "Simulated seconds shown top to bottom")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := windFromConfig(cfg)
	wind := defaults
	sliders := windSliders()

	rl.InitWindow(windowWidth, windowHeight, "Wind Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	field := make([]float64, gridSize*gridSize)
	pixels := make([]color.RGBA, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var t float64
	animating := false
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			t += float64(rl.GetFrameTime())
			needsRegen = true
		}
		if needsRegen {
			fillSpaceTime(field, wind, -*span/2, *span/2, t, *window, gridSize)
			for i, v := range field {
				pixels[i] = heatColor(v / math.Max(wind.Strength, 1e-9))
			}
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		minVal, maxVal := fieldRange(field)
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("x: %.1f .. %.1f   time: %.1f .. %.1f s", -*span/2, *span/2, t, t+*window), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Min: %.2f  Max: %.2f  (signed, along direction)", minVal, maxVal), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Wind Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			current := s.get(&wind)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf("%g", s.min), fmt.Sprintf("%g", s.max),
				float32(current), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, current), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != float32(current) {
				s.set(&wind, float64(next))
				needsRegen = true
			}
			panelY += 35
		}

		panelY += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			t = 0
			needsRegen = true
		}
		panelY += 45
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			wind = defaults
			t = 0
			needsRegen = true
		}
		panelY += 55

		text, err := windYAML(wind)
		if err != nil {
			slog.Error("failed to marshal wind", "error", err)
		}
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(text, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

// fillSpaceTime fills a size x size grid with the signed wind acceleration
// along the wind direction for a unit-mass particle. Columns span [x0, x1];
// rows span window seconds starting at t0.
func fillSpaceTime(grid []float64, w systems.Wind, x0, x1, t0, window float64, size int) {
	row := make([]float64, 0, size)
	for y := 0; y < size; y++ {
		t := t0 + window*float64(y)/float64(size)
		row = renderer.WindSamples(row, w, t, x0, x1, size)
		copy(grid[y*size:(y+1)*size], row)
	}
}

func fieldRange(field []float64) (minVal, maxVal float64) {
	if len(field) == 0 {
		return 0, 0
	}
	minVal, maxVal = field[0], field[0]
	for _, v := range field[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// heatColor maps v in [-1, 1] to blue (against the wind direction),
// white (calm) or red (with it).
func heatColor(v float64) color.RGBA {
	v = math.Max(-1, math.Min(1, v))
	fade := uint8(255 * (1 - math.Abs(v)))
	if v >= 0 {
		return color.RGBA{R: 255, G: fade, B: fade, A: 255}
	}
	return color.RGBA{R: fade, G: fade, B: 255, A: 255}
}

// windYAML renders w as a config snippet.
func windYAML(w systems.Wind) (string, error) {
	doc := struct {
		Wind config.WindConfig `yaml:"wind"`
	}{
		Wind: config.WindConfig{
			Direction:  vec3(w.Direction),
			Strength:   w.Strength,
			Frequency:  w.Frequency,
			Turbulence: w.Turbulence,
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling wind: %w", err)
	}
	return string(data), nil
}

func vec3(v r3.Vec) config.Vec3 {
	return config.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
