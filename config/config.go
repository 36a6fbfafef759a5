// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Wind      WindConfig      `yaml:"wind"`
	Picker    PickerConfig    `yaml:"picker"`
	Camera    CameraConfig    `yaml:"camera"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML-friendly three component vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// R3 converts to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds solver parameters.
type PhysicsConfig struct {
	FixedStep        float64 `yaml:"fixed_step"`         // seconds per simulation step
	SolverIterations int     `yaml:"solver_iterations"`  // constraint passes per step
	Gravity          Vec3    `yaml:"gravity"`            // m/s^2
	FloorHeight      float64 `yaml:"floor_height"`       // ground plane y
	Damping          float64 `yaml:"damping"`            // velocity multiplier per step
	MaxStepsPerTick  int     `yaml:"max_steps_per_tick"` // 0 = unbounded catch-up
}

// WindConfig holds the procedural gust model parameters.
type WindConfig struct {
	Direction  Vec3    `yaml:"direction"`
	Strength   float64 `yaml:"strength"`
	Frequency  float64 `yaml:"frequency"`  // radians per simulated second
	Turbulence float64 `yaml:"turbulence"` // phase shift per unit of x
}

// PickerConfig holds mouse-picker interaction parameters.
type PickerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	PlaneHeight float64 `yaml:"plane_height"` // y of the horizontal drag plane
	Start       Vec3    `yaml:"start"`
	Scale       float64 `yaml:"scale"`
}

// CameraConfig holds the initial orbit camera placement.
type CameraConfig struct {
	Target   Vec3    `yaml:"target"`
	Distance float64 `yaml:"distance"`
	Yaw      float64 `yaml:"yaw"`   // radians
	Pitch    float64 `yaml:"pitch"` // radians
	FOV      float64 `yaml:"fov"`   // degrees
}

// SceneConfig describes the sandbox scene.
type SceneConfig struct {
	Rod     RodConfig     `yaml:"rod"`
	Cloth   ClothConfig   `yaml:"cloth"`
	SoftBox SoftBoxConfig `yaml:"soft_box"`
}

// RodConfig describes a chain of particles pinned at Start.
type RodConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Start      Vec3    `yaml:"start"`
	End        Vec3    `yaml:"end"`
	Segments   int     `yaml:"segments"`
	Compliance float64 `yaml:"compliance"`
}

// ClothConfig describes a rectangular cloth welded to two anchors.
type ClothConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Origin         Vec3    `yaml:"origin"`
	Width          int     `yaml:"width"`  // particles along x
	Height         int     `yaml:"height"` // particles along y
	Spacing        float64 `yaml:"spacing"`
	Compliance     float64 `yaml:"compliance"`      // structural edges
	WeldCompliance float64 `yaml:"weld_compliance"` // anchor welds
}

// SoftBoxConfig describes a cube split into tetrahedra with volume constraints.
type SoftBoxConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Origin           Vec3    `yaml:"origin"`
	Size             float64 `yaml:"size"`
	EdgeCompliance   float64 `yaml:"edge_compliance"`
	VolumeCompliance float64 `yaml:"volume_compliance"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of simulated time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StepsPerSecond  float64 // 1 / Physics.FixedStep
	StatsWindowTick int     // Telemetry.StatsWindow in fixed steps
	ScreenW32       float32
	ScreenH32       float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the solver cannot run with at all.
// Zero solver iterations are allowed; the physics tick treats them as a no-op.
func (c *Config) validate() error {
	if c.Physics.FixedStep <= 0 {
		return fmt.Errorf("physics.fixed_step must be positive, got %g", c.Physics.FixedStep)
	}
	if c.Physics.SolverIterations < 0 {
		return fmt.Errorf("physics.solver_iterations must not be negative, got %d", c.Physics.SolverIterations)
	}
	if c.Physics.MaxStepsPerTick < 0 {
		return fmt.Errorf("physics.max_steps_per_tick must not be negative, got %d", c.Physics.MaxStepsPerTick)
	}
	if c.Scene.Cloth.Enabled && (c.Scene.Cloth.Width < 2 || c.Scene.Cloth.Height < 2) {
		return fmt.Errorf("scene.cloth needs at least 2x2 particles, got %dx%d", c.Scene.Cloth.Width, c.Scene.Cloth.Height)
	}
	if c.Scene.Rod.Enabled && c.Scene.Rod.Segments < 1 {
		return fmt.Errorf("scene.rod.segments must be at least 1, got %d", c.Scene.Rod.Segments)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.StepsPerSecond = 1 / c.Physics.FixedStep
	c.Derived.StatsWindowTick = int(c.Telemetry.StatsWindow*c.Derived.StepsPerSecond + 0.5)
	if c.Derived.StatsWindowTick < 1 {
		c.Derived.StatsWindowTick = 1
	}
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
