package config

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if math.Abs(cfg.Physics.FixedStep-1.0/60.0) > 1e-15 {
		t.Errorf("fixed_step = %v, want 1/60", cfg.Physics.FixedStep)
	}
	if cfg.Physics.SolverIterations != 40 {
		t.Errorf("solver_iterations = %d, want 40", cfg.Physics.SolverIterations)
	}
	if cfg.Physics.Gravity.Y != -9.81 || cfg.Physics.FloorHeight != -2 {
		t.Errorf("gravity=%v floor=%v", cfg.Physics.Gravity, cfg.Physics.FloorHeight)
	}
	if cfg.Wind.Strength != 16 || cfg.Wind.Frequency != 0.2 || cfg.Wind.Turbulence != 5 {
		t.Errorf("wind = %+v", cfg.Wind)
	}
	if cfg.Physics.MaxStepsPerTick != 0 {
		t.Errorf("max_steps_per_tick = %d, want 0", cfg.Physics.MaxStepsPerTick)
	}
	if math.Abs(cfg.Derived.StepsPerSecond-60) > 1e-9 {
		t.Errorf("StepsPerSecond = %v, want 60", cfg.Derived.StepsPerSecond)
	}
	if cfg.Derived.StatsWindowTick != 300 {
		t.Errorf("StatsWindowTick = %d, want 300", cfg.Derived.StatsWindowTick)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := "physics:\n  solver_iterations: 8\nwind:\n  strength: 0\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Physics.SolverIterations != 8 {
		t.Errorf("solver_iterations = %d, want 8", cfg.Physics.SolverIterations)
	}
	if cfg.Wind.Strength != 0 {
		t.Errorf("wind.strength = %v, want 0", cfg.Wind.Strength)
	}
	if cfg.Physics.Damping != 0.995 {
		t.Errorf("damping = %v, default should survive", cfg.Physics.Damping)
	}
	if cfg.Wind.Frequency != 0.2 {
		t.Errorf("wind.frequency = %v, default should survive", cfg.Wind.Frequency)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero step", "physics:\n  fixed_step: 0\n", "fixed_step"},
		{"negative iterations", "physics:\n  solver_iterations: -1\n", "solver_iterations"},
		{"negative cap", "physics:\n  max_steps_per_tick: -3\n", "max_steps_per_tick"},
		{"tiny cloth", "scene:\n  cloth:\n    width: 1\n", "cloth"},
		{"empty rod", "scene:\n  rod:\n    segments: 0\n", "segments"},
		{"bad yaml", "physics: [\n", "parsing config file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestWriteYAMLLoadsBack(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Physics.SolverIterations = 12
	cfg.Scene.SoftBox.Enabled = true

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Physics.SolverIterations != 12 || !back.Scene.SoftBox.Enabled {
		t.Errorf("round trip lost values: %+v", back.Physics)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Physics.SolverIterations != 40 {
		t.Errorf("Cfg() not initialised from defaults")
	}
}
