package main

import (
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/softbody/config"
	"github.com/pthm-cable/softbody/scene"
	"github.com/pthm-cable/softbody/systems"
)

// FitnessEvaluator runs headless cloth drops and scores their sag.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	targetSag  float64
	settleSec  float64 // simulated time before measuring
	measureSec float64 // simulated time averaged over
	calm       bool    // disable wind during evaluation

	mu      sync.Mutex
	lastSag float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, targetSag, settleSec, measureSec float64, calm bool) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		baseConfig: baseCfg,
		targetSag:  targetSag,
		settleSec:  settleSec,
		measureSec: measureSec,
		calm:       calm,
	}
}

// LastSag returns the sag measured by the most recent evaluation.
func (fe *FitnessEvaluator) LastSag() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSag
}

// Evaluate computes fitness for raw parameter values (lower = better):
// the squared relative error between measured and target sag.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	sag := measureSag(&cfg, fe.settleSec, fe.measureSec, fe.calm)

	fe.mu.Lock()
	fe.lastSag = sag
	fe.mu.Unlock()

	if math.IsNaN(sag) {
		return math.Inf(1)
	}
	rel := (sag - fe.targetSag) / fe.targetSag
	return rel * rel
}

// measureSag hangs the configured cloth and returns how far its center
// particle has dropped, averaged over the measurement window.
func measureSag(cfg *config.Config, settleSec, measureSec float64, calm bool) float64 {
	world := ecs.NewWorld()
	sc := scene.New(world)
	c := cfg.Scene.Cloth
	cloth := sc.BuildCloth("cloth", c.Origin.R3(), c.Width, c.Height, c.Spacing, c.Compliance, c.WeldCompliance)
	if len(cloth.Particles) == 0 {
		return math.NaN()
	}

	phys := systems.NewPhysicsSystemFromConfig(world, cfg)
	if calm {
		phys.Wind.Strength = 0
	}

	center := cloth.At(c.Width/2, c.Height/2)
	start, _ := sc.Position(center)

	dt := phys.FixedStep()
	settle := int(settleSec/dt + 0.5)
	measure := int(measureSec/dt + 0.5)
	if measure < 1 {
		measure = 1
	}

	frame := 0.0
	for i := 0; i < settle; i++ {
		frame += dt
		phys.Tick(world, dt, frame)
	}

	heights := make([]float64, 0, measure)
	for i := 0; i < measure; i++ {
		frame += dt
		phys.Tick(world, dt, frame)
		pos, _ := sc.Position(center)
		heights = append(heights, pos.Y)
	}
	return start.Y - stat.Mean(heights, nil)
}
