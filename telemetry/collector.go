package telemetry

import "github.com/pthm-cable/softbody/systems"

// Collector accumulates solver reports within step windows and produces WindowStats.
type Collector struct {
	windowDurationSteps int32
	dt                  float64

	// Current window tracking
	windowStartStep int32

	// Event counters for current window
	steps               int
	droppedSteps        int
	skippedZeroMass     int
	skippedShortEdge    int
	skippedSatisfied    int
	skippedFlatGradient int
	skippedDeadHandle   int
	floorContacts       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per fixed step (used for step-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	stepsPerWindow := int32(windowDurationSec/dt + 0.5)
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	return &Collector{
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
	}
}

// RecordReport adds the counters from one Tick's report.
func (c *Collector) RecordReport(r systems.StepReport) {
	c.steps += r.Steps
	c.droppedSteps += r.DroppedSteps
	c.skippedZeroMass += r.SkippedZeroMass
	c.skippedShortEdge += r.SkippedShortEdge
	c.skippedSatisfied += r.SkippedSatisfied
	c.skippedFlatGradient += r.SkippedFlatGradient
	c.skippedDeadHandle += r.SkippedDeadHandle
	c.floorContacts += r.FloorContacts
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int32) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces a WindowStats from the accumulated counters and a scene
// sample taken at currentStep, then resets counters for the next window.
func (c *Collector) Flush(currentStep int32, sample Sample) WindowStats {
	speed := ComputeDistribution(sample.Speeds)
	distErr := ComputeDistribution(sample.DistanceErrors)
	volErr := ComputeDistribution(sample.VolumeErrors)

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * c.dt,

		Particles:           sample.Particles,
		DistanceConstraints: len(sample.DistanceErrors),
		VolumeConstraints:   len(sample.VolumeErrors),

		Steps:               c.steps,
		DroppedSteps:        c.droppedSteps,
		SkippedZeroMass:     c.skippedZeroMass,
		SkippedShortEdge:    c.skippedShortEdge,
		SkippedSatisfied:    c.skippedSatisfied,
		SkippedFlatGradient: c.skippedFlatGradient,
		SkippedDeadHandle:   c.skippedDeadHandle,
		FloorContacts:       c.floorContacts,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		KineticEnergy: sample.KineticEnergy,
		MinHeight:     sample.MinHeight,

		DistanceErrMean: distErr.Mean,
		DistanceErrP90:  distErr.P90,
		DistanceErrMax:  distErr.Max,
		VolumeErrMean:   volErr.Mean,
		VolumeErrMax:    volErr.Max,
	}

	// Reset for next window
	c.windowStartStep = currentStep
	c.steps = 0
	c.droppedSteps = 0
	c.skippedZeroMass = 0
	c.skippedShortEdge = 0
	c.skippedSatisfied = 0
	c.skippedFlatGradient = 0
	c.skippedDeadHandle = 0
	c.floorContacts = 0

	return stats
}

// WindowDurationSteps returns the number of fixed steps per window.
func (c *Collector) WindowDurationSteps() int32 {
	return c.windowDurationSteps
}
