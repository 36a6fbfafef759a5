package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated solver statistics for a window of fixed steps.
type WindowStats struct {
	WindowStartStep int32   `csv:"-"`
	WindowEndStep   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Scene size at window end
	Particles           int `csv:"particles"`
	DistanceConstraints int `csv:"distance_constraints"`
	VolumeConstraints   int `csv:"volume_constraints"`

	// Solver events during window
	Steps               int `csv:"steps"`
	DroppedSteps        int `csv:"dropped_steps"`
	SkippedZeroMass     int `csv:"skipped_zero_mass"`
	SkippedShortEdge    int `csv:"skipped_short_edge"`
	SkippedSatisfied    int `csv:"skipped_satisfied"`
	SkippedFlatGradient int `csv:"skipped_flat_gradient"`
	SkippedDeadHandle   int `csv:"skipped_dead_handle"`
	FloorContacts       int `csv:"floor_contacts"`

	// Speed distribution of dynamic particles (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	KineticEnergy float64 `csv:"kinetic_energy"`
	MinHeight     float64 `csv:"min_height"`

	// Constraint residuals (sampled at window end)
	DistanceErrMean float64 `csv:"distance_err_mean"`
	DistanceErrP90  float64 `csv:"distance_err_p90"`
	DistanceErrMax  float64 `csv:"distance_err_max"`
	VolumeErrMean   float64 `csv:"volume_err_mean"`
	VolumeErrMax    float64 `csv:"volume_err_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeDistribution calculates mean, population std, percentiles and max.
// Returns the zero value for an empty sample.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	d.Mean, d.Std = stat.PopMeanStdDev(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	d.Max = sorted[n-1]
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartStep)),
		slog.Int("window_end", int(s.WindowEndStep)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("distance_constraints", s.DistanceConstraints),
		slog.Int("volume_constraints", s.VolumeConstraints),
		slog.Int("steps", s.Steps),
		slog.Int("dropped_steps", s.DroppedSteps),
		slog.Int("skipped_zero_mass", s.SkippedZeroMass),
		slog.Int("skipped_short_edge", s.SkippedShortEdge),
		slog.Int("skipped_satisfied", s.SkippedSatisfied),
		slog.Int("skipped_flat_gradient", s.SkippedFlatGradient),
		slog.Int("skipped_dead_handle", s.SkippedDeadHandle),
		slog.Int("floor_contacts", s.FloorContacts),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("min_height", s.MinHeight),
		slog.Float64("distance_err_mean", s.DistanceErrMean),
		slog.Float64("distance_err_p90", s.DistanceErrP90),
		slog.Float64("distance_err_max", s.DistanceErrMax),
		slog.Float64("volume_err_mean", s.VolumeErrMean),
		slog.Float64("volume_err_max", s.VolumeErrMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"steps", s.Steps,
		"dropped_steps", s.DroppedSteps,
		"skipped_zero_mass", s.SkippedZeroMass,
		"skipped_short_edge", s.SkippedShortEdge,
		"skipped_satisfied", s.SkippedSatisfied,
		"skipped_flat_gradient", s.SkippedFlatGradient,
		"skipped_dead_handle", s.SkippedDeadHandle,
		"floor_contacts", s.FloorContacts,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"kinetic_energy", s.KineticEnergy,
		"min_height", s.MinHeight,
		"distance_err_mean", s.DistanceErrMean,
		"distance_err_max", s.DistanceErrMax,
		"volume_err_max", s.VolumeErrMax,
	)
}
