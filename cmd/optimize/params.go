// Package main calibrates cloth compliance so the cloth sags by a target amount.
package main

import (
	"math"

	"github.com/pthm-cable/softbody/config"
)

// ParamSpec defines a single optimizable parameter.
// Compliances are searched in log10 space.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "cloth_log_compliance", Path: "scene.cloth.compliance", Min: -10, Max: -2, Default: -6},
			{Name: "weld_log_compliance", Path: "scene.cloth.weld_compliance", Min: -10, Max: -2, Default: -8},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Max(spec.Min, math.Min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Scene.Cloth.Compliance = math.Pow(10, clamped[0])
	cfg.Scene.Cloth.WeldCompliance = math.Pow(10, clamped[1])
}

// ExtractFromConfig reads current parameter values from cfg.
// Zero compliance maps to the lower bound.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	values := []float64{
		cfg.Scene.Cloth.Compliance,
		cfg.Scene.Cloth.WeldCompliance,
	}
	out := make([]float64, len(values))
	for i, c := range values {
		if c <= 0 {
			out[i] = pv.Specs[i].Min
			continue
		}
		out[i] = math.Log10(c)
	}
	return pv.Clamp(out)
}
