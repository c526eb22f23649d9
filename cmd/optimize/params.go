package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/pthm-cable/moodbiome/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // rounded before use

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Interaction
			{
				Name: "repulsion", Path: "interaction.repulsion", Min: 0.0001, Max: 0.005, Default: 0.001,
				get: func(c *config.Config) float64 { return c.Interaction.Repulsion },
				set: func(c *config.Config, v float64) { c.Interaction.Repulsion = v },
			},
			{
				Name: "cross_penalty", Path: "interaction.cross_penalty", Min: 1, Max: 10, Default: 5, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Interaction.CrossPenalty) },
				set: func(c *config.Config, v float64) { c.Interaction.CrossPenalty = int(v) },
			},
			{
				Name: "kin_bonus", Path: "interaction.kin_bonus", Min: 0, Max: 5, Default: 2, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Interaction.KinBonus) },
				set: func(c *config.Config, v float64) { c.Interaction.KinBonus = int(v) },
			},
			{
				Name: "evolve_chance", Path: "interaction.evolve_chance", Min: 0, Max: 0.005, Default: 0.001,
				get: func(c *config.Config) float64 { return c.Interaction.EvolveChance },
				set: func(c *config.Config, v float64) { c.Interaction.EvolveChance = v },
			},
			// Entity
			{
				Name: "lifespan", Path: "entity.lifespan", Min: 300, Max: 2000, Default: 1000, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Entity.Lifespan) },
				set: func(c *config.Config, v float64) { c.Entity.Lifespan = int(v) },
			},
			{
				Name: "size_decay", Path: "entity.size_decay", Min: 0.995, Max: 1.0, Default: 0.999,
				get: func(c *config.Config) float64 { return c.Entity.SizeDecay },
				set: func(c *config.Config, v float64) { c.Entity.SizeDecay = v },
			},
			// Input
			{
				Name: "move_spawn_chance", Path: "input.move_spawn_chance", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Input.MoveSpawnChance },
				set: func(c *config.Config, v float64) { c.Input.MoveSpawnChance = v },
			},
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

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}

// Format renders clamped values as space-separated name=value pairs.
func (pv *ParamVector) Format(values []float64) string {
	parts := make([]string, len(pv.Specs))
	for i, v := range pv.Clamp(values) {
		parts[i] = fmt.Sprintf("%s=%g", pv.Specs[i].Name, v)
	}
	return strings.Join(parts, " ")
}
