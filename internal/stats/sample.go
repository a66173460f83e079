// Package stats turns raw benchmark sample sets into outlier-filtered
// statistics, significance tests, effect sizes, stability scores and
// categorical recommendations. Every function is pure; concurrent calls on
// disjoint sample sets need no synchronization.
package stats

import "github.com/pkg/errors"

// MinValidSamples is the minimum sample count a configuration must retain
// after outlier removal to be comparable.
const MinValidSamples = 30

var (
	// ErrEmptySamples marks a statistic requested over zero values.
	ErrEmptySamples = errors.New("empty sample set")
	// ErrTooFewSamples marks a comparison with fewer than MinValidSamples
	// values after outlier filtering.
	ErrTooFewSamples = errors.New("too few valid samples")
)

// Sample is one raw observation collected by the orchestrator.
type Sample struct {
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	MemoryMB        float64 `json:"memory_mb"`
}

// SampleSet is the ordered observation sequence for one
// (task, scale, implementation) triple. It is created by the orchestrator,
// consumed once here, and never mutated.
type SampleSet struct {
	Task           string   `json:"task"`
	Scale          string   `json:"scale"`
	Implementation string   `json:"implementation"`
	Samples        []Sample `json:"samples"`
}

// Times extracts the execution-time series.
func (s SampleSet) Times() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.ExecutionTimeMs
	}
	return out
}

// Memories extracts the memory series.
func (s SampleSet) Memories() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.MemoryMB
	}
	return out
}
