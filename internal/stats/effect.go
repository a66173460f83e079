package stats

import (
	"math"

	"github.com/pkg/errors"
)

// Magnitude classifies the absolute size of a standardized effect.
type Magnitude string

const (
	Negligible Magnitude = "negligible"
	Small      Magnitude = "small"
	Medium     Magnitude = "medium"
	Large      Magnitude = "large"
)

// Effect-size thresholds on |d|.
const (
	smallEffect  = 0.3
	mediumEffect = 0.6
	largeEffect  = 1.0
)

// EffectSizeResult holds a Cohen's d computation.
type EffectSizeResult struct {
	D         float64   `json:"d"`
	PooledStd float64   `json:"pooled_std"`
	Magnitude Magnitude `json:"magnitude"`
}

// CohensD computes the standardized mean difference
// (mean2 - mean1) / pooledStd with the pooled standard deviation over both
// groups. Each group needs at least two values.
func CohensD(group1, group2 []float64) (EffectSizeResult, error) {
	if len(group1) == 0 || len(group2) == 0 {
		return EffectSizeResult{}, ErrEmptySamples
	}
	if len(group1) < 2 || len(group2) < 2 {
		return EffectSizeResult{}, errors.Wrap(ErrTooFewSamples, "cohen's d needs n >= 2 per group")
	}

	n1, n2 := float64(len(group1)), float64(len(group2))
	v1, v2 := variance(group1), variance(group2)
	pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	diff := mean(group2) - mean(group1)

	var d float64
	switch {
	case pooled != 0:
		d = diff / pooled
	case diff != 0:
		// Two distinct constants: the effect is unbounded.
		d = math.Inf(sign(diff))
	}

	return EffectSizeResult{D: d, PooledStd: pooled, Magnitude: ClassifyEffect(d)}, nil
}

// ClassifyEffect maps |d| onto the magnitude scale.
func ClassifyEffect(d float64) Magnitude {
	abs := math.Abs(d)
	switch {
	case abs >= largeEffect:
		return Large
	case abs >= mediumEffect:
		return Medium
	case abs >= smallEffect:
		return Small
	default:
		return Negligible
	}
}
