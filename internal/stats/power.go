package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// PowerStatus is the outcome of a post-hoc power validation.
type PowerStatus string

const (
	PowerAdequate         PowerStatus = "adequate"
	PowerInadequate       PowerStatus = "inadequate"
	PowerInsufficientData PowerStatus = "insufficient_data"
)

// PowerValidation reports whether a completed pilot had enough samples to
// detect the effect it observed.
type PowerValidation struct {
	Status         PowerStatus `json:"status"`
	ObservedEffect float64     `json:"observed_effect"`
	RequiredN      int         `json:"required_n"`
	ActualN        int         `json:"actual_n"`
}

// RequiredSampleSize computes the per-group sample size needed to detect a
// standardized effect d at the given alpha and power, via the normal
// approximation n = 2*((z_{alpha/2} + z_power)/d)^2 rounded up.
func RequiredSampleSize(d, alpha, power float64) (int, error) {
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, errors.Errorf("effect size %g has no finite sample-size requirement", d)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, errors.Errorf("alpha %g outside (0, 1)", alpha)
	}
	if power <= 0 || power >= 1 {
		return 0, errors.Errorf("power %g outside (0, 1)", power)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	zAlpha := normal.Quantile(1 - alpha/2)
	zPower := normal.Quantile(power)
	n := 2 * math.Pow((zAlpha+zPower)/math.Abs(d), 2)
	return int(math.Ceil(n)), nil
}

// ValidatePilot checks, after the fact, whether a pilot comparison carried
// enough samples for its observed effect. A missing side is an expected
// early-stage condition and yields the insufficient_data status instead of
// an error.
func ValidatePilot(group1, group2 []float64, alpha, power float64) PowerValidation {
	if len(group1) < 2 || len(group2) < 2 {
		return PowerValidation{Status: PowerInsufficientData}
	}

	effect, err := CohensD(group1, group2)
	if err != nil {
		return PowerValidation{Status: PowerInsufficientData}
	}
	actual := len(group1)
	if len(group2) < actual {
		actual = len(group2)
	}

	required, err := RequiredSampleSize(effect.D, alpha, power)
	if err != nil {
		// No measurable effect: no finite pilot can power it.
		return PowerValidation{Status: PowerInadequate, ObservedEffect: effect.D, ActualN: actual}
	}

	status := PowerAdequate
	if actual < required {
		status = PowerInadequate
	}
	return PowerValidation{
		Status:         status,
		ObservedEffect: effect.D,
		RequiredN:      required,
		ActualN:        actual,
	}
}
