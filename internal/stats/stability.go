package stats

import "math"

// Risk classifies how much run-to-run variance an implementation shows.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskModerate Risk = "moderate"
	RiskHigh     Risk = "high"
)

// Stability-score boundaries on the fraction of low-variance configurations.
const (
	lowRiskScore      = 0.8
	moderateRiskScore = 0.5
)

// ConsistencyTie is returned when neither implementation is meaningfully
// more consistent than the other.
const ConsistencyTie = "tie"

const consistencyEpsilon = 1e-9

// StabilityMetrics aggregates variance behavior across every (task, scale)
// configuration of one implementation.
type StabilityMetrics struct {
	Implementation    string  `json:"implementation"`
	MeanCV            float64 `json:"mean_cv"`
	HighVarianceCount int     `json:"high_variance_count"`
	StabilityScore    float64 `json:"stability_score"`
	RiskLevel         Risk    `json:"risk_level"`
}

// Stability scores one implementation from the per-configuration
// coefficients of variation: the score is the fraction of configurations
// below the high-variance threshold.
func Stability(implementation string, cvs []float64) (StabilityMetrics, error) {
	if len(cvs) == 0 {
		return StabilityMetrics{}, ErrEmptySamples
	}

	stable := 0
	highVariance := 0
	for _, cv := range cvs {
		if cv > HighVarianceCV {
			highVariance++
		} else {
			stable++
		}
	}
	score := float64(stable) / float64(len(cvs))

	risk := RiskHigh
	switch {
	case score >= lowRiskScore:
		risk = RiskLow
	case score >= moderateRiskScore:
		risk = RiskModerate
	}

	return StabilityMetrics{
		Implementation:    implementation,
		MeanCV:            mean(cvs),
		HighVarianceCount: highVariance,
		StabilityScore:    score,
		RiskLevel:         risk,
	}, nil
}

// ConsistencyWinner names the implementation with the lower mean CV, or
// ConsistencyTie when the difference is below epsilon.
func ConsistencyWinner(a, b StabilityMetrics) string {
	diff := a.MeanCV - b.MeanCV
	if math.Abs(diff) < consistencyEpsilon {
		return ConsistencyTie
	}
	if diff < 0 {
		return a.Implementation
	}
	return b.Implementation
}
