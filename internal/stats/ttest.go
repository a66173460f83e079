package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult holds a Welch's two-sample t-test outcome.
type TTestResult struct {
	TStatistic     float64 `json:"t_statistic"`
	PValue         float64 `json:"p_value"`
	DegreesFreedom float64 `json:"degrees_freedom"`
	MeanDifference float64 `json:"mean_difference"`
	Significant    bool    `json:"significant"`
}

// WelchTTest compares two groups without assuming equal variances, using
// the Welch-Satterthwaite degrees of freedom and a two-tailed p-value.
// Significance is declared at p < alpha. Each group needs at least two
// values.
func WelchTTest(group1, group2 []float64, alpha float64) (TTestResult, error) {
	if len(group1) == 0 || len(group2) == 0 {
		return TTestResult{}, ErrEmptySamples
	}
	if len(group1) < 2 || len(group2) < 2 {
		return TTestResult{}, errors.Wrap(ErrTooFewSamples, "welch t-test needs n >= 2 per group")
	}

	n1, n2 := float64(len(group1)), float64(len(group2))
	m1, m2 := mean(group1), mean(group2)
	v1, v2 := variance(group1), variance(group2)
	meanDiff := m2 - m1

	se1, se2 := v1/n1, v2/n2
	se := math.Sqrt(se1 + se2)
	if se == 0 {
		// Both groups are constant. Identical means are maximally
		// insignificant; different constant means are a certain difference.
		result := TTestResult{DegreesFreedom: n1 + n2 - 2, MeanDifference: meanDiff, PValue: 1}
		if meanDiff != 0 {
			result.TStatistic = math.Inf(sign(meanDiff))
			result.PValue = 0
			result.Significant = 0 < alpha
		}
		return result, nil
	}

	t := meanDiff / se
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	return TTestResult{
		TStatistic:     t,
		PValue:         p,
		DegreesFreedom: df,
		MeanDifference: meanDiff,
		Significant:    p < alpha,
	}, nil
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
