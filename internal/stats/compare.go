package stats

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Level is the categorical weight a comparison's winner should carry.
type Level string

const (
	Strong   Level = "strong"
	Moderate Level = "moderate"
	Weak     Level = "weak"
	Neutral  Level = "neutral"
	Tradeoff Level = "tradeoff"
)

// Thresholds holds the tunable significance parameters. MinSamples below
// MinValidSamples is raised to that floor.
type Thresholds struct {
	Alpha      float64
	Power      float64
	MinSamples int
}

// DefaultThresholds matches the conventional 0.05/0.8 setup.
func DefaultThresholds() Thresholds {
	return Thresholds{Alpha: 0.05, Power: 0.8, MinSamples: MinValidSamples}
}

func (t Thresholds) minSamples() int {
	if t.MinSamples < MinValidSamples {
		return MinValidSamples
	}
	return t.MinSamples
}

// MetricComparison compares one metric (time or memory) across the two
// implementations.
type MetricComparison struct {
	Winner           string    `json:"winner"`
	AdvantagePercent float64   `json:"advantage_percent"`
	Mean1            float64   `json:"mean_1"`
	Mean2            float64   `json:"mean_2"`
	PValue           float64   `json:"p_value"`
	EffectSize       float64   `json:"effect_size"`
	Magnitude        Magnitude `json:"magnitude"`
	Significant      bool      `json:"significant"`
	OutliersRemoved  int       `json:"outliers_removed"`
}

// ComparisonResult is the full judgment for one (task, scale) pair.
// Immutable once computed.
type ComparisonResult struct {
	Task            string           `json:"task"`
	Scale           string           `json:"scale"`
	Implementation1 string           `json:"implementation_1"`
	Implementation2 string           `json:"implementation_2"`
	Time            MetricComparison `json:"time"`
	Memory          MetricComparison `json:"memory"`
	Level           Level            `json:"recommendation_level"`
	Power           PowerValidation  `json:"power"`
	Summary         string           `json:"summary"`
}

// TimeWinner returns the implementation with the lower mean execution time.
func (r ComparisonResult) TimeWinner() string { return r.Time.Winner }

// MemoryWinner returns the implementation with the lower mean memory use.
func (r ComparisonResult) MemoryWinner() string { return r.Memory.Winner }

// Classify assigns the recommendation level from a p-value and effect size.
func Classify(p, d float64) Level {
	abs := math.Abs(d)
	switch {
	case p < 0.01 && abs >= 0.8:
		return Strong
	case p < 0.05 && abs >= 0.5:
		return Moderate
	case p < 0.05:
		return Weak
	default:
		return Neutral
	}
}

// Compare produces the full judgment for two sample sets of the same
// (task, scale). Both sets must retain at least thresholds.MinSamples
// values per metric after outlier filtering.
func Compare(set1, set2 SampleSet, thresholds Thresholds) (ComparisonResult, error) {
	if set1.Task != set2.Task || set1.Scale != set2.Scale {
		return ComparisonResult{}, errors.Errorf("mismatched configurations: %s/%s vs %s/%s",
			set1.Task, set1.Scale, set2.Task, set2.Scale)
	}
	if len(set1.Samples) == 0 || len(set2.Samples) == 0 {
		return ComparisonResult{}, ErrEmptySamples
	}

	timeCmp, err := compareMetric(set1.Implementation, set2.Implementation,
		set1.Times(), set2.Times(), thresholds)
	if err != nil {
		return ComparisonResult{}, errors.Wrap(err, "execution time")
	}
	memCmp, err := compareMetric(set1.Implementation, set2.Implementation,
		set1.Memories(), set2.Memories(), thresholds)
	if err != nil {
		return ComparisonResult{}, errors.Wrap(err, "memory")
	}

	level := Classify(timeCmp.PValue, timeCmp.EffectSize)
	if timeCmp.Winner != memCmp.Winner {
		level = Tradeoff
	}

	filtered1, _ := FilterOutliers(set1.Times())
	filtered2, _ := FilterOutliers(set2.Times())
	result := ComparisonResult{
		Task:            set1.Task,
		Scale:           set1.Scale,
		Implementation1: set1.Implementation,
		Implementation2: set2.Implementation,
		Time:            timeCmp,
		Memory:          memCmp,
		Level:           level,
		Power:           ValidatePilot(filtered1, filtered2, thresholds.Alpha, thresholds.Power),
	}
	result.Summary = summarize(result)
	return result, nil
}

func compareMetric(impl1, impl2 string, values1, values2 []float64, thresholds Thresholds) (MetricComparison, error) {
	kept1, out1 := FilterOutliers(values1)
	kept2, out2 := FilterOutliers(values2)
	if need := thresholds.minSamples(); len(kept1) < need || len(kept2) < need {
		return MetricComparison{}, errors.Wrapf(ErrTooFewSamples,
			"%d and %d valid samples, need %d", len(kept1), len(kept2), need)
	}

	ttest, err := WelchTTest(kept1, kept2, thresholds.Alpha)
	if err != nil {
		return MetricComparison{}, err
	}
	effect, err := CohensD(kept1, kept2)
	if err != nil {
		return MetricComparison{}, err
	}

	m1, m2 := mean(kept1), mean(kept2)
	// Lower mean wins, independent of significance; the recommendation
	// level is what qualifies the win.
	winner, loserMean, winnerMean := impl1, m2, m1
	if m2 < m1 {
		winner, loserMean, winnerMean = impl2, m1, m2
	}
	advantage := 0.0
	if loserMean != 0 {
		advantage = (loserMean - winnerMean) / loserMean * 100
	}

	return MetricComparison{
		Winner:           winner,
		AdvantagePercent: advantage,
		Mean1:            m1,
		Mean2:            m2,
		PValue:           ttest.PValue,
		EffectSize:       effect.D,
		Magnitude:        effect.Magnitude,
		Significant:      ttest.Significant,
		OutliersRemoved:  len(out1) + len(out2),
	}, nil
}

func summarize(r ComparisonResult) string {
	if r.Level == Tradeoff {
		return fmt.Sprintf("%s/%s: tradeoff - %s is %.1f%% faster but %s uses %.1f%% less memory",
			r.Task, r.Scale, r.Time.Winner, r.Time.AdvantagePercent, r.Memory.Winner, r.Memory.AdvantagePercent)
	}
	return fmt.Sprintf("%s/%s: %s is %.1f%% faster (p=%.4f, d=%.2f, %s recommendation)",
		r.Task, r.Scale, r.Time.Winner, r.Time.AdvantagePercent, r.Time.PValue, r.Time.EffectSize, r.Level)
}
