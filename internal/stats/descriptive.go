package stats

import (
	"math"
	"sort"
)

// HighVarianceCV is the coefficient-of-variation threshold above which a
// configuration counts as high variance.
const HighVarianceCV = 0.15

// Descriptive summarizes one filtered series.
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	CV     float64 `json:"cv"`
}

// HighVariance reports whether the series exceeds the CV threshold.
func (d Descriptive) HighVariance() bool {
	return d.CV > HighVarianceCV
}

// Describe computes mean, median, sample standard deviation (n-1
// denominator) and coefficient of variation.
func Describe(values []float64) (Descriptive, error) {
	if len(values) == 0 {
		return Descriptive{}, ErrEmptySamples
	}
	mean := mean(values)
	std := stdDev(values, mean)
	cv := 0.0
	if mean != 0 {
		cv = std / mean
	}
	return Descriptive{
		N:      len(values),
		Mean:   mean,
		Median: median(values),
		StdDev: std,
		CV:     cv,
	}, nil
}

// FilterOutliers applies the IQR rule: values outside
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR] are excluded. The input is not modified.
func FilterOutliers(values []float64) (kept, outliers []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	for _, v := range values {
		if v < lo || v > hi {
			outliers = append(outliers, v)
		} else {
			kept = append(kept, v)
		}
	}
	return kept, outliers
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation with the n-1 denominator;
// a single value has zero deviation.
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func variance(values []float64) float64 {
	s := stdDev(values, mean(values))
	return s * s
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.5)
}

// percentile interpolates linearly between order statistics (the same rule
// numpy applies by default). Input must be sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
