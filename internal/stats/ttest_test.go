package stats

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestWelchSeparatedGroups(t *testing.T) {
	result, err := WelchTTest([]float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if result.MeanDifference != 5 {
		t.Fatalf("mean difference = %g, want 5", result.MeanDifference)
	}
	// Equal sizes and variances: t = 5, df = 8.
	if !almostEqual(result.TStatistic, 5, 1e-9) {
		t.Fatalf("t = %g, want 5", result.TStatistic)
	}
	if !almostEqual(result.DegreesFreedom, 8, 1e-9) {
		t.Fatalf("df = %g, want 8", result.DegreesFreedom)
	}
	if result.PValue <= 0 || result.PValue >= 0.01 {
		t.Fatalf("p = %g, want a small defined p-value", result.PValue)
	}
	if !result.Significant {
		t.Fatal("clearly separated groups must be significant")
	}
}

func TestWelchIdenticalDistributions(t *testing.T) {
	group := []float64{3, 4, 5, 6, 7}
	result, err := WelchTTest(group, group, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(result.PValue, 1, 1e-9) {
		t.Fatalf("p = %g, want about 1", result.PValue)
	}
	if result.Significant {
		t.Fatal("identical groups cannot be significant")
	}
	effect, err := CohensD(group, group)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(effect.D, 0, 1e-9) {
		t.Fatalf("|d| = %g, want about 0", math.Abs(effect.D))
	}
}

func TestWelchConstantGroups(t *testing.T) {
	same, err := WelchTTest([]float64{5, 5, 5}, []float64{5, 5, 5}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if same.PValue != 1 || same.Significant {
		t.Fatalf("equal constants: %+v", same)
	}
	diff, err := WelchTTest([]float64{5, 5, 5}, []float64{6, 6, 6}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if diff.PValue != 0 || !diff.Significant {
		t.Fatalf("distinct constants: %+v", diff)
	}
}

func TestWelchErrors(t *testing.T) {
	if _, err := WelchTTest(nil, []float64{1, 2}, 0.05); !errors.Is(err, ErrEmptySamples) {
		t.Fatalf("expected ErrEmptySamples, got %v", err)
	}
	if _, err := WelchTTest([]float64{1}, []float64{1, 2}, 0.05); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestCohensDSeparatedGroups(t *testing.T) {
	effect, err := CohensD([]float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})
	if err != nil {
		t.Fatal(err)
	}
	// pooled std = sqrt(2.5), d = 5/sqrt(2.5).
	want := 5 / math.Sqrt(2.5)
	if !almostEqual(effect.D, want, 1e-9) {
		t.Fatalf("d = %g, want %g", effect.D, want)
	}
	if effect.Magnitude != Large {
		t.Fatalf("magnitude = %s, want large", effect.Magnitude)
	}
}

func TestClassifyEffectThresholds(t *testing.T) {
	cases := []struct {
		d    float64
		want Magnitude
	}{
		{0, Negligible},
		{0.29, Negligible},
		{0.3, Small},
		{-0.45, Small},
		{0.6, Medium},
		{-0.99, Medium},
		{1.0, Large},
		{-2.5, Large},
	}
	for _, c := range cases {
		if got := ClassifyEffect(c.d); got != c.want {
			t.Fatalf("ClassifyEffect(%g) = %s, want %s", c.d, got, c.want)
		}
	}
}
