package stats

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); !near(got, tt.want) {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestWeightedMeans(t *testing.T) {
	if got := WeightedMean([]float64{10, 20}, []float64{1, 3}); !near(got, 17.5) {
		t.Errorf("WeightedMean = %v, want 17.5", got)
	}
	if got := WeightedMean([]float64{10, 20}, []float64{0, 0}); !near(got, 15) {
		t.Errorf("WeightedMean zero weights = %v, want 15", got)
	}
	if got := WeightedGeometricMean([]float64{4, 16}, []float64{1, 1}); !near(got, 8) {
		t.Errorf("WeightedGeometricMean = %v, want 8", got)
	}
	if got := WeightedGeometricMean(nil, nil); got != 0 {
		t.Errorf("WeightedGeometricMean empty = %v, want 0", got)
	}
}

func TestTruncTo(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.734, 0.7},
		{23.4, 20},
		{-0.56, -0.5},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := TruncTo(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("TruncTo(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFinite(t *testing.T) {
	got := Finite([]float64{1, math.NaN(), math.Inf(1), 2})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Finite = %v", got)
	}
}

func TestFiveNumberSummary(t *testing.T) {
	lo, q1, med, q3, hi := FiveNumberSummary([]float64{5, 1, 3, 2, 4})
	if lo != 1 || q1 != 2 || med != 3 || q3 != 4 || hi != 5 {
		t.Errorf("FiveNumberSummary = %g %g %g %g %g", lo, q1, med, q3, hi)
	}
	if sd := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !near(sd, math.Sqrt(32.0/7)) {
		t.Errorf("StdDev = %g", sd)
	}
	if StdDev([]float64{3}) != 0 {
		t.Error("StdDev of one value should be 0")
	}
}
