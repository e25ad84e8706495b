package stats

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile (0..1) with linear interpolation
// between order statistics.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// Median returns the middle value, averaging the two central values for an
// even count.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// FiveNumberSummary returns the five-number summary (min, Q1, median, Q3, max)
func FiveNumberSummary(values []float64) (min, q1, median, q3, max float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	return Min(values), Quantile(values, 0.25), Median(values), Quantile(values, 0.75), Max(values)
}

// TruncTo truncates v to its leading significant digit (0.734 -> 0.7,
// 23.4 -> 20). Zero and non finite values are returned unchanged.
func TruncTo(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	mag := math.Pow(10, math.Floor(math.Log10(math.Abs(v))))
	return math.Trunc(v/mag) * mag
}
