package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Finite returns the values that are neither NaN nor infinite.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// WeightedMean calculates the weighted mean. A zero total weight falls back
// to the plain mean.
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(weights) != len(values) || floats.Sum(weights) == 0 {
		return Mean(values)
	}
	return stat.Mean(values, weights)
}

// WeightedGeometricMean returns exp(Σw·ln v / Σw), ignoring non positive values.
func WeightedGeometricMean(values, weights []float64) float64 {
	var num, den float64
	for i, v := range values {
		if v <= 0 || i >= len(weights) || weights[i] <= 0 {
			continue
		}
		num += weights[i] * math.Log(v)
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return math.Exp(num / den)
}

// Min returns the smallest value, 0 when empty
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Max returns the largest value, 0 when empty
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Variance calculates the sample variance
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}
