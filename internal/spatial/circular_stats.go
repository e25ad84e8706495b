package spatial

import (
	"math"
)

// NormalizeDegrees maps an angle to [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DirectionBin returns the index of the wind direction bin containing deg
// for n bins of width 360/n starting at North.
func DirectionBin(deg float64, n int) int {
	width := 360 / float64(n)
	bin := int(math.Floor(NormalizeDegrees(deg) / width))
	if bin >= n {
		bin = n - 1
	}
	return bin
}

// CircularMeanDegrees calculates the mean of circular data in degrees
// weights: optional weights for each angle (can be nil for equal weights)
func CircularMeanDegrees(angles []float64, weights []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	for i, angle := range angles {
		w := 1.0
		if weights != nil && i < len(weights) {
			w = weights[i]
		}
		rad := angle * math.Pi / 180
		sumSin += w * math.Sin(rad)
		sumCos += w * math.Cos(rad)
	}

	return NormalizeDegrees(math.Atan2(sumSin, sumCos) * 180 / math.Pi)
}

// AngularDifferenceDegrees returns the smallest absolute difference between
// two angles in degrees, in [0, 180]
func AngularDifferenceDegrees(angle1, angle2 float64) float64 {
	diff := math.Abs(NormalizeDegrees(angle1) - NormalizeDegrees(angle2))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
