package propagation

import "math"

// Normalize maps v from [lo, hi] onto [-1, 1], clamping values outside the
// training range.
func Normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	n := 2*(v-lo)/(hi-lo) - 1
	return math.Max(-1, math.Min(1, n))
}

// Denormalize is the inverse of Normalize on [-1, 1].
func Denormalize(n, lo, hi float64) float64 {
	return lo + (n+1)*(hi-lo)/2
}

// SaturationPressure returns the saturation vapour pressure (Pa) at air
// temperature t (degC).
func SaturationPressure(t float64) float64 {
	return 610.7 * math.Pow(1+math.Sqrt2*math.Sin(t*math.Pi/180/3), 8.827)
}

// VapourPressureDeficit returns the vapour pressure deficit (hPa) for an air
// temperature (degC) and a relative humidity (%).
func VapourPressureDeficit(t, rh float64) float64 {
	psat := SaturationPressure(t)
	return (psat - rh*psat/100) / 100
}
