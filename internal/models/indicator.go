package models

import "math"

// Indicator names a per-fragment or per-building covariate.
type Indicator string

// Corridor morphology indicators
const (
	MeanBuildHeight     Indicator = "MEAN_BUILD_HEIGHT"
	GeomMeanBuildHeight Indicator = "GEOM_MEAN_BUILD_HEIGHT"
	BlockSurfFraction   Indicator = "BLOCK_SURF_FRACTION"
	OpeningFraction     Indicator = "OPENING_FRACTION"
	BlockNbDensity      Indicator = "BLOCK_NB_DENSITY"
	StreetWidth         Indicator = "STREET_WIDTH"
	NbStreetDensity     Indicator = "NB_STREET_DENSITY"
	FreeFacadeFraction  Indicator = "FREE_FACADE_FRACTION"
	CorridorParkFrac    Indicator = "CORRIDOR_PARK_FRAC"
)

// Building regression covariates
const (
	AspectRatio           Indicator = "ASPECT_RATIO"
	WindowWallRatio       Indicator = "WWR"
	Shutter               Indicator = "SHUTTER"
	RoofResistance        Indicator = "R_ROOF"
	WallResistance        Indicator = "R_WALL"
	WindowTransmittance   Indicator = "U_WIN"
	SlabResistance        Indicator = "R_SLAB"
	Infiltration          Indicator = "INFILTRATION"
	NaturalVentilation    Indicator = "NAT_VENT"
	MechanicalVentilation Indicator = "MECH_VENT"
	AmplificationFactor   Indicator = "AMPLIF_FACTOR"
)

// CityIndicators lists the indicators computed on every city fragment.
var CityIndicators = []Indicator{
	MeanBuildHeight,
	GeomMeanBuildHeight,
	BlockSurfFraction,
	OpeningFraction,
	BlockNbDensity,
	StreetWidth,
	NbStreetDensity,
	FreeFacadeFraction,
}

// Indicators holds indicator values keyed by name.
type Indicators map[Indicator]float64

// Get returns the value of k, or 0 when it is absent or NaN.
func (ind Indicators) Get(k Indicator) float64 {
	v, ok := ind[k]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Coalesce replaces NaN and missing entries of names by 0.
func (ind Indicators) Coalesce(names []Indicator) {
	for _, k := range names {
		ind[k] = ind.Get(k)
	}
}
