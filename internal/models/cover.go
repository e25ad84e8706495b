package models

import "github.com/paulmach/orb"

// Ground cover types
const (
	GroundBareSoil    = 1
	GroundWater       = 2
	GroundHerbaceous  = 3
	GroundImpermeable = 4
)

// Canopy cover types
const (
	CanopyNone         = 0
	CanopyIsolatedTree = 10
	CanopyLightWood    = 20
	CanopyDenseWood    = 30
)

// Combo is a ground/canopy combination code: ground type plus canopy type.
type Combo int

// DefaultCombo receives whatever share of a park fragment no cover polygon explains.
const DefaultCombo Combo = GroundBareSoil

// GroundTypes and CanopyTypes are the recognised cover codes.
var (
	GroundTypes = []int{GroundBareSoil, GroundWater, GroundHerbaceous, GroundImpermeable}
	CanopyTypes = []int{CanopyIsolatedTree, CanopyLightWood, CanopyDenseWood}
)

// NewCombo builds the combination code of a ground and a canopy type.
func NewCombo(ground, canopy int) Combo {
	return Combo(ground + canopy)
}

// AllCombos lists every ground-only and ground+canopy code.
func AllCombos() []Combo {
	combos := make([]Combo, 0, len(GroundTypes)*(len(CanopyTypes)+1))
	for _, c := range append([]int{CanopyNone}, CanopyTypes...) {
		for _, g := range GroundTypes {
			combos = append(combos, NewCombo(g, c))
		}
	}
	return combos
}

// IsValidGround reports whether t is a known ground type.
func IsValidGround(t int) bool {
	return t >= GroundBareSoil && t <= GroundImpermeable
}

// IsValidCanopy reports whether t is a known canopy type.
func IsValidCanopy(t int) bool {
	return t == CanopyIsolatedTree || t == CanopyLightWood || t == CanopyDenseWood
}

// CoverPolygon is a typed ground or canopy polygon of the park.
type CoverPolygon struct {
	Type    int         `json:"type"`
	Polygon orb.Polygon `json:"polygon"`
}
