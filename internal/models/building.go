package models

import "github.com/paulmach/orb"

// Geometry classes. Buildings sharing at least 30% of their walls are first
// classed GeometryAttached, then split into GeometryRow or GeometryCorner from
// the orientation of their two main free facades.
const (
	GeometryRow      = 1
	GeometryCorner   = 2
	GeometrySemi     = 3
	GeometryIsolated = 4
	GeometryAttached = 12
)

// Orientation classes of the main free facade
const (
	OrientationNorth = 1
	OrientationEast  = 2
	OrientationSouth = 3
	OrientationWest  = 4
)

// Envelope holds the thermal properties attached to a construction period.
type Envelope struct {
	RoofResistance        float64 `json:"r_roof" yaml:"r_roof"`
	WallResistance        float64 `json:"r_wall" yaml:"r_wall"`
	WindowTransmittance   float64 `json:"u_win" yaml:"u_win"`
	SlabResistance        float64 `json:"r_slab" yaml:"r_slab"`
	Infiltration          float64 `json:"infiltration" yaml:"infiltration"`
	NaturalVentilation    float64 `json:"nat_vent" yaml:"nat_vent"`
	MechanicalVentilation float64 `json:"mech_vent" yaml:"mech_vent"`
}

// Building is an input footprint enriched with its direction independent
// indicators.
type Building struct {
	ID        int         `json:"id"`
	Footprint orb.Polygon `json:"footprint"`
	Height    float64     `json:"height"`
	Age       float64     `json:"age"`
	Renovated bool        `json:"renovated"`
	WWR       float64     `json:"wwr"`
	Shutter   float64     `json:"shutter"`

	BlockID            int      `json:"block_id"`
	SharedWallFraction float64  `json:"shared_wall_fraction"`
	GeometryClass      int      `json:"geometry_class"`
	Orientation        int      `json:"orientation"`
	SizeClass          int      `json:"size_class"`
	BuildingClass      int      `json:"building_class"`
	AspectRatio        float64  `json:"aspect_ratio"`
	Envelope           Envelope `json:"envelope"`
}

// Covariates returns the regression inputs of the building for a given
// amplification factor.
func (b *Building) Covariates(amplification float64) Indicators {
	return Indicators{
		AspectRatio:           b.AspectRatio,
		WindowWallRatio:       b.WWR,
		Shutter:               b.Shutter,
		RoofResistance:        b.Envelope.RoofResistance,
		WallResistance:        b.Envelope.WallResistance,
		WindowTransmittance:   b.Envelope.WindowTransmittance,
		SlabResistance:        b.Envelope.SlabResistance,
		Infiltration:          b.Envelope.Infiltration,
		NaturalVentilation:    b.Envelope.NaturalVentilation,
		MechanicalVentilation: b.Envelope.MechanicalVentilation,
		AmplificationFactor:   amplification,
	}
}

// Block is a group of touching buildings.
type Block struct {
	ID        int           `json:"id"`
	Buildings []int         `json:"buildings"`
	Members   []orb.Polygon `json:"-"`
	Area      float64       `json:"area"`
	Bound     orb.Bound     `json:"-"`
}

// BuildingImpact is the park effect estimated for one building. NaN marks an
// impact that could not be evaluated.
type BuildingImpact struct {
	BuildingID          int             `json:"building_id"`
	DeltaT              map[int]float64 `json:"delta_t"`
	AmplificationFactor float64         `json:"amplification_factor"`
	EnergyAbs           float64         `json:"energy_impact_abs"`
	EnergyRel           float64         `json:"energy_impact_rel"`
	ComfortAbs          float64         `json:"therm_comfort_impact_abs"`
	ComfortRel          float64         `json:"therm_comfort_impact_rel"`
}
