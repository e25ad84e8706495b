package layers

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// nullable turns sentinels and NaN into JSON null.
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == models.NoDistance {
		return nil
	}
	return v
}

// ComboField is the attribute name of a cover combination fraction.
func ComboField(c models.Combo) string {
	return fmt.Sprintf("FRAC_%d_COMBI", c)
}

// Fragments encodes the corridor fragments of a direction in the original frame.
func Fragments(d *models.DirectionModel, back *spatial.Rotator) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range d.Fragments {
		frag := &d.Fragments[i]
		var g orb.Geometry = frag.Band().ToPolygon()
		if frag.Geometry != nil {
			g = frag.Geometry
		}
		f := geojson.NewFeature(back.Geometry(g))
		f.Properties["ID"] = frag.Column
		f.Properties["ID_UPSTREAM"] = frag.Upstream
		f.Properties["KIND"] = string(frag.Kind)
		f.Properties["ZONE"] = string(frag.Zone)
		f.Properties["WIND_DIRECTION"] = d.Direction
		for k, v := range frag.Indicators {
			f.Properties[string(k)] = nullable(v)
		}
		for c, v := range frag.Cover {
			f.Properties[ComboField(c)] = v
		}
		fc.Append(f)
	}
	return fc
}

// Grid encodes the sample points of a direction in the original frame, with
// optional per-point values keyed by attribute name.
func Grid(d *models.DirectionModel, back *spatial.Rotator, values map[string][]float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, p := range d.Points {
		f := geojson.NewFeature(back.Point(orb.Point{p.X, p.Y}))
		f.Properties["ID"] = p.ID
		f.Properties["ID_ROW"] = p.Row
		f.Properties["ID_COL"] = p.Col
		f.Properties["ID_UPSTREAM"] = p.Upstream
		f.Properties["ZONE"] = string(p.Zone)
		f.Properties["D_INPUT"] = nullable(p.DInput)
		f.Properties["D_OUTPUT"] = nullable(p.DOutput)
		f.Properties["D_PARK"] = nullable(p.DPark)
		f.Properties["CORRIDOR_PARK_FRAC"] = p.CorridorParkFrac
		for name, vals := range values {
			if i < len(vals) {
				f.Properties[name] = nullable(vals[i])
			}
		}
		fc.Append(f)
	}
	return fc
}

// BuildingIndicators encodes the derived building classes.
func BuildingIndicators(buildings []models.Building) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range buildings {
		fc.Append(buildingFeature(&buildings[i]))
	}
	return fc
}

// BuildingImpacts encodes the per-building impact report.
func BuildingImpacts(buildings []models.Building, impacts []models.BuildingImpact) *geojson.FeatureCollection {
	byID := make(map[int]*models.BuildingImpact, len(impacts))
	for i := range impacts {
		byID[impacts[i].BuildingID] = &impacts[i]
	}
	fc := geojson.NewFeatureCollection()
	for i := range buildings {
		f := buildingFeature(&buildings[i])
		if imp, ok := byID[buildings[i].ID]; ok {
			f.Properties["AMPLIF_FACTOR"] = nullable(imp.AmplificationFactor)
			f.Properties["ENERGY_IMPACT_ABS"] = nullable(imp.EnergyAbs)
			f.Properties["ENERGY_IMPACT_REL"] = nullable(imp.EnergyRel)
			f.Properties["THERM_COMFORT_IMPACT_ABS"] = nullable(imp.ComfortAbs)
			f.Properties["THERM_COMFORT_IMPACT_REL"] = nullable(imp.ComfortRel)
			for h, dt := range imp.DeltaT {
				f.Properties[fmt.Sprintf("DELTA_T_%dH", h)] = nullable(dt)
			}
		}
		fc.Append(f)
	}
	return fc
}

func buildingFeature(b *models.Building) *geojson.Feature {
	f := geojson.NewFeature(b.Footprint)
	f.Properties[FieldBuildingID] = b.ID
	f.Properties[FieldHeight] = b.Height
	f.Properties[FieldAge] = b.Age
	f.Properties[FieldRenovation] = b.Renovated
	f.Properties[FieldWWR] = b.WWR
	f.Properties["ID_BLOCK"] = b.BlockID
	f.Properties["SHARED_WALL_FRAC"] = b.SharedWallFraction
	f.Properties["BUILD_GEOM_TYPE"] = b.GeometryClass
	f.Properties["NORTH_ORIENTATION"] = b.Orientation
	f.Properties["BUILD_SIZE_CLASS"] = b.SizeClass
	f.Properties["BUILDING_CLASS"] = b.BuildingClass
	f.Properties[string(models.AspectRatio)] = b.AspectRatio
	return f
}
