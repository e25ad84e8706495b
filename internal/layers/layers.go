// Package layers reads and writes the GeoJSON vector layers exchanged with
// GIS tools.
package layers

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// Input attribute names
const (
	FieldBuildingID = "ID_BUILD"
	FieldHeight     = "HEIGHT_ROOF"
	FieldAge        = "BUILDING_AGE"
	FieldRenovation = "BUILDING_RENOVATION"
	FieldWWR        = "BUILDING_WWR"
	FieldShutter    = "BUILDING_SHUTTER"
	FieldType       = "TYPE"
)

// Read loads a GeoJSON feature collection from disk.
func Read(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layer %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode layer %s: %w", path, err)
	}
	return fc, nil
}

// Write stores a feature collection, tagging it with its spatial reference.
func Write(path string, fc *geojson.FeatureCollection, srid int) error {
	if srid > 0 {
		if fc.ExtraMembers == nil {
			fc.ExtraMembers = geojson.Properties{}
		}
		fc.ExtraMembers["crs"] = map[string]interface{}{
			"type":       "name",
			"properties": map[string]interface{}{"name": fmt.Sprintf("EPSG:%d", srid)},
		}
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode layer %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layer %s: %w", path, err)
	}
	return nil
}

// SRID returns the EPSG code declared in the collection crs member, or 0.
func SRID(fc *geojson.FeatureCollection) int {
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return 0
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return 0
	}
	name, _ := props["name"].(string)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	srid, err := strconv.Atoi(name)
	if err != nil {
		return 0
	}
	return srid
}

// Buildings decodes the building layer, filling missing attributes from defaults.
// Multi-part footprints become one building per part.
func Buildings(fc *geojson.FeatureCollection, defaults config.BuildingDefaults) ([]models.Building, error) {
	var out []models.Building
	for _, f := range fc.Features {
		parts := spatial.Explode(f.Geometry)
		if len(parts) == 0 {
			continue
		}
		height, ok := number(f.Properties, FieldHeight)
		if !ok || height <= 0 {
			height = defaults.Height
		}
		age, ok := number(f.Properties, FieldAge)
		if !ok || age <= 0 {
			age = defaults.Age
		}
		wwr, ok := number(f.Properties, FieldWWR)
		if !ok || wwr < 0 || wwr > 1 {
			wwr = defaults.WWR
		}
		shutter, ok := number(f.Properties, FieldShutter)
		if !ok {
			shutter = defaults.Shutter
		}
		renovated := defaults.Renovated
		if v, ok := number(f.Properties, FieldRenovation); ok {
			renovated = v != 0
		}
		for _, p := range parts {
			out = append(out, models.Building{
				ID:        len(out) + 1,
				Footprint: p,
				Height:    height,
				Age:       age,
				Renovated: renovated,
				WWR:       wwr,
				Shutter:   shutter,
			})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("building layer has no polygon")
	}
	return out, nil
}

// Polygons returns every polygon of a layer.
func Polygons(fc *geojson.FeatureCollection) []orb.Polygon {
	var out []orb.Polygon
	for _, f := range fc.Features {
		out = append(out, spatial.Explode(f.Geometry)...)
	}
	return out
}

// Cover decodes a typed cover layer. Features whose type fails valid are
// skipped and counted.
func Cover(fc *geojson.FeatureCollection, valid func(int) bool) ([]models.CoverPolygon, int) {
	var out []models.CoverPolygon
	invalid := 0
	for _, f := range fc.Features {
		t, ok := number(f.Properties, FieldType)
		if !ok || !valid(int(t)) {
			invalid++
			continue
		}
		for _, p := range spatial.Explode(f.Geometry) {
			out = append(out, models.CoverPolygon{Type: int(t), Polygon: p})
		}
	}
	return out, invalid
}

func number(props geojson.Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, false
	}
	switch v := v.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
