package corridor

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// ErrNoPark is returned when the park layer holds no polygon.
var ErrNoPark = errors.New("park layer has no polygon")

// Inputs are the park and its cover layers.
type Inputs struct {
	Park   orb.Polygon
	Ground []models.CoverPolygon
	Canopy []models.CoverPolygon
}

// NewInputs checks the park and cover layers. Data quality problems are
// reported as diagnostics; only a missing park is an error.
func NewInputs(parks []orb.Polygon, ground, canopy []models.CoverPolygon, invalidCover int, v config.ValidationConfig) (*Inputs, []models.Diagnostic, error) {
	if len(parks) == 0 {
		return nil, nil, ErrNoPark
	}
	var diags []models.Diagnostic

	park := parks[0]
	if len(parks) > 1 {
		for _, p := range parks[1:] {
			if spatial.Area(p) > spatial.Area(park) {
				park = p
			}
		}
		diags = append(diags, models.Diagnostic{
			Code:     models.DiagParkCount,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("park layer holds %d polygons, the largest one is used", len(parks)),
			Observed: float64(len(parks)),
		})
	}

	parkArea := spatial.Area(park)
	if parkArea > 0 {
		covered := spatial.NewShape(coverPolygons(ground)...).Intersection(spatial.NewShape(park)).Area()
		if ratio := covered / parkArea; ratio < v.GroundToParkRatio {
			diags = append(diags, models.Diagnostic{
				Code:      models.DiagGroundCoverage,
				Severity:  models.SeverityWarning,
				Message:   fmt.Sprintf("ground layer covers %.1f%% of the park", ratio*100),
				Observed:  ratio,
				Threshold: v.GroundToParkRatio,
			})
		}
	}

	overlaps := []struct {
		code  string
		name  string
		cover []models.CoverPolygon
	}{
		{models.DiagGroundOverlap, "ground", ground},
		{models.DiagCanopyOverlap, "canopy", canopy},
	}
	for _, o := range overlaps {
		if ratio := spatial.OverlapRatio(coverPolygons(o.cover)); ratio > v.SuperimpositionThreshold+1e-9 {
			diags = append(diags, models.Diagnostic{
				Code:      o.code,
				Severity:  models.SeverityWarning,
				Message:   fmt.Sprintf("%s polygons overlap (ratio %.4f)", o.name, ratio),
				Observed:  ratio,
				Threshold: v.SuperimpositionThreshold,
			})
		}
	}

	if invalidCover > 0 {
		diags = append(diags, models.Diagnostic{
			Code:     models.DiagInvalidCoverTypes,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%d cover features have an unknown type and were ignored", invalidCover),
			Observed: float64(invalidCover),
		})
	}

	return &Inputs{Park: park, Ground: ground, Canopy: canopy}, diags, nil
}

// Rotate returns a copy of the inputs turned by rot.
func (in *Inputs) Rotate(rot *spatial.Rotator) *Inputs {
	return &Inputs{
		Park:   rot.Polygon(in.Park),
		Ground: rotateCover(in.Ground, rot),
		Canopy: rotateCover(in.Canopy, rot),
	}
}

func rotateCover(cover []models.CoverPolygon, rot *spatial.Rotator) []models.CoverPolygon {
	out := make([]models.CoverPolygon, len(cover))
	for i, c := range cover {
		out[i] = models.CoverPolygon{Type: c.Type, Polygon: rot.Polygon(c.Polygon)}
	}
	return out
}

func coverPolygons(cover []models.CoverPolygon) []orb.Polygon {
	out := make([]orb.Polygon, len(cover))
	for i, c := range cover {
		out[i] = c.Polygon
	}
	return out
}
