// Package impact estimates how the park cooling changes the energy demand
// and the summer comfort of the surrounding buildings.
package impact

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/coolparks-go/internal/analysis/viz"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// Estimator applies the building archetype regressions.
type Estimator struct {
	table     *coefficients.Table
	reference float64
}

// NewEstimator creates an estimator. reference is the cooling (degC, usually
// negative) that maps to an amplification factor of one.
func NewEstimator(table *coefficients.Table, reference float64) *Estimator {
	return &Estimator{table: table, reference: reference}
}

// Estimate samples the deltaT rasters, keyed by time of day, at every
// building centroid and evaluates the impacts. Buildings without a matching
// archetype get NaN impacts and are reported in one diagnostic.
func (e *Estimator) Estimate(buildings []models.Building, deltaT map[int]*viz.Grid) ([]models.BuildingImpact, []models.Diagnostic) {
	hours := make([]int, 0, len(deltaT))
	for h, g := range deltaT {
		if g != nil {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)

	out := make([]models.BuildingImpact, len(buildings))
	missing := 0
	for i := range buildings {
		b := &buildings[i]
		imp := models.BuildingImpact{BuildingID: b.ID, DeltaT: make(map[int]float64, len(hours))}

		centroid := spatial.Centroid(b.Footprint)
		var sum float64
		var n int
		for _, h := range hours {
			v := deltaT[h].Sample(centroid)
			imp.DeltaT[h] = v
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 && e.reference != 0 {
			imp.AmplificationFactor = sum / float64(n) / e.reference
		}

		model, ok := e.table.Archetype(b.GeometryClass, b.Orientation, b.SizeClass)
		if !ok {
			missing++
			imp.EnergyAbs, imp.EnergyRel = math.NaN(), math.NaN()
			imp.ComfortAbs, imp.ComfortRel = math.NaN(), math.NaN()
			out[i] = imp
			continue
		}
		imp.EnergyAbs, imp.EnergyRel = change(model.Energy, b, imp.AmplificationFactor)
		imp.ComfortAbs, imp.ComfortRel = change(model.Comfort, b, imp.AmplificationFactor)
		out[i] = imp
	}

	var diags []models.Diagnostic
	if missing > 0 {
		diags = append(diags, models.Diagnostic{
			Code:     models.DiagMissingArchetype,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%d buildings match no archetype, their impacts are unknown", missing),
			Observed: float64(missing),
		})
	}
	return out, diags
}

// change returns the absolute and relative difference between the model
// evaluated with the amplification factor and without park effect.
func change(m coefficients.RegressionModel, b *models.Building, af float64) (abs, rel float64) {
	base := m.Eval(b.Covariates(0))
	abs = m.Eval(b.Covariates(af)) - base
	if base != 0 {
		rel = 100 * abs / base
	}
	return abs, rel
}
