package temporal

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/analysis/propagation"
	"github.com/jengzang/coolparks-go/internal/analysis/viz"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// PointField holds the season mean of one direction at its grid points.
type PointField struct {
	Direction float64
	Count     int
	T         []float64
	DeltaT    []float64
}

// HourResult is the season aggregate of one time of day. Tair and DeltaT are
// nil when no day of the season had usable weather.
type HourResult struct {
	Hour    int
	Days    int
	Skipped int
	Weights []models.DirectionWeight
	Fields  []*PointField
	Tair    *viz.Grid
	DeltaT  *viz.Grid
}

// Aggregator sums the propagated fields of every day of the season into the
// wind direction bin of that day.
type Aggregator struct {
	cfg   *config.Config
	table *coefficients.Table
}

// NewAggregator creates a new aggregator
func NewAggregator(cfg *config.Config, table *coefficients.Table) *Aggregator {
	return &Aggregator{cfg: cfg, table: table}
}

// Aggregate evaluates one time of day over the season of the weather year.
func (a *Aggregator) Aggregate(ctx context.Context, sc *models.Scenario, series *Series, hour int) (*HourResult, error) {
	n := a.cfg.Grid.Directions
	if len(sc.Directions) != n {
		return nil, fmt.Errorf("scenario has %d directions, configuration expects %d", len(sc.Directions), n)
	}
	prop, err := propagation.New(a.table, a.cfg, hour)
	if err != nil {
		return nil, err
	}
	start, end, err := a.cfg.SeasonWindow(series.Year())
	if err != nil {
		return nil, err
	}

	res := &HourResult{Hour: hour}
	sums := make([]*PointField, n)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Days++
		rec, ok := series.Lookup(day, hour)
		if !ok || !rec.Complete() {
			res.Skipped++
			continue
		}

		bin := spatial.DirectionBin(rec.WindDirection, n)
		d := &sc.Directions[bin]
		out := prop.Propagate(d, propagation.Weather{
			AirTemperature:   rec.AirTemperature,
			WindSpeed:        rec.WindSpeed,
			RelativeHumidity: rec.RelativeHumidity,
		})
		if sums[bin] == nil {
			sums[bin] = &PointField{
				Direction: d.Direction,
				T:         make([]float64, len(d.Points)),
				DeltaT:    make([]float64, len(d.Points)),
			}
		}
		acc := sums[bin]
		acc.Count++
		for i := range out.T {
			acc.T[i] += out.T[i]
			acc.DeltaT[i] += out.DeltaT[i]
		}
	}

	used := res.Days - res.Skipped
	for bin, acc := range sums {
		count := 0
		if acc != nil {
			count = acc.Count
			for i := range acc.T {
				acc.T[i] /= float64(acc.Count)
				acc.DeltaT[i] /= float64(acc.Count)
			}
			res.Fields = append(res.Fields, acc)
		}
		w := 0.0
		if used > 0 {
			w = float64(count) / float64(used)
		}
		res.Weights = append(res.Weights, models.DirectionWeight{
			Hour:      hour,
			Direction: sc.Directions[bin].Direction,
			Count:     count,
			Weight:    w,
		})
	}

	log.Printf("[Aggregator] %dh: %d days, %d skipped, %d directions used", hour, res.Days, res.Skipped, len(res.Fields))
	if len(res.Fields) == 0 {
		return res, nil
	}
	res.Tair, res.DeltaT = a.rasterize(sc, res.Fields)
	return res, nil
}

// rasterize back-rotates each direction mean, interpolates it on a raster
// common to all directions and combines the rasters by occurrence.
func (a *Aggregator) rasterize(sc *models.Scenario, fields []*PointField) (tair, deltaT *viz.Grid) {
	type rotated struct {
		t, dt []*spatial.ValuePoint
	}
	byField := make([]rotated, len(fields))
	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for k, f := range fields {
		d := directionModel(sc, f.Direction)
		back := spatial.NewRotator(d.Direction, sc.Pivot).Inverse()
		for i, p := range d.Points {
			pt := back.Point(orb.Point{p.X, p.Y})
			bound = bound.Extend(pt)
			byField[k].t = append(byField[k].t, &spatial.ValuePoint{P: pt, ID: p.ID, Value: f.T[i]})
			byField[k].dt = append(byField[k].dt, &spatial.ValuePoint{P: pt, ID: p.ID, Value: f.DeltaT[i]})
		}
	}

	base := viz.NewGrid(bound, a.cfg.Raster.CellSize)
	tGrids := make([]*viz.Grid, len(fields))
	dtGrids := make([]*viz.Grid, len(fields))
	weights := make([]float64, len(fields))
	for k, f := range fields {
		tGrids[k], dtGrids[k] = base.Clone(), base.Clone()
		viz.Interpolate(tGrids[k], spatial.NewPointIndex(byField[k].t), a.cfg.Raster)
		viz.Interpolate(dtGrids[k], spatial.NewPointIndex(byField[k].dt), a.cfg.Raster)
		weights[k] = float64(f.Count)
	}
	return viz.Combine(tGrids, weights), viz.Combine(dtGrids, weights)
}

func directionModel(sc *models.Scenario, dir float64) *models.DirectionModel {
	for i := range sc.Directions {
		if sc.Directions[i].Direction == dir {
			return &sc.Directions[i]
		}
	}
	return nil
}
