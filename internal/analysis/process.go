package analysis

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jengzang/coolparks-go/internal/analysis/temporal"
	"github.com/jengzang/coolparks-go/internal/analysis/viz"
	"github.com/jengzang/coolparks-go/internal/layers"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// ProcessPhase applies a weather series to a prepared scenario: it computes
// the season rasters of every time of day and the building impacts.
type ProcessPhase struct {
	p *Pipeline
}

// NewProcessPhase creates a new process phase
func NewProcessPhase(p *Pipeline) Phase {
	return &ProcessPhase{p: p}
}

// GetName returns the phase name
func (ph *ProcessPhase) GetName() string {
	return PhaseProcess
}

// Run executes the phase
func (ph *ProcessPhase) Run(ctx context.Context, st *State) error {
	cfg := ph.p.cfg
	if err := ph.p.table.Validate(cfg.TimesOfDay); err != nil {
		return fmt.Errorf("coefficients do not cover the times of day: %w", err)
	}

	sc := st.Scenario
	if sc == nil {
		if st.Params.Scenario == "" {
			return fmt.Errorf("%w: no scenario given", ErrInvalidScenario)
		}
		var err error
		if sc, err = LoadScenario(st.Params.Scenario); err != nil {
			return err
		}
		st.Scenario = sc
		st.AddDiagnostics(sc.Diagnostics...)
	}
	if st.Params.Weather == "" {
		return fmt.Errorf("no weather file given")
	}
	series, err := temporal.LoadWeather(st.Params.Weather, cfg.Weather)
	if err != nil {
		return err
	}
	log.Printf("[Process] Weather year %d, %d records, daily=%v", series.Year(), len(series.Records), series.Daily)
	if series.Invalid > 0 {
		st.AddDiagnostics(models.Diagnostic{
			Code:     models.DiagInvalidWeather,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%d weather rows skipped for an unreadable time", series.Invalid),
			Observed: float64(series.Invalid),
		})
	}

	deltaT := make(map[int]*viz.Grid, len(cfg.TimesOfDay))
	values := make(map[float64]map[string][]float64, len(sc.Directions))
	for i, hour := range cfg.TimesOfDay {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := ph.p.aggregator.Aggregate(ctx, sc, series, hour)
		if err != nil {
			return fmt.Errorf("failed to aggregate %dh: %w", hour, err)
		}
		st.Weights = append(st.Weights, res.Weights...)
		st.Hours = append(st.Hours, summarizeHour(res))
		ph.p.metrics.RecordSkippedDates(strconv.Itoa(hour), res.Skipped)
		if res.Skipped > 0 {
			st.AddDiagnostics(models.Diagnostic{
				Code:      models.DiagSkippedDates,
				Severity:  models.SeverityInfo,
				Message:   fmt.Sprintf("%d of %d season dates skipped at %dh for missing weather", res.Skipped, res.Days, hour),
				Observed:  float64(res.Skipped),
				Threshold: float64(res.Days),
			})
		}
		if res.DeltaT == nil {
			st.AddDiagnostics(models.Diagnostic{
				Code:     models.DiagNoWeather,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("no usable weather at %dh during the season", hour),
			})
			continue
		}

		deltaT[hour] = res.DeltaT
		for _, f := range res.Fields {
			if values[f.Direction] == nil {
				values[f.Direction] = make(map[string][]float64)
			}
			values[f.Direction][fmt.Sprintf("T_%dH", hour)] = f.T
			values[f.Direction][fmt.Sprintf("DT_%dH", hour)] = f.DeltaT
		}
		if err := ph.writeHour(st, sc.SRID, res); err != nil {
			return err
		}
		st.Report(i+1, len(cfg.TimesOfDay)+1, fmt.Sprintf("%dh aggregated", hour))
	}

	for i := range sc.Directions {
		d := &sc.Directions[i]
		if values[d.Direction] == nil {
			continue
		}
		back := spatial.NewRotator(d.Direction, sc.Pivot).Inverse()
		if err := writeLayer(st, fmt.Sprintf("grid_%g.geojson", d.Direction), layers.Grid(d, back, values[d.Direction]), sc.SRID); err != nil {
			return err
		}
	}

	if len(sc.Buildings) > 0 && len(deltaT) > 0 {
		impacts, diags := ph.p.estimator.Estimate(sc.Buildings, deltaT)
		st.Impacts = impacts
		st.AddDiagnostics(diags...)
		if err := writeLayer(st, "buildings_impact.geojson", layers.BuildingImpacts(sc.Buildings, impacts), sc.SRID); err != nil {
			return err
		}
	}

	path := filepath.Join(st.OutputDir, "direction_weights.csv")
	if err := writeWeights(path, st.Weights); err != nil {
		return err
	}
	st.AddFile(path)
	return nil
}

func (ph *ProcessPhase) writeHour(st *State, srid int, res *temporal.HourResult) error {
	rasters := []struct {
		name string
		grid *viz.Grid
	}{
		{fmt.Sprintf("tair_%dh.asc", res.Hour), res.Tair},
		{fmt.Sprintf("deltat_%dh.asc", res.Hour), res.DeltaT},
	}
	for _, r := range rasters {
		path := filepath.Join(st.OutputDir, r.name)
		if err := viz.SaveASCII(path, r.grid); err != nil {
			return err
		}
		st.AddFile(path)
	}

	lo, hi, _ := res.DeltaT.Range()
	bands := viz.Isovalues(res.DeltaT, viz.BandInterval(lo, hi, ph.p.cfg.Isovalues))
	return writeLayer(st, fmt.Sprintf("deltat_%dh_isovalues.geojson", res.Hour), viz.BandFeatures(bands), srid)
}

// writeWeights stores the direction weight table.
func writeWeights(path string, weights []models.DirectionWeight) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"hour", "direction", "count", "weight"})
	for _, dw := range weights {
		_ = w.Write([]string{
			strconv.Itoa(dw.Hour),
			strconv.FormatFloat(dw.Direction, 'f', -1, 64),
			strconv.Itoa(dw.Count),
			strconv.FormatFloat(dw.Weight, 'f', 6, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	RegisterPhase(PhaseProcess, NewProcessPhase)
}
