package analysis

import (
	"github.com/jengzang/coolparks-go/internal/analysis/temporal"
	"github.com/jengzang/coolparks-go/internal/analysis/viz"
	"github.com/jengzang/coolparks-go/internal/spatial"
	"github.com/jengzang/coolparks-go/internal/stats"
)

// FieldStats describes the distribution of a raster over its valued cells.
type FieldStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// HourSummary condenses the season aggregate of one time of day.
type HourSummary struct {
	Hour    int `json:"hour"`
	Days    int `json:"days"`
	Skipped int `json:"skipped"`

	// PrevailingDirection is the occurrence weighted circular mean of the
	// wind bins, nil when no day was usable. Spread is the weighted mean
	// angular distance of the bins to it.
	PrevailingDirection *float64 `json:"prevailing_direction,omitempty"`
	Spread              float64  `json:"direction_spread"`

	Tair   *FieldStats `json:"tair,omitempty"`
	DeltaT *FieldStats `json:"delta_t,omitempty"`
	// CooledArea is the area of the cells where the park lowers the air
	// temperature, in square map units.
	CooledArea float64 `json:"cooled_area"`
}

func summarizeHour(res *temporal.HourResult) HourSummary {
	s := HourSummary{Hour: res.Hour, Days: res.Days, Skipped: res.Skipped}

	var dirs, counts []float64
	for _, w := range res.Weights {
		if w.Count > 0 {
			dirs = append(dirs, w.Direction)
			counts = append(counts, float64(w.Count))
		}
	}
	if len(dirs) > 0 {
		prevailing := spatial.CircularMeanDegrees(dirs, counts)
		s.PrevailingDirection = &prevailing
		dist := make([]float64, len(dirs))
		for i, d := range dirs {
			dist[i] = spatial.AngularDifferenceDegrees(d, prevailing)
		}
		s.Spread = stats.WeightedMean(dist, counts)
	}

	s.Tair = fieldStats(res.Tair)
	s.DeltaT = fieldStats(res.DeltaT)
	if res.DeltaT != nil {
		cooled := 0
		for _, v := range stats.Finite(res.DeltaT.Values) {
			if v < 0 {
				cooled++
			}
		}
		s.CooledArea = float64(cooled) * res.DeltaT.CellSize * res.DeltaT.CellSize
	}
	return s
}

func fieldStats(g *viz.Grid) *FieldStats {
	if g == nil {
		return nil
	}
	values := stats.Finite(g.Values)
	if len(values) == 0 {
		return nil
	}
	fs := &FieldStats{Mean: stats.Mean(values), StdDev: stats.StdDev(values)}
	fs.Min, fs.Q1, fs.Median, fs.Q3, fs.Max = stats.FiveNumberSummary(values)
	return fs
}
