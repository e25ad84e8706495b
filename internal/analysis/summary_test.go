package analysis

import (
	"math"
	"testing"

	"github.com/jengzang/coolparks-go/internal/analysis/temporal"
	"github.com/jengzang/coolparks-go/internal/analysis/viz"
	"github.com/jengzang/coolparks-go/internal/models"
)

func TestSummarizeHour(t *testing.T) {
	res := &temporal.HourResult{
		Hour:    15,
		Days:    10,
		Skipped: 6,
		Weights: []models.DirectionWeight{
			{Hour: 15, Direction: 0, Count: 2, Weight: 0.5},
			{Hour: 15, Direction: 90, Count: 0},
			{Hour: 15, Direction: 350, Count: 2, Weight: 0.5},
		},
		DeltaT: &viz.Grid{CellSize: 10, Cols: 2, Rows: 2, Values: []float64{-1, 0, math.NaN(), -2}},
	}
	s := summarizeHour(res)

	if s.PrevailingDirection == nil || math.Abs(*s.PrevailingDirection-355) > 1e-9 {
		t.Fatalf("PrevailingDirection = %v, want 355", s.PrevailingDirection)
	}
	if math.Abs(s.Spread-5) > 1e-9 {
		t.Errorf("Spread = %g, want 5", s.Spread)
	}
	if s.Tair != nil {
		t.Errorf("Tair = %+v, want nil", s.Tair)
	}
	if s.DeltaT == nil || s.DeltaT.Min != -2 || s.DeltaT.Max != 0 || s.DeltaT.Median != -1 {
		t.Errorf("DeltaT = %+v", s.DeltaT)
	}
	if s.CooledArea != 200 {
		t.Errorf("CooledArea = %g, want 200", s.CooledArea)
	}
}

func TestSummarizeHourWithoutWeather(t *testing.T) {
	s := summarizeHour(&temporal.HourResult{
		Hour:    23,
		Days:    3,
		Skipped: 3,
		Weights: []models.DirectionWeight{{Hour: 23, Direction: 0}},
	})
	if s.PrevailingDirection != nil || s.DeltaT != nil || s.CooledArea != 0 {
		t.Errorf("summary = %+v, want empty", s)
	}
}
