package propagation

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/analysis/corridor"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

func square(x0, y0, size float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0}}}
}

// latticeCity places one 10 m building of 10 m height in the middle of every
// 20 m cell of the corridor domain around a 100 m park at the origin. With the
// default grid the wind 0 domain has 17 columns of 20 m from x = -120 and
// spans y = -260 to 360; park columns 7 to 11 keep the park free.
func latticeCity() []models.Building {
	var buildings []models.Building
	for col := 1; col <= 17; col++ {
		x0 := -115 + 20*float64(col-1)
		for row := 0; row < 31; row++ {
			y0 := -255 + 20*float64(row)
			if col >= 7 && col <= 11 && y0 > 0 && y0 < 100 {
				continue
			}
			buildings = append(buildings, models.Building{
				ID:        len(buildings) + 1,
				Footprint: square(x0, y0, 10),
				Height:    10,
				Age:       1970,
				WWR:       0.25,
			})
		}
	}
	return buildings
}

func TestPropagateLatticeCity(t *testing.T) {
	cfg := config.Default()
	table, err := coefficients.Default()
	if err != nil {
		t.Fatalf("coefficients.Default() error = %v", err)
	}
	city := corridor.NewCity(latticeCity(), cfg.Geometry.MergeTolerance, cfg.Geometry.BlockBuffer, table)
	in := &corridor.Inputs{Park: square(0, 0, 100)}

	d, err := corridor.NewBuilder(cfg, table).BuildDirection(context.Background(), 0, orb.Point{220, 360}, in, city)
	if err != nil {
		t.Fatalf("BuildDirection() error = %v", err)
	}
	if d.Columns != 17 {
		t.Fatalf("columns = %d, want 17", d.Columns)
	}

	p, err := New(table, cfg, 12)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := p.Propagate(d, Weather{AirTemperature: 28, WindSpeed: 3, RelativeHumidity: 45})

	type sample struct {
		dist, t, dt float64
	}
	before := make(map[int][]float64)
	park := make(map[int][]sample)
	after := make(map[int][]sample)
	for i, pt := range d.Points {
		col := d.Fragments[pt.Fragment].Column
		switch pt.Zone {
		case models.ZoneBefore:
			before[col] = append(before[col], res.T[i])
		case models.ZonePark:
			park[col] = append(park[col], sample{pt.DInput, res.T[i], res.DeltaT[i]})
		case models.ZoneAfter:
			after[col] = append(after[col], sample{pt.DPark, res.T[i], res.DeltaT[i]})
		}
	}

	// edge columns lose a street to the domain border and the columns
	// flanking the park see the wide street across it
	interior := []int{2, 3, 4, 5, 7, 8, 9, 10, 11, 13, 14, 15, 16}
	upstream := before[interior[0]][0]
	for _, col := range interior {
		if len(before[col]) == 0 {
			t.Fatalf("column %d has no upwind point", col)
		}
		for _, v := range before[col] {
			if math.Abs(v-upstream) > 1e-9 {
				t.Errorf("column %d upwind T = %.6f, want uniform %.6f", col, v, upstream)
			}
		}
	}

	for col := 7; col <= 11; col++ {
		if len(park[col]) != 5 {
			t.Errorf("column %d has %d park points, want 5", col, len(park[col]))
		}
		for _, s := range park[col] {
			if s.t >= upstream || s.dt >= 0 {
				t.Errorf("column %d park point at %g m: T %.4f, delta %.4f, upwind %.4f", col, s.dist, s.t, s.dt, upstream)
			}
		}

		down := after[col]
		if len(down) == 0 {
			t.Fatalf("column %d has no downwind point", col)
		}
		sort.Slice(down, func(i, j int) bool { return down[i].dist < down[j].dist })
		if down[0].t >= upstream {
			t.Errorf("column %d first downwind T = %.4f, want below %.4f", col, down[0].t, upstream)
		}
		for i, s := range down {
			if s.t > upstream+1e-9 {
				t.Errorf("column %d downwind T = %.6f at %g m exceeds the city baseline %.6f", col, s.t, s.dist, upstream)
			}
			if i > 0 && (s.t < down[i-1].t-1e-12 || s.dt < down[i-1].dt-1e-12) {
				t.Errorf("column %d downwind recovery not monotonic at %g m: %.6f after %.6f", col, s.dist, s.t, down[i-1].t)
			}
		}
	}
}
