package corridor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

func rect(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func testTable(t *testing.T) *coefficients.Table {
	t.Helper()
	table, err := coefficients.Default()
	if err != nil {
		t.Fatalf("coefficients.Default() error = %v", err)
	}
	return table
}

func TestLayoutSquarePark(t *testing.T) {
	cfg := config.Default()
	l := newLayout(rect(0, 0, 100, 100), cfg.Grid, cfg.MaxCoolingDistance())

	if l.nCross != 5 || l.dx != 20 || l.dy != 20 {
		t.Fatalf("cells = %d x %g by %g, want 5 x 20 by 20", l.nCross, l.dx, l.dy)
	}
	if l.buffer != 260 {
		t.Errorf("buffer = %g, want 260", l.buffer)
	}
	if l.rows != 31 || l.columns != 17 {
		t.Errorf("grid = %d rows x %d columns, want 31 x 17", l.rows, l.columns)
	}
	if left, _ := l.column(7); left != 0 {
		t.Errorf("column 7 starts at %g, want 0", left)
	}
}

func TestFragmentsContiguous(t *testing.T) {
	cfg := config.Default()
	park := rect(0, 0, 100, 100)
	l := newLayout(park, cfg.Grid, cfg.MaxCoolingDistance())
	frags := l.fragments(park, cfg.Grid, cfg.Geometry.MergeTolerance)

	if len(frags) != 27 {
		t.Fatalf("len(fragments) = %d, want 27", len(frags))
	}
	d := &models.DirectionModel{Fragments: frags}
	for col, chain := range d.ColumnChains() {
		if top := frags[chain[0]].YTop; top != l.yTop {
			t.Errorf("column %d starts at %g, want %g", col, top, l.yTop)
		}
		if bottom := frags[chain[len(chain)-1]].YBottom; bottom != l.yBottom {
			t.Errorf("column %d ends at %g, want %g", col, bottom, l.yBottom)
		}
		for i := 1; i < len(chain); i++ {
			if frags[chain[i-1]].YBottom != frags[chain[i]].YTop {
				t.Errorf("column %d has a gap between fragments %d and %d", col, i-1, i)
			}
		}
		parkColumn := col >= 7 && col <= 11
		if parkColumn && len(chain) != 3 {
			t.Errorf("park column %d has %d fragments, want 3", col, len(chain))
		}
		if parkColumn {
			zones := []models.Zone{models.ZoneBefore, models.ZonePark, models.ZoneAfter}
			for i, fi := range chain {
				if frags[fi].Zone != zones[i] {
					t.Errorf("column %d fragment %d zone = %s, want %s", col, i, frags[fi].Zone, zones[i])
				}
			}
		}
	}
}

func TestPointsDistances(t *testing.T) {
	cfg := config.Default()
	park := rect(0, 0, 100, 100)
	l := newLayout(park, cfg.Grid, cfg.MaxCoolingDistance())
	frags := l.fragments(park, cfg.Grid, cfg.Geometry.MergeTolerance)
	points := l.points(frags, park)

	if len(points) != 31*17 {
		t.Fatalf("len(points) = %d, want %d", len(points), 31*17)
	}
	for _, p := range points {
		switch {
		case p.Zone == models.ZonePark && p.Y == 90:
			if p.DInput != 10 || p.DOutput != 90 || p.DPark != models.NoDistance {
				t.Errorf("park point %+v has wrong distances", p)
			}
			if p.CorridorParkFrac != 1 {
				t.Errorf("park point corridor fraction = %g, want 1", p.CorridorParkFrac)
			}
		case p.Zone == models.ZoneAfter && p.Y == -10:
			if p.DPark != 10 || p.DInput != models.NoDistance {
				t.Errorf("after point %+v has wrong distances", p)
			}
		case p.Zone == models.ZoneBefore:
			if p.DPark != models.NoDistance || p.DInput != models.NoDistance {
				t.Errorf("before point %+v has park distances", p)
			}
		}
	}
}

func TestCloseUpstreamGaps(t *testing.T) {
	frags := []models.Fragment{
		{Column: 1, Kind: models.FragmentCity, Upstream: 7},
		{Column: 1, Kind: models.FragmentCity, Upstream: 1},
		{Column: 1, Kind: models.FragmentCity, Upstream: 3},
		{Column: 1, Kind: models.FragmentPark, Upstream: 4},
		{Column: 2, Kind: models.FragmentCity, Upstream: 2},
	}
	closeUpstreamGaps(frags, 1)
	want := []int{3, 1, 2, 1, 1}
	for i, f := range frags {
		if f.Upstream != want[i] {
			t.Errorf("fragment %d upstream = %d, want %d", i, f.Upstream, want[i])
		}
	}
}

func TestCoverFractions(t *testing.T) {
	table := testTable(t)
	in := &Inputs{
		Park:   rect(0, 0, 100, 100),
		Ground: []models.CoverPolygon{{Type: models.GroundHerbaceous, Polygon: rect(-10, -10, 50, 110)}},
		Canopy: []models.CoverPolygon{{Type: models.CanopyIsolatedTree, Polygon: rect(-10, -10, 25, 110)}},
	}
	cs := newCoverShapes(in)

	tests := []struct {
		name   string
		x0, x1 float64
		want   map[models.Combo]float64
	}{
		{"under trees", 0, 20, map[models.Combo]float64{13: 1, 3: 0, 1: 0}},
		{"partly under trees", 20, 40, map[models.Combo]float64{13: 0.25, 3: 0.75, 1: 0}},
		{"uncovered", 60, 80, map[models.Combo]float64{13: 0, 3: 0, 1: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag := &models.Fragment{XLeft: tt.x0, XRight: tt.x1, YTop: 100, YBottom: 0}
			frag.Geometry = rect(tt.x0, 0, tt.x1, 100)
			got := cs.fractions(frag, table)
			var sum float64
			for _, v := range got {
				sum += v
			}
			if !near(sum, 1, 1e-6) {
				t.Errorf("fractions sum to %g, want 1", sum)
			}
			for c, w := range tt.want {
				if !near(got[c], w, 1e-6) {
					t.Errorf("combo %d = %g, want %g", c, got[c], w)
				}
			}
			if _, ok := got[2]; ok {
				t.Error("water combo should be replaced")
			}
		})
	}
}

func TestCoverFractionsOverfull(t *testing.T) {
	table := testTable(t)
	in := &Inputs{
		Park: rect(0, 0, 10, 10),
		Ground: []models.CoverPolygon{
			{Type: models.GroundHerbaceous, Polygon: rect(-1, -1, 11, 11)},
			{Type: models.GroundImpermeable, Polygon: rect(-1, -1, 11, 11)},
		},
	}
	frag := &models.Fragment{XLeft: 0, XRight: 10, YTop: 10, YBottom: 0, Geometry: rect(0, 0, 10, 10)}
	got := newCoverShapes(in).fractions(frag, table)
	if !near(got[3], 0.5, 1e-6) || !near(got[4], 0.5, 1e-6) || got[1] != 0 {
		t.Errorf("overfull fractions = %v, want 3 and 4 at 0.5", got)
	}
}

func TestNewInputsDiagnostics(t *testing.T) {
	v := config.Default().Validation
	parks := []orb.Polygon{rect(0, 0, 10, 10), rect(100, 100, 200, 200)}
	ground := []models.CoverPolygon{
		{Type: 3, Polygon: rect(100, 100, 150, 200)},
		{Type: 4, Polygon: rect(140, 100, 160, 200)},
	}
	in, diags, err := NewInputs(parks, ground, nil, 2, v)
	if err != nil {
		t.Fatalf("NewInputs() error = %v", err)
	}
	if in.Park.Bound().Min[0] != 100 {
		t.Errorf("largest park not selected: %v", in.Park.Bound())
	}
	codes := make(map[string]bool)
	for _, d := range diags {
		codes[d.Code] = true
	}
	for _, code := range []string{models.DiagParkCount, models.DiagGroundCoverage, models.DiagGroundOverlap, models.DiagInvalidCoverTypes} {
		if !codes[code] {
			t.Errorf("missing diagnostic %s", code)
		}
	}
	if codes[models.DiagCanopyOverlap] {
		t.Error("unexpected canopy overlap diagnostic")
	}

	if _, _, err := NewInputs(nil, nil, nil, 0, v); !errors.Is(err, ErrNoPark) {
		t.Errorf("NewInputs(no park) error = %v, want ErrNoPark", err)
	}
}

func TestBuildDirectionWithoutBuildings(t *testing.T) {
	cfg := config.Default()
	table := testTable(t)
	in := &Inputs{Park: rect(0, 0, 100, 100)}
	city := NewCity(nil, cfg.Geometry.MergeTolerance, cfg.Geometry.BlockBuffer, table)

	d, err := NewBuilder(cfg, table).BuildDirection(context.Background(), 0, orb.Point{100, 100}, in, city)
	if err != nil {
		t.Fatalf("BuildDirection() error = %v", err)
	}
	if d.Columns != 17 || d.Rows != 31 || len(d.Fragments) != 27 {
		t.Fatalf("model = %d columns, %d rows, %d fragments", d.Columns, d.Rows, len(d.Fragments))
	}
	for _, f := range d.Fragments {
		if f.Kind == models.FragmentPark {
			if f.Cover[models.DefaultCombo] != 1 {
				t.Errorf("park fragment default cover = %g, want 1", f.Cover[models.DefaultCombo])
			}
			if !near(f.Indicators[models.CorridorParkFrac], 1, 1e-9) {
				t.Errorf("corridor park fraction = %g, want 1", f.Indicators[models.CorridorParkFrac])
			}
			continue
		}
		for _, k := range models.CityIndicators {
			v, ok := f.Indicators[k]
			if !ok {
				t.Errorf("indicator %s missing", k)
			}
			want := 0.0
			if k == models.OpeningFraction {
				want = 1
			}
			if v != want {
				t.Errorf("indicator %s = %g, want %g", k, v, want)
			}
		}
	}
}

func TestBuildDirectionCancelled(t *testing.T) {
	cfg := config.Default()
	table := testTable(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(cfg, table).BuildDirection(ctx, 45, orb.Point{100, 100}, &Inputs{Park: rect(0, 0, 100, 100)}, NewCity(nil, 0.05, 50, table))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BuildDirection() error = %v, want context.Canceled", err)
	}
}
