package propagation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0.5, 8, -1},
		{8, 0.5, 8, 1},
		{4.25, 0.5, 8, 0},
		{-3, 0.5, 8, -1},
		{20, 0.5, 8, 1},
	}
	for _, tt := range tests {
		if got := Normalize(tt.v, tt.lo, tt.hi); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Normalize(%g, %g, %g) = %g, want %g", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
	for v := 0.5; v <= 8; v += 0.25 {
		n := Normalize(v, 0.5, 8)
		if n < -1 || n > 1 {
			t.Errorf("Normalize(%g) = %g out of bounds", v, n)
		}
		if back := Denormalize(n, 0.5, 8); math.Abs(back-v) > 1e-9 {
			t.Errorf("Denormalize(Normalize(%g)) = %g", v, back)
		}
	}
}

func TestVapourPressureDeficit(t *testing.T) {
	if got := VapourPressureDeficit(20, 100); math.Abs(got) > 1e-12 {
		t.Errorf("saturated air deficit = %g, want 0", got)
	}
	// about 23.4 hPa of saturation pressure at 20 degC
	if got := VapourPressureDeficit(20, 0); got < 22 || got > 25 {
		t.Errorf("dry air deficit at 20 degC = %g hPa", got)
	}
}

// column builds one corridor: city upwind, 100 m of lawn, city downwind.
func column() *models.DirectionModel {
	d := &models.DirectionModel{
		Fragments: []models.Fragment{
			{Column: 1, Kind: models.FragmentCity, Zone: models.ZoneBefore, YTop: 400, YBottom: 100, Indicators: models.Indicators{}},
			{Column: 1, Kind: models.FragmentPark, Zone: models.ZonePark, YTop: 100, YBottom: 0,
				Indicators: models.Indicators{models.CorridorParkFrac: 1},
				Cover:      map[models.Combo]float64{3: 1}},
			{Column: 1, Kind: models.FragmentCity, Zone: models.ZoneAfter, YTop: 0, YBottom: -300, Indicators: models.Indicators{}},
		},
	}
	add := func(frag int, y float64) {
		f := d.Fragments[frag]
		p := models.GridPoint{ID: len(d.Points) + 1, Y: y, Fragment: frag, Zone: f.Zone,
			DInput: models.NoDistance, DOutput: models.NoDistance, DPark: models.NoDistance}
		switch f.Zone {
		case models.ZonePark:
			p.DInput, p.DOutput = f.YTop-y, y-f.YBottom
		case models.ZoneAfter:
			p.DPark = f.YTop - y
		}
		d.Points = append(d.Points, p)
	}
	for _, y := range []float64{350, 150} {
		add(0, y)
	}
	for _, y := range []float64{90, 50, 10, 0} {
		add(1, y)
	}
	for _, y := range []float64{0, -10, -50, -250} {
		add(2, y)
	}
	return d
}

func newPropagator(t *testing.T) *Propagator {
	t.Helper()
	table, err := coefficients.Default()
	if err != nil {
		t.Fatalf("coefficients.Default() error = %v", err)
	}
	p, err := New(table, config.Default(), 12)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

var summer = Weather{AirTemperature: 28, WindSpeed: 2, RelativeHumidity: 45}

func TestPropagateZones(t *testing.T) {
	p := newPropagator(t)
	d := column()
	res := p.Propagate(d, summer)

	before := res.T[0]
	if res.T[1] != before || res.DeltaT[0] != 0 || res.DeltaT[1] != 0 {
		t.Errorf("upwind city = %v / %v, want uniform and no delta", res.T[:2], res.DeltaT[:2])
	}

	// deeper in the lawn is cooler
	for i := 3; i < 6; i++ {
		if res.T[i] >= res.T[i-1] || res.DeltaT[i] >= 0 {
			t.Errorf("park point %d: T %g after %g, delta %g", i, res.T[i], res.T[i-1], res.DeltaT[i])
		}
	}

	// leaving the park keeps the exit state, then recovers the city temperature
	exit := res.T[5]
	if math.Abs(res.T[6]-exit) > 1e-12 {
		t.Errorf("first downwind point T = %g, want park exit %g", res.T[6], exit)
	}
	for i := 7; i < 9; i++ {
		if math.Abs(res.DeltaT[i]) >= math.Abs(res.DeltaT[i-1]) {
			t.Errorf("downwind delta does not fade: %v", res.DeltaT[6:])
		}
	}
	if res.DeltaT[9] != 0 {
		t.Errorf("far downwind delta = %g, want 0", res.DeltaT[9])
	}
}

func TestPropagateOrderIndependent(t *testing.T) {
	p := newPropagator(t)
	d := column()
	want := p.Propagate(d, summer)
	byID := make(map[int]int, len(d.Points))
	for i, pt := range d.Points {
		byID[pt.ID] = i
	}

	shuffled := column()
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled.Points), func(i, j int) {
		shuffled.Points[i], shuffled.Points[j] = shuffled.Points[j], shuffled.Points[i]
	})
	got := p.Propagate(shuffled, summer)
	for i, pt := range shuffled.Points {
		w := byID[pt.ID]
		if got.T[i] != want.T[w] || got.DeltaT[i] != want.DeltaT[w] {
			t.Errorf("point %d: got %g/%g, want %g/%g", pt.ID, got.T[i], got.DeltaT[i], want.T[w], want.DeltaT[w])
		}
	}
}

func TestPropagateNoPark(t *testing.T) {
	p := newPropagator(t)
	d := column()
	d.Fragments[1].Indicators[models.CorridorParkFrac] = 0
	res := p.Propagate(d, summer)
	for i, dt := range res.DeltaT {
		if dt != 0 {
			t.Errorf("point %d delta = %g without park share", i, dt)
		}
	}
}

func TestNewUnknownHour(t *testing.T) {
	table, _ := coefficients.Default()
	if _, err := New(table, config.Default(), 5); err == nil {
		t.Error("New() for an uncalibrated hour should fail")
	}
}
