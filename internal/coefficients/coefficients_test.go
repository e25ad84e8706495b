package coefficients

import (
	"math"
	"testing"

	"github.com/jengzang/coolparks-go/internal/models"
)

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := table.Validate([]int{12, 23}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, h := range []int{12, 23} {
		park := table.Park[h]
		for _, c := range models.AllCombos() {
			c = table.ReplaceCombo(c)
			if _, ok := park.Combos[c]; !ok {
				t.Errorf("%dh: combo %d has no coefficients", h, c)
			}
		}
	}
	if err := table.Validate([]int{6}); err == nil {
		t.Error("expected error for a time of day without coefficients")
	}
}

func TestArchetypeFallback(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		geometry, orientation, size int
		wantGeometry                int
	}{
		{1, 1, 2, 1},
		{2, 3, 1, 2},
		{3, 4, 3, 3},
		{4, 2, 1, 4},
		{12, 1, 1, 0},
	}
	for _, tt := range tests {
		m, ok := table.Archetype(tt.geometry, tt.orientation, tt.size)
		if !ok {
			t.Fatalf("no archetype for %v", tt)
		}
		if m.GeometryClass != tt.wantGeometry {
			t.Errorf("archetype(%d,%d,%d) geometry = %d, want %d",
				tt.geometry, tt.orientation, tt.size, m.GeometryClass, tt.wantGeometry)
		}
	}

	empty := &Table{}
	if _, ok := empty.Archetype(12, 1, 1); ok {
		t.Error("empty table must not match")
	}
}

func TestEnvelope(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		age       float64
		renovated bool
		wantClass int
		wantRoof  float64
	}{
		{1950, false, 1, 1.04},
		{1973.9, false, 1, 1.04},
		{1974, false, 2, 1.48},
		{2010, false, 2, 1.48},
		{1900, true, 2, 1.48},
		{2400, false, 2, 1.48},
	}
	for _, tt := range tests {
		env, class := table.Envelope(tt.age, tt.renovated)
		if class != tt.wantClass || env.RoofResistance != tt.wantRoof {
			t.Errorf("Envelope(%v, %v) = (%v, %d), want roof %v class %d",
				tt.age, tt.renovated, env.RoofResistance, class, tt.wantRoof, tt.wantClass)
		}
	}
}

func TestLinearModelClampsCovariates(t *testing.T) {
	m := LinearModel{
		Intercept: 1,
		WindSpeed: 2,
		Terms:     map[models.Indicator]float64{models.MeanBuildHeight: 0.5},
		Min:       map[models.Indicator]float64{models.MeanBuildHeight: 0},
		Max:       map[models.Indicator]float64{models.MeanBuildHeight: 10},
	}
	got := m.Eval(models.Indicators{models.MeanBuildHeight: 100}, 0.5)
	if want := 1 + 2*0.5 + 0.5*10; got != want {
		t.Errorf("Eval = %v, want %v", got, want)
	}
	// missing indicators count as zero
	if got := m.Eval(models.Indicators{}, 0); got != 1 {
		t.Errorf("Eval(empty) = %v, want 1", got)
	}

	m.WindScaled = true
	got = m.Eval(models.Indicators{models.MeanBuildHeight: 4}, -0.5)
	if want := 1 + 2*-0.5 + -0.5*0.5*4; math.Abs(got-want) > 1e-12 {
		t.Errorf("wind scaled Eval = %v, want %v", got, want)
	}
}

func TestRegressionModelPairs(t *testing.T) {
	m := RegressionModel{
		Intercept: 10,
		Linear:    map[models.Indicator]float64{models.WindowWallRatio: 2, models.AmplificationFactor: -3},
		Pairs:     []PairTerm{{A: models.AmplificationFactor, B: models.WindowWallRatio, Coef: -4}},
		Max:       map[models.Indicator]float64{models.AmplificationFactor: 1},
	}
	x := models.Indicators{models.WindowWallRatio: 0.5, models.AmplificationFactor: 3}
	want := 10 + 2*0.5 - 3*1 - 4*1*0.5
	if got := m.Eval(x); math.Abs(got-want) > 1e-12 {
		t.Errorf("Eval = %v, want %v", got, want)
	}
}
