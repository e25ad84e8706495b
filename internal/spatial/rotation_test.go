package spatial

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func near(a, b orb.Point, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

func TestRotatorQuarterTurn(t *testing.T) {
	r := NewRotator(90, orb.Point{0, 0})
	// counter-clockwise: East goes North
	got := r.Point(orb.Point{10, 0})
	if !near(got, orb.Point{0, 10}, 1e-9) {
		t.Errorf("rotate (10,0) by 90 = %v, want (0,10)", got)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}}
	line := orb.LineString{{-20, 5}, {40, 70}, {300, -12}}

	layers := map[string]*geojson.FeatureCollection{
		"park":    geojson.NewFeatureCollection(),
		"streets": geojson.NewFeatureCollection(),
	}
	f := geojson.NewFeature(square)
	f.Properties["name"] = "central"
	layers["park"].Append(f)
	layers["streets"].Append(geojson.NewFeature(line))

	for _, theta := range []float64{0, 22.5, 45, 90, 135, 180, 270, 315, 359.9} {
		rotated, pivot, err := Rotate(layers, theta, nil)
		if err != nil {
			t.Fatalf("Rotate(%v): %v", theta, err)
		}
		if !near(pivot, orb.Point{300, 100}, 0) {
			t.Fatalf("pivot = %v, want (300,100)", pivot)
		}

		back := make(map[string]*geojson.FeatureCollection)
		for _, name := range []string{"park", "streets"} {
			back[name] = rotated[RotatedName(name, theta)]
		}
		restored, _, err := Rotate(back, -theta, &pivot)
		if err != nil {
			t.Fatal(err)
		}

		gotSquare := restored[RotatedName("park", -theta)].Features[0]
		if gotSquare.Properties["name"] != "central" {
			t.Errorf("theta %v: properties lost", theta)
		}
		poly := gotSquare.Geometry.(orb.Polygon)
		for i, p := range poly[0] {
			if !near(p, square[0][i], 1e-9) {
				t.Errorf("theta %v: vertex %d = %v, want %v", theta, i, p, square[0][i])
			}
		}
		ls := restored[RotatedName("streets", -theta)].Features[0].Geometry.(orb.LineString)
		for i, p := range ls {
			if !near(p, line[i], 1e-9) {
				t.Errorf("theta %v: line point %d = %v, want %v", theta, i, p, line[i])
			}
		}
	}
}

func TestRotatorInverse(t *testing.T) {
	r := NewRotator(33, orb.Point{12, -7})
	inv := r.Inverse()
	p := orb.Point{451.2, 87.3}
	if got := inv.Point(r.Point(p)); !near(got, p, 1e-9) {
		t.Errorf("inverse(rotate(p)) = %v, want %v", got, p)
	}
	if inv.Degrees() != -33 {
		t.Errorf("inverse degrees = %v", inv.Degrees())
	}
}

func TestPivotEmpty(t *testing.T) {
	if _, err := Pivot(map[string]*geojson.FeatureCollection{"empty": geojson.NewFeatureCollection()}); err == nil {
		t.Error("expected error for empty layers")
	}
}
