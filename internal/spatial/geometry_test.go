package spatial

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func rect(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func TestAreaAndPerimeter(t *testing.T) {
	p := rect(0, 0, 10, 20)
	if a := Area(p); a != 200 {
		t.Errorf("area = %v, want 200", a)
	}
	if l := Perimeter(p); l != 60 {
		t.Errorf("perimeter = %v, want 60", l)
	}
	withHole := orb.Polygon{p[0], orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}}
	if a := Area(withHole); math.Abs(a-196) > 1e-9 {
		t.Errorf("area with hole = %v, want 196", a)
	}
}

func TestCrossings(t *testing.T) {
	// U shaped polygon opening to the North
	u := orb.Polygon{{{0, 0}, {30, 0}, {30, 30}, {20, 30}, {20, 10}, {10, 10}, {10, 30}, {0, 30}, {0, 0}}}

	tests := []struct {
		name string
		x    float64
		want []Interval
	}{
		{"left arm", 5, []Interval{{0, 30}}},
		{"gap", 15, []Interval{{0, 10}}},
		{"outside", 40, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerticalCrossings(u, tt.x)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("interval %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	horizontal := HorizontalCrossings(u, 20)
	want := []Interval{{0, 10}, {20, 30}}
	if len(horizontal) != 2 || horizontal[0] != want[0] || horizontal[1] != want[1] {
		t.Errorf("horizontal crossings = %v, want %v", horizontal, want)
	}
}

func TestMergeIntervals(t *testing.T) {
	got := MergeIntervals([]Interval{{5, 8}, {0, 2}, {1.99, 3}, {8.01, 9}}, 0.05)
	want := []Interval{{0, 3}, {5, 9}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClipHelpers(t *testing.T) {
	p := rect(0, 0, 10, 10)
	b := orb.Bound{Min: orb.Point{5, -5}, Max: orb.Point{20, 5}}
	if a := ClipArea(b, p); math.Abs(a-25) > 1e-9 {
		t.Errorf("clip area = %v, want 25", a)
	}
	if l := ClippedPerimeter(b, p); math.Abs(l-10) > 1e-9 {
		t.Errorf("clipped perimeter = %v, want 10", l)
	}
	far := orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{60, 60}}
	if ClipPolygon(far, p) != nil {
		t.Error("expected nil clip outside the polygon")
	}
}

func TestSegmentAzimuth(t *testing.T) {
	tests := []struct {
		seg  Segment
		want float64
	}{
		{Segment{orb.Point{0, 0}, orb.Point{0, 1}}, 0},
		{Segment{orb.Point{0, 0}, orb.Point{1, 0}}, math.Pi / 2},
		{Segment{orb.Point{0, 0}, orb.Point{0, -1}}, math.Pi},
		{Segment{orb.Point{0, 0}, orb.Point{-1, 0}}, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		if got := tt.seg.Azimuth(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("azimuth %v = %v, want %v", tt.seg, got, tt.want)
		}
	}
}

func TestSharedLengthAndWithin(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(10.02, 4, 20, 30)
	if !Within(a, b, 0.05) {
		t.Fatal("expected touching polygons")
	}
	if Within(a, rect(11, 0, 20, 10), 0.05) {
		t.Fatal("expected separated polygons")
	}
	var shared float64
	for _, s := range Segments(a) {
		shared += SharedLength(s, b, 0.05)
	}
	if math.Abs(shared-6) > 1e-9 {
		t.Errorf("shared length = %v, want 6", shared)
	}
}

func TestDirectionBin(t *testing.T) {
	tests := []struct {
		deg  float64
		want int
	}{
		{0, 0}, {44.9, 0}, {45, 1}, {359.9, 7}, {360, 0}, {-10, 7}, {190, 4},
	}
	for _, tt := range tests {
		if got := DirectionBin(tt.deg, 8); got != tt.want {
			t.Errorf("DirectionBin(%v) = %d, want %d", tt.deg, got, tt.want)
		}
	}
	if m := CircularMeanDegrees([]float64{350, 10}, nil); AngularDifferenceDegrees(m, 0) > 1e-9 {
		t.Errorf("circular mean = %v, want 0", m)
	}
}
