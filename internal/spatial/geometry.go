package spatial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
)

// Area returns the unsigned planar area of a geometry.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(planar.Area(g))
}

// Perimeter returns the boundary length of a polygon, holes included.
func Perimeter(p orb.Polygon) float64 {
	var total float64
	for _, r := range p {
		total += RingLength(r)
	}
	return total
}

// RingLength returns the closed length of a ring.
func RingLength(r orb.Ring) float64 {
	var total float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		total += planar.Distance(r[i], r[j])
	}
	return total
}

// Centroid returns the area centroid of a polygon.
func Centroid(p orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(p)
	return c
}

// Contains reports whether a point lies inside a polygonal geometry.
func Contains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	case orb.Bound:
		return g.Contains(pt)
	}
	return false
}

// Explode flattens polygonal geometries into single polygons, dropping empty
// and zero-area parts.
func Explode(g orb.Geometry) []orb.Polygon {
	var out []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) >= 3 && Area(g) > 0 {
			out = append(out, g)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			out = append(out, Explode(p)...)
		}
	case orb.Bound:
		out = append(out, Explode(g.ToPolygon())...)
	case orb.Collection:
		for _, sub := range g {
			out = append(out, Explode(sub)...)
		}
	}
	return out
}

// ClipArea returns the area of a polygon inside a bound.
func ClipArea(b orb.Bound, p orb.Polygon) float64 {
	if !b.Intersects(p.Bound()) {
		return 0
	}
	return Area(clip.Polygon(b, p.Clone()))
}

// ClipPolygon returns the part of a polygon inside a bound, or nil.
func ClipPolygon(b orb.Bound, p orb.Polygon) orb.Polygon {
	if !b.Intersects(p.Bound()) {
		return nil
	}
	c := clip.Polygon(b, p.Clone())
	if Area(c) == 0 {
		return nil
	}
	return c
}

// ClippedPerimeter returns the length of the polygon boundary inside a bound.
func ClippedPerimeter(b orb.Bound, p orb.Polygon) float64 {
	if !b.Intersects(p.Bound()) {
		return 0
	}
	var total float64
	for _, r := range p {
		ls := append(orb.LineString{}, r...)
		if len(r) > 0 && r[0] != r[len(r)-1] {
			ls = append(ls, r[0])
		}
		total += planar.Length(clip.LineString(b, ls))
	}
	return total
}

// ClippedLength returns the length of a segment inside a bound.
func ClippedLength(b orb.Bound, s Segment) float64 {
	if !b.Intersects(orb.Bound{Min: s.A, Max: s.A}.Extend(s.B)) {
		return 0
	}
	return planar.Length(clip.LineString(b, orb.LineString{s.A, s.B}))
}

// CCW returns a copy of the polygon whose outer ring is counter-clockwise.
func CCW(p orb.Polygon) orb.Polygon {
	out := p.Clone()
	if len(out) > 0 && out[0].Orientation() == orb.CW {
		out[0].Reverse()
	}
	return out
}

// Segment is an oriented polygon edge.
type Segment struct {
	A, B orb.Point
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return planar.Distance(s.A, s.B)
}

// Azimuth returns the segment heading in radians, clockwise from North in [0, 2π).
func (s Segment) Azimuth() float64 {
	az := math.Atan2(s.B[0]-s.A[0], s.B[1]-s.A[1])
	if az < 0 {
		az += 2 * math.Pi
	}
	return az
}

// Segments returns the edges of every ring of a polygon.
func Segments(p orb.Polygon) []Segment {
	var segs []Segment
	for _, r := range p {
		n := len(r)
		if n > 1 && r[0] == r[n-1] {
			n--
		}
		for i := 0; i < n; i++ {
			a, b := r[i], r[(i+1)%n]
			if a != b {
				segs = append(segs, Segment{A: a, B: b})
			}
		}
	}
	return segs
}

// Interval is a closed 1D range.
type Interval struct {
	Lo, Hi float64
}

// Length returns the interval extent.
func (iv Interval) Length() float64 {
	return iv.Hi - iv.Lo
}

// VerticalCrossings returns the sorted intervals of the line x = c inside the
// polygon, using the even-odd rule.
func VerticalCrossings(p orb.Polygon, c float64) []Interval {
	return crossings(p, c, 0)
}

// HorizontalCrossings returns the sorted intervals of the line y = c inside
// the polygon, using the even-odd rule.
func HorizontalCrossings(p orb.Polygon, c float64) []Interval {
	return crossings(p, c, 1)
}

// crossings intersects the polygon boundary with the axis-parallel line whose
// axis coordinate is c; axis 0 means x = c.
func crossings(p orb.Polygon, c float64, axis int) []Interval {
	other := 1 - axis
	var hits []float64
	for _, seg := range Segments(p) {
		a, b := seg.A, seg.B
		// half-open rule: vertices on the line count once
		if (a[axis] <= c) == (b[axis] <= c) {
			continue
		}
		t := (c - a[axis]) / (b[axis] - a[axis])
		hits = append(hits, a[other]+t*(b[other]-a[other]))
	}
	sort.Float64s(hits)
	var out []Interval
	for i := 0; i+1 < len(hits); i += 2 {
		if hits[i+1] > hits[i] {
			out = append(out, Interval{Lo: hits[i], Hi: hits[i+1]})
		}
	}
	return out
}

// MergeIntervals unions overlapping or touching intervals.
func MergeIntervals(ivs []Interval, tol float64) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := append([]Interval(nil), ivs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Lo <= last.Hi+tol {
			last.Hi = math.Max(last.Hi, iv.Hi)
			continue
		}
		out = append(out, iv)
	}
	return out
}
