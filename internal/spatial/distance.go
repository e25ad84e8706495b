package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PointSegmentDistance returns the planar distance from p to segment ab.
func PointSegmentDistance(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return planar.Distance(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return planar.Distance(p, orb.Point{a[0] + t*dx, a[1] + t*dy})
}

// SegmentDistance returns the smallest distance between two segments.
func SegmentDistance(s, o Segment) float64 {
	if segmentsIntersect(s, o) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(s.A, o.A, o.B), PointSegmentDistance(s.B, o.A, o.B)),
		math.Min(PointSegmentDistance(o.A, s.A, s.B), PointSegmentDistance(o.B, s.A, s.B)),
	)
}

func segmentsIntersect(s, o Segment) bool {
	d1 := cross(o.A, o.B, s.A)
	d2 := cross(o.A, o.B, s.B)
	d3 := cross(s.A, s.B, o.A)
	d4 := cross(s.A, s.B, o.B)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// Within reports whether two polygons come closer than tol, overlap included.
func Within(a, b orb.Polygon, tol float64) bool {
	if !a.Bound().Pad(tol).Intersects(b.Bound()) {
		return false
	}
	if len(b) > 0 && len(b[0]) > 0 && planar.PolygonContains(a, b[0][0]) {
		return true
	}
	if len(a) > 0 && len(a[0]) > 0 && planar.PolygonContains(b, a[0][0]) {
		return true
	}
	bSegs := Segments(b)
	for _, s := range Segments(a) {
		for _, o := range bSegs {
			if SegmentDistance(s, o) <= tol {
				return true
			}
		}
	}
	return false
}

// SharedSegments returns the pieces of seg lying along the boundary of
// other, within tol.
func SharedSegments(seg Segment, other orb.Polygon, tol float64) []Segment {
	length := seg.Length()
	if length == 0 {
		return nil
	}
	ux, uy := (seg.B[0]-seg.A[0])/length, (seg.B[1]-seg.A[1])/length
	var covered []Interval
	for _, o := range Segments(other) {
		// both ends of o must sit on the supporting line of seg
		if math.Abs(cross(seg.A, seg.B, o.A))/length > tol || math.Abs(cross(seg.A, seg.B, o.B))/length > tol {
			continue
		}
		t1 := (o.A[0]-seg.A[0])*ux + (o.A[1]-seg.A[1])*uy
		t2 := (o.B[0]-seg.A[0])*ux + (o.B[1]-seg.A[1])*uy
		lo, hi := math.Max(0, math.Min(t1, t2)), math.Min(length, math.Max(t1, t2))
		if hi > lo {
			covered = append(covered, Interval{Lo: lo, Hi: hi})
		}
	}
	merged := MergeIntervals(covered, 0)
	out := make([]Segment, 0, len(merged))
	for _, iv := range merged {
		out = append(out, Segment{
			A: orb.Point{seg.A[0] + ux*iv.Lo, seg.A[1] + uy*iv.Lo},
			B: orb.Point{seg.A[0] + ux*iv.Hi, seg.A[1] + uy*iv.Hi},
		})
	}
	return out
}

// SharedLength returns the length of the edges of seg lying along the
// boundary of other, within tol.
func SharedLength(seg Segment, other orb.Polygon, tol float64) float64 {
	var total float64
	for _, s := range SharedSegments(seg, other, tol) {
		total += s.Length()
	}
	return total
}
