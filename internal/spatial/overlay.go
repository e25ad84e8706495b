package spatial

import (
	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
)

// Shape is a polygon set on which boolean operations are exact. It wraps the
// ctessum/geom representation, where a polygon is a flat list of rings.
type Shape struct {
	p geom.Polygon
}

// NewShape unions the given polygons into one shape.
func NewShape(polys ...orb.Polygon) Shape {
	var s Shape
	for _, p := range polys {
		next := Shape{p: toOverlay(p)}
		if s.IsEmpty() {
			s = next
			continue
		}
		s = s.Union(next)
	}
	return s
}

// BoundShape returns the shape of a rectangle.
func BoundShape(b orb.Bound) Shape {
	return Shape{p: toOverlay(b.ToPolygon())}
}

// IsEmpty reports whether the shape has no area.
func (s Shape) IsEmpty() bool {
	return len(s.p) == 0 || s.p.Area() == 0
}

// Area returns the shape area, holes subtracted.
func (s Shape) Area() float64 {
	if len(s.p) == 0 {
		return 0
	}
	return s.p.Area()
}

// Intersection returns the area shared by s and o.
func (s Shape) Intersection(o Shape) Shape {
	if s.IsEmpty() || o.IsEmpty() {
		return Shape{}
	}
	if !s.Bound().Intersects(o.Bound()) {
		return Shape{}
	}
	return Shape{p: flatten(s.p.Intersection(o.p))}
}

// Union returns the combination of s and o.
func (s Shape) Union(o Shape) Shape {
	if s.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return s
	}
	return Shape{p: flatten(s.p.Union(o.p))}
}

// Difference returns s with o removed.
func (s Shape) Difference(o Shape) Shape {
	if s.IsEmpty() || o.IsEmpty() {
		return s
	}
	return Shape{p: flatten(s.p.Difference(o.p))}
}

// Bound returns the envelope of the shape.
func (s Shape) Bound() orb.Bound {
	if len(s.p) == 0 {
		return orb.Bound{}
	}
	b := s.p.Bounds()
	return orb.Bound{
		Min: orb.Point{b.Min.X, b.Min.Y},
		Max: orb.Point{b.Max.X, b.Max.Y},
	}
}

// flatten merges the rings of a boolean operation result into one polygon.
// The result polygons never overlap.
func flatten(res geom.Polygonal) geom.Polygon {
	if res == nil {
		return nil
	}
	var out geom.Polygon
	for _, p := range res.Polygons() {
		out = append(out, p...)
	}
	return out
}

func toOverlay(p orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, r := range p {
		n := len(r)
		if n > 1 && r[0] == r[n-1] {
			n--
		}
		if n < 3 {
			continue
		}
		path := make(geom.Path, n)
		for i := 0; i < n; i++ {
			path[i] = geom.Point{X: r[i][0], Y: r[i][1]}
		}
		out = append(out, path)
	}
	return out
}

// OverlapRatio measures how much the polygons of a layer overlap each other:
// the summed area over the area of their union, minus one.
func OverlapRatio(polys []orb.Polygon) float64 {
	var sum float64
	for _, p := range polys {
		sum += Area(p)
	}
	union := NewShape(polys...).Area()
	if union == 0 {
		return 0
	}
	return sum/union - 1
}
