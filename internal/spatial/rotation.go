package spatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Rotator turns geometries counter-clockwise about a pivot. A wind blowing
// from bearing θ (degrees, clockwise from North) comes from the North once
// the layers are rotated by θ.
type Rotator struct {
	pivot    r2.Point
	sin, cos float64
	degrees  float64
}

// NewRotator builds the rotation of θ degrees about pivot.
func NewRotator(degrees float64, pivot orb.Point) *Rotator {
	rad := (s1.Angle(degrees) * s1.Degree).Radians()
	return &Rotator{
		pivot:   r2.Point{X: pivot[0], Y: pivot[1]},
		sin:     math.Sin(rad),
		cos:     math.Cos(rad),
		degrees: degrees,
	}
}

// Inverse returns the rotation undoing r.
func (r *Rotator) Inverse() *Rotator {
	return NewRotator(-r.degrees, orb.Point{r.pivot.X, r.pivot.Y})
}

// Degrees returns the rotation angle.
func (r *Rotator) Degrees() float64 {
	return r.degrees
}

// Point rotates a single point.
func (r *Rotator) Point(p orb.Point) orb.Point {
	v := r2.Point{X: p[0], Y: p[1]}.Sub(r.pivot)
	out := r2.Point{X: v.X*r.cos - v.Y*r.sin, Y: v.X*r.sin + v.Y*r.cos}.Add(r.pivot)
	return orb.Point{out.X, out.Y}
}

// Geometry returns a rotated copy of g. Bounds come back as polygons since a
// rotated box is no longer axis aligned.
func (r *Rotator) Geometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return r.Point(g)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(g))
		for i, p := range g {
			out[i] = r.Point(p)
		}
		return out
	case orb.LineString:
		return r.lineString(g)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			out[i] = r.lineString(ls)
		}
		return out
	case orb.Ring:
		return r.ring(g)
	case orb.Polygon:
		return r.Polygon(g)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			out[i] = r.Polygon(p)
		}
		return out
	case orb.Bound:
		return r.Polygon(g.ToPolygon())
	case orb.Collection:
		out := make(orb.Collection, len(g))
		for i, sub := range g {
			out[i] = r.Geometry(sub)
		}
		return out
	}
	return g
}

// Polygon rotates a polygon.
func (r *Rotator) Polygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		out[i] = r.ring(ring)
	}
	return out
}

func (r *Rotator) ring(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = r.Point(p)
	}
	return out
}

func (r *Rotator) lineString(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = r.Point(p)
	}
	return out
}

// Pivot returns the maximum X, maximum Y corner of the union envelope of all
// layers.
func Pivot(layers map[string]*geojson.FeatureCollection) (orb.Point, error) {
	rect := r2.EmptyRect()
	for _, fc := range layers {
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			b := f.Geometry.Bound()
			rect = rect.AddPoint(r2.Point{X: b.Min[0], Y: b.Min[1]})
			rect = rect.AddPoint(r2.Point{X: b.Max[0], Y: b.Max[1]})
		}
	}
	if rect.IsEmpty() {
		return orb.Point{}, fmt.Errorf("no geometry to derive a rotation pivot from")
	}
	hi := rect.Hi()
	return orb.Point{hi.X, hi.Y}, nil
}

// RotatedName is the name under which a rotated copy of a layer is kept.
func RotatedName(name string, degrees float64) string {
	return fmt.Sprintf("%s_rot%g", name, degrees)
}

// Rotate rotates every layer by θ degrees about pivot and returns the copies
// under their rotated names, properties untouched. A nil pivot is derived
// from all layers together. The pivot used is returned so the caller can
// rotate results back.
func Rotate(layers map[string]*geojson.FeatureCollection, degrees float64, pivot *orb.Point) (map[string]*geojson.FeatureCollection, orb.Point, error) {
	var p orb.Point
	if pivot != nil {
		p = *pivot
	} else {
		var err error
		if p, err = Pivot(layers); err != nil {
			return nil, orb.Point{}, err
		}
	}

	rot := NewRotator(degrees, p)
	out := make(map[string]*geojson.FeatureCollection, len(layers))
	for name, fc := range layers {
		rotated := geojson.NewFeatureCollection()
		if fc != nil {
			for _, f := range fc.Features {
				nf := geojson.NewFeature(rot.Geometry(f.Geometry))
				nf.ID = f.ID
				for k, v := range f.Properties {
					nf.Properties[k] = v
				}
				rotated.Append(nf)
			}
		}
		out[RotatedName(name, degrees)] = rotated
	}
	return out, p, nil
}
