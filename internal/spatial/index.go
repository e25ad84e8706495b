package spatial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// ValuePoint is an indexed point carrying a value and the identifier of the
// feature it was sampled from.
type ValuePoint struct {
	P     orb.Point
	ID    int
	Value float64
}

// Point implements orb.Pointer.
func (v *ValuePoint) Point() orb.Point {
	return v.P
}

// PointIndex is a quadtree of value points.
type PointIndex struct {
	tree *quadtree.Quadtree
	size int
}

// NewPointIndex indexes points; points outside the union bound are ignored.
func NewPointIndex(points []*ValuePoint) *PointIndex {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, p := range points {
		b = b.Extend(p.P)
	}
	if len(points) == 0 {
		b = orb.Bound{}
	}
	idx := &PointIndex{tree: quadtree.New(b.Pad(1))}
	for _, p := range points {
		if err := idx.tree.Add(p); err == nil {
			idx.size++
		}
	}
	return idx
}

// Len returns the number of indexed points.
func (idx *PointIndex) Len() int {
	return idx.size
}

// Nearest returns the k nearest points to p within maxDistance.
func (idx *PointIndex) Nearest(p orb.Point, k int, maxDistance float64) []*ValuePoint {
	found := idx.tree.KNearest(nil, p, k, maxDistance)
	out := make([]*ValuePoint, 0, len(found))
	for _, f := range found {
		out = append(out, f.(*ValuePoint))
	}
	return out
}

// BoundIndex finds polygons whose envelope intersects a query bound. It
// indexes envelope centres and widens queries by the largest half extent.
type BoundIndex struct {
	tree    *quadtree.Quadtree
	bounds  []orb.Bound
	maxHalf orb.Point
}

type boundEntry struct {
	centre orb.Point
	id     int
}

func (e *boundEntry) Point() orb.Point {
	return e.centre
}

// NewBoundIndex indexes the envelopes of polys; result ids are slice positions.
func NewBoundIndex(polys []orb.Polygon) *BoundIndex {
	idx := &BoundIndex{bounds: make([]orb.Bound, len(polys))}
	var all orb.Bound
	for i, p := range polys {
		b := p.Bound()
		idx.bounds[i] = b
		if i == 0 {
			all = b
		} else {
			all = all.Union(b)
		}
		idx.maxHalf[0] = math.Max(idx.maxHalf[0], (b.Max[0]-b.Min[0])/2)
		idx.maxHalf[1] = math.Max(idx.maxHalf[1], (b.Max[1]-b.Min[1])/2)
	}
	idx.tree = quadtree.New(all.Pad(1))
	for i, b := range idx.bounds {
		_ = idx.tree.Add(&boundEntry{centre: b.Center(), id: i})
	}
	return idx
}

// Query returns the ids of indexed polygons whose envelope intersects b.
func (idx *BoundIndex) Query(b orb.Bound) []int {
	wide := orb.Bound{
		Min: orb.Point{b.Min[0] - idx.maxHalf[0], b.Min[1] - idx.maxHalf[1]},
		Max: orb.Point{b.Max[0] + idx.maxHalf[0], b.Max[1] + idx.maxHalf[1]},
	}
	var ids []int
	for _, f := range idx.tree.InBound(nil, wide) {
		id := f.(*boundEntry).id
		if idx.bounds[id].Intersects(b) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
