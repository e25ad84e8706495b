package corridor

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// layout is the corridor geometry of one direction in the rotated frame.
type layout struct {
	dx, dy  float64
	buffer  float64
	nCross  int
	columns int
	rows    int

	xStart  float64 // left edge of column 1
	yTop    float64
	yBottom float64
}

// newLayout sizes the cells from the park envelope and extends the domain
// upwind and downwind by the buffer distance.
func newLayout(park orb.Polygon, g config.GridConfig, maxCooling float64) layout {
	pb := park.Bound()
	width, height := pb.Max[0]-pb.Min[0], pb.Max[1]-pb.Min[1]

	l := layout{nCross: g.CrossWindPark}
	l.dx = width / float64(l.nCross)
	if l.dx < g.MinCellSize {
		l.nCross = max(1, int(width/g.MinCellSize))
		l.dx = width / float64(l.nCross)
	}
	nAlong := g.AlongWindPark
	l.dy = height / float64(nAlong)
	if l.dy < g.MinCellSize {
		nAlong = max(1, int(height/g.MinCellSize))
		l.dy = height / float64(nAlong)
	}
	if l.dx <= 0 {
		l.dx = g.MinCellSize
	}
	if l.dy <= 0 {
		l.dy = g.MinCellSize
	}

	// longest along-wind crossing of the park
	var transect float64
	for i := 1; i <= l.nCross; i++ {
		ivs := spatial.VerticalCrossings(park, pb.Min[0]+l.dx*(float64(i)-0.5))
		if len(ivs) > 0 {
			transect = math.Max(transect, ivs[len(ivs)-1].Hi-ivs[0].Lo)
		}
	}
	d := math.Max(transect, maxCooling)
	l.buffer = math.Ceil(d/l.dy-1e-9) * l.dy

	l.yTop = pb.Max[1] + l.buffer
	l.yBottom = pb.Min[1] - l.buffer
	l.rows = int(math.Round((l.yTop - l.yBottom) / l.dy))
	l.columns = l.nCross + g.CrossWindOutside
	l.xStart = pb.Min[0] - l.dx*float64(g.CrossWindOutside)/2
	return l
}

// column returns the x range of column i, 1-based.
func (l layout) column(i int) (left, right float64) {
	left = l.xStart + l.dx*float64(i-1)
	return left, left + l.dx
}

// fragments splits every column into city and park runs, from upwind to
// downwind. Park runs are the park crossings of the column centre line.
func (l layout) fragments(park orb.Polygon, g config.GridConfig, tol float64) []models.Fragment {
	var out []models.Fragment
	for col := 1; col <= l.columns; col++ {
		xl, xr := l.column(col)
		var parks []spatial.Interval
		for _, iv := range spatial.MergeIntervals(spatial.VerticalCrossings(park, (xl+xr)/2), tol) {
			band := orb.Bound{Min: orb.Point{xl, iv.Lo}, Max: orb.Point{xr, iv.Hi}}
			if spatial.ClipPolygon(band, park) != nil {
				parks = append(parks, iv)
			}
		}

		upstream := map[models.FragmentKind]int{
			models.FragmentCity: g.UpstreamMin,
			models.FragmentPark: g.UpstreamMin,
		}
		seenPark := false
		add := func(kind models.FragmentKind, top, bottom float64) {
			zone := models.ZoneBefore
			switch {
			case kind == models.FragmentPark:
				zone = models.ZonePark
			case seenPark:
				zone = models.ZoneAfter
			}
			f := models.Fragment{
				Column:     col,
				Upstream:   upstream[kind],
				Kind:       kind,
				Zone:       zone,
				XLeft:      xl,
				XRight:     xr,
				YTop:       top,
				YBottom:    bottom,
				Indicators: models.Indicators{},
			}
			if kind == models.FragmentPark {
				f.Geometry = spatial.ClipPolygon(f.Band(), park)
			}
			upstream[kind]++
			out = append(out, f)
		}

		cur := l.yTop
		for i := len(parks) - 1; i >= 0; i-- {
			iv := parks[i]
			if cur > iv.Hi {
				add(models.FragmentCity, cur, iv.Hi)
			}
			add(models.FragmentPark, iv.Hi, iv.Lo)
			seenPark = true
			cur = iv.Lo
		}
		if cur > l.yBottom {
			add(models.FragmentCity, cur, l.yBottom)
		}
	}
	closeUpstreamGaps(out, g.UpstreamMin)
	return out
}

// closeUpstreamGaps renumbers the fragments of each column and kind so that
// upstream ids run contiguously from first, keeping their order.
func closeUpstreamGaps(frags []models.Fragment, first int) {
	type key struct {
		col  int
		kind models.FragmentKind
	}
	groups := make(map[key][]int)
	for i := range frags {
		k := key{frags[i].Column, frags[i].Kind}
		groups[k] = append(groups[k], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return frags[idx[a]].Upstream < frags[idx[b]].Upstream
		})
		for n, i := range idx {
			frags[i].Upstream = first + n
		}
	}
}

// points samples the domain at cell centres and attaches each point to the
// fragment of its column holding it.
func (l layout) points(frags []models.Fragment, park orb.Polygon) []models.GridPoint {
	byColumn := make(map[int][]int)
	for i := range frags {
		byColumn[frags[i].Column] = append(byColumn[frags[i].Column], i)
	}

	parkFrac := make(map[int]float64)
	for i := range frags {
		if frags[i].Kind != models.FragmentPark {
			continue
		}
		band := frags[i].Band()
		if a := boundArea(band); a > 0 {
			parkFrac[i] = spatial.ClipArea(band, park) / a
		}
	}

	points := make([]models.GridPoint, 0, l.rows*l.columns)
	for r := 1; r <= l.rows; r++ {
		y := l.yTop - (float64(r)-0.5)*l.dy
		for col := 1; col <= l.columns; col++ {
			xl, xr := l.column(col)
			fi := -1
			for _, i := range byColumn[col] {
				if y <= frags[i].YTop && y >= frags[i].YBottom {
					fi = i
					break
				}
			}
			if fi < 0 {
				continue
			}
			f := &frags[fi]
			p := models.GridPoint{
				ID:       len(points) + 1,
				Row:      r,
				Col:      col,
				X:        (xl + xr) / 2,
				Y:        y,
				Upstream: f.Upstream,
				Zone:     f.Zone,
				Fragment: fi,
				DInput:   models.NoDistance,
				DOutput:  models.NoDistance,
				DPark:    models.NoDistance,
			}
			switch f.Zone {
			case models.ZonePark:
				p.DInput = f.YTop - y
				p.DOutput = y - f.YBottom
				p.CorridorParkFrac = parkFrac[fi]
			case models.ZoneAfter:
				p.DPark = f.YTop - y
			}
			points = append(points, p)
		}
	}
	return points
}
