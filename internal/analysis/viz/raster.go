// Package viz turns point results into rasters, isovalue bands and files
// readable by GIS tools.
package viz

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// Grid is a north-up raster. Values are stored row by row from the top row;
// NaN marks cells without data.
type Grid struct {
	XMin, YMin float64
	CellSize   float64
	Cols, Rows int
	Values     []float64
}

// NewGrid covers b with square cells, every cell set to NaN.
func NewGrid(b orb.Bound, cell float64) *Grid {
	g := &Grid{
		XMin:     math.Floor(b.Min[0]/cell) * cell,
		YMin:     math.Floor(b.Min[1]/cell) * cell,
		CellSize: cell,
	}
	g.Cols = max(1, int(math.Ceil((b.Max[0]-g.XMin)/cell)))
	g.Rows = max(1, int(math.Ceil((b.Max[1]-g.YMin)/cell)))
	g.Values = make([]float64, g.Cols*g.Rows)
	for i := range g.Values {
		g.Values[i] = math.NaN()
	}
	return g
}

// Clone returns a grid of the same geometry with every cell set to NaN.
func (g *Grid) Clone() *Grid {
	out := *g
	out.Values = make([]float64, len(g.Values))
	for i := range out.Values {
		out.Values[i] = math.NaN()
	}
	return &out
}

// Center returns the centre of cell (row, col), row 0 being the top row.
func (g *Grid) Center(row, col int) orb.Point {
	return orb.Point{
		g.XMin + (float64(col)+0.5)*g.CellSize,
		g.YMin + (float64(g.Rows-row)-0.5)*g.CellSize,
	}
}

// CellBound returns the extent of cell (row, col).
func (g *Grid) CellBound(row, col int) orb.Bound {
	c := g.Center(row, col)
	h := g.CellSize / 2
	return orb.Bound{Min: orb.Point{c[0] - h, c[1] - h}, Max: orb.Point{c[0] + h, c[1] + h}}
}

// At returns the value of cell (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Set stores the value of cell (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Values[row*g.Cols+col] = v
}

// Sample returns the value of the cell holding p, NaN outside the grid.
func (g *Grid) Sample(p orb.Point) float64 {
	col := int(math.Floor((p[0] - g.XMin) / g.CellSize))
	row := g.Rows - 1 - int(math.Floor((p[1]-g.YMin)/g.CellSize))
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return math.NaN()
	}
	return g.At(row, col)
}

// Range returns the smallest and largest finite values, ok false when none.
func (g *Grid) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range g.Values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// Interpolate fills g by inverse distance weighting of the indexed points.
// Cells with no point within the search radius stay NaN.
func Interpolate(g *Grid, idx *spatial.PointIndex, rc config.RasterConfig) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			g.Set(row, col, idw(idx, g.Center(row, col), rc))
		}
	}
}

func idw(idx *spatial.PointIndex, p orb.Point, rc config.RasterConfig) float64 {
	var num, den float64
	for _, n := range idx.Nearest(p, rc.Neighbours, rc.SearchRadius) {
		if math.IsNaN(n.Value) {
			continue
		}
		d := math.Hypot(n.P[0]-p[0], n.P[1]-p[1])
		if d < 1e-9 {
			return n.Value
		}
		w := 1 / math.Pow(d, rc.Power)
		num += w * n.Value
		den += w
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// Combine averages grids cell by cell with the given weights. Grids that
// have no value in a cell do not take part in its average.
func Combine(grids []*Grid, weights []float64) *Grid {
	if len(grids) == 0 {
		return nil
	}
	out := grids[0].Clone()
	for i := range out.Values {
		var num, den float64
		for k, g := range grids {
			v := g.Values[i]
			if math.IsNaN(v) || weights[k] == 0 {
				continue
			}
			num += weights[k] * v
			den += weights[k]
		}
		if den > 0 {
			out.Values[i] = num / den
		}
	}
	return out
}
