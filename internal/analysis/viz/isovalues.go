package viz

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/coolparks-go/internal/stats"
)

// Band is a range of raster values and the area where the raster falls in it.
type Band struct {
	Low, High float64
	Area      orb.MultiPolygon
}

// BandInterval returns the band width for a value range split in n parts,
// truncated to one significant digit.
func BandInterval(lo, hi float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return stats.TruncTo((hi - lo) / float64(n))
}

// Isovalues groups the cells of g into bands of width interval centred on
// zero, so that no-effect areas share one band. Runs of adjacent cells of a
// row are emitted as one rectangle. Bands come back in increasing order.
func Isovalues(g *Grid, interval float64) []Band {
	lo, _, ok := g.Range()
	if !ok {
		return nil
	}
	key := func(v float64) int {
		if interval <= 0 {
			return 0
		}
		return int(math.Round(v / interval))
	}

	areas := make(map[int]orb.MultiPolygon)
	for row := 0; row < g.Rows; row++ {
		col := 0
		for col < g.Cols {
			v := g.At(row, col)
			if math.IsNaN(v) {
				col++
				continue
			}
			k := key(v)
			start := col
			for col < g.Cols && !math.IsNaN(g.At(row, col)) && key(g.At(row, col)) == k {
				col++
			}
			b := g.CellBound(row, start).Union(g.CellBound(row, col-1))
			areas[k] = append(areas[k], b.ToPolygon())
		}
	}

	keys := make([]int, 0, len(areas))
	for k := range areas {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	bands := make([]Band, 0, len(keys))
	for _, k := range keys {
		b := Band{Area: areas[k]}
		if interval > 0 {
			b.Low, b.High = (float64(k)-0.5)*interval, (float64(k)+0.5)*interval
		} else {
			b.Low, b.High = lo, lo
		}
		bands = append(bands, b)
	}
	return bands
}

// BandFeatures encodes isovalue bands as GeoJSON.
func BandFeatures(bands []Band) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, b := range bands {
		f := geojson.NewFeature(b.Area)
		f.Properties["ID"] = i + 1
		f.Properties["LOW"] = b.Low
		f.Properties["HIGH"] = b.High
		f.Properties["VALUE"] = (b.Low + b.High) / 2
		fc.Append(f)
	}
	return fc
}
