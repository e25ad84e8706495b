package corridor

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
	"github.com/jengzang/coolparks-go/internal/stats"
)

// probeLine is a cross-wind line with the streets it crosses.
type probeLine struct {
	y       float64
	streets []spatial.Interval
}

// probeLines casts cross-wind lines every step from the domain bottom and
// records the gaps between consecutive blocks along each of them.
func (c *City) probeLines(l layout, step, tol float64) []probeLine {
	_, xmax := l.column(l.columns)
	xmin := l.xStart
	var lines []probeLine
	for y := l.yBottom + step; y < l.yTop; y += step {
		lines = append(lines, probeLine{y: y, streets: c.streetsAt(y, xmin, xmax, tol)})
	}
	return lines
}

func (c *City) streetsAt(y, xmin, xmax, tol float64) []spatial.Interval {
	type crossing struct {
		iv    spatial.Interval
		block int
	}
	var crossings []crossing
	for _, k := range c.BlocksIn(orb.Bound{Min: orb.Point{xmin, y}, Max: orb.Point{xmax, y}}) {
		var raw []spatial.Interval
		for _, m := range c.Blocks[k].Members {
			raw = append(raw, spatial.HorizontalCrossings(m, y)...)
		}
		for _, iv := range spatial.MergeIntervals(raw, tol) {
			crossings = append(crossings, crossing{iv: iv, block: k})
		}
	}
	sort.Slice(crossings, func(i, j int) bool { return crossings[i].iv.Lo < crossings[j].iv.Lo })

	var streets []spatial.Interval
	for i := 1; i < len(crossings); i++ {
		prev, cur := crossings[i-1], crossings[i]
		if prev.block != cur.block && cur.iv.Lo > prev.iv.Hi {
			streets = append(streets, spatial.Interval{Lo: prev.iv.Hi, Hi: cur.iv.Lo})
		}
	}
	return streets
}

// cityIndicators computes the morphology of a city fragment. Fragments with
// no building get zeros everywhere except the opening fraction.
func (c *City) cityIndicators(frag *models.Fragment, lines []probeLine) models.Indicators {
	rect := frag.Band()
	rectArea := boundArea(rect)
	ind := models.Indicators{}
	if rectArea == 0 {
		ind.Coalesce(models.CityIndicators)
		return ind
	}

	var heights, areas []float64
	for _, i := range c.BuildingsIn(rect) {
		if a := spatial.ClipArea(rect, c.Buildings[i].Footprint); a > 0 {
			heights = append(heights, c.Buildings[i].Height)
			areas = append(areas, a)
		}
	}
	if len(areas) > 0 {
		ind[models.MeanBuildHeight] = stats.WeightedMean(heights, areas)
		ind[models.GeomMeanBuildHeight] = stats.WeightedGeometricMean(heights, areas)
	}

	var built, blockShare float64
	for _, k := range c.BlocksIn(rect) {
		blk := &c.Blocks[k]
		var inter float64
		for _, m := range blk.Members {
			inter += spatial.ClipArea(rect, m)
		}
		built += inter
		if blk.Area > 0 {
			blockShare += inter / blk.Area
		}
	}
	ind[models.BlockSurfFraction] = built / rectArea
	ind[models.OpeningFraction] = 1 - built/rectArea
	ind[models.BlockNbDensity] = blockShare / rectArea

	width, density := streets(frag, lines)
	ind[models.StreetWidth] = width
	ind[models.NbStreetDensity] = density

	free, _ := c.facade(rect)
	if free > 0 {
		ind[models.FreeFacadeFraction] = free / (free + rectArea)
	}

	ind.Coalesce(models.CityIndicators)
	return ind
}

// streets measures the streets met by the probe lines of a fragment. A
// street counts when it crosses the fragment without spanning its width.
func streets(frag *models.Fragment, lines []probeLine) (width, density float64) {
	dx := frag.XRight - frag.XLeft
	var widths, densities []float64
	for _, line := range lines {
		if line.y < frag.YBottom || line.y >= frag.YTop {
			continue
		}
		count := 0
		for _, s := range line.streets {
			inter := min(s.Hi, frag.XRight) - max(s.Lo, frag.XLeft)
			if inter > 0 && inter < dx-1e-9 {
				count++
				widths = append(widths, s.Length())
			}
		}
		if count > 0 {
			densities = append(densities, float64(count)/(float64(count)+dx))
		}
	}
	return stats.Median(widths), stats.Mean(densities)
}
