package corridor

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// Shared wall fractions splitting attached, semi-detached and isolated buildings.
const (
	attachedShare = 0.3
	semiShare     = 0.05
)

// classify fills the shared wall fraction, geometry, orientation, size and
// envelope classes of a building.
func classify(b *models.Building, walls []SharedWall, table *coefficients.Table) {
	if len(b.Footprint) == 0 {
		return
	}
	perimeter := spatial.RingLength(b.Footprint[0])
	var shared float64
	for _, w := range walls {
		shared += w.Segment.Length()
	}
	if perimeter > 0 {
		b.SharedWallFraction = math.Min(shared/perimeter, 1)
	}

	ranked := rankFacades(b.Footprint, walls)
	switch {
	case b.SharedWallFraction >= attachedShare:
		b.GeometryClass, b.Orientation = attachedClass(ranked[0], ranked[1])
	case b.SharedWallFraction >= semiShare:
		b.GeometryClass = models.GeometrySemi
		b.Orientation = semiOrientation(ranked[0] + ranked[1] + ranked[2])
	default:
		b.GeometryClass = models.GeometryIsolated
		b.Orientation = models.OrientationNorth
	}

	switch {
	case b.Height < 6:
		b.SizeClass = 1
	case b.Height < 9:
		b.SizeClass = 2
	default:
		b.SizeClass = 3
	}

	if table != nil {
		b.Envelope, b.BuildingClass = table.Envelope(b.Age, b.Renovated)
	}
}

// orientation maps a counter-clockwise wall azimuth to the side it faces.
func orientation(azimuth float64) int {
	switch {
	case azimuth >= 7*math.Pi/4 || azimuth < math.Pi/4:
		return models.OrientationEast
	case azimuth < 3*math.Pi/4:
		return models.OrientationSouth
	case azimuth < 5*math.Pi/4:
		return models.OrientationWest
	default:
		return models.OrientationNorth
	}
}

// rankFacades orders the four orientations by decreasing free facade length.
// Ties keep the lower orientation code first.
func rankFacades(footprint orb.Polygon, walls []SharedWall) [4]int {
	var free [5]float64
	for _, s := range spatial.Segments(outerRing(footprint)) {
		free[orientation(s.Azimuth())] += s.Length()
	}
	for _, w := range walls {
		free[orientation(w.Segment.Azimuth())] -= w.Segment.Length()
	}
	ranked := [4]int{1, 2, 3, 4}
	sort.SliceStable(ranked[:], func(i, j int) bool {
		return free[ranked[i]] > free[ranked[j]]
	})
	return ranked
}

// attachedClass splits attached buildings into row and corner buildings from
// their two main free facades.
func attachedClass(first, second int) (geometry, north int) {
	switch first + second {
	case 4: // north and south
		return models.GeometryRow, 2
	case 6: // east and west
		return models.GeometryRow, 1
	case 3: // north and east
		return models.GeometryCorner, 3
	case 5:
		if first == models.OrientationEast || second == models.OrientationEast {
			return models.GeometryCorner, 4 // east and south
		}
		return models.GeometryCorner, 2 // north and west
	default: // south and west
		return models.GeometryCorner, 1
	}
}

// semiOrientation gives the orientation of a semi-detached building from
// the sum of its three main free facades, that is from the missing one.
func semiOrientation(sum int) int {
	switch sum {
	case 6:
		return 4
	case 7:
		return 3
	case 8:
		return 2
	default:
		return 1
	}
}

// aspectRatios computes for each block half the free facade area over the
// open ground of the block envelope padded by buffer, and gives it to the
// block buildings.
func (c *City) aspectRatios(buffer float64) {
	ratios := make([]float64, len(c.Blocks))
	for k, blk := range c.Blocks {
		rsu := blk.Bound.Pad(buffer)
		free, built := c.facade(rsu)
		ground := boundArea(rsu) - built
		if ground > 0 {
			ratios[k] = 0.5 * free / ground
		}
	}
	for i := range c.Buildings {
		c.Buildings[i].AspectRatio = ratios[c.Buildings[i].BlockID-1]
	}
}

// facade returns the free facade area and the built area inside b. Shared
// walls are counted once per building, like facades.
func (c *City) facade(b orb.Bound) (free, built float64) {
	var walls, shared float64
	for _, i := range c.BuildingsIn(b) {
		bi := &c.Buildings[i]
		walls += spatial.ClippedPerimeter(b, bi.Footprint) * bi.Height
		built += spatial.ClipArea(b, bi.Footprint)
		for _, w := range c.Walls[i] {
			shared += spatial.ClippedLength(b, w.Segment) * w.Height
		}
	}
	return math.Max(walls-shared, 0), built
}

func boundArea(b orb.Bound) float64 {
	return (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
}
