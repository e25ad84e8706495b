package corridor

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// coverShapes holds one merged shape per cover type.
type coverShapes struct {
	ground map[int]spatial.Shape
	canopy map[int]spatial.Shape
}

func newCoverShapes(in *Inputs) coverShapes {
	return coverShapes{
		ground: mergeByType(in.Ground),
		canopy: mergeByType(in.Canopy),
	}
}

func mergeByType(cover []models.CoverPolygon) map[int]spatial.Shape {
	byType := make(map[int][]orb.Polygon)
	for _, c := range cover {
		byType[c.Type] = append(byType[c.Type], c.Polygon)
	}
	out := make(map[int]spatial.Shape, len(byType))
	for t, polys := range byType {
		out[t] = spatial.NewShape(polys...)
	}
	return out
}

func typesOf(m map[int]spatial.Shape) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// fractions returns the share of the park fragment area held by every
// ground/canopy combination. The default combination takes what the cover
// layers leave unexplained; when they explain more than the whole fragment
// the other fractions are scaled down to sum to one.
func (cs coverShapes) fractions(frag *models.Fragment, table *coefficients.Table) map[models.Combo]float64 {
	out := make(map[models.Combo]float64)
	for _, c := range models.AllCombos() {
		out[table.ReplaceCombo(c)] = 0
	}

	park, _ := frag.Geometry.(orb.Polygon)
	area := spatial.Area(park)
	if area == 0 {
		out[models.DefaultCombo] = 1
		return out
	}

	shape := spatial.NewShape(park)
	raw := make(map[models.Combo]float64)
	for _, g := range typesOf(cs.ground) {
		inGround := shape.Intersection(cs.ground[g])
		if inGround.IsEmpty() {
			continue
		}
		var underCanopy float64
		for _, k := range typesOf(cs.canopy) {
			a := inGround.Intersection(cs.canopy[k]).Area()
			raw[table.ReplaceCombo(models.NewCombo(g, k))] += a
			underCanopy += a
		}
		if bare := inGround.Area() - underCanopy; bare > 0 {
			raw[table.ReplaceCombo(models.NewCombo(g, models.CanopyNone))] += bare
		}
	}

	var others float64
	for c, a := range raw {
		if c != models.DefaultCombo {
			others += a / area
		}
	}
	scale := 1.0
	if others > 1 {
		scale = 1 / others
	}
	for c, a := range raw {
		if c != models.DefaultCombo {
			out[c] = a / area * scale
		}
	}
	out[models.DefaultCombo] = max(1-others, 0)
	return out
}
