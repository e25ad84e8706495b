// Package corridor decomposes the study area into along-wind corridors
// crossing the park and computes the indicators of every corridor fragment.
package corridor

import (
	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// SharedWall is a piece of a building outer wall standing against a
// neighbour. Height is the lower of the two roofs.
type SharedWall struct {
	Segment   spatial.Segment
	Height    float64
	Neighbour int
}

// City is the built area of a scenario. Building classes are direction
// independent and computed once; rotated copies keep them.
type City struct {
	Buildings []models.Building
	Blocks    []models.Block
	// Walls is indexed like Buildings.
	Walls [][]SharedWall

	buildingIndex *spatial.BoundIndex
	blockIndex    *spatial.BoundIndex
}

// NewCity groups buildings into blocks, finds their shared walls and derives
// every building class. tol is the distance under which two footprints
// touch and blockBuffer the padding of the block unit used for the aspect
// ratio.
func NewCity(buildings []models.Building, tol, blockBuffer float64, table *coefficients.Table) *City {
	c := &City{Buildings: make([]models.Building, len(buildings))}
	for i, b := range buildings {
		b.Footprint = spatial.CCW(b.Footprint)
		c.Buildings[i] = b
	}
	c.indexBuildings()

	neighbours := c.touching(tol)
	c.Walls = c.sharedWalls(neighbours, tol)
	c.Blocks = c.groupBlocks(neighbours)
	c.indexBlocks()

	for i := range c.Buildings {
		classify(&c.Buildings[i], c.Walls[i], table)
	}
	c.aspectRatios(blockBuffer)
	return c
}

// Rotate returns a copy of the city turned by rot.
func (c *City) Rotate(rot *spatial.Rotator) *City {
	out := &City{
		Buildings: make([]models.Building, len(c.Buildings)),
		Blocks:    make([]models.Block, len(c.Blocks)),
		Walls:     make([][]SharedWall, len(c.Walls)),
	}
	for i, b := range c.Buildings {
		b.Footprint = rot.Polygon(b.Footprint)
		out.Buildings[i] = b
	}
	for i, walls := range c.Walls {
		rw := make([]SharedWall, len(walls))
		for j, w := range walls {
			w.Segment = spatial.Segment{A: rot.Point(w.Segment.A), B: rot.Point(w.Segment.B)}
			rw[j] = w
		}
		out.Walls[i] = rw
	}
	for i, blk := range c.Blocks {
		blk.Members = make([]orb.Polygon, len(c.Blocks[i].Members))
		for j, m := range c.Blocks[i].Members {
			blk.Members[j] = rot.Polygon(m)
		}
		blk.Bound = membersBound(blk.Members)
		out.Blocks[i] = blk
	}
	out.indexBuildings()
	out.indexBlocks()
	return out
}

// BuildingsIn returns the indices of buildings whose envelope meets b.
func (c *City) BuildingsIn(b orb.Bound) []int {
	if len(c.Buildings) == 0 {
		return nil
	}
	return c.buildingIndex.Query(b)
}

// BlocksIn returns the indices of blocks whose envelope meets b.
func (c *City) BlocksIn(b orb.Bound) []int {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.blockIndex.Query(b)
}

func (c *City) indexBuildings() {
	polys := make([]orb.Polygon, len(c.Buildings))
	for i := range c.Buildings {
		polys[i] = c.Buildings[i].Footprint
	}
	c.buildingIndex = spatial.NewBoundIndex(polys)
}

func (c *City) indexBlocks() {
	polys := make([]orb.Polygon, len(c.Blocks))
	for i := range c.Blocks {
		polys[i] = c.Blocks[i].Bound.ToPolygon()
	}
	c.blockIndex = spatial.NewBoundIndex(polys)
}

// touching lists, for every building, the buildings closer than tol.
func (c *City) touching(tol float64) [][]int {
	neighbours := make([][]int, len(c.Buildings))
	for i := range c.Buildings {
		fi := c.Buildings[i].Footprint
		for _, j := range c.BuildingsIn(fi.Bound().Pad(tol)) {
			if j <= i {
				continue
			}
			if spatial.Within(fi, c.Buildings[j].Footprint, tol) {
				neighbours[i] = append(neighbours[i], j)
				neighbours[j] = append(neighbours[j], i)
			}
		}
	}
	return neighbours
}

// sharedWalls collects the outer wall pieces of each building lying along a
// neighbour footprint.
func (c *City) sharedWalls(neighbours [][]int, tol float64) [][]SharedWall {
	walls := make([][]SharedWall, len(c.Buildings))
	for i := range c.Buildings {
		bi := &c.Buildings[i]
		outer := spatial.Segments(outerRing(bi.Footprint))
		for _, j := range neighbours[i] {
			bj := &c.Buildings[j]
			h := bi.Height
			if bj.Height < h {
				h = bj.Height
			}
			for _, seg := range outer {
				for _, piece := range spatial.SharedSegments(seg, bj.Footprint, tol) {
					walls[i] = append(walls[i], SharedWall{Segment: piece, Height: h, Neighbour: j})
				}
			}
		}
	}
	return walls
}

// groupBlocks merges touching buildings with a union-find and numbers the
// blocks in order of their first building.
func (c *City) groupBlocks(neighbours [][]int) []models.Block {
	parent := make([]int, len(c.Buildings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i, ns := range neighbours {
		for _, j := range ns {
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			if ri < rj {
				parent[rj] = ri
			} else {
				parent[ri] = rj
			}
		}
	}

	blockOf := make(map[int]int)
	var blocks []models.Block
	for i := range c.Buildings {
		root := find(i)
		k, ok := blockOf[root]
		if !ok {
			k = len(blocks)
			blockOf[root] = k
			blocks = append(blocks, models.Block{ID: k + 1})
		}
		b := &c.Buildings[i]
		b.BlockID = blocks[k].ID
		blocks[k].Buildings = append(blocks[k].Buildings, b.ID)
		blocks[k].Members = append(blocks[k].Members, b.Footprint)
		blocks[k].Area += spatial.Area(b.Footprint)
	}
	for k := range blocks {
		blocks[k].Bound = membersBound(blocks[k].Members)
	}
	return blocks
}

func membersBound(members []orb.Polygon) orb.Bound {
	var b orb.Bound
	for i, m := range members {
		if i == 0 {
			b = m.Bound()
			continue
		}
		b = b.Union(m.Bound())
	}
	return b
}

func outerRing(p orb.Polygon) orb.Polygon {
	if len(p) == 0 {
		return nil
	}
	return orb.Polygon{p[0]}
}
