package models

import (
	"sort"

	"github.com/paulmach/orb"
)

// Zone partitions grid points of one wind direction.
type Zone string

const (
	ZoneBefore Zone = "before"
	ZonePark   Zone = "park"
	ZoneAfter  Zone = "after"
)

// FragmentKind distinguishes city runs from park runs of a corridor.
type FragmentKind string

const (
	FragmentCity FragmentKind = "city"
	FragmentPark FragmentKind = "park"
)

// NoDistance marks a park distance that does not apply to a grid point.
const NoDistance = -999.0

// Fragment is one contiguous along-wind run of a corridor, expressed in the
// rotated (North-aligned) frame.
type Fragment struct {
	Column   int          `json:"id"`
	Upstream int          `json:"id_upstream"`
	Kind     FragmentKind `json:"kind"`
	Zone     Zone         `json:"zone"`

	XLeft   float64 `json:"x_left"`
	XRight  float64 `json:"x_right"`
	YTop    float64 `json:"y_top"`
	YBottom float64 `json:"y_bottom"`

	// Geometry is the band rectangle for city fragments and the band clipped
	// to the park for park fragments.
	Geometry orb.Geometry `json:"-"`

	Indicators Indicators        `json:"indicators"`
	Cover      map[Combo]float64 `json:"cover,omitempty"`
}

// Length returns the along-wind extent of the fragment.
func (f *Fragment) Length() float64 {
	return f.YTop - f.YBottom
}

// Band returns the full rectangle of the fragment.
func (f *Fragment) Band() orb.Bound {
	return orb.Bound{
		Min: orb.Point{f.XLeft, f.YBottom},
		Max: orb.Point{f.XRight, f.YTop},
	}
}

// GridPoint is one sample point of a direction grid.
type GridPoint struct {
	ID       int     `json:"id"`
	Row      int     `json:"id_row"`
	Col      int     `json:"id_col"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Upstream int     `json:"id_upstream"`
	Zone     Zone    `json:"zone"`
	Fragment int     `json:"fragment"`

	DInput           float64 `json:"d_input"`
	DOutput          float64 `json:"d_output"`
	DPark            float64 `json:"d_park"`
	CorridorParkFrac float64 `json:"corridor_park_frac"`
}

// DirectionModel gathers the corridor fragments and grid of one wind direction.
type DirectionModel struct {
	Direction      float64 `json:"direction"`
	CellWidth      float64 `json:"cell_width"`
	CellHeight     float64 `json:"cell_height"`
	BufferDistance float64 `json:"buffer_distance"`
	Columns        int     `json:"columns"`
	Rows           int     `json:"rows"`

	Fragments []Fragment  `json:"fragments"`
	Points    []GridPoint `json:"points"`
}

// ColumnChains groups fragment indices per column, ordered upstream to downstream.
func (d *DirectionModel) ColumnChains() map[int][]int {
	chains := make(map[int][]int)
	for i := range d.Fragments {
		col := d.Fragments[i].Column
		chains[col] = append(chains[col], i)
	}
	for _, idx := range chains {
		// fragments of a column never overlap, so YTop orders them
		sort.Slice(idx, func(a, b int) bool {
			return d.Fragments[idx[a]].YTop > d.Fragments[idx[b]].YTop
		})
	}
	return chains
}
