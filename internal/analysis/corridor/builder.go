package corridor

import (
	"context"
	"log"

	"github.com/paulmach/orb"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// Builder turns the scenario layers into the corridor model of each wind
// direction. It holds no mutable state and may serve several directions
// concurrently.
type Builder struct {
	cfg   *config.Config
	table *coefficients.Table
}

// NewBuilder creates a new corridor builder
func NewBuilder(cfg *config.Config, table *coefficients.Table) *Builder {
	return &Builder{cfg: cfg, table: table}
}

// BuildDirection rotates the layers so that the wind of direction dir blows
// from the top of the frame and decomposes the domain into fragments and
// grid points. The returned model stays in the rotated frame.
func (b *Builder) BuildDirection(ctx context.Context, dir float64, pivot orb.Point, in *Inputs, city *City) (*models.DirectionModel, error) {
	rot := spatial.NewRotator(dir, pivot)
	rin := in.Rotate(rot)
	rcity := city.Rotate(rot)

	l := newLayout(rin.Park, b.cfg.Grid, b.cfg.MaxCoolingDistance())
	frags := l.fragments(rin.Park, b.cfg.Grid, b.cfg.Geometry.MergeTolerance)
	points := l.points(frags, rin.Park)

	cover := newCoverShapes(rin)
	lines := rcity.probeLines(l, b.cfg.Grid.CrosswindLineDist, b.cfg.Geometry.MergeTolerance)
	for i := range frags {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := &frags[i]
		if f.Kind == models.FragmentPark {
			f.Cover = cover.fractions(f, b.table)
			if a := boundArea(f.Band()); a > 0 {
				f.Indicators[models.CorridorParkFrac] = spatial.ClipArea(f.Band(), rin.Park) / a
			}
			continue
		}
		f.Indicators = rcity.cityIndicators(f, lines)
	}

	log.Printf("[CorridorBuilder] Direction %g: %d columns, %d rows, %d fragments, %d points",
		dir, l.columns, l.rows, len(frags), len(points))

	return &models.DirectionModel{
		Direction:      dir,
		CellWidth:      l.dx,
		CellHeight:     l.dy,
		BufferDistance: l.buffer,
		Columns:        l.columns,
		Rows:           l.rows,
		Fragments:      frags,
		Points:         points,
	}, nil
}
