package analysis

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/coolparks-go/internal/analysis/corridor"
	"github.com/jengzang/coolparks-go/internal/layers"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/spatial"
)

// PreparePhase validates the input layers, derives the building indicators
// and builds the corridor model of every wind direction.
type PreparePhase struct {
	p *Pipeline
}

// NewPreparePhase creates a new prepare phase
func NewPreparePhase(p *Pipeline) Phase {
	return &PreparePhase{p: p}
}

// GetName returns the phase name
func (ph *PreparePhase) GetName() string {
	return PhasePrepare
}

// Run executes the phase
func (ph *PreparePhase) Run(ctx context.Context, st *State) error {
	cfg := ph.p.cfg
	in, err := readInputs(st.Params)
	if err != nil {
		return err
	}

	var buildings []models.Building
	if in.buildings != nil {
		if buildings, err = layers.Buildings(in.buildings, cfg.Building); err != nil {
			return fmt.Errorf("failed to read buildings: %w", err)
		}
	}
	var ground, canopy []models.CoverPolygon
	invalid := 0
	if in.ground != nil {
		var n int
		ground, n = layers.Cover(in.ground, models.IsValidGround)
		invalid += n
	}
	if in.canopy != nil {
		var n int
		canopy, n = layers.Cover(in.canopy, models.IsValidCanopy)
		invalid += n
	}

	inputs, diags, err := corridor.NewInputs(layers.Polygons(in.park), ground, canopy, invalid, cfg.Validation)
	if err != nil {
		return err
	}
	st.AddDiagnostics(diags...)

	pivot, err := spatial.Pivot(in.all())
	if err != nil {
		return err
	}
	srid := st.Params.SRID
	if srid == 0 {
		srid = layers.SRID(in.park)
	}

	city := corridor.NewCity(buildings, cfg.Geometry.MergeTolerance, cfg.Geometry.BlockBuffer, ph.p.table)
	log.Printf("[Prepare] %d buildings in %d blocks, pivot (%.1f, %.1f)", len(city.Buildings), len(city.Blocks), pivot[0], pivot[1])

	dirs := cfg.Directions()
	built := make([]models.DirectionModel, len(dirs))
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			d, err := ph.p.builder.BuildDirection(gctx, dir, pivot, inputs, city)
			if err != nil {
				return err
			}
			built[i] = *d
			n := done.Add(1)
			st.Report(int(n), len(dirs), fmt.Sprintf("direction %g built", dir))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to build directions: %w", err)
	}

	sc := newScenario(srid)
	sc.Pivot = pivot
	sc.Park = inputs.Park
	sc.Directions = built
	sc.Buildings = city.Buildings
	sc.Diagnostics = append(sc.Diagnostics, st.Diagnostics...)
	st.Scenario = sc

	return ph.write(st, sc)
}

func (ph *PreparePhase) write(st *State, sc *models.Scenario) error {
	path := filepath.Join(st.OutputDir, ScenarioFile)
	if err := SaveScenario(path, sc); err != nil {
		return err
	}
	st.AddFile(path)

	for i := range sc.Directions {
		d := &sc.Directions[i]
		back := spatial.NewRotator(d.Direction, sc.Pivot).Inverse()
		if err := writeLayer(st, fmt.Sprintf("corridors_%g.geojson", d.Direction), layers.Fragments(d, back), sc.SRID); err != nil {
			return err
		}
		if err := writeLayer(st, fmt.Sprintf("grid_%g.geojson", d.Direction), layers.Grid(d, back, nil), sc.SRID); err != nil {
			return err
		}
	}
	if len(sc.Buildings) > 0 {
		if err := writeLayer(st, "buildings_indicators.geojson", layers.BuildingIndicators(sc.Buildings), sc.SRID); err != nil {
			return err
		}
	}
	return nil
}

func writeLayer(st *State, name string, fc *geojson.FeatureCollection, srid int) error {
	path := filepath.Join(st.OutputDir, name)
	if err := layers.Write(path, fc, srid); err != nil {
		return err
	}
	st.AddFile(path)
	return nil
}

// inputLayers are the decoded input files; optional layers are nil when
// their path is empty.
type inputLayers struct {
	buildings, park, ground, canopy *geojson.FeatureCollection
}

func (in inputLayers) all() map[string]*geojson.FeatureCollection {
	return map[string]*geojson.FeatureCollection{
		"buildings": in.buildings,
		"park":      in.park,
		"ground":    in.ground,
		"canopy":    in.canopy,
	}
}

func readInputs(params models.RunParams) (inputLayers, error) {
	var in inputLayers
	if params.Park == "" {
		return in, corridor.ErrNoPark
	}
	var err error
	if in.park, err = layers.Read(params.Park); err != nil {
		return in, err
	}
	optional := []struct {
		path string
		dst  **geojson.FeatureCollection
	}{
		{params.Buildings, &in.buildings},
		{params.Ground, &in.ground},
		{params.Canopy, &in.canopy},
	}
	for _, o := range optional {
		if o.path == "" {
			continue
		}
		if *o.dst, err = layers.Read(o.path); err != nil {
			return in, err
		}
	}
	return in, nil
}

func init() {
	RegisterPhase(PhasePrepare, NewPreparePhase)
}
