package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/coolparks-go/internal/analysis"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/database"
	"github.com/jengzang/coolparks-go/internal/layers"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/repository"
	"github.com/jengzang/coolparks-go/pkg/metrics"
)

const weatherCSV = `time,T2m,RH,WS10m,WD10m,SP
20200601:1200,28.0,40,2.0,10,101000
20200601:2300,22.0,60,1.0,190,101000
20200602:1200,29.0,45,3.0,100,101000
`

func testService(t *testing.T) (*RunService, *sqlx.DB) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "runs.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Weather.HeaderLines = 0
	cfg.Season = config.SeasonConfig{Start: "01/06", End: "02/06"}
	table, err := coefficients.Default()
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.NewCollector("coolparks_test")
	s := NewRunService(db, analysis.NewPipeline(cfg, table, m), m, t.TempDir())
	t.Cleanup(s.Shutdown)
	return s, db
}

func writeLayer(t *testing.T, path string, props map[string]interface{}, polys ...orb.Polygon) {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, p := range polys {
		f := geojson.NewFeature(p)
		for k, v := range props {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	if err := layers.Write(path, fc, 2154); err != nil {
		t.Fatal(err)
	}
}

func squareParams(t *testing.T) models.RunParams {
	t.Helper()
	dir := t.TempDir()
	p := models.RunParams{
		Park:      filepath.Join(dir, "park.geojson"),
		Ground:    filepath.Join(dir, "ground.geojson"),
		Buildings: filepath.Join(dir, "buildings.geojson"),
		Weather:   filepath.Join(dir, "weather.csv"),
	}
	park := orb.Polygon{{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}}
	writeLayer(t, p.Park, nil, park)
	writeLayer(t, p.Ground, map[string]interface{}{layers.FieldType: 3}, park)
	writeLayer(t, p.Buildings, map[string]interface{}{layers.FieldHeight: 10.0},
		orb.Polygon{{{20, -50}, {40, -50}, {40, -30}, {20, -30}, {20, -50}}})
	if err := os.WriteFile(p.Weather, []byte(weatherCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateRunCompletes(t *testing.T) {
	ctx := context.Background()
	s, _ := testService(t)

	run, err := s.CreateRun(ctx, models.RunKindFull, squareParams(t), "tester")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	s.Wait()

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.RunStatusCompleted || got.ProgressPercent != 100 || got.ResultSummary == "" {
		t.Fatalf("run = %+v", got)
	}
	if got.OutputDir != run.OutputDir {
		t.Errorf("output dir = %q, want %q", got.OutputDir, run.OutputDir)
	}
	if _, err := os.Stat(filepath.Join(run.OutputDir, "deltat_12h.asc")); err != nil {
		t.Errorf("raster missing: %v", err)
	}

	weights, err := s.Weights(ctx, run.ID, -1)
	if err != nil || len(weights) != 16 {
		t.Errorf("weights = %d, %v; want 16", len(weights), err)
	}
	noon, _ := s.Weights(ctx, run.ID, 12)
	if len(noon) != 8 {
		t.Errorf("12h weights = %d, want 8", len(noon))
	}
	buildings, err := s.Buildings(ctx, run.ID, 0, 0)
	if err != nil || len(buildings) != 1 || buildings[0].FootprintWKT == "" {
		t.Errorf("buildings = %+v, %v", buildings, err)
	}
	if _, err := s.Diagnostics(ctx, run.ID); err != nil {
		t.Errorf("Diagnostics() error = %v", err)
	}

	if err := s.CancelRun(ctx, run.ID); !errors.Is(err, ErrRunNotActive) {
		t.Errorf("CancelRun(completed) error = %v, want ErrRunNotActive", err)
	}
}

func TestCreateRunFails(t *testing.T) {
	ctx := context.Background()
	s, _ := testService(t)

	params := squareParams(t)
	params.Park = filepath.Join(t.TempDir(), "missing.geojson")
	run, err := s.CreateRun(ctx, models.RunKindPrepare, params, "")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	s.Wait()

	got, _ := s.GetRun(ctx, run.ID)
	if got.Status != models.RunStatusFailed || got.ErrorMessage == "" {
		t.Errorf("run = %+v, want failed with a message", got)
	}
}

func TestCreateRunValidation(t *testing.T) {
	s, _ := testService(t)
	tests := []struct {
		name   string
		kind   string
		params models.RunParams
	}{
		{"unknown kind", "incremental", models.RunParams{Park: "p"}},
		{"prepare without park", models.RunKindPrepare, models.RunParams{}},
		{"full without weather", models.RunKindFull, models.RunParams{Park: "p"}},
		{"process without scenario", models.RunKindProcess, models.RunParams{Weather: "w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateRun(context.Background(), tt.kind, tt.params, ""); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestCancelOrphanRun(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	repo := repository.NewRunRepository(db)
	run := &models.Run{Kind: models.RunKindFull}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatal(err)
	}

	if err := s.CancelRun(ctx, run.ID); err != nil {
		t.Fatalf("CancelRun() error = %v", err)
	}
	got, _ := s.GetRun(ctx, run.ID)
	if got.Status != models.RunStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if err := s.CancelRun(ctx, 12345); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("CancelRun(missing) error = %v", err)
	}
}
