package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/jengzang/coolparks-go/internal/database"
	"github.com/jengzang/coolparks-go/internal/models"
)

// DiagnosticRepository stores the data quality diagnostics of runs
type DiagnosticRepository struct {
	db *sqlx.DB
}

// NewDiagnosticRepository creates a new diagnostic repository
func NewDiagnosticRepository(db *sqlx.DB) *DiagnosticRepository {
	return &DiagnosticRepository{db: db}
}

// Insert stores the diagnostics of a run
func (r *DiagnosticRepository) Insert(ctx context.Context, runID int64, diags []models.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	query := `
		INSERT INTO run_diagnostics (run_id, code, severity, message, observed, threshold)
		VALUES (:run_id, :code, :severity, :message, :observed, :threshold)
	`
	return database.Transaction(r.db, func(tx *sqlx.Tx) error {
		for _, d := range diags {
			d.RunID = runID
			if _, err := tx.NamedExecContext(ctx, query, d); err != nil {
				return fmt.Errorf("failed to insert diagnostic: %w", err)
			}
		}
		return nil
	})
}

// ListByRun returns the diagnostics of a run in insertion order
func (r *DiagnosticRepository) ListByRun(ctx context.Context, runID int64) ([]models.Diagnostic, error) {
	diags := []models.Diagnostic{}
	query := `
		SELECT run_id, code, severity, message, observed, threshold
		FROM run_diagnostics
		WHERE run_id = ?
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &diags, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	return diags, nil
}

// WeightRepository stores the direction weight tables of runs
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository creates a new weight repository
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Insert stores the direction weights of a run
func (r *WeightRepository) Insert(ctx context.Context, runID int64, weights []models.DirectionWeight) error {
	if len(weights) == 0 {
		return nil
	}
	query := `
		INSERT INTO direction_weights (run_id, hour, direction, count, weight)
		VALUES (:run_id, :hour, :direction, :count, :weight)
	`
	return database.Transaction(r.db, func(tx *sqlx.Tx) error {
		for _, w := range weights {
			w.RunID = runID
			if _, err := tx.NamedExecContext(ctx, query, w); err != nil {
				return fmt.Errorf("failed to insert direction weight: %w", err)
			}
		}
		return nil
	})
}

// ListByRun returns the weights of a run; hour < 0 returns every time of day
func (r *WeightRepository) ListByRun(ctx context.Context, runID int64, hour int) ([]models.DirectionWeight, error) {
	query := "SELECT run_id, hour, direction, count, weight FROM direction_weights WHERE run_id = ?"
	args := []interface{}{runID}
	if hour >= 0 {
		query += " AND hour = ?"
		args = append(args, hour)
	}
	query += " ORDER BY hour, direction"

	weights := []models.DirectionWeight{}
	if err := r.db.SelectContext(ctx, &weights, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list direction weights: %w", err)
	}
	return weights, nil
}

// ImpactRepository stores the building impacts of runs
type ImpactRepository struct {
	db *sqlx.DB
}

// NewImpactRepository creates a new impact repository
func NewImpactRepository(db *sqlx.DB) *ImpactRepository {
	return &ImpactRepository{db: db}
}

// Insert stores the impacts of a run, with the footprint of each building as WKT.
func (r *ImpactRepository) Insert(ctx context.Context, runID int64, buildings []models.Building, impacts []models.BuildingImpact) error {
	if len(impacts) == 0 {
		return nil
	}
	byID := make(map[int]*models.Building, len(buildings))
	for i := range buildings {
		byID[buildings[i].ID] = &buildings[i]
	}

	query := `
		INSERT INTO building_impacts (
			run_id, building_id, geometry_class, orientation, size_class,
			amplification_factor, energy_impact_abs, energy_impact_rel,
			therm_comfort_impact_abs, therm_comfort_impact_rel, footprint_wkt
		) VALUES (
			:run_id, :building_id, :geometry_class, :orientation, :size_class,
			:amplification_factor, :energy_impact_abs, :energy_impact_rel,
			:therm_comfort_impact_abs, :therm_comfort_impact_rel, :footprint_wkt
		)
	`
	return database.Transaction(r.db, func(tx *sqlx.Tx) error {
		for i := range impacts {
			rec := ImpactRecord(runID, byID[impacts[i].BuildingID], &impacts[i])
			if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
				return fmt.Errorf("failed to insert building impact: %w", err)
			}
		}
		return nil
	})
}

// ListByRun returns a page of the impacts of a run ordered by building
func (r *ImpactRepository) ListByRun(ctx context.Context, runID int64, limit, offset int) ([]models.BuildingImpactRecord, error) {
	query := `
		SELECT run_id, building_id, geometry_class, orientation, size_class,
			amplification_factor, energy_impact_abs, energy_impact_rel,
			therm_comfort_impact_abs, therm_comfort_impact_rel, footprint_wkt
		FROM building_impacts
		WHERE run_id = ?
		ORDER BY building_id
		LIMIT ? OFFSET ?
	`
	recs := []models.BuildingImpactRecord{}
	if err := r.db.SelectContext(ctx, &recs, query, runID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list building impacts: %w", err)
	}
	return recs, nil
}

// ImpactRecord converts an impact into its stored form. b may be nil when the
// building is unknown.
func ImpactRecord(runID int64, b *models.Building, imp *models.BuildingImpact) models.BuildingImpactRecord {
	rec := models.BuildingImpactRecord{
		RunID:               runID,
		BuildingID:          imp.BuildingID,
		AmplificationFactor: finite(imp.AmplificationFactor),
		EnergyAbs:           finite(imp.EnergyAbs),
		EnergyRel:           finite(imp.EnergyRel),
		ComfortAbs:          finite(imp.ComfortAbs),
		ComfortRel:          finite(imp.ComfortRel),
	}
	if b != nil {
		rec.GeometryClass = b.GeometryClass
		rec.Orientation = b.Orientation
		rec.SizeClass = b.SizeClass
		rec.FootprintWKT = wkt.MarshalString(b.Footprint)
	}
	return rec
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
