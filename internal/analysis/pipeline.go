// Package analysis runs the cooling pipeline: the prepare phase builds the
// direction corridors of a scenario, the process phase applies a weather
// series to it.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jengzang/coolparks-go/internal/analysis/corridor"
	"github.com/jengzang/coolparks-go/internal/analysis/impact"
	"github.com/jengzang/coolparks-go/internal/analysis/temporal"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/pkg/metrics"
)

// ErrInvalidScenario is returned when a scenario file cannot feed the process phase.
var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioFile is the name of the prepared scenario in an output directory.
const ScenarioFile = "scenario.json"

// Pipeline holds the immutable collaborators shared by every run.
type Pipeline struct {
	cfg        *config.Config
	table      *coefficients.Table
	metrics    *metrics.Collector
	builder    *corridor.Builder
	aggregator *temporal.Aggregator
	estimator  *impact.Estimator
}

// NewPipeline creates a new pipeline. m may be nil.
func NewPipeline(cfg *config.Config, table *coefficients.Table, m *metrics.Collector) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		table:      table,
		metrics:    m,
		builder:    corridor.NewBuilder(cfg, table),
		aggregator: temporal.NewAggregator(cfg, table),
		estimator:  impact.NewEstimator(table, cfg.ReferenceCooling),
	}
}

// Execute runs the phases of kind and writes the outputs under outDir.
// Diagnostics never fail a run; they are returned with the state.
func (p *Pipeline) Execute(ctx context.Context, kind string, params models.RunParams, outDir string, progress ProgressFunc) (*State, error) {
	phases, err := phasesFor(kind, p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	st := &State{Params: params, OutputDir: outDir, progress: progress}
	for i, ph := range phases {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.enter(ph.GetName(), i, len(phases))
		st.Report(0, 1, "started")

		log.Printf("[Pipeline] Phase %s started (%d/%d)", ph.GetName(), i+1, len(phases))
		timer := p.metrics.PhaseTimer(ph.GetName())
		err := ph.Run(ctx, st)
		elapsed := timer.ObserveDuration()
		if err != nil {
			log.Printf("[Pipeline] Phase %s failed after %v: %v", ph.GetName(), elapsed, err)
			return st, err
		}
		log.Printf("[Pipeline] Phase %s completed in %v", ph.GetName(), elapsed)
	}

	for _, d := range st.Diagnostics {
		p.metrics.RecordDiagnostic(d.Code)
		log.Printf("[Pipeline] %s %s: %s", d.Severity, d.Code, d.Message)
	}
	st.enter("done", len(phases), len(phases))
	st.Report(1, 1, "completed")
	return st, nil
}

// SaveScenario writes a scenario as JSON.
func SaveScenario(path string, sc *models.Scenario) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario %s: %w", path, err)
	}
	return nil
}

// LoadScenario reads a scenario written by the prepare phase. path may be the
// scenario file or the directory holding it.
func LoadScenario(path string) (*models.Scenario, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ScenarioFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	var sc models.Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if len(sc.Park) == 0 || len(sc.Directions) == 0 {
		return nil, fmt.Errorf("%w: no park or no direction in %s", ErrInvalidScenario, path)
	}
	return &sc, nil
}

func newScenario(srid int) *models.Scenario {
	return &models.Scenario{SRID: srid, CreatedAt: time.Now().UTC()}
}
