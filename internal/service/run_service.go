package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/jengzang/coolparks-go/internal/analysis"
	"github.com/jengzang/coolparks-go/internal/models"
	"github.com/jengzang/coolparks-go/internal/repository"
	"github.com/jengzang/coolparks-go/pkg/metrics"
)

var (
	// ErrInvalidRequest is returned for run requests the pipeline cannot execute.
	ErrInvalidRequest = errors.New("invalid run request")
	// ErrRunNotActive is returned when cancelling a run that already ended.
	ErrRunNotActive = errors.New("run is not active")
)

// RunSummary is stored with a completed run.
type RunSummary struct {
	Files       []string               `json:"files"`
	Diagnostics int                    `json:"diagnostics"`
	Weights     int                    `json:"weights"`
	Buildings   int                    `json:"buildings"`
	Hours       []analysis.HourSummary `json:"hours,omitempty"`
}

// RunService handles run business logic: it records runs and executes them
// in the background.
type RunService struct {
	runs     *repository.RunRepository
	diags    *repository.DiagnosticRepository
	weights  *repository.WeightRepository
	impacts  *repository.ImpactRepository
	pipeline *analysis.Pipeline
	metrics  *metrics.Collector
	outRoot  string

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunService creates a new run service. Run outputs go to
// outRoot/run_<id>.
func NewRunService(db *sqlx.DB, pipeline *analysis.Pipeline, m *metrics.Collector, outRoot string) *RunService {
	return &RunService{
		runs:     repository.NewRunRepository(db),
		diags:    repository.NewDiagnosticRepository(db),
		weights:  repository.NewWeightRepository(db),
		impacts:  repository.NewImpactRepository(db),
		pipeline: pipeline,
		metrics:  m,
		outRoot:  outRoot,
		cancels:  make(map[int64]context.CancelFunc),
	}
}

// Recover fails the runs a previous process left unfinished.
func (s *RunService) Recover(ctx context.Context) error {
	n, err := s.runs.FailInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[RunService] Marked %d interrupted runs as failed", n)
	}
	return nil
}

// CreateRun records a run and starts it asynchronously
func (s *RunService) CreateRun(ctx context.Context, kind string, params models.RunParams, createdBy string) (*models.Run, error) {
	if err := validateParams(kind, params); err != nil {
		return nil, err
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}

	run := &models.Run{
		Kind:       kind,
		Status:     models.RunStatusPending,
		ParamsJSON: string(paramsJSON),
		CreatedBy:  createdBy,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	run.OutputDir = filepath.Join(s.outRoot, fmt.Sprintf("run_%d", run.ID))
	if err := s.runs.SetOutputDir(ctx, run.ID, run.OutputDir); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, run, params)
	return run, nil
}

// execute runs the pipeline and records its outcome. Database writes use a
// fresh context so that a cancelled run is still recorded.
func (s *RunService) execute(ctx context.Context, run *models.Run, params models.RunParams) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.cancels[run.ID]; ok {
			cancel()
			delete(s.cancels, run.ID)
		}
		s.mu.Unlock()
	}()

	bg := context.Background()
	log.Printf("[RunService] Starting run %d (kind: %s)", run.ID, run.Kind)
	if err := s.runs.MarkAsRunning(bg, run.ID); err != nil {
		log.Printf("[RunService] Run %d: %v", run.ID, err)
	}
	if s.metrics != nil {
		s.metrics.RunsActive.Inc()
		defer s.metrics.RunsActive.Dec()
	}

	last := -1
	progress := func(p analysis.Progress) {
		if p.Percent == last {
			return
		}
		last = p.Percent
		if err := s.runs.UpdateProgress(bg, run.ID, p.Phase, p.Percent); err != nil {
			log.Printf("[RunService] Run %d: %v", run.ID, err)
		}
	}

	st, err := s.pipeline.Execute(ctx, run.Kind, params, run.OutputDir, progress)
	if st != nil {
		if derr := s.diags.Insert(bg, run.ID, st.Diagnostics); derr != nil {
			log.Printf("[RunService] Run %d: %v", run.ID, derr)
		}
	}
	if err == nil {
		err = s.store(bg, run.ID, st)
	}

	if err != nil {
		status := models.RunStatusFailed
		if errors.Is(err, context.Canceled) {
			status = models.RunStatusCancelled
		}
		log.Printf("[RunService] Run %d %s: %v", run.ID, status, err)
		if merr := s.runs.MarkAsFinished(bg, run.ID, status, err.Error()); merr != nil {
			log.Printf("[RunService] Run %d: %v", run.ID, merr)
		}
		s.metrics.RecordRun(run.Kind, status)
		return
	}

	summary, _ := json.Marshal(RunSummary{
		Files:       st.Files,
		Diagnostics: len(st.Diagnostics),
		Weights:     len(st.Weights),
		Buildings:   len(st.Impacts),
		Hours:       st.Hours,
	})
	if err := s.runs.MarkAsCompleted(bg, run.ID, string(summary)); err != nil {
		log.Printf("[RunService] Run %d: %v", run.ID, err)
	}
	s.metrics.RecordRun(run.Kind, models.RunStatusCompleted)
	log.Printf("[RunService] Run %d completed: %d files, %d diagnostics", run.ID, len(st.Files), len(st.Diagnostics))
}

func (s *RunService) store(ctx context.Context, runID int64, st *analysis.State) error {
	if err := s.weights.Insert(ctx, runID, st.Weights); err != nil {
		return err
	}
	if st.Scenario != nil {
		if err := s.impacts.Insert(ctx, runID, st.Scenario.Buildings, st.Impacts); err != nil {
			return err
		}
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *RunService) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns retrieves a page of runs and the total matching the filters
func (s *RunService) ListRuns(ctx context.Context, kind, status string, limit, offset int) ([]*models.Run, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	runs, err := s.runs.List(ctx, kind, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.runs.Count(ctx, kind, status)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// CancelRun stops a pending or running run
func (s *RunService) CancelRun(ctx context.Context, id int64) error {
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if run.Status != models.RunStatusPending && run.Status != models.RunStatusRunning {
		return fmt.Errorf("%w (status: %s)", ErrRunNotActive, run.Status)
	}

	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
		return nil
	}
	// no worker owns the run any more
	return s.runs.MarkAsFinished(ctx, id, models.RunStatusCancelled, "cancelled by user")
}

// Diagnostics returns the diagnostics of a run
func (s *RunService) Diagnostics(ctx context.Context, id int64) ([]models.Diagnostic, error) {
	if _, err := s.runs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.diags.ListByRun(ctx, id)
}

// Weights returns the direction weights of a run; hour < 0 returns all
func (s *RunService) Weights(ctx context.Context, id int64, hour int) ([]models.DirectionWeight, error) {
	if _, err := s.runs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.weights.ListByRun(ctx, id, hour)
}

// Buildings returns a page of the building impacts of a run
func (s *RunService) Buildings(ctx context.Context, id int64, limit, offset int) ([]models.BuildingImpactRecord, error) {
	if _, err := s.runs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.impacts.ListByRun(ctx, id, limit, offset)
}

// Shutdown cancels every active run and waits for the workers to record it.
func (s *RunService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until every started run has ended.
func (s *RunService) Wait() {
	s.wg.Wait()
}

func validateParams(kind string, p models.RunParams) error {
	if !analysis.IsValidKind(kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, kind)
	}
	if kind != models.RunKindProcess && p.Park == "" {
		return fmt.Errorf("%w: park layer is required", ErrInvalidRequest)
	}
	if kind != models.RunKindPrepare && p.Weather == "" {
		return fmt.Errorf("%w: weather file is required", ErrInvalidRequest)
	}
	if kind == models.RunKindProcess && p.Scenario == "" {
		return fmt.Errorf("%w: scenario is required", ErrInvalidRequest)
	}
	return nil
}
