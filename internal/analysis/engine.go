package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/jengzang/coolparks-go/internal/models"
)

// Phase is one step of a run. A run executes the phases registered for its
// kind in order, sharing one State.
type Phase interface {
	// Run performs the phase. It must return ctx.Err() promptly once the
	// context is cancelled.
	Run(ctx context.Context, st *State) error

	// GetName returns the name of the phase
	GetName() string
}

// Progress represents the progress of a run
type Progress struct {
	Phase   string // Current phase name
	Percent int    // Overall progress (0-100)
	Message string // Optional progress message
}

// ProgressFunc receives progress updates. It may be called from several
// goroutines.
type ProgressFunc func(Progress)

// State is the data handed from one phase to the next.
type State struct {
	Params    models.RunParams
	OutputDir string

	Scenario    *models.Scenario
	Diagnostics []models.Diagnostic
	Weights     []models.DirectionWeight
	Impacts     []models.BuildingImpact
	Hours       []HourSummary
	Files       []string

	mu       sync.Mutex
	progress ProgressFunc
	phase    string
	index    int
	count    int
}

// Report publishes the progress of the current phase, done out of total units.
func (s *State) Report(done, total int, msg string) {
	if s.progress == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	within := 0.0
	if total > 0 {
		within = float64(done) / float64(total)
	}
	percent := int((float64(s.index) + within) / float64(s.count) * 100)
	s.progress(Progress{Phase: s.phase, Percent: percent, Message: msg})
}

// AddDiagnostics appends data quality signals to the run.
func (s *State) AddDiagnostics(diags ...models.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Diagnostics = append(s.Diagnostics, diags...)
}

// AddFile records an output written by a phase.
func (s *State) AddFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files = append(s.Files, path)
}

func (s *State) enter(name string, index, count int) {
	s.mu.Lock()
	s.phase, s.index, s.count = name, index, count
	s.mu.Unlock()
}

// PhaseFactory is a function that creates a phase bound to a pipeline
type PhaseFactory func(p *Pipeline) Phase

// PhaseRegistry maps phase names to phase factories
var PhaseRegistry = make(map[string]PhaseFactory)

// RegisterPhase registers a phase factory for a phase name
func RegisterPhase(name string, factory PhaseFactory) {
	PhaseRegistry[name] = factory
}

// GetPhase retrieves a phase instance for a phase name
func GetPhase(name string, p *Pipeline) Phase {
	factory, ok := PhaseRegistry[name]
	if !ok {
		return nil
	}
	return factory(p)
}

// Phase names
const (
	PhasePrepare = "prepare"
	PhaseProcess = "process"
)

// KindPhases lists the phases run by each run kind.
var KindPhases = map[string][]string{
	models.RunKindPrepare: {PhasePrepare},
	models.RunKindProcess: {PhaseProcess},
	models.RunKindFull:    {PhasePrepare, PhaseProcess},
}

// IsValidKind reports whether runs of that kind can be executed.
func IsValidKind(kind string) bool {
	_, ok := KindPhases[kind]
	return ok
}

// phasesFor resolves the phases of a run kind.
func phasesFor(kind string, p *Pipeline) ([]Phase, error) {
	names, ok := KindPhases[kind]
	if !ok {
		return nil, fmt.Errorf("unknown run kind: %s", kind)
	}
	phases := make([]Phase, 0, len(names))
	for _, name := range names {
		ph := GetPhase(name, p)
		if ph == nil {
			return nil, fmt.Errorf("phase not registered: %s", name)
		}
		phases = append(phases, ph)
	}
	return phases, nil
}
