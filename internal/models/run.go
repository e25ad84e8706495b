package models

import "time"

// Run is one execution of the cooling pipeline
type Run struct {
	ID int64 `json:"id" db:"id"`

	Kind   string `json:"kind" db:"kind"`     // prepare, process, full
	Status string `json:"status" db:"status"` // pending, running, completed, failed, cancelled
	Phase  string `json:"phase" db:"phase"`

	ProgressPercent int `json:"progress_percent" db:"progress_percent"`

	ParamsJSON    string `json:"params_json,omitempty" db:"params_json"`
	OutputDir     string `json:"output_dir" db:"output_dir"`
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"`
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	StartTime int64 `json:"start_time,omitempty" db:"start_time"` // Unix timestamp
	EndTime   int64 `json:"end_time,omitempty" db:"end_time"`     // Unix timestamp

	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RunParams are the inputs of a run
type RunParams struct {
	Buildings string `json:"buildings,omitempty"`
	Park      string `json:"park,omitempty"`
	Ground    string `json:"ground,omitempty"`
	Canopy    string `json:"canopy,omitempty"`
	Weather   string `json:"weather,omitempty"`
	Scenario  string `json:"scenario,omitempty"`
	SRID      int    `json:"srid,omitempty"`
}

// RunKind constants
const (
	RunKindPrepare = "prepare"
	RunKindProcess = "process"
	RunKindFull    = "full"
)

// RunStatus constants
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// BuildingImpactRecord is the stored form of a building impact; nil marks a
// value that could not be evaluated.
type BuildingImpactRecord struct {
	RunID               int64    `json:"run_id" db:"run_id"`
	BuildingID          int      `json:"building_id" db:"building_id"`
	GeometryClass       int      `json:"geometry_class" db:"geometry_class"`
	Orientation         int      `json:"orientation" db:"orientation"`
	SizeClass           int      `json:"size_class" db:"size_class"`
	AmplificationFactor *float64 `json:"amplification_factor" db:"amplification_factor"`
	EnergyAbs           *float64 `json:"energy_impact_abs" db:"energy_impact_abs"`
	EnergyRel           *float64 `json:"energy_impact_rel" db:"energy_impact_rel"`
	ComfortAbs          *float64 `json:"therm_comfort_impact_abs" db:"therm_comfort_impact_abs"`
	ComfortRel          *float64 `json:"therm_comfort_impact_rel" db:"therm_comfort_impact_rel"`
	FootprintWKT        string   `json:"footprint_wkt,omitempty" db:"footprint_wkt"`
}
