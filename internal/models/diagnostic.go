package models

// Diagnostic severities
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Diagnostic codes
const (
	DiagParkCount         = "PARK_COUNT"
	DiagGroundCoverage    = "GROUND_COVERAGE"
	DiagGroundOverlap     = "GROUND_OVERLAP"
	DiagCanopyOverlap     = "CANOPY_OVERLAP"
	DiagMissingArchetype  = "MISSING_ARCHETYPE"
	DiagNoWeather         = "NO_WEATHER"
	DiagSkippedDates      = "SKIPPED_DATES"
	DiagInvalidCoverTypes = "INVALID_COVER_TYPES"
	DiagInvalidWeather    = "INVALID_WEATHER_ROWS"
)

// Diagnostic is a data-quality signal surfaced to the caller. It never stops
// a run.
type Diagnostic struct {
	RunID     int64   `json:"run_id,omitempty" db:"run_id"`
	Code      string  `json:"code" db:"code"`
	Severity  string  `json:"severity" db:"severity"`
	Message   string  `json:"message" db:"message"`
	Observed  float64 `json:"observed" db:"observed"`
	Threshold float64 `json:"threshold" db:"threshold"`
}
