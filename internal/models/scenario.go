package models

import (
	"time"

	"github.com/paulmach/orb"
)

// Scenario is the output of the prepare phase and the input of the process
// phase.
type Scenario struct {
	SRID        int              `json:"srid"`
	Pivot       orb.Point        `json:"pivot"`
	Park        orb.Polygon      `json:"park"`
	Directions  []DirectionModel `json:"directions"`
	Buildings   []Building       `json:"buildings"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
	CreatedAt   time.Time        `json:"created_at"`
}
