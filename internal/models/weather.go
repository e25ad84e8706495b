package models

import (
	"math"
	"time"
)

// WeatherRecord is one observation of the weather series. Missing fields are NaN.
type WeatherRecord struct {
	Time             time.Time `json:"time"`
	WindDirection    float64   `json:"wind_direction"`
	WindSpeed        float64   `json:"wind_speed"`
	AirTemperature   float64   `json:"air_temperature"`
	RelativeHumidity float64   `json:"relative_humidity"`
	Pressure         float64   `json:"pressure"`
}

// Complete reports whether every field needed by the propagation is present.
func (r WeatherRecord) Complete() bool {
	for _, v := range []float64{r.WindDirection, r.WindSpeed, r.AirTemperature, r.RelativeHumidity} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// DirectionWeight is the occurrence count of one wind direction bin for one
// time of day.
type DirectionWeight struct {
	RunID     int64   `json:"run_id" db:"run_id"`
	Hour      int     `json:"hour" db:"hour"`
	Direction float64 `json:"direction" db:"direction"`
	Count     int     `json:"count" db:"count"`
	Weight    float64 `json:"weight" db:"weight"`
}
