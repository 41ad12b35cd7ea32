package domain

import "time"

// Reading represents one hourly rain-gauge observation for one grid cell.
// PrecipMm is nil when the gauge reported no value for that hour.
type Reading struct {
	Lat       float64   // cell latitude (degrees)
	Lon       float64   // cell longitude (degrees)
	Timestamp time.Time // hour start, UTC
	PrecipMm  *float64  // rainfall intensity in mm/h, nil = missing
}
