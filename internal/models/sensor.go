package models

// SensorSample is a raw reading as reported by a device. Every reading is optional.
type SensorSample struct {
	Distance    *float64 `json:"distance,omitempty" db:"distance"` // cm, sensor to waste surface
	Battery     *float64 `json:"battery,omitempty" db:"battery"`
	Temperature *float64 `json:"temperature,omitempty" db:"temperature"`
	Humidity    *float64 `json:"humidity,omitempty" db:"humidity"`
	AirQuality  *float64 `json:"airQuality,omitempty" db:"air_quality"`
	OdourLevel  *float64 `json:"odourLevel,omitempty" db:"odour_level"`
	Timestamp   int64    `json:"timestamp" db:"timestamp"` // Unix timestamp
}
