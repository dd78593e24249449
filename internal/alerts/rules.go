// Package alerts evaluates bins and compartments against their thresholds
// and keeps at most one open alert per entity and alert type.
package alerts

import (
	"fmt"

	"smartbin-backend/internal/models"
)

// Fixed safety bands for sensors without a user threshold.
const (
	HumidityLimit        = 85.0
	AirQualityLimit      = 150.0
	AirQualitySevereLine = 300.0
	OdourLimit           = 70.0
	FillCriticalLine     = 90.0
)

// defaultSensors are used when an entity has no sensors configured.
var defaultSensors = []string{
	models.SensorFillLevel,
	models.SensorBatteryLevel,
	models.SensorTemperature,
}

// Target is one bin or compartment to evaluate.
type Target struct {
	Kind          models.EntityType
	ID            string
	BinID         string
	CompartmentID *string
	Name          string
	Attributes    models.BinAttributes
}

// Breach is a single threshold violation found on a target.
type Breach struct {
	AlertType string
	Severity  string
	Value     float64
	Threshold float64
	Unit      string
	Message   string
}

func SmartBinTarget(b models.SmartBin) Target {
	return Target{Kind: models.EntitySmartBin, ID: b.ID, BinID: b.ID, Name: b.Name, Attributes: b.BinAttributes}
}

func CompartmentTarget(c models.Compartment) Target {
	id := c.ID
	return Target{
		Kind:          models.EntityCompartment,
		ID:            c.ID,
		BinID:         c.SmartBinID,
		CompartmentID: &id,
		Name:          c.Identifier,
		Attributes:    c.BinAttributes,
	}
}

func SingleBinTarget(b models.SingleBin) Target {
	return Target{Kind: models.EntitySingleBin, ID: b.ID, BinID: b.ID, Name: b.Name, Attributes: b.BinAttributes}
}

// Evaluate checks every enabled sensor of t on its own. Sensors without a
// current value, or without a threshold where one is required, are skipped.
func Evaluate(t Target) []Breach {
	sensors := []string(t.Attributes.Sensors)
	if len(sensors) == 0 {
		sensors = defaultSensors
	}

	snap := t.Attributes.SensorSnapshot
	th := t.Attributes.Thresholds
	var breaches []Breach

	for _, sensor := range sensors {
		switch sensor {
		case models.SensorFillLevel:
			if snap.FillLevel == nil || th.FillThreshold == nil || *snap.FillLevel < *th.FillThreshold {
				continue
			}
			severity := models.SeverityHigh
			if *snap.FillLevel >= FillCriticalLine {
				severity = models.SeverityCritical
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  severity,
				Value:     *snap.FillLevel,
				Threshold: *th.FillThreshold,
				Unit:      "%",
				Message:   fmt.Sprintf("%s is %.0f%% full (threshold %.0f%%)", t.Name, *snap.FillLevel, *th.FillThreshold),
			})

		case models.SensorBatteryLevel:
			if snap.BatteryLevel == nil || th.BatteryThreshold == nil || *snap.BatteryLevel > *th.BatteryThreshold {
				continue
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  models.SeverityMedium,
				Value:     *snap.BatteryLevel,
				Threshold: *th.BatteryThreshold,
				Unit:      "%",
				Message:   fmt.Sprintf("%s battery is low at %.0f%% (threshold %.0f%%)", t.Name, *snap.BatteryLevel, *th.BatteryThreshold),
			})

		case models.SensorTemperature:
			if snap.Temperature == nil || th.TempThreshold == nil || *snap.Temperature < *th.TempThreshold {
				continue
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  models.SeverityCritical,
				Value:     *snap.Temperature,
				Threshold: *th.TempThreshold,
				Unit:      "°C",
				Message:   fmt.Sprintf("%s temperature is %.1f°C (threshold %.1f°C), possible fire", t.Name, *snap.Temperature, *th.TempThreshold),
			})

		case models.SensorHumidity:
			if snap.Humidity == nil || *snap.Humidity <= HumidityLimit {
				continue
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  models.SeverityMedium,
				Value:     *snap.Humidity,
				Threshold: HumidityLimit,
				Unit:      "%",
				Message:   fmt.Sprintf("%s humidity is %.0f%%", t.Name, *snap.Humidity),
			})

		case models.SensorAirQuality:
			if snap.AirQuality == nil || *snap.AirQuality <= AirQualityLimit {
				continue
			}
			severity := models.SeverityMedium
			if *snap.AirQuality > AirQualitySevereLine {
				severity = models.SeverityHigh
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  severity,
				Value:     *snap.AirQuality,
				Threshold: AirQualityLimit,
				Unit:      "AQI",
				Message:   fmt.Sprintf("%s air quality is unhealthy (AQI %.0f)", t.Name, *snap.AirQuality),
			})

		case models.SensorOdour:
			if snap.OdourLevel == nil || *snap.OdourLevel <= OdourLimit {
				continue
			}
			breaches = append(breaches, Breach{
				AlertType: sensor,
				Severity:  models.SeverityMedium,
				Value:     *snap.OdourLevel,
				Threshold: OdourLimit,
				Unit:      "index",
				Message:   fmt.Sprintf("%s odour level is %.0f", t.Name, *snap.OdourLevel),
			})
		}
	}
	return breaches
}
