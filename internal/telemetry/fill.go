package telemetry

import (
	"math"

	"smartbin-backend/internal/models"
)

// CalculateFillLevel converts an ultrasonic distance reading into a fill
// percentage for a bin of the given height. Both are in centimetres.
//
// The result is always in [0, 100]. Missing, non-positive or non-finite
// inputs yield 0 so that sensor noise reads as an empty bin.
func CalculateFillLevel(distance, binHeight float64) float64 {
	if !finite(distance) || !finite(binHeight) {
		return 0
	}
	if binHeight <= 0 || distance < 0 {
		return 0
	}

	fill := math.Round((binHeight - distance) / binHeight * 100)
	if math.IsNaN(fill) {
		return 0
	}
	return math.Max(0, math.Min(100, fill))
}

// FillFromSample applies CalculateFillLevel to a sample whose distance may be unset.
func FillFromSample(sample *models.SensorSample, binHeight float64) float64 {
	if sample == nil || sample.Distance == nil {
		return 0
	}
	return CalculateFillLevel(*sample.Distance, binHeight)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
