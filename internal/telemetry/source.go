// Package telemetry reads IoT device state and converts raw sensor readings
// into values the rest of the service works with.
package telemetry

import (
	"context"

	"smartbin-backend/internal/models"

	"github.com/pkg/errors"
)

// ErrDeviceNotFound is returned when a sample is recorded for an unknown device.
var ErrDeviceNotFound = errors.New("device not found")

// Source is a store of devices and their sensor samples.
type Source interface {
	// ListDevices returns the devices tagged with applicationID.
	ListDevices(ctx context.Context, applicationID string) ([]models.Device, error)
	// LatestSample returns the most recent sample of a device, or nil if it never reported.
	LatestSample(ctx context.Context, deviceID string) (*models.SensorSample, error)
	RegisterDevice(ctx context.Context, device models.Device) error
	RecordSample(ctx context.Context, deviceID string, sample models.SensorSample) error
}
