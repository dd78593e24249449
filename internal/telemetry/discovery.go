package telemetry

import (
	"context"

	"smartbin-backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// Discovery lists the devices a tenant can attach to bins.
type Discovery struct {
	source       Source
	defaultAppID string
}

func NewDiscovery(source Source, defaultAppID string) *Discovery {
	return &Discovery{source: source, defaultAppID: defaultAppID}
}

// ResolveApplicationID falls back to the default tenant for users without one.
func (d *Discovery) ResolveApplicationID(applicationID string) string {
	if applicationID == "" {
		return d.defaultAppID
	}
	return applicationID
}

// ListAvailableDevices returns the devices tagged with applicationID, each
// marked online when it has reported at least one sample. It never fails:
// a listing error yields an empty list, a sample error marks the device offline.
//
// The application ID is a visibility filter only and grants no access.
func (d *Discovery) ListAvailableDevices(ctx context.Context, applicationID string) []models.DeviceStatus {
	appID := d.ResolveApplicationID(applicationID)

	devices, err := d.source.ListDevices(ctx, appID)
	if err != nil {
		log.WithError(err).WithField("application_id", appID).Warn("⚠️  Device listing failed, returning no devices")
		return []models.DeviceStatus{}
	}

	result := make([]models.DeviceStatus, 0, len(devices))
	for _, device := range devices {
		if device.ApplicationID != appID {
			continue
		}

		status := models.DeviceStatus{Device: device, Status: models.DeviceOffline}
		sample, err := d.source.LatestSample(ctx, device.DeviceID)
		if err != nil {
			log.WithError(err).WithField("device_id", device.DeviceID).Warn("⚠️  Latest sample unavailable, marking device offline")
		} else if sample != nil {
			status.Status = models.DeviceOnline
			status.Latest = sample
		}
		result = append(result, status)
	}
	return result
}
