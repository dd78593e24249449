package telemetry

import (
	"context"
	"database/sql"
	"time"

	"smartbin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLSource keeps devices and samples in the iot_devices and sensor_samples tables.
type SQLSource struct {
	db *sqlx.DB
}

func NewSQLSource(db *sqlx.DB) *SQLSource {
	return &SQLSource{db: db}
}

func (s *SQLSource) ListDevices(ctx context.Context, applicationID string) ([]models.Device, error) {
	devices := []models.Device{}
	err := s.db.SelectContext(ctx, &devices, s.db.Rebind(`
		SELECT device_id, application_id, name, last_seen
		FROM iot_devices
		WHERE application_id = ?
		ORDER BY device_id ASC
	`), applicationID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list devices of %s", applicationID)
	}
	return devices, nil
}

func (s *SQLSource) LatestSample(ctx context.Context, deviceID string) (*models.SensorSample, error) {
	var sample models.SensorSample
	err := s.db.GetContext(ctx, &sample, s.db.Rebind(`
		SELECT distance, battery, temperature, humidity, air_quality, odour_level, timestamp
		FROM sensor_samples
		WHERE device_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`), deviceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read latest sample of %s", deviceID)
	}
	return &sample, nil
}

// RegisterDevice creates the device or updates its tenant and name.
func (s *SQLSource) RegisterDevice(ctx context.Context, device models.Device) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO iot_devices (device_id, application_id, name, last_seen, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE
		SET application_id = excluded.application_id, name = excluded.name
	`), device.DeviceID, device.ApplicationID, device.Name, device.LastSeen, time.Now().Unix())
	if err != nil {
		return errors.Wrapf(err, "failed to register device %s", device.DeviceID)
	}
	return nil
}

func (s *SQLSource) RecordSample(ctx context.Context, deviceID string, sample models.SensorSample) error {
	if sample.Timestamp == 0 {
		sample.Timestamp = time.Now().Unix()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE iot_devices SET last_seen = ? WHERE device_id = ?
	`), sample.Timestamp, deviceID)
	if err != nil {
		return errors.Wrapf(err, "failed to touch device %s", deviceID)
	}
	if rows, err := result.RowsAffected(); err != nil || rows == 0 {
		return errors.Wrap(ErrDeviceNotFound, deviceID)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO sensor_samples (id, device_id, distance, battery, temperature, humidity, air_quality, odour_level, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), uuid.New().String(), deviceID, sample.Distance, sample.Battery, sample.Temperature,
		sample.Humidity, sample.AirQuality, sample.OdourLevel, sample.Timestamp)
	if err != nil {
		return errors.Wrapf(err, "failed to record sample for %s", deviceID)
	}

	return errors.Wrap(tx.Commit(), "failed to commit sample")
}
