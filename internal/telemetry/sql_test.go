package telemetry

import (
	"context"
	"testing"

	"smartbin-backend/internal/database/testdb"
	"smartbin-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWith(distance *float64, ts int64) models.SensorSample {
	return models.SensorSample{Distance: distance, Timestamp: ts}
}

func TestSQLSourceDevicesAndSamples(t *testing.T) {
	source := NewSQLSource(testdb.New(t).DB())
	ctx := context.Background()

	require.NoError(t, source.RegisterDevice(ctx, models.Device{DeviceID: "dev-1", ApplicationID: "tenant-x", Name: "Lobby"}))
	require.NoError(t, source.RegisterDevice(ctx, models.Device{DeviceID: "dev-2", ApplicationID: "tenant-y"}))

	devices, err := source.ListDevices(ctx, "tenant-x")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "dev-1", devices[0].DeviceID)
	assert.Nil(t, devices[0].LastSeen)

	sample, err := source.LatestSample(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, sample, "no sample before the device reports")

	older, newer := 80.0, 20.0
	require.NoError(t, source.RecordSample(ctx, "dev-1", sampleWith(&older, 1000)))
	require.NoError(t, source.RecordSample(ctx, "dev-1", sampleWith(&newer, 2000)))

	sample, err = source.LatestSample(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, 20.0, *sample.Distance)
	assert.Equal(t, int64(2000), sample.Timestamp)

	devices, err = source.ListDevices(ctx, "tenant-x")
	require.NoError(t, err)
	require.NotNil(t, devices[0].LastSeen)
	assert.Equal(t, int64(2000), *devices[0].LastSeen)
}

func TestSQLSourceRegisterDeviceMovesTenant(t *testing.T) {
	source := NewSQLSource(testdb.New(t).DB())
	ctx := context.Background()

	require.NoError(t, source.RegisterDevice(ctx, models.Device{DeviceID: "dev-1", ApplicationID: "tenant-x"}))
	require.NoError(t, source.RegisterDevice(ctx, models.Device{DeviceID: "dev-1", ApplicationID: "tenant-y", Name: "Moved"}))

	x, err := source.ListDevices(ctx, "tenant-x")
	require.NoError(t, err)
	assert.Empty(t, x)

	y, err := source.ListDevices(ctx, "tenant-y")
	require.NoError(t, err)
	require.Len(t, y, 1)
	assert.Equal(t, "Moved", y[0].Name)
}

func TestSQLSourceRecordSampleUnknownDevice(t *testing.T) {
	source := NewSQLSource(testdb.New(t).DB())

	err := source.RecordSample(context.Background(), "ghost", models.SensorSample{})
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}
