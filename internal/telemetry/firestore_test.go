package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSampleAcceptsMixedNumericTypes(t *testing.T) {
	sample := decodeSample(map[string]interface{}{
		"distance":    int64(20),
		"battery":     "87.5",
		"temperature": 21.25,
		"humidity":    int(60),
		"air_quality": float32(42),
		"odourLevel":  "not a number",
		"timestamp":   int64(1700000000),
	})

	require.NotNil(t, sample.Distance)
	assert.Equal(t, 20.0, *sample.Distance)
	assert.Equal(t, 87.5, *sample.Battery)
	assert.Equal(t, 21.25, *sample.Temperature)
	assert.Equal(t, 60.0, *sample.Humidity)
	assert.Equal(t, 42.0, *sample.AirQuality)
	assert.Nil(t, sample.OdourLevel)
	assert.Equal(t, int64(1700000000), sample.Timestamp)
}

func TestDecodeSampleTimestamps(t *testing.T) {
	want := int64(1700000000)
	tests := []struct {
		name string
		raw  interface{}
	}{
		{"firestore timestamp", time.Unix(want, 0).UTC()},
		{"unix seconds", want},
		{"unix seconds float", float64(want)},
		{"unix millis", want * 1000},
		{"rfc3339", time.Unix(want, 0).UTC().Format(time.RFC3339)},
		{"numeric string", "1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := decodeSample(map[string]interface{}{"timestamp": tt.raw})
			assert.Equal(t, want, sample.Timestamp)
		})
	}

	assert.Zero(t, decodeSample(map[string]interface{}{}).Timestamp)
	assert.Zero(t, decodeSample(map[string]interface{}{"timestamp": "yesterday"}).Timestamp)
}

func TestDecodeDevice(t *testing.T) {
	device := decodeDevice("doc-1", map[string]interface{}{
		"applicationId": "tenant-x",
		"name":          "Lobby Recycling",
		"lastSeen":      time.Unix(1700000000, 0),
	})
	assert.Equal(t, "doc-1", device.DeviceID)
	assert.Equal(t, "tenant-x", device.ApplicationID)
	assert.Equal(t, "Lobby Recycling", device.Name)
	require.NotNil(t, device.LastSeen)
	assert.Equal(t, int64(1700000000), *device.LastSeen)

	explicit := decodeDevice("doc-2", map[string]interface{}{"deviceId": "sensor-9"})
	assert.Equal(t, "sensor-9", explicit.DeviceID)
	assert.Nil(t, explicit.LastSeen)
}

func TestDecodeDeviceReadsTenantFromQueriedKeyOnly(t *testing.T) {
	snake := decodeDevice("doc-3", map[string]interface{}{"application_id": "tenant-x"})
	assert.Empty(t, snake.ApplicationID)

	camel := decodeDevice("doc-4", map[string]interface{}{"applicationId": "tenant-x"})
	assert.Equal(t, "tenant-x", camel.ApplicationID)
}

func TestEncodeSampleSkipsUnsetReadings(t *testing.T) {
	d := 12.0
	data := encodeSample(sampleWith(&d, 1700000000))
	assert.Equal(t, map[string]interface{}{"distance": 12.0, "timestamp": int64(1700000000)}, data)

	back := decodeSample(data)
	assert.Equal(t, 12.0, *back.Distance)
	assert.Nil(t, back.Battery)
}
