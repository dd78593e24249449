package telemetry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"smartbin-backend/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	devicesCollection = "iot-devices"
	samplesPrefix     = "sensor-data-"
)

// FirestoreSource reads devices from the iot-devices collection and samples
// from one sensor-data-<deviceId> collection per device.
type FirestoreSource struct {
	client *firestore.Client
}

func NewFirestoreSource(client *firestore.Client) *FirestoreSource {
	return &FirestoreSource{client: client}
}

func (s *FirestoreSource) ListDevices(ctx context.Context, applicationID string) ([]models.Device, error) {
	iter := s.client.Collection(devicesCollection).
		Where("applicationId", "==", applicationID).
		Documents(ctx)
	defer iter.Stop()

	devices := []models.Device{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list devices of %s", applicationID)
		}
		devices = append(devices, decodeDevice(doc.Ref.ID, doc.Data()))
	}
	return devices, nil
}

func (s *FirestoreSource) LatestSample(ctx context.Context, deviceID string) (*models.SensorSample, error) {
	iter := s.client.Collection(samplesPrefix+deviceID).
		OrderBy("timestamp", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read latest sample of %s", deviceID)
	}
	sample := decodeSample(doc.Data())
	return &sample, nil
}

func (s *FirestoreSource) RegisterDevice(ctx context.Context, device models.Device) error {
	data := map[string]interface{}{
		"deviceId":      device.DeviceID,
		"applicationId": device.ApplicationID,
		"name":          device.Name,
	}
	_, err := s.client.Collection(devicesCollection).Doc(device.DeviceID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return errors.Wrapf(err, "failed to register device %s", device.DeviceID)
	}
	return nil
}

func (s *FirestoreSource) RecordSample(ctx context.Context, deviceID string, sample models.SensorSample) error {
	ref := s.client.Collection(devicesCollection).Doc(deviceID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.Wrap(ErrDeviceNotFound, deviceID)
		}
		return errors.Wrapf(err, "failed to look up device %s", deviceID)
	}

	if sample.Timestamp == 0 {
		sample.Timestamp = time.Now().Unix()
	}
	if _, _, err := s.client.Collection(samplesPrefix+deviceID).Add(ctx, encodeSample(sample)); err != nil {
		return errors.Wrapf(err, "failed to record sample for %s", deviceID)
	}
	if _, err := ref.Set(ctx, map[string]interface{}{"lastSeen": sample.Timestamp}, firestore.MergeAll); err != nil {
		return errors.Wrapf(err, "failed to touch device %s", deviceID)
	}
	return nil
}

func encodeSample(sample models.SensorSample) map[string]interface{} {
	data := map[string]interface{}{"timestamp": sample.Timestamp}
	put := func(key string, v *float64) {
		if v != nil {
			data[key] = *v
		}
	}
	put("distance", sample.Distance)
	put("battery", sample.Battery)
	put("temperature", sample.Temperature)
	put("humidity", sample.Humidity)
	put("airQuality", sample.AirQuality)
	put("odourLevel", sample.OdourLevel)
	return data
}

// Devices are written by firmware and several generations of dashboard code,
// so field types vary. Decoding never fails; unreadable fields are left unset.
// The tenant is only read from applicationId, the one key ListDevices queries.

func decodeDevice(docID string, data map[string]interface{}) models.Device {
	device := models.Device{
		DeviceID:      stringField(data, "deviceId", "device_id"),
		ApplicationID: stringField(data, "applicationId"),
		Name:          stringField(data, "name", "deviceName"),
		LastSeen:      timestampField(data, "lastSeen", "last_seen"),
	}
	if device.DeviceID == "" {
		device.DeviceID = docID
	}
	return device
}

func decodeSample(data map[string]interface{}) models.SensorSample {
	sample := models.SensorSample{
		Distance:    numberField(data, "distance"),
		Battery:     numberField(data, "battery", "batteryLevel", "battery_level"),
		Temperature: numberField(data, "temperature"),
		Humidity:    numberField(data, "humidity"),
		AirQuality:  numberField(data, "airQuality", "air_quality"),
		OdourLevel:  numberField(data, "odourLevel", "odour_level", "odour"),
	}
	if ts := timestampField(data, "timestamp"); ts != nil {
		sample.Timestamp = *ts
	}
	return sample
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func numberField(data map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := toFloat(data[key]); ok {
			return &v
		}
	}
	return nil
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// timestampField reads a unix timestamp in seconds from a Firestore
// timestamp, unix seconds, unix milliseconds or an RFC3339 string.
func timestampField(data map[string]interface{}, keys ...string) *int64 {
	for _, key := range keys {
		raw, ok := data[key]
		if !ok || raw == nil {
			continue
		}
		if t, ok := raw.(time.Time); ok {
			ts := t.Unix()
			return &ts
		}
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				ts := t.Unix()
				return &ts
			}
		}
		if f, ok := toFloat(raw); ok {
			ts := int64(f)
			// Values this large are milliseconds.
			if ts > 1e12 {
				ts /= 1000
			}
			return &ts
		}
	}
	return nil
}
