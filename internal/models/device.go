package models

const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
)

// Device is an IoT sensor unit, scoped to a tenant by ApplicationID.
type Device struct {
	DeviceID      string `json:"device_id" db:"device_id" firestore:"deviceId"`
	ApplicationID string `json:"application_id" db:"application_id" firestore:"applicationId"`
	Name          string `json:"name" db:"name" firestore:"name"`
	LastSeen      *int64 `json:"last_seen,omitempty" db:"last_seen" firestore:"lastSeen"` // Unix timestamp
}

// DeviceStatus is what GET /api/devices returns.
type DeviceStatus struct {
	Device
	Status string        `json:"status"`
	Latest *SensorSample `json:"latest,omitempty"`
}

// RegisterDeviceRequest is the request body for POST /api/devices
type RegisterDeviceRequest struct {
	DeviceID      string `json:"device_id" validate:"required,max=128"`
	Name          string `json:"name"`
	ApplicationID string `json:"application_id"`
}

// DeviceSuggestion holds attributes guessed from a device's name.
type DeviceSuggestion struct {
	DeviceID   string   `json:"device_id"`
	Matched    bool     `json:"matched"`
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	WasteTypes []string `json:"waste_types"`
	Capacity   float64  `json:"capacity"`
}
