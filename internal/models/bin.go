package models

// Sensor kinds that can be enabled on a bin or compartment.
const (
	SensorFillLevel    = "fill_level"
	SensorBatteryLevel = "battery_level"
	SensorTemperature  = "temperature"
	SensorHumidity     = "humidity"
	SensorAirQuality   = "air_quality"
	SensorOdour        = "odour"
)

// Thresholds are user-configured trigger values. Nil means not configured.
type Thresholds struct {
	FillThreshold    *float64 `json:"fill_threshold,omitempty" db:"fill_threshold"`       // %
	BatteryThreshold *float64 `json:"battery_threshold,omitempty" db:"battery_threshold"` // %
	TempThreshold    *float64 `json:"temp_threshold,omitempty" db:"temp_threshold"`       // °C
}

// SensorSnapshot is the cached latest reading for an entity.
type SensorSnapshot struct {
	FillLevel    *float64 `json:"fill_level,omitempty" db:"fill_level"`
	BatteryLevel *float64 `json:"battery_level,omitempty" db:"battery_level"`
	Temperature  *float64 `json:"temperature,omitempty" db:"temperature"`
	Humidity     *float64 `json:"humidity,omitempty" db:"humidity"`
	AirQuality   *float64 `json:"air_quality,omitempty" db:"air_quality"`
	OdourLevel   *float64 `json:"odour_level,omitempty" db:"odour_level"`
	LastUpdate   *int64   `json:"last_update,omitempty" db:"last_update"` // Unix timestamp
}

// BinAttributes is the shape shared by SmartBins, SingleBins and Compartments.
type BinAttributes struct {
	Name      string     `json:"name" db:"name"`
	Location  string     `json:"location" db:"location"`
	Capacity  float64    `json:"capacity" db:"capacity"`     // litres
	BinHeight float64    `json:"bin_height" db:"bin_height"` // cm, sensor to floor when empty
	Status    string     `json:"status" db:"status"`
	DeviceID  *string    `json:"device_id,omitempty" db:"device_id"`
	Sensors   StringList `json:"sensors" db:"sensors"`
	CreatedBy string     `json:"created_by" db:"created_by"` // owner email
	UserID    *string    `json:"user_id,omitempty" db:"user_id"`
	Thresholds
	SensorSnapshot
}

type SmartBin struct {
	ID string `json:"id" db:"id"`
	BinAttributes
	CreatedAt int64 `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt int64 `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// SmartBinWithCompartments is returned by GET /api/smartbins/{id}
type SmartBinWithCompartments struct {
	SmartBin
	Compartments []Compartment `json:"compartments"`
}

type SingleBin struct {
	ID string `json:"id" db:"id"`
	BinAttributes
	WasteType string `json:"waste_type" db:"waste_type"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

// BinSettings are the create-time fields shared by bins and compartments.
type BinSettings struct {
	Location         string   `json:"location"`
	Capacity         float64  `json:"capacity" validate:"gte=0"`
	BinHeight        float64  `json:"bin_height" validate:"gte=0"`
	Status           string   `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
	DeviceID         *string  `json:"device_id,omitempty"`
	Sensors          []string `json:"sensors" validate:"dive,oneof=fill_level battery_level temperature humidity air_quality odour"`
	FillThreshold    *float64 `json:"fill_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
	BatteryThreshold *float64 `json:"battery_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
	TempThreshold    *float64 `json:"temp_threshold,omitempty"`
}

// BinRequest is the request body shared by POST /api/smartbins and POST /api/singlebins
type BinRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	WasteType string `json:"waste_type"`
	BinSettings
}

// UpdateBinRequest is the request body for PATCH on bins and compartments.
// Nil fields are left unchanged.
type UpdateBinRequest struct {
	Name             *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Location         *string   `json:"location,omitempty"`
	Capacity         *float64  `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	BinHeight        *float64  `json:"bin_height,omitempty" validate:"omitempty,gte=0"`
	Status           *string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive maintenance"`
	DeviceID         *string   `json:"device_id,omitempty"`
	Sensors          *[]string `json:"sensors,omitempty" validate:"omitempty,dive,oneof=fill_level battery_level temperature humidity air_quality odour"`
	WasteType        *string   `json:"waste_type,omitempty"`
	FillThreshold    *float64  `json:"fill_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
	BatteryThreshold *float64  `json:"battery_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
	TempThreshold    *float64  `json:"temp_threshold,omitempty"`
}

// Attributes converts create-time settings into stored attributes owned by ownerEmail.
func (r *BinSettings) Attributes(name, ownerEmail string, userID *string) BinAttributes {
	status := r.Status
	if status == "" {
		status = StatusActive
	}
	sensors := StringList(r.Sensors)
	if sensors == nil {
		sensors = StringList{}
	}
	return BinAttributes{
		Name:      name,
		Location:  r.Location,
		Capacity:  r.Capacity,
		BinHeight: r.BinHeight,
		Status:    status,
		DeviceID:  emptyToNil(r.DeviceID),
		Sensors:   sensors,
		CreatedBy: ownerEmail,
		UserID:    userID,
		Thresholds: Thresholds{
			FillThreshold:    r.FillThreshold,
			BatteryThreshold: r.BatteryThreshold,
			TempThreshold:    r.TempThreshold,
		},
	}
}

// Apply copies every non-nil field of the patch onto a.
func (r *UpdateBinRequest) Apply(a *BinAttributes) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Location != nil {
		a.Location = *r.Location
	}
	if r.Capacity != nil {
		a.Capacity = *r.Capacity
	}
	if r.BinHeight != nil {
		a.BinHeight = *r.BinHeight
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.DeviceID != nil {
		a.DeviceID = emptyToNil(r.DeviceID)
	}
	if r.Sensors != nil {
		a.Sensors = StringList(*r.Sensors)
	}
	if r.FillThreshold != nil {
		a.FillThreshold = r.FillThreshold
	}
	if r.BatteryThreshold != nil {
		a.BatteryThreshold = r.BatteryThreshold
	}
	if r.TempThreshold != nil {
		a.TempThreshold = r.TempThreshold
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
