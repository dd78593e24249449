package models

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityInfo     = "info"
)

// Alert is raised by the evaluator and only ever mutated by acknowledgement.
// At most one unacknowledged alert exists per (EntityID, AlertType).
type Alert struct {
	ID             string     `json:"id" db:"id"`
	EntityID       string     `json:"entity_id" db:"entity_id"`
	EntityType     EntityType `json:"entity_type" db:"entity_type"`
	BinID          string     `json:"binId" db:"bin_id"`
	CompartmentID  *string    `json:"compartmentId,omitempty" db:"compartment_id"`
	BinName        string     `json:"binName" db:"bin_name"`
	AlertType      string     `json:"alert_type" db:"alert_type"`
	Severity       string     `json:"severity" db:"severity"`
	CurrentValue   float64    `json:"currentValue" db:"current_value"`
	Threshold      float64    `json:"threshold" db:"threshold"`
	Unit           string     `json:"unit" db:"unit"`
	Message        string     `json:"message" db:"message"`
	Acknowledged   bool       `json:"acknowledged" db:"acknowledged"`
	AcknowledgedAt *int64     `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	CreatedBy      string     `json:"created_by" db:"created_by"` // bin owner email
	CreatedAt      int64      `json:"created_at" db:"created_at"`
	UpdatedAt      int64      `json:"updated_at" db:"updated_at"`
}

// AlertFilter narrows GET /api/alerts
type AlertFilter struct {
	Scope        OwnerScope
	Acknowledged *bool
	EntityID     string
	Limit        int
}
