package models

// Compartment is a sensored sub-unit of a SmartBin.
// Identifier follows <BinName>-<TypeCode>-<NNN> and is unique per SmartBin.
type Compartment struct {
	ID         string `json:"id" db:"id"`
	SmartBinID string `json:"smartbin_id" db:"smartbin_id"`
	Identifier string `json:"identifier" db:"identifier"`
	WasteType  string `json:"waste_type" db:"waste_type"`
	BinAttributes
	CreatedAt int64 `json:"created_at" db:"created_at"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at"`
}

// CreateCompartmentRequest is the request body for POST /api/compartments
type CreateCompartmentRequest struct {
	SmartBinID string `json:"smartbin_id" validate:"required"`
	Identifier string `json:"identifier" validate:"omitempty,max=120"`
	WasteType  string `json:"waste_type" validate:"required"`
	BinSettings
}
