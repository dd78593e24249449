package models

type SubscriptionPlan struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	PriceCents int        `json:"price_cents" db:"price_cents"`
	MaxBins    int        `json:"max_bins" db:"max_bins"` // 0 means unlimited
	Features   StringList `json:"features" db:"features"`
}
