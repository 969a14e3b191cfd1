package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item. How it is priced depends on PricingType;
// PricingData carries the fields for the active scheme.
type Product struct {
	ID                       int64       `json:"id" db:"id"`
	Name                     string      `json:"name" db:"name"`
	PricingType              PricingType `json:"pricingType" db:"pricing_type"`
	PricingData              PricingData `json:"pricingData" db:"pricing_data"`
	Description              *string     `json:"description,omitempty" db:"description"`
	CountsTowardFreeShipping bool        `json:"countsTowardFreeShipping" db:"counts_toward_free_shipping"`
	IsActive                 bool        `json:"isActive" db:"is_active"`
	CreatedAt                time.Time   `json:"createdAt" db:"created_at"`
}

// PricingData holds the scheme-specific pricing fields, stored as JSON.
//
//	per_item:       Price
//	weight_range:   Ranges (ordered ascending by Min, last Max may be null)
//	unit_weight:    PricePerUnit, Unit
//	bundled_weight: PricePerUnit, Unit, MinWeight, MaxWeight
type PricingData struct {
	Price        decimal.Decimal `json:"price,omitempty"`
	Ranges       []WeightRange   `json:"ranges,omitempty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	MinWeight    decimal.Decimal `json:"min_weight,omitempty"`
	MaxWeight    decimal.Decimal `json:"max_weight,omitempty"`
}

// WeightRange is one tier of a weight_range scheme: [Min, Max) with a nil Max
// meaning unbounded.
type WeightRange struct {
	Min   decimal.Decimal  `json:"min"`
	Max   *decimal.Decimal `json:"max"`
	Price decimal.Decimal  `json:"price"`
}

// Contains reports whether the weight falls inside the range.
func (r WeightRange) Contains(weight decimal.Decimal) bool {
	if weight.LessThan(r.Min) {
		return false
	}
	return r.Max == nil || weight.LessThan(*r.Max)
}
