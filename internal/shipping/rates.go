package shipping

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is one step of the delivery fee schedule: the fee charged once the
// eligible subtotal reaches Threshold.
type Tier struct {
	Threshold decimal.Decimal `json:"threshold"`
	Fee       decimal.Decimal `json:"fee"`
}

// RateTable is an ascending list of fee tiers. The first tier must have
// threshold 0 (the base fee) and the last tier fee 0 (the free-shipping
// threshold). Validated when loaded, never at calculation time.
type RateTable []Tier

// DefaultRateTable returns the hardcoded fallback schedule used when no
// configured table is available.
func DefaultRateTable() RateTable {
	return RateTable{
		{Threshold: decimal.Zero, Fee: decimal.RequireFromString("7.99")},
		{Threshold: decimal.NewFromInt(58), Fee: decimal.RequireFromString("5.99")},
		{Threshold: decimal.NewFromInt(128), Fee: decimal.RequireFromString("3.99")},
		{Threshold: decimal.NewFromInt(150), Fee: decimal.Zero},
	}
}

// Validate checks the structural rules of a rate table.
func (t RateTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("rate table must have at least one tier")
	}
	if !t[0].Threshold.IsZero() {
		return fmt.Errorf("first tier must have threshold 0, got %s", t[0].Threshold)
	}
	for i, tier := range t {
		if tier.Fee.IsNegative() {
			return fmt.Errorf("tier %d: fee must not be negative, got %s", i, tier.Fee)
		}
		if i > 0 && tier.Threshold.LessThanOrEqual(t[i-1].Threshold) {
			return fmt.Errorf("tier %d: thresholds must be strictly ascending (%s after %s)",
				i, tier.Threshold, t[i-1].Threshold)
		}
	}
	if !t[len(t)-1].Fee.IsZero() {
		return fmt.Errorf("last tier must be the free-shipping tier (fee 0), got %s", t[len(t)-1].Fee)
	}
	return nil
}

// FeeFor returns the fee of the highest tier whose threshold does not exceed
// the eligible subtotal.
func (t RateTable) FeeFor(eligibleSubtotal decimal.Decimal) decimal.Decimal {
	fee := decimal.Zero
	for _, tier := range t {
		if eligibleSubtotal.GreaterThanOrEqual(tier.Threshold) {
			fee = tier.Fee
		}
	}
	return fee
}

// ParseRateTable decodes and validates a JSON-encoded rate table.
// The document shape matches the stored config: {"tiers": [{threshold, fee}...]}.
func ParseRateTable(data []byte) (RateTable, error) {
	var doc struct {
		Tiers RateTable `json:"tiers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}
	if err := doc.Tiers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}
	return doc.Tiers, nil
}
