// Package shipping computes delivery fees from a tiered rate table keyed on
// the free-shipping-eligible portion of an order's subtotal.
package shipping

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tuango/internal/model"
)

// Line pairs one priced order line with its product's free-shipping flag.
type Line struct {
	TotalPrice decimal.Decimal
	Eligible   bool
}

// Calculator computes delivery fees against a fixed, validated rate table.
type Calculator struct {
	table  RateTable
	logger zerolog.Logger
}

// NewCalculator creates a calculator. An invalid or empty table falls back to
// the hardcoded default schedule.
func NewCalculator(table RateTable, logger zerolog.Logger) *Calculator {
	logger = logger.With().Str("component", "shipping").Logger()

	if err := table.Validate(); err != nil {
		logger.Warn().Err(err).Msg("no usable rate table, using default tiers")
		table = DefaultRateTable()
	}

	return &Calculator{table: table, logger: logger}
}

// Fee returns the shipping fee for an order. Pickup orders are always free;
// delivery orders are charged by the tier their eligible subtotal reaches.
func (c *Calculator) Fee(method model.DeliveryMethod, lines []Line) decimal.Decimal {
	if method != model.DeliveryDelivery {
		return decimal.Zero
	}

	eligible := decimal.Zero
	for _, line := range lines {
		if line.Eligible {
			eligible = eligible.Add(line.TotalPrice)
		}
	}

	fee := c.table.FeeFor(eligible)
	c.logger.Debug().
		Str("eligible_subtotal", eligible.String()).
		Str("fee", fee.String()).
		Msg("calculated shipping fee")
	return fee
}
