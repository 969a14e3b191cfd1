// Package pricing computes line-item prices for every pricing scheme. It is
// pure computation: no I/O, no rounding. Callers round to cents once, at
// persistence, so repeated re-pricing of an order never drifts.
package pricing

import (
	"github.com/shopspring/decimal"

	"tuango/internal/model"
)

// Quote is the computed price of one order line.
type Quote struct {
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Price computes the unit and total price for a line item.
//
// scheme overrides the product's own pricing type when non-empty (cart
// requests carry the type they were quoted under, so an admin changing the
// product does not re-price an in-flight order line). dealPrice, when set on
// the deal-product link, wins over the product's per-item base price.
// finalWeight is the measured weight from fulfilment; nil or non-positive
// weights select the scheme's estimation branch instead of failing.
func Price(product *model.Product, scheme model.PricingType, dealPrice *decimal.Decimal, quantity int, finalWeight *decimal.Decimal) Quote {
	if scheme == "" {
		scheme = product.PricingType
	}

	qty := decimal.NewFromInt(int64(quantity))
	weight, hasWeight := effectiveWeight(finalWeight)

	switch scheme {
	case model.PricingWeightRange:
		return priceWeightRange(product.PricingData.Ranges, qty, weight, hasWeight)
	case model.PricingUnitWeight:
		return priceUnitWeight(product.PricingData.PricePerUnit, qty, weight, hasWeight)
	case model.PricingBundledWeight:
		return priceBundledWeight(product.PricingData, qty, weight, hasWeight)
	default:
		// per_item, and the fallback for unrecognised scheme tags.
		return pricePerItem(product.PricingData.Price, dealPrice, qty)
	}
}

// effectiveWeight validates a measured weight. Anything missing or
// non-positive is treated as "not weighed yet".
func effectiveWeight(w *decimal.Decimal) (decimal.Decimal, bool) {
	if w == nil || !w.IsPositive() {
		return decimal.Zero, false
	}
	return *w, true
}

func pricePerItem(basePrice decimal.Decimal, dealPrice *decimal.Decimal, qty decimal.Decimal) Quote {
	unit := basePrice
	if dealPrice != nil {
		unit = *dealPrice
	}
	return Quote{UnitPrice: unit, TotalPrice: unit.Mul(qty)}
}

func priceWeightRange(ranges []model.WeightRange, qty, weight decimal.Decimal, hasWeight bool) Quote {
	if len(ranges) == 0 {
		return Quote{UnitPrice: decimal.Zero, TotalPrice: decimal.Zero}
	}

	if hasWeight {
		for _, r := range ranges {
			if r.Contains(weight) {
				return Quote{UnitPrice: r.Price, TotalPrice: r.Price.Mul(qty)}
			}
		}
	}

	// No measured weight yet (cart estimation) or the weight fell in a gap
	// between configured ranges: quote the lowest range price so the
	// estimate never overstates the final charge.
	min := ranges[0].Price
	for _, r := range ranges[1:] {
		if r.Price.LessThan(min) {
			min = r.Price
		}
	}
	return Quote{UnitPrice: min, TotalPrice: min.Mul(qty)}
}

func priceUnitWeight(pricePerUnit, qty, weight decimal.Decimal, hasWeight bool) Quote {
	if !hasWeight {
		// One-unit minimum estimate until the item is weighed.
		weight = decimal.NewFromInt(1)
	}
	unit := pricePerUnit.Mul(weight)
	return Quote{UnitPrice: unit, TotalPrice: unit.Mul(qty)}
}

func priceBundledWeight(data model.PricingData, qty, weight decimal.Decimal, hasWeight bool) Quote {
	if data.PricePerUnit.IsZero() {
		return Quote{UnitPrice: decimal.Zero, TotalPrice: decimal.Zero}
	}

	// Quantity counts packages; the measured weight covers the whole line.
	if hasWeight {
		total := data.PricePerUnit.Mul(weight)
		return Quote{UnitPrice: total.Div(qty), TotalPrice: total}
	}

	mid := data.MinWeight.Add(data.MaxWeight).Div(decimal.NewFromInt(2))
	unit := data.PricePerUnit.Mul(mid)
	return Quote{UnitPrice: unit, TotalPrice: unit.Mul(qty)}
}
