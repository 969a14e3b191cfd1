package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tuango/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func weightRangeProduct() *model.Product {
	return &model.Product{
		ID:          1,
		Name:        "Lamb Leg",
		PricingType: model.PricingWeightRange,
		PricingData: model.PricingData{
			Ranges: []model.WeightRange{
				{Min: dec("0"), Max: decPtr("2"), Price: dec("10.00")},
				{Min: dec("2"), Max: decPtr("5"), Price: dec("8.00")},
				{Min: dec("5"), Max: nil, Price: dec("6.00")},
			},
		},
	}
}

func TestPrice_PerItem(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingPerItem,
		PricingData: model.PricingData{Price: dec("10.00")},
	}

	q := Price(product, "", nil, 3, nil)

	assert.True(t, q.UnitPrice.Equal(dec("10.00")), "unit price %s", q.UnitPrice)
	assert.True(t, q.TotalPrice.Equal(dec("30.00")), "total price %s", q.TotalPrice)
}

func TestPrice_PerItem_DealOverrideWins(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingPerItem,
		PricingData: model.PricingData{Price: dec("10.00")},
	}

	q := Price(product, "", decPtr("8.50"), 2, nil)

	assert.True(t, q.UnitPrice.Equal(dec("8.50")))
	assert.True(t, q.TotalPrice.Equal(dec("17.00")))
}

func TestPrice_WeightRange_EstimateUsesMinimum(t *testing.T) {
	// No measured weight: quote the lowest price across all ranges.
	q := Price(weightRangeProduct(), "", nil, 2, nil)

	assert.True(t, q.UnitPrice.Equal(dec("6.00")), "unit price %s", q.UnitPrice)
	assert.True(t, q.TotalPrice.Equal(dec("12.00")), "total price %s", q.TotalPrice)
}

func TestPrice_WeightRange_SelectsRange(t *testing.T) {
	tests := []struct {
		name   string
		weight string
		want   string
	}{
		{"first range", "1.5", "10.00"},
		{"boundary belongs to upper range", "2", "8.00"},
		{"middle range", "4.99", "8.00"},
		{"unbounded last range", "12", "6.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(weightRangeProduct(), "", nil, 1, decPtr(tt.weight))

			assert.True(t, q.UnitPrice.Equal(dec(tt.want)), "unit price %s", q.UnitPrice)
		})
	}
}

func TestPrice_WeightRange_InvalidWeightFallsBack(t *testing.T) {
	q := Price(weightRangeProduct(), "", nil, 1, decPtr("-3"))

	assert.True(t, q.UnitPrice.Equal(dec("6.00")))
}

func TestPrice_WeightRange_EmptyRanges(t *testing.T) {
	product := &model.Product{PricingType: model.PricingWeightRange}

	q := Price(product, "", nil, 2, nil)

	assert.True(t, q.UnitPrice.IsZero())
	assert.True(t, q.TotalPrice.IsZero())
}

func TestPrice_UnitWeight_WithWeight(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingUnitWeight,
		PricingData: model.PricingData{PricePerUnit: dec("5.00"), Unit: "lb"},
	}

	q := Price(product, "", nil, 3, decPtr("2.5"))

	assert.True(t, q.UnitPrice.Equal(dec("12.50")), "unit price %s", q.UnitPrice)
	assert.True(t, q.TotalPrice.Equal(dec("37.50")), "total price %s", q.TotalPrice)
}

func TestPrice_UnitWeight_EstimatesOneUnit(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingUnitWeight,
		PricingData: model.PricingData{PricePerUnit: dec("5.00"), Unit: "lb"},
	}

	q := Price(product, "", nil, 3, nil)

	assert.True(t, q.UnitPrice.Equal(dec("5.00")))
	assert.True(t, q.TotalPrice.Equal(dec("15.00")))
}

func TestPrice_BundledWeight_WithFinalWeight(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingBundledWeight,
		PricingData: model.PricingData{
			PricePerUnit: dec("6.99"),
			Unit:         "lb",
			MinWeight:    dec("7"),
			MaxWeight:    dec("15"),
		},
	}

	q := Price(product, "", nil, 3, decPtr("11.0"))

	assert.True(t, q.TotalPrice.Equal(dec("76.89")), "total price %s", q.TotalPrice)
	assert.True(t, q.UnitPrice.Round(2).Equal(dec("25.63")), "unit price %s", q.UnitPrice)
}

func TestPrice_BundledWeight_MidWeightEstimate(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingBundledWeight,
		PricingData: model.PricingData{
			PricePerUnit: dec("6.99"),
			MinWeight:    dec("7"),
			MaxWeight:    dec("15"),
		},
	}

	// mid weight = 11, so each package estimates to 76.89.
	q := Price(product, "", nil, 2, nil)

	assert.True(t, q.UnitPrice.Equal(dec("76.89")), "unit price %s", q.UnitPrice)
	assert.True(t, q.TotalPrice.Equal(dec("153.78")), "total price %s", q.TotalPrice)
}

func TestPrice_BundledWeight_MissingPricePerUnit(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingBundledWeight,
		PricingData: model.PricingData{MinWeight: dec("7"), MaxWeight: dec("15")},
	}

	q := Price(product, "", nil, 3, decPtr("11.0"))

	assert.True(t, q.UnitPrice.IsZero())
	assert.True(t, q.TotalPrice.IsZero())
}

func TestPrice_SchemeHintOverridesProduct(t *testing.T) {
	// Product switched to weight_range after the cart was built; the line
	// keeps the per_item quote it was created under.
	product := weightRangeProduct()
	product.PricingData.Price = dec("9.00")

	q := Price(product, model.PricingPerItem, nil, 2, nil)

	assert.True(t, q.UnitPrice.Equal(dec("9.00")))
	assert.True(t, q.TotalPrice.Equal(dec("18.00")))
}

func TestPrice_UnknownSchemeFallsBackToPerItem(t *testing.T) {
	product := &model.Product{
		PricingType: model.PricingType("bogus"),
		PricingData: model.PricingData{Price: dec("4.00")},
	}

	q := Price(product, "", nil, 2, nil)

	assert.True(t, q.TotalPrice.Equal(dec("8.00")))
}

// Every scheme must keep total == unit * quantity at the cents level.
func TestPrice_TotalMatchesUnitTimesQuantity(t *testing.T) {
	products := []*model.Product{
		{PricingType: model.PricingPerItem, PricingData: model.PricingData{Price: dec("3.33")}},
		weightRangeProduct(),
		{PricingType: model.PricingUnitWeight, PricingData: model.PricingData{PricePerUnit: dec("4.79")}},
		{PricingType: model.PricingBundledWeight, PricingData: model.PricingData{
			PricePerUnit: dec("6.99"), MinWeight: dec("7"), MaxWeight: dec("15"),
		}},
	}
	weights := []*decimal.Decimal{nil, decPtr("2.5"), decPtr("11.0")}
	oneCent := dec("0.01")

	for _, product := range products {
		for _, w := range weights {
			for qty := 1; qty <= 7; qty++ {
				q := Price(product, "", nil, qty, w)

				recomputed := q.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(qty)))
				diff := q.TotalPrice.Round(2).Sub(recomputed).Abs()
				assert.True(t, diff.LessThanOrEqual(oneCent.Mul(decimal.NewFromInt(int64(qty)))),
					"scheme=%s qty=%d weight=%v total=%s unit=%s",
					product.PricingType, qty, w, q.TotalPrice, q.UnitPrice)
			}
		}
	}
}
