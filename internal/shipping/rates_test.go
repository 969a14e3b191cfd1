package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRateTable_Validate(t *testing.T) {
	tests := []struct {
		name     string
		table    RateTable
		errMatch string
	}{
		{
			name:  "default table is valid",
			table: DefaultRateTable(),
		},
		{
			name:     "empty table",
			table:    RateTable{},
			errMatch: "at least one tier",
		},
		{
			name: "first threshold not zero",
			table: RateTable{
				{Threshold: dec("10"), Fee: dec("5.00")},
				{Threshold: dec("50"), Fee: dec("0")},
			},
			errMatch: "threshold 0",
		},
		{
			name: "thresholds not ascending",
			table: RateTable{
				{Threshold: dec("0"), Fee: dec("7.99")},
				{Threshold: dec("128"), Fee: dec("3.99")},
				{Threshold: dec("58"), Fee: dec("0")},
			},
			errMatch: "ascending",
		},
		{
			name: "duplicate threshold",
			table: RateTable{
				{Threshold: dec("0"), Fee: dec("7.99")},
				{Threshold: dec("58"), Fee: dec("5.99")},
				{Threshold: dec("58"), Fee: dec("0")},
			},
			errMatch: "ascending",
		},
		{
			name: "negative fee",
			table: RateTable{
				{Threshold: dec("0"), Fee: dec("-1")},
				{Threshold: dec("58"), Fee: dec("0")},
			},
			errMatch: "negative",
		},
		{
			name: "last tier not free",
			table: RateTable{
				{Threshold: dec("0"), Fee: dec("7.99")},
				{Threshold: dec("58"), Fee: dec("5.99")},
			},
			errMatch: "free-shipping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.errMatch == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMatch)
			}
		})
	}
}

func TestRateTable_FeeFor(t *testing.T) {
	table := DefaultRateTable()

	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "7.99"},
		{"57.99", "7.99"},
		{"58", "5.99"},
		{"127.99", "5.99"},
		{"128.00", "3.99"},
		{"149.99", "3.99"},
		{"150.00", "0"},
		{"999", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			fee := table.FeeFor(dec(tt.subtotal))
			assert.True(t, fee.Equal(dec(tt.want)), "subtotal=%s fee=%s want=%s", tt.subtotal, fee, tt.want)
		})
	}
}

// Fee must never increase as the eligible subtotal grows.
func TestRateTable_FeeMonotonicity(t *testing.T) {
	table := DefaultRateTable()

	prev := table.FeeFor(decimal.Zero)
	step := dec("0.50")
	subtotal := decimal.Zero
	for i := 0; i < 400; i++ {
		subtotal = subtotal.Add(step)
		fee := table.FeeFor(subtotal)
		assert.True(t, fee.LessThanOrEqual(prev),
			"fee increased at subtotal %s: %s > %s", subtotal, fee, prev)
		prev = fee
	}
}

func TestParseRateTable(t *testing.T) {
	doc := []byte(`{"tiers": [
		{"threshold": 0, "fee": 7.99},
		{"threshold": 58.00, "fee": 5.99},
		{"threshold": 128.00, "fee": 3.99},
		{"threshold": 150.00, "fee": 0}
	]}`)

	table, err := ParseRateTable(doc)

	require.NoError(t, err)
	require.Len(t, table, 4)
	assert.True(t, table[1].Fee.Equal(dec("5.99")))
}

func TestParseRateTable_Invalid(t *testing.T) {
	_, err := ParseRateTable([]byte(`{"tiers": [{"threshold": 5, "fee": 1}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rate table")

	_, err = ParseRateTable([]byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
