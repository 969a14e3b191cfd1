package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// HouseAccountPhone identifies the farm's own account. Orders placed from it
// never generate commission for any SDR.
const HouseAccountPhone = "+14373406925"

// SDR is a sales rep whose customers are attributed via User.Source.
type SDR struct {
	ID               int64   `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	SourceIdentifier string  `json:"sourceIdentifier" db:"source_identifier"`
	Email            *string `json:"email,omitempty" db:"email"`
	Phone            *string `json:"phone,omitempty" db:"phone"`
	IsActive         bool    `json:"isActive" db:"is_active"`
}

// CommissionRule fixes the per-item or per-weight commission an SDR earns on
// one product, split by own versus general customer. One rule per (sdr, product).
type CommissionRule struct {
	ID                    int64           `json:"id" db:"id"`
	SDRID                 int64           `json:"sdrId" db:"sdr_id"`
	ProductID             int64           `json:"productId" db:"product_id"`
	CommissionType        CommissionType  `json:"commissionType" db:"commission_type"`
	OwnCustomerAmount     decimal.Decimal `json:"ownCustomerAmount" db:"own_customer_amount"`
	GeneralCustomerAmount decimal.Decimal `json:"generalCustomerAmount" db:"general_customer_amount"`
	IsActive              bool            `json:"isActive" db:"is_active"`
}

// Rate returns the applicable per-unit amount for the customer class.
func (r *CommissionRule) Rate(ownCustomer bool) decimal.Decimal {
	if ownCustomer {
		return r.OwnCustomerAmount
	}
	return r.GeneralCustomerAmount
}

// CommissionDetail is one product's breakdown inside a commission record.
type CommissionDetail struct {
	ProductID         int64            `json:"product_id"`
	ProductName       string           `json:"product_name"`
	PricingType       PricingType      `json:"pricing_type"`
	CommissionType    CommissionType   `json:"commission_type"`
	OwnQuantity       int              `json:"own_quantity"`
	GeneralQuantity   int              `json:"general_quantity"`
	OwnWeight         *decimal.Decimal `json:"own_weight"`
	GeneralWeight     *decimal.Decimal `json:"general_weight"`
	OwnCommission     decimal.Decimal  `json:"own_commission"`
	GeneralCommission decimal.Decimal  `json:"general_commission"`
	TotalCommission   decimal.Decimal  `json:"total_commission"`
	OwnRate           decimal.Decimal  `json:"own_rate"`
	GeneralRate       decimal.Decimal  `json:"general_rate"`
}

// CommissionRecord is the payable commission for one SDR on one closed deal.
// ManualAdjustment is admin-entered and survives recalculation untouched.
type CommissionRecord struct {
	ID                        int64              `json:"id" db:"id"`
	GroupDealID               int64              `json:"groupDealId" db:"group_deal_id"`
	SDRID                     int64              `json:"sdrId" db:"sdr_id"`
	TotalCommission           decimal.Decimal    `json:"totalCommission" db:"total_commission"`
	OwnCustomerCommission     decimal.Decimal    `json:"ownCustomerCommission" db:"own_customer_commission"`
	GeneralCustomerCommission decimal.Decimal    `json:"generalCustomerCommission" db:"general_customer_commission"`
	ManualAdjustment          decimal.Decimal    `json:"manualAdjustment" db:"manual_adjustment"`
	AdjustmentNotes           *string            `json:"adjustmentNotes,omitempty" db:"adjustment_notes"`
	Details                   []CommissionDetail `json:"details" db:"details"`
	PaymentStatus             string             `json:"paymentStatus" db:"payment_status"`
	CreatedAt                 time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt                 time.Time          `json:"updatedAt" db:"updated_at"`
}

// FinalTotal is the payable amount: calculated commission plus the manual
// adjustment. Derived at read time, never stored.
func (r *CommissionRecord) FinalTotal() decimal.Decimal {
	return r.TotalCommission.Add(r.ManualAdjustment)
}

// MarshalJSON includes the derived finalTotal so API clients never add the
// adjustment themselves.
func (r CommissionRecord) MarshalJSON() ([]byte, error) {
	type plain CommissionRecord
	return json.Marshal(struct {
		plain
		FinalTotal decimal.Decimal `json:"finalTotal"`
	}{plain(r), r.FinalTotal()})
}
