package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer's purchase within one group deal. All money fields are
// 2 dp decimals recomputed from the item set on every edit.
type Order struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"userId" db:"user_id"`
	GroupDealID    int64           `json:"groupDealId" db:"group_deal_id"`
	AddressID      *int64          `json:"addressId,omitempty" db:"address_id"`
	OrderNumber    string          `json:"orderNumber" db:"order_number"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod" db:"delivery_method"`
	PickupLocation *string         `json:"pickupLocation,omitempty" db:"pickup_location"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Total          decimal.Decimal `json:"total" db:"total"`
	PointsEarned   int             `json:"pointsEarned" db:"points_earned"`
	Status         OrderStatus     `json:"status" db:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty" db:"payment_method"`
	PaymentDate    *time.Time      `json:"paymentDate,omitempty" db:"payment_date"`
	Notes          *string         `json:"notes,omitempty" db:"notes"`
	DeletedAt      *time.Time      `json:"-" db:"deleted_at"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`

	Items []OrderItem `json:"items"`
}

// OrderItem is one priced line of an order. FinalWeight is set during
// fulfilment for weight-priced products and is nil until then.
type OrderItem struct {
	ID          int64            `json:"id" db:"id"`
	OrderID     int64            `json:"-" db:"order_id"`
	ProductID   int64            `json:"productId" db:"product_id"`
	Quantity    int              `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unitPrice" db:"unit_price"`
	TotalPrice  decimal.Decimal  `json:"totalPrice" db:"total_price"`
	FinalWeight *decimal.Decimal `json:"finalWeight,omitempty" db:"final_weight"`
}

// OrderItemRequest is a single requested line when creating or editing an order.
type OrderItemRequest struct {
	ProductID   int64            `json:"productId"`
	Quantity    int              `json:"quantity"`
	PricingType PricingType      `json:"pricingType,omitempty"`
	FinalWeight *decimal.Decimal `json:"finalWeight,omitempty"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	UserID         int64              `json:"-"`
	GroupDealID    int64              `json:"groupDealId"`
	Items          []OrderItemRequest `json:"items"`
	DeliveryMethod DeliveryMethod     `json:"deliveryMethod"`
	AddressID      *int64             `json:"addressId,omitempty"`
	PickupLocation *string            `json:"pickupLocation,omitempty"`
	PaymentMethod  *string            `json:"paymentMethod,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
}

// OrderEditRequest is the payload for editing an order. A nil Items leaves the
// item set untouched, which is what permits delivery/payment-method-only edits
// after the order deadline.
type OrderEditRequest struct {
	UserID         int64              `json:"-"`
	Items          []OrderItemRequest `json:"items,omitempty"`
	DeliveryMethod DeliveryMethod     `json:"deliveryMethod"`
	AddressID      *int64             `json:"addressId,omitempty"`
	PickupLocation *string            `json:"pickupLocation,omitempty"`
	PaymentMethod  *string            `json:"paymentMethod,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
}

// WeightUpdate sets the measured weight of one order item during fulfilment.
type WeightUpdate struct {
	ItemID      int64           `json:"itemId"`
	FinalWeight decimal.Decimal `json:"finalWeight"`
}

// PaymentUpdate transitions an order's payment status.
type PaymentUpdate struct {
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod *string       `json:"paymentMethod,omitempty"`
}
