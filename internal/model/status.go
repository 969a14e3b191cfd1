package model

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderSubmitted      OrderStatus = "submitted"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted
}

// Actor identifies who is performing an order action. Admins may cancel from
// any non-terminal state; users only from submitted.
type Actor string

const (
	ActorUser  Actor = "user"
	ActorAdmin Actor = "admin"
)

// PaymentStatus tracks whether an order has been paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// DeliveryMethod is how the customer receives the order.
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

// DealStatus tracks a group deal through its lifecycle.
type DealStatus string

const (
	DealUpcoming       DealStatus = "upcoming"
	DealActive         DealStatus = "active"
	DealClosed         DealStatus = "closed"
	DealPreparing      DealStatus = "preparing"
	DealReadyForPickup DealStatus = "ready_for_pickup"
	DealCompleted      DealStatus = "completed"
)

// PricingType selects the algorithm used to price a product.
type PricingType string

const (
	PricingPerItem       PricingType = "per_item"
	PricingWeightRange   PricingType = "weight_range"
	PricingUnitWeight    PricingType = "unit_weight"
	PricingBundledWeight PricingType = "bundled_weight"
)

// IsWeightBased reports whether the scheme needs a measured weight for its final price.
func (p PricingType) IsWeightBased() bool {
	switch p {
	case PricingWeightRange, PricingUnitWeight, PricingBundledWeight:
		return true
	}
	return false
}

// CommissionType selects how a commission rule is applied to an order item.
type CommissionType string

const (
	CommissionPerItem   CommissionType = "per_item"
	CommissionPerWeight CommissionType = "per_weight"
)
