package model

import (
	"time"

	"tuango/internal/dates"

	"github.com/shopspring/decimal"
)

// GroupDeal is a time-boxed group-buy event. Orders are accepted within
// [OrderStartDate, OrderEndDate]; DeletedAt marks a soft delete.
type GroupDeal struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description,omitempty" db:"description"`
	OrderStartDate time.Time  `json:"orderStartDate" db:"order_start_date"`
	OrderEndDate   time.Time  `json:"orderEndDate" db:"order_end_date"`
	PickupDate     time.Time  `json:"pickupDate" db:"pickup_date"`
	Status         DealStatus `json:"status" db:"status"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// AcceptsOrdersAt reports whether the deal's order window is open at the
// given instant. Window bounds are civil days: a deal ending June 3 accepts
// orders until 23:59:59 Eastern on June 3. Soft-deleted deals never accept
// orders.
func (d *GroupDeal) AcceptsOrdersAt(now time.Time) bool {
	if d.DeletedAt != nil {
		return false
	}
	return !now.Before(dates.StartOfDay(d.OrderStartDate)) && !now.After(dates.EndOfDay(d.OrderEndDate))
}

// DealProduct links a product into a deal with an optional price override and
// an optional finite stock cap. A nil StockLimit means unlimited stock.
type DealProduct struct {
	ID          int64            `json:"id" db:"id"`
	GroupDealID int64            `json:"groupDealId" db:"group_deal_id"`
	ProductID   int64            `json:"productId" db:"product_id"`
	DealPrice   *decimal.Decimal `json:"dealPrice,omitempty" db:"deal_price"`
	StockLimit  *int             `json:"stockLimit" db:"deal_stock_limit"`
}
