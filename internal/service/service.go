package service

import (
	"context"

	"tuango/internal/model"
)

// CatalogService defines read access to products and group deals.
type CatalogService interface {
	// GetProducts retrieves active products with pagination.
	GetProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct retrieves a single active product.
	GetProduct(ctx context.Context, id int64) (*model.Product, error)

	// GetDeals retrieves group deals with pagination, newest first.
	GetDeals(ctx context.Context, limit, offset int) ([]model.GroupDeal, error)

	// GetDeal retrieves a single group deal.
	GetDeal(ctx context.Context, id int64) (*model.GroupDeal, error)
}

// OrderService defines the order lifecycle operations. Each mutating
// operation runs in its own transaction spanning pricing, stock mutation and
// order persistence, retried a bounded number of times on lock contention.
type OrderService interface {
	// Create places a new order in an open deal, reserving stock for every line.
	Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// Edit modifies a submitted order. A nil item set edits delivery and
	// payment details only, which is also allowed after the order deadline
	// and on confirmed orders.
	Edit(ctx context.Context, orderID int64, req *model.OrderEditRequest) (*model.Order, error)

	// Cancel cancels the order and restores its stock. Users may cancel
	// submitted orders only; admins anything not completed.
	Cancel(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error)

	// Reactivate returns a cancelled order to submitted, re-reserving stock.
	Reactivate(ctx context.Context, orderID, userID int64) (*model.Order, error)

	// FinalizeWeights records measured weights on a ready-for-pickup order,
	// re-pricing its weight-priced lines and recomputing the totals.
	FinalizeWeights(ctx context.Context, orderID int64, updates []model.WeightUpdate) (*model.Order, error)

	// UpdatePayment marks the order paid, crediting points and completing it.
	UpdatePayment(ctx context.Context, orderID int64, update *model.PaymentUpdate) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
}

// CommissionService defines the post-hoc commission batch calculation.
type CommissionService interface {
	// Calculate computes commission records for every active SDR over all
	// orders of the deal. recalculate additionally removes records of SDRs
	// that no longer earn anything; surviving records are refreshed in place
	// with their manual adjustments intact.
	Calculate(ctx context.Context, dealID int64, recalculate bool) ([]model.CommissionRecord, error)

	// ListForDeal retrieves the deal's stored commission records.
	ListForDeal(ctx context.Context, dealID int64) ([]model.CommissionRecord, error)
}
