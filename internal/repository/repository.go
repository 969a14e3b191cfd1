package repository

import (
	"context"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
)

// StockLine is one (product, quantity) entry of a reservation batch.
type StockLine struct {
	ProductID int64
	Quantity  int
}

// ProductRepository defines product data access. Inactive products are
// excluded from all lookups.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single active product.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple active products keyed by id. Missing ids
	// are simply absent from the result.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error)
}

// DealRepository defines group deal data access. Soft-deleted deals are
// excluded from all lookups.
type DealRepository interface {
	// GetAll retrieves deals with pagination, newest first.
	GetAll(ctx context.Context, limit, offset int) ([]model.GroupDeal, error)

	// GetByID retrieves a single deal.
	GetByID(ctx context.Context, id int64) (*model.GroupDeal, error)

	// GetDealProducts retrieves the deal's product links keyed by product id.
	GetDealProducts(ctx context.Context, dealID int64) (map[int64]*model.DealProduct, error)
}

// StockRepository is the stock ledger: per-(deal, product) counters mutated
// only under row locks. All three operations must run inside the caller's
// transaction; a returned error means the caller must roll back.
type StockRepository interface {
	// Reserve checks and decrements stock for every line, locking rows in
	// ascending product id order. A nil stock limit means unlimited and is
	// never decremented. The first insufficient line aborts the batch with
	// an InsufficientStockError.
	Reserve(ctx context.Context, tx pgx.Tx, dealID int64, lines []StockLine) error

	// Restore increments stock for every line. Unlimited rows and rows
	// missing from the deal are no-ops.
	Restore(ctx context.Context, tx pgx.Tx, dealID int64, lines []StockLine) error

	// AdjustForModification applies the net per-product delta between an
	// order's old and new item sets. All rows are locked and checked before
	// any is written, so an insufficient line leaves every row untouched.
	// Releasing quantity for a product no longer linked to the deal is a
	// no-op, like Restore; only an increase requires the row to exist.
	AdjustForModification(ctx context.Context, tx pgx.Tx, dealID int64, oldLines, newLines []StockLine) error
}

// OrderRepository defines order aggregate persistence. Soft-deleted orders
// are excluded from all lookups.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts the order and its items within the transaction,
	// populating the generated ids.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// GetByIDForUpdate retrieves an order with its items, locking the order
	// row for the duration of the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)

	// ReplaceItems deletes the order's items and inserts the new set,
	// populating generated ids.
	ReplaceItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error

	// UpdateItem persists one item's re-priced weight and prices.
	UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// Update persists the order's mutable fields (totals, status, payment,
	// delivery details).
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// ListByUser retrieves a user's orders, newest first, with items.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// ListByDeal retrieves all orders of a deal, with items.
	ListByDeal(ctx context.Context, dealID int64) ([]model.Order, error)
}

// UserRepository defines the slice of user data the core consumes.
type UserRepository interface {
	// GetByID retrieves a user.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByIDs retrieves multiple users keyed by id.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)

	// AddPoints credits points to the user's running balance.
	AddPoints(ctx context.Context, tx pgx.Tx, userID int64, points int) error
}

// CommissionRepository defines SDR, rule, and record persistence.
type CommissionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetActiveSDRs retrieves all active sales reps.
	GetActiveSDRs(ctx context.Context) ([]model.SDR, error)

	// GetActiveRulesBySDR retrieves the SDR's active rules keyed by product id.
	GetActiveRulesBySDR(ctx context.Context, sdrID int64) (map[int64]*model.CommissionRule, error)

	// DeleteStaleRecords removes the deal's records for SDRs absent from
	// keepSDRIDs. Surviving records are refreshed in place by UpsertRecord.
	DeleteStaleRecords(ctx context.Context, tx pgx.Tx, dealID int64, keepSDRIDs []int64) error

	// UpsertRecord inserts or updates the (deal, sdr) record. Recalculation
	// never touches manual_adjustment or payment tracking fields.
	UpsertRecord(ctx context.Context, tx pgx.Tx, record *model.CommissionRecord) error

	// ListRecordsForDeal retrieves a deal's commission records.
	ListRecordsForDeal(ctx context.Context, dealID int64) ([]model.CommissionRecord, error)
}
