package repository

import (
	"context"
	"fmt"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const selectOrder = `
	SELECT id, user_id, group_deal_id, address_id, order_number,
	       delivery_method, pickup_location, subtotal, shipping_fee, tax,
	       total, points_earned, status, payment_status, payment_method,
	       payment_date, notes, deleted_at, created_at, updated_at
	FROM orders
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.GroupDealID,
		&o.AddressID,
		&o.OrderNumber,
		&o.DeliveryMethod,
		&o.PickupLocation,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Tax,
		&o.Total,
		&o.PointsEarned,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentDate,
		&o.Notes,
		&o.DeletedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new order and its items within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			user_id, group_deal_id, address_id, order_number, delivery_method,
			pickup_location, subtotal, shipping_fee, tax, total, points_earned,
			status, payment_status, payment_method, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		order.UserID,
		order.GroupDealID,
		order.AddressID,
		order.OrderNumber,
		order.DeliveryMethod,
		order.PickupLocation,
		order.Subtotal,
		order.ShippingFee,
		order.Tax,
		order.Total,
		order.PointsEarned,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := r.insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return nil
}

// insertItems inserts order items one by one to capture generated ids.
func (r *orderRepository) insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, final_weight)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for i := range items {
		items[i].OrderID = orderID
		err := tx.QueryRow(ctx, query,
			orderID,
			items[i].ProductID,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].TotalPrice,
			items[i].FinalWeight,
		).Scan(&items[i].ID)
		if err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_id", orderID).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// ReplaceItems deletes the order's items and inserts the new set. Edits
// replace the whole item set rather than diffing rows field by field.
func (r *orderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to delete order items")
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return r.insertItems(ctx, tx, orderID, items)
}

// UpdateItem persists one item's re-priced weight and prices.
func (r *orderRepository) UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `
		UPDATE order_items
		SET quantity = $2, unit_price = $3, total_price = $4, final_weight = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		item.ID,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.FinalWeight,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to update order item")
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "order item", ID: item.ID}
	}

	return nil
}

// Update persists the order's mutable fields.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET address_id = $2, delivery_method = $3, pickup_location = $4,
		    subtotal = $5, shipping_fee = $6, tax = $7, total = $8,
		    points_earned = $9, status = $10, payment_status = $11,
		    payment_method = $12, payment_date = $13, notes = $14,
		    updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := tx.Exec(ctx, query,
		order.ID,
		order.AddressID,
		order.DeliveryMethod,
		order.PickupLocation,
		order.Subtotal,
		order.ShippingFee,
		order.Tax,
		order.Total,
		order.PointsEarned,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.PaymentDate,
		order.Notes,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "order", ID: order.ID}
	}

	return nil
}

// GetByID retrieves an order with its items, excluding soft-deleted orders.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := selectOrder + ` WHERE id = $1 AND deleted_at IS NULL`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &model.NotFoundError{Resource: "order", ID: id}
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetByIDForUpdate retrieves an order with its items, locking the order row
// for the duration of the transaction.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	query := selectOrder + ` WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &model.NotFoundError{Resource: "order", ID: id}
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.queryItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// queryer is the subset of pool/tx needed for reads.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryItems(ctx context.Context, q queryer, orderID int64) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, final_weight
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.FinalWeight,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// ListByUser retrieves a user's orders, newest first, with items.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := selectOrder + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// ListByDeal retrieves all orders of a deal, with items. The orders and their
// items are read in separate pool queries, not one snapshot; the commission
// engine runs after the deal closes and tolerates that.
func (r *orderRepository) ListByDeal(ctx context.Context, dealID int64) ([]model.Order, error) {
	query := selectOrder + `
		WHERE group_deal_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`
	return r.list(ctx, query, dealID)
}

func (r *orderRepository) list(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.queryItems(ctx, r.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}
