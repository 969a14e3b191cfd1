package repository

import (
	"context"
	"fmt"
	"sort"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockRepository implements StockRepository over the group_deal_products
// table. Every operation locks the touched rows with SELECT ... FOR UPDATE in
// ascending product id order, so two reservations over overlapping product
// sets always acquire locks in the same order and cannot deadlock each other.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock ledger.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

const lockStockRow = `
	SELECT deal_stock_limit
	FROM group_deal_products
	WHERE group_deal_id = $1 AND product_id = $2
	FOR UPDATE
`

const setStockLimit = `
	UPDATE group_deal_products
	SET deal_stock_limit = $3
	WHERE group_deal_id = $1 AND product_id = $2
`

// mergeLines collapses duplicate product ids and returns the batch sorted
// ascending by product id. Sorting here is what guarantees the deterministic
// lock order.
func mergeLines(lines []StockLine) []StockLine {
	byProduct := make(map[int64]int, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] += line.Quantity
	}

	merged := make([]StockLine, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, StockLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged
}

// Reserve checks and decrements stock for every line inside the caller's
// transaction.
func (r *stockRepository) Reserve(ctx context.Context, tx pgx.Tx, dealID int64, lines []StockLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return model.NewValidationError("quantity must be greater than 0 for product %d", line.ProductID)
		}
	}

	for _, line := range mergeLines(lines) {
		var limit *int
		err := tx.QueryRow(ctx, lockStockRow, dealID, line.ProductID).Scan(&limit)
		if err != nil {
			if err == pgx.ErrNoRows {
				return &model.NotFoundError{Resource: "deal product", ID: line.ProductID}
			}
			return fmt.Errorf("failed to lock stock row (deal=%d, product=%d): %w", dealID, line.ProductID, err)
		}

		// A null limit means stock management is disabled for this product.
		if limit == nil {
			continue
		}

		if *limit < line.Quantity {
			return &model.InsufficientStockError{
				ProductID: line.ProductID,
				Available: *limit,
				Requested: line.Quantity,
			}
		}

		remaining := *limit - line.Quantity
		if _, err := tx.Exec(ctx, setStockLimit, dealID, line.ProductID, remaining); err != nil {
			return fmt.Errorf("failed to reserve stock (deal=%d, product=%d): %w", dealID, line.ProductID, err)
		}

		r.logger.Debug().
			Int64("deal_id", dealID).
			Int64("product_id", line.ProductID).
			Int("reserved", line.Quantity).
			Int("remaining", remaining).
			Msg("stock reserved")
	}

	return nil
}

// Restore increments stock for every line. Unlimited stock was never
// decremented, so null-limit rows (and rows removed from the deal) are no-ops.
func (r *stockRepository) Restore(ctx context.Context, tx pgx.Tx, dealID int64, lines []StockLine) error {
	for _, line := range mergeLines(lines) {
		var limit *int
		err := tx.QueryRow(ctx, lockStockRow, dealID, line.ProductID).Scan(&limit)
		if err != nil {
			if err == pgx.ErrNoRows {
				continue
			}
			return fmt.Errorf("failed to lock stock row (deal=%d, product=%d): %w", dealID, line.ProductID, err)
		}

		if limit == nil {
			continue
		}

		restored := *limit + line.Quantity
		if _, err := tx.Exec(ctx, setStockLimit, dealID, line.ProductID, restored); err != nil {
			return fmt.Errorf("failed to restore stock (deal=%d, product=%d): %w", dealID, line.ProductID, err)
		}

		r.logger.Debug().
			Int64("deal_id", dealID).
			Int64("product_id", line.ProductID).
			Int("restored", line.Quantity).
			Int("stock", restored).
			Msg("stock restored")
	}

	return nil
}

// AdjustForModification applies the net per-product delta between an order's
// old and new item sets. Phase one locks every affected row and verifies all
// positive deltas; phase two applies the writes. Nothing is written until the
// whole batch is known to fit.
func (r *stockRepository) AdjustForModification(ctx context.Context, tx pgx.Tx, dealID int64, oldLines, newLines []StockLine) error {
	deltas := make(map[int64]int)
	for _, line := range oldLines {
		deltas[line.ProductID] -= line.Quantity
	}
	for _, line := range newLines {
		deltas[line.ProductID] += line.Quantity
	}

	ids := make([]int64, 0, len(deltas))
	for id, delta := range deltas {
		if delta != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Phase one: lock and check.
	limits := make(map[int64]*int, len(ids))
	for _, id := range ids {
		var limit *int
		err := tx.QueryRow(ctx, lockStockRow, dealID, id).Scan(&limit)
		if err != nil {
			if err == pgx.ErrNoRows {
				// A dropped line may reference a product since removed from
				// the deal; releasing it is a no-op, same as Restore. Only an
				// increase needs the row to exist.
				if deltas[id] <= 0 {
					continue
				}
				return &model.NotFoundError{Resource: "deal product", ID: id}
			}
			return fmt.Errorf("failed to lock stock row (deal=%d, product=%d): %w", dealID, id, err)
		}
		limits[id] = limit

		if delta := deltas[id]; delta > 0 && limit != nil && *limit < delta {
			return &model.InsufficientStockError{
				ProductID: id,
				Available: *limit,
				Requested: delta,
			}
		}
	}

	// Phase two: apply.
	for _, id := range ids {
		limit := limits[id]
		if limit == nil {
			continue
		}

		adjusted := *limit - deltas[id]
		if _, err := tx.Exec(ctx, setStockLimit, dealID, id, adjusted); err != nil {
			return fmt.Errorf("failed to adjust stock (deal=%d, product=%d): %w", dealID, id, err)
		}

		r.logger.Debug().
			Int64("deal_id", dealID).
			Int64("product_id", id).
			Int("delta", deltas[id]).
			Int("stock", adjusted).
			Msg("stock adjusted for order modification")
	}

	return nil
}
