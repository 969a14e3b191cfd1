package repository

import (
	"context"
	"fmt"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// dealRepository implements DealRepository using PostgreSQL.
type dealRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDealRepository creates a new PostgreSQL-backed group deal repository.
func NewDealRepository(pool *pgxpool.Pool, logger zerolog.Logger) DealRepository {
	return &dealRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "deal").Logger(),
	}
}

const selectDeal = `
	SELECT id, title, description, order_start_date, order_end_date,
	       pickup_date, status, deleted_at, created_at
	FROM group_deals
`

func scanDeal(row pgx.Row) (*model.GroupDeal, error) {
	var d model.GroupDeal
	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.OrderStartDate,
		&d.OrderEndDate,
		&d.PickupDate,
		&d.Status,
		&d.DeletedAt,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAll retrieves deals with pagination, newest first. Soft-deleted deals
// are excluded.
func (r *dealRepository) GetAll(ctx context.Context, limit, offset int) ([]model.GroupDeal, error) {
	query := selectDeal + `
		WHERE deleted_at IS NULL
		ORDER BY order_start_date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query group deals")
		return nil, fmt.Errorf("failed to query group deals: %w", err)
	}
	defer rows.Close()

	var deals []model.GroupDeal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group deal: %w", err)
		}
		deals = append(deals, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group deals: %w", err)
	}

	return deals, nil
}

// GetByID retrieves a single deal, excluding soft-deleted ones.
func (r *dealRepository) GetByID(ctx context.Context, id int64) (*model.GroupDeal, error) {
	query := selectDeal + ` WHERE id = $1 AND deleted_at IS NULL`

	d, err := scanDeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &model.NotFoundError{Resource: "group deal", ID: id}
		}
		r.logger.Error().Err(err).Int64("deal_id", id).Msg("failed to query group deal")
		return nil, fmt.Errorf("failed to query group deal: %w", err)
	}

	return d, nil
}

// GetDealProducts retrieves the deal's product links keyed by product id.
func (r *dealRepository) GetDealProducts(ctx context.Context, dealID int64) (map[int64]*model.DealProduct, error) {
	query := `
		SELECT id, group_deal_id, product_id, deal_price, deal_stock_limit
		FROM group_deal_products
		WHERE group_deal_id = $1
	`

	rows, err := r.pool.Query(ctx, query, dealID)
	if err != nil {
		r.logger.Error().Err(err).Int64("deal_id", dealID).Msg("failed to query deal products")
		return nil, fmt.Errorf("failed to query deal products: %w", err)
	}
	defer rows.Close()

	links := make(map[int64]*model.DealProduct)
	for rows.Next() {
		var dp model.DealProduct
		err := rows.Scan(&dp.ID, &dp.GroupDealID, &dp.ProductID, &dp.DealPrice, &dp.StockLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal product: %w", err)
		}
		links[dp.ProductID] = &dp
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deal products: %w", err)
	}

	return links, nil
}
