package repository

import (
	"context"
	"fmt"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// commissionRepository implements CommissionRepository using PostgreSQL.
type commissionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCommissionRepository creates a new PostgreSQL-backed commission repository.
func NewCommissionRepository(pool *pgxpool.Pool, logger zerolog.Logger) CommissionRepository {
	return &commissionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "commission").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *commissionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetActiveSDRs retrieves all active sales reps.
func (r *commissionRepository) GetActiveSDRs(ctx context.Context) ([]model.SDR, error) {
	query := `
		SELECT id, name, source_identifier, email, phone, is_active
		FROM sdrs
		WHERE is_active
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query SDRs")
		return nil, fmt.Errorf("failed to query SDRs: %w", err)
	}
	defer rows.Close()

	var sdrs []model.SDR
	for rows.Next() {
		var s model.SDR
		err := rows.Scan(&s.ID, &s.Name, &s.SourceIdentifier, &s.Email, &s.Phone, &s.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan SDR: %w", err)
		}
		sdrs = append(sdrs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating SDRs: %w", err)
	}

	return sdrs, nil
}

// GetActiveRulesBySDR retrieves the SDR's active rules keyed by product id.
func (r *commissionRepository) GetActiveRulesBySDR(ctx context.Context, sdrID int64) (map[int64]*model.CommissionRule, error) {
	query := `
		SELECT id, sdr_id, product_id, commission_type,
		       own_customer_amount, general_customer_amount, is_active
		FROM commission_rules
		WHERE sdr_id = $1 AND is_active
	`

	rows, err := r.pool.Query(ctx, query, sdrID)
	if err != nil {
		r.logger.Error().Err(err).Int64("sdr_id", sdrID).Msg("failed to query commission rules")
		return nil, fmt.Errorf("failed to query commission rules: %w", err)
	}
	defer rows.Close()

	rules := make(map[int64]*model.CommissionRule)
	for rows.Next() {
		var rule model.CommissionRule
		err := rows.Scan(
			&rule.ID,
			&rule.SDRID,
			&rule.ProductID,
			&rule.CommissionType,
			&rule.OwnCustomerAmount,
			&rule.GeneralCustomerAmount,
			&rule.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission rule: %w", err)
		}
		rules[rule.ProductID] = &rule
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission rules: %w", err)
	}

	return rules, nil
}

// DeleteStaleRecords removes the deal's commission records for SDRs absent
// from keepSDRIDs. Records for SDRs that still earn are refreshed in place by
// UpsertRecord, so their manual adjustments and payment tracking survive a
// recalculation. An empty keep set removes every record of the deal.
func (r *commissionRepository) DeleteStaleRecords(ctx context.Context, tx pgx.Tx, dealID int64, keepSDRIDs []int64) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM commission_records WHERE group_deal_id = $1 AND sdr_id != ALL($2)`,
		dealID, keepSDRIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("deal_id", dealID).Msg("failed to delete stale commission records")
		return fmt.Errorf("failed to delete stale commission records: %w", err)
	}
	return nil
}

// UpsertRecord inserts or updates the (deal, sdr) record. The manual
// adjustment and payment tracking columns are deliberately absent from the
// update set: recalculation never touches them.
func (r *commissionRepository) UpsertRecord(ctx context.Context, tx pgx.Tx, record *model.CommissionRecord) error {
	query := `
		INSERT INTO commission_records (
			group_deal_id, sdr_id, total_commission, own_customer_commission,
			general_customer_commission, details, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (group_deal_id, sdr_id) DO UPDATE SET
			total_commission = EXCLUDED.total_commission,
			own_customer_commission = EXCLUDED.own_customer_commission,
			general_customer_commission = EXCLUDED.general_customer_commission,
			details = EXCLUDED.details,
			updated_at = NOW()
		RETURNING id, manual_adjustment, payment_status
	`

	err := tx.QueryRow(ctx, query,
		record.GroupDealID,
		record.SDRID,
		record.TotalCommission,
		record.OwnCustomerCommission,
		record.GeneralCustomerCommission,
		record.Details,
	).Scan(&record.ID, &record.ManualAdjustment, &record.PaymentStatus)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("deal_id", record.GroupDealID).
			Int64("sdr_id", record.SDRID).
			Msg("failed to upsert commission record")
		return fmt.Errorf("failed to upsert commission record: %w", err)
	}

	return nil
}

// ListRecordsForDeal retrieves a deal's commission records.
func (r *commissionRepository) ListRecordsForDeal(ctx context.Context, dealID int64) ([]model.CommissionRecord, error) {
	query := `
		SELECT id, group_deal_id, sdr_id, total_commission,
		       own_customer_commission, general_customer_commission,
		       manual_adjustment, adjustment_notes, details, payment_status,
		       created_at, updated_at
		FROM commission_records
		WHERE group_deal_id = $1
		ORDER BY sdr_id
	`

	rows, err := r.pool.Query(ctx, query, dealID)
	if err != nil {
		r.logger.Error().Err(err).Int64("deal_id", dealID).Msg("failed to query commission records")
		return nil, fmt.Errorf("failed to query commission records: %w", err)
	}
	defer rows.Close()

	var records []model.CommissionRecord
	for rows.Next() {
		var rec model.CommissionRecord
		err := rows.Scan(
			&rec.ID,
			&rec.GroupDealID,
			&rec.SDRID,
			&rec.TotalCommission,
			&rec.OwnCustomerCommission,
			&rec.GeneralCustomerCommission,
			&rec.ManualAdjustment,
			&rec.AdjustmentNotes,
			&rec.Details,
			&rec.PaymentStatus,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission records: %w", err)
	}

	return records, nil
}
