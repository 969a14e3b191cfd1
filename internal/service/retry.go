package service

import (
	"context"
	"errors"

	"tuango/internal/config"
	"tuango/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Postgres error codes that indicate lock contention rather than a real
// fault. Transactions failing with one of these are rolled back and retried.
const (
	pgDeadlockDetected  = "40P01"
	pgLockNotAvailable  = "55P03"
	pgSerializationFail = "40001"
)

// isRetryable reports whether the error is a transient store condition.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDeadlockDetected, pgLockNotAvailable, pgSerializationFail:
			return true
		}
	}
	return false
}

// txBeginner is the slice of a repository that can open transactions.
type txBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// runInTx runs fn inside a transaction, committing on success and rolling
// back otherwise. Lock contention rolls back and retries the whole function
// up to cfg.MaxAttempts times; retries exhausted surface as a TransientError.
// Any other error aborts immediately and propagates untouched.
func runInTx(ctx context.Context, db txBeginner, cfg config.RetryConfig, logger zerolog.Logger, fn func(tx pgx.Tx) error) error {
	attempt := 0

	op := func() error {
		attempt++

		tx, err := db.BeginTx(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		// Rollback after a successful commit is a harmless no-op.
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(tx); err != nil {
			if isRetryable(err) {
				logger.Warn().Err(err).Int("attempt", attempt).Msg("transaction hit lock contention, retrying")
				return err
			}
			return backoff.Permanent(err)
		}

		if err := tx.Commit(ctx); err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Interval), cfg.MaxAttempts-1),
		ctx,
	)

	err := backoff.Retry(op, policy)
	if err != nil && isRetryable(err) {
		logger.Error().Err(err).Int("attempts", attempt).Msg("transaction retries exhausted")
		return &model.TransientError{Err: err}
	}
	return err
}
