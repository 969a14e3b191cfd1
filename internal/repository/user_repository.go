package repository

import (
	"context"
	"fmt"

	"tuango/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const selectUser = `
	SELECT id, phone, nickname, user_source, points
	FROM users
`

// GetByID retrieves a user.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id).Scan(
		&u.ID,
		&u.Phone,
		&u.Nickname,
		&u.Source,
		&u.Points,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &model.NotFoundError{Resource: "user", ID: id}
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// GetByIDs retrieves multiple users keyed by id.
func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	if len(ids) == 0 {
		return map[int64]*model.User{}, nil
	}

	rows, err := r.pool.Query(ctx, selectUser+` WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]*model.User, len(ids))
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Phone, &u.Nickname, &u.Source, &u.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[u.ID] = &u
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// AddPoints credits points to the user's running balance.
func (r *userRepository) AddPoints(ctx context.Context, tx pgx.Tx, userID int64, points int) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET points = points + $2 WHERE id = $1`, userID, points)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to add points")
		return fmt.Errorf("failed to add points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "user", ID: userID}
	}

	r.logger.Debug().Int64("user_id", userID).Int("points", points).Msg("points credited")
	return nil
}
