package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tuango/internal/model"
	"tuango/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// The repository pool registers the decimal codec, so NUMERIC columns scan
	// straight into decimal.Decimal just like in production.
	pool, err := repository.NewPool(ctx, connStr, &repository.DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			pricing_type VARCHAR(30) NOT NULL,
			pricing_data JSONB NOT NULL DEFAULT '{}',
			description TEXT,
			counts_toward_free_shipping BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS group_deals (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			order_start_date TIMESTAMPTZ NOT NULL,
			order_end_date TIMESTAMPTZ NOT NULL,
			pickup_date TIMESTAMPTZ NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'active',
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS group_deal_products (
			id BIGSERIAL PRIMARY KEY,
			group_deal_id BIGINT NOT NULL REFERENCES group_deals(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			deal_price NUMERIC(10, 2),
			deal_stock_limit INTEGER,
			UNIQUE (group_deal_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			phone VARCHAR(20) NOT NULL,
			nickname VARCHAR(100),
			user_source VARCHAR(100),
			points INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			group_deal_id BIGINT NOT NULL REFERENCES group_deals(id),
			address_id BIGINT,
			order_number VARCHAR(40) NOT NULL UNIQUE,
			delivery_method VARCHAR(20) NOT NULL,
			pickup_location VARCHAR(255),
			subtotal NUMERIC(10, 2) NOT NULL DEFAULT 0,
			shipping_fee NUMERIC(10, 2) NOT NULL DEFAULT 0,
			tax NUMERIC(10, 2) NOT NULL DEFAULT 0,
			total NUMERIC(10, 2) NOT NULL DEFAULT 0,
			points_earned INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(30) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(30),
			payment_date TIMESTAMPTZ,
			notes TEXT,
			deleted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(10, 2) NOT NULL,
			total_price NUMERIC(10, 2) NOT NULL,
			final_weight NUMERIC(10, 3)
		);

		CREATE TABLE IF NOT EXISTS sdrs (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			source_identifier VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255),
			phone VARCHAR(20),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS commission_rules (
			id BIGSERIAL PRIMARY KEY,
			sdr_id BIGINT NOT NULL REFERENCES sdrs(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id),
			commission_type VARCHAR(20) NOT NULL,
			own_customer_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
			general_customer_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE (sdr_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS commission_records (
			id BIGSERIAL PRIMARY KEY,
			group_deal_id BIGINT NOT NULL REFERENCES group_deals(id) ON DELETE CASCADE,
			sdr_id BIGINT NOT NULL REFERENCES sdrs(id),
			total_commission NUMERIC(10, 2) NOT NULL DEFAULT 0,
			own_customer_commission NUMERIC(10, 2) NOT NULL DEFAULT 0,
			general_customer_commission NUMERIC(10, 2) NOT NULL DEFAULT 0,
			manual_adjustment NUMERIC(10, 2) NOT NULL DEFAULT 0,
			adjustment_notes TEXT,
			details JSONB,
			payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (group_deal_id, sdr_id)
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_group_deal_id ON orders(group_deal_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedUser inserts a user and returns the generated id. A non-empty source
// attributes the user to the SDR with that source identifier.
func SeedUser(t *testing.T, pool *pgxpool.Pool, phone, source string) int64 {
	t.Helper()

	var src *string
	if source != "" {
		src = &source
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO users (phone, nickname, user_source) VALUES ($1, $2, $3) RETURNING id",
		phone, "Test User", src,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", phone, err)
	}
	return id
}

// SeedProduct inserts a product and returns the generated id. pricingData is
// the raw JSON document for the pricing scheme.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, pricingType model.PricingType, pricingData string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO products (name, pricing_type, pricing_data) VALUES ($1, $2, $3) RETURNING id",
		name, pricingType, pricingData,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return id
}

// SeedDeal inserts a group deal whose order window is open right now and
// returns the generated id.
func SeedDeal(t *testing.T, pool *pgxpool.Pool, title string) int64 {
	t.Helper()

	now := time.Now()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO group_deals (title, order_start_date, order_end_date, pickup_date, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		title, now.Add(-time.Hour), now.Add(24*time.Hour), now.Add(48*time.Hour), model.DealActive,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed deal %s: %v", title, err)
	}
	return id
}

// SeedDealProduct links a product into a deal. A nil stockLimit means
// unlimited stock; a nil dealPrice means the catalog price applies.
func SeedDealProduct(t *testing.T, pool *pgxpool.Pool, dealID, productID int64, dealPrice *decimal.Decimal, stockLimit *int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO group_deal_products (group_deal_id, product_id, deal_price, deal_stock_limit)
		 VALUES ($1, $2, $3, $4)`,
		dealID, productID, dealPrice, stockLimit,
	)
	if err != nil {
		t.Fatalf("failed to seed deal product (deal=%d, product=%d): %v", dealID, productID, err)
	}
}

// SeedSDR inserts an active sales rep and returns the generated id.
func SeedSDR(t *testing.T, pool *pgxpool.Pool, name, sourceIdentifier string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO sdrs (name, source_identifier) VALUES ($1, $2) RETURNING id",
		name, sourceIdentifier,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed SDR %s: %v", name, err)
	}
	return id
}

// SeedCommissionRule inserts an active commission rule for one SDR/product pair.
func SeedCommissionRule(t *testing.T, pool *pgxpool.Pool, sdrID, productID int64, commissionType model.CommissionType, ownAmount, generalAmount string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO commission_rules (sdr_id, product_id, commission_type, own_customer_amount, general_customer_amount)
		 VALUES ($1, $2, $3, $4, $5)`,
		sdrID, productID, commissionType,
		decimal.RequireFromString(ownAmount), decimal.RequireFromString(generalAmount),
	)
	if err != nil {
		t.Fatalf("failed to seed commission rule (sdr=%d, product=%d): %v", sdrID, productID, err)
	}
}

// StockLimit reads the current deal_stock_limit for one deal product row.
func StockLimit(t *testing.T, pool *pgxpool.Pool, dealID, productID int64) *int {
	t.Helper()

	var limit *int
	err := pool.QueryRow(context.Background(),
		"SELECT deal_stock_limit FROM group_deal_products WHERE group_deal_id = $1 AND product_id = $2",
		dealID, productID,
	).Scan(&limit)
	if err != nil {
		t.Fatalf("failed to read stock limit (deal=%d, product=%d): %v", dealID, productID, err)
	}
	return limit
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"commission_records", "commission_rules", "sdrs",
		"order_items", "orders", "group_deal_products", "group_deals",
		"users", "products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
