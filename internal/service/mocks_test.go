package service

import (
	"context"

	"tuango/internal/model"
	"tuango/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, tx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByDeal(ctx context.Context, dealID int64) ([]model.Order, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*model.Product), args.Error(1)
}

// MockDealRepository is a mock implementation of repository.DealRepository.
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) GetAll(ctx context.Context, limit, offset int) ([]model.GroupDeal, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupDeal), args.Error(1)
}

func (m *MockDealRepository) GetByID(ctx context.Context, id int64) (*model.GroupDeal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupDeal), args.Error(1)
}

func (m *MockDealRepository) GetDealProducts(ctx context.Context, dealID int64) (map[int64]*model.DealProduct, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*model.DealProduct), args.Error(1)
}

// MockStockRepository is a mock implementation of repository.StockRepository.
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Reserve(ctx context.Context, tx pgx.Tx, dealID int64, lines []repository.StockLine) error {
	args := m.Called(ctx, tx, dealID, lines)
	return args.Error(0)
}

func (m *MockStockRepository) Restore(ctx context.Context, tx pgx.Tx, dealID int64, lines []repository.StockLine) error {
	args := m.Called(ctx, tx, dealID, lines)
	return args.Error(0)
}

func (m *MockStockRepository) AdjustForModification(ctx context.Context, tx pgx.Tx, dealID int64, oldLines, newLines []repository.StockLine) error {
	args := m.Called(ctx, tx, dealID, oldLines, newLines)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*model.User), args.Error(1)
}

func (m *MockUserRepository) AddPoints(ctx context.Context, tx pgx.Tx, userID int64, points int) error {
	args := m.Called(ctx, tx, userID, points)
	return args.Error(0)
}

// MockCommissionRepository is a mock implementation of repository.CommissionRepository.
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommissionRepository) GetActiveSDRs(ctx context.Context) ([]model.SDR, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SDR), args.Error(1)
}

func (m *MockCommissionRepository) GetActiveRulesBySDR(ctx context.Context, sdrID int64) (map[int64]*model.CommissionRule, error) {
	args := m.Called(ctx, sdrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*model.CommissionRule), args.Error(1)
}

func (m *MockCommissionRepository) DeleteStaleRecords(ctx context.Context, tx pgx.Tx, dealID int64, keepSDRIDs []int64) error {
	args := m.Called(ctx, tx, dealID, keepSDRIDs)
	return args.Error(0)
}

func (m *MockCommissionRepository) UpsertRecord(ctx context.Context, tx pgx.Tx, record *model.CommissionRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockCommissionRepository) ListRecordsForDeal(ctx context.Context, dealID int64) ([]model.CommissionRecord, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommissionRecord), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
