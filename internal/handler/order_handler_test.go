package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tuango/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Edit(ctx context.Context, orderID int64, req *model.OrderEditRequest) (*model.Order, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Reactivate(ctx context.Context, orderID, userID int64) (*model.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) FinalizeWeights(ctx context.Context, orderID int64, updates []model.WeightUpdate) (*model.Order, error) {
	args := m.Called(ctx, orderID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePayment(ctx context.Context, orderID int64, update *model.PaymentUpdate) (*model.Order, error) {
	args := m.Called(ctx, orderID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func testOrder(id int64) *model.Order {
	return &model.Order{
		ID:             id,
		UserID:         7,
		GroupDealID:    1,
		OrderNumber:    "GSF-20260301120000-ABCD1234",
		DeliveryMethod: model.DeliveryPickup,
		Status:         model.OrderSubmitted,
		PaymentStatus:  model.PaymentUnpaid,
		Subtotal:       decimal.RequireFromString("20.00"),
		Total:          decimal.RequireFromString("22.60"),
	}
}

func TestOrderHandler_Create(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	body, _ := json.Marshal(model.OrderRequest{
		GroupDealID:    1,
		DeliveryMethod: model.DeliveryPickup,
		Items:          []model.OrderItemRequest{{ProductID: 100, Quantity: 2}},
	})

	mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.OrderRequest) bool {
		return req.UserID == 7 && req.GroupDealID == 1
	})).Return(testOrder(42), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.ID)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Create_MissingIdentity(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeUnauthorised, resp.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_Create_MalformedBody(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"groupDealId":`)))
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeInvalidJSON, resp.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_Create_InsufficientStock(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("Create", mock.Anything, mock.Anything).
		Return(nil, &model.InsufficientStockError{ProductID: 100, Available: 4, Requested: 8})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"groupDealId":1}`)))
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeInsufficientStock, resp.Code)
	assert.Contains(t, resp.Error, "4 available, 8 requested")
}

func TestOrderHandler_GetByID(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("GetByID", mock.Anything, int64(42)).Return(testOrder(42), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("GetByID", mock.Anything, int64(42)).
		Return(nil, &model.NotFoundError{Resource: "order", ID: 42})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_GetByID_InvalidID(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Cancel_StateConflict(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("Cancel", mock.Anything, int64(42), model.ActorUser).
		Return(nil, &model.StateError{Current: model.OrderCompleted, Action: "cancel", Reason: "completed orders cannot be cancelled"})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/42/cancel", nil)
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderHandler_Cancel_AdminRole(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("Cancel", mock.Anything, int64(42), model.ActorAdmin).Return(testOrder(42), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/42/cancel", nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-User-Role", "admin")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_FinalizeWeights_RequiresAdmin(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/42/weights",
		bytes.NewReader([]byte(`{"weights":[{"itemId":1,"finalWeight":"2.5"}]}`)))
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "FinalizeWeights", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_Payment_TransientError(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("UpdatePayment", mock.Anything, int64(42), mock.Anything).
		Return(nil, &model.TransientError{Err: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/42/payment",
		bytes.NewReader([]byte(`{"paymentStatus":"paid"}`)))
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-User-Role", "admin")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeTransient, resp.Code)
}

func TestOrderHandler_List(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	mockService.On("ListByUser", mock.Anything, int64(7)).Return([]model.Order{*testOrder(42)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("X-User-ID", "7")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestOrderHandler_MethodNotAllowed(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/42", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
