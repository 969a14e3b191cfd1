package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"tuango/internal/model"
	"tuango/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// ServeHTTP dispatches /api/orders requests:
//
//	POST /api/orders                    create
//	GET  /api/orders                    list the caller's orders
//	GET  /api/orders/{id}               fetch
//	PUT  /api/orders/{id}               edit
//	POST /api/orders/{id}/cancel        cancel
//	POST /api/orders/{id}/reactivate    reactivate
//	POST /api/orders/{id}/weights       finalize weights (admin)
//	POST /api/orders/{id}/payment       payment transition (admin)
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodPost:
			h.create(w, r)
		case http.MethodGet:
			h.list(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		}
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	orderID, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getByID(w, r, orderID)
		case http.MethodPut:
			h.edit(w, r, orderID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		}
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	switch parts[1] {
	case "cancel":
		h.cancel(w, r, orderID)
	case "reactivate":
		h.reactivate(w, r, orderID)
	case "weights":
		h.finalizeWeights(w, r, orderID)
	case "payment":
		h.updatePayment(w, r, orderID)
	default:
		writeError(w, http.StatusNotFound, "not found", h.logger)
	}
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeUnauthorised(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}
	req.UserID = userID

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeUnauthorised(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	orders, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) getByID(w http.ResponseWriter, r *http.Request, orderID int64) {
	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) edit(w http.ResponseWriter, r *http.Request, orderID int64) {
	userID, ok := requestUserID(r)
	if !ok {
		writeUnauthorised(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	var req model.OrderEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}
	req.UserID = userID

	order, err := h.service.Edit(r.Context(), orderID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request, orderID int64) {
	order, err := h.service.Cancel(r.Context(), orderID, requestActor(r))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) reactivate(w http.ResponseWriter, r *http.Request, orderID int64) {
	userID, ok := requestUserID(r)
	if !ok {
		writeUnauthorised(w, http.StatusUnauthorized, "missing user identity", h.logger)
		return
	}

	order, err := h.service.Reactivate(r.Context(), orderID, userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) finalizeWeights(w http.ResponseWriter, r *http.Request, orderID int64) {
	if requestActor(r) != model.ActorAdmin {
		writeUnauthorised(w, http.StatusForbidden, "admin role required", h.logger)
		return
	}

	var req struct {
		Weights []model.WeightUpdate `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	order, err := h.service.FinalizeWeights(r.Context(), orderID, req.Weights)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) updatePayment(w http.ResponseWriter, r *http.Request, orderID int64) {
	if requestActor(r) != model.ActorAdmin {
		writeUnauthorised(w, http.StatusForbidden, "admin role required", h.logger)
		return
	}

	var req model.PaymentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, h.logger)
		return
	}

	order, err := h.service.UpdatePayment(r.Context(), orderID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
