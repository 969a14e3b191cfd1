package handler

import (
	"net/http"
	"strings"

	"tuango/internal/model"
	"tuango/internal/service"

	"github.com/rs/zerolog"
)

// CommissionHandler handles commission calculation requests.
type CommissionHandler struct {
	service service.CommissionService
	logger  zerolog.Logger
}

// NewCommissionHandler creates a new commission handler.
func NewCommissionHandler(service service.CommissionService, logger zerolog.Logger) *CommissionHandler {
	return &CommissionHandler{
		service: service,
		logger:  logger.With().Str("handler", "commission").Logger(),
	}
}

// ServeHTTP dispatches /api/deals/{id}/commissions requests:
//
//	POST ?recalculate=true   compute (optionally pruning stale records)
//	GET                      list stored records
func (h *CommissionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/deals"), "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "commissions" {
		writeError(w, http.StatusNotFound, "not found", h.logger)
		return
	}

	dealID, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deal ID format", h.logger)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.calculate(w, r, dealID)
	case http.MethodGet:
		h.list(w, r, dealID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *CommissionHandler) calculate(w http.ResponseWriter, r *http.Request, dealID int64) {
	if requestActor(r) != model.ActorAdmin {
		writeUnauthorised(w, http.StatusForbidden, "admin role required", h.logger)
		return
	}

	recalculate := r.URL.Query().Get("recalculate") == "true"

	records, err := h.service.Calculate(r.Context(), dealID, recalculate)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if records == nil {
		records = []model.CommissionRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *CommissionHandler) list(w http.ResponseWriter, r *http.Request, dealID int64) {
	records, err := h.service.ListForDeal(r.Context(), dealID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if records == nil {
		records = []model.CommissionRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}
