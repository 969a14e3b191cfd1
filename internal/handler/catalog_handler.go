package handler

import (
	"net/http"
	"strconv"
	"strings"

	"tuango/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles product and deal read requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// Products handles GET /api/products and GET /api/products/{id}.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products"), "/")
	if rest == "" {
		limit, offset := pagination(r)
		products, err := h.service.GetProducts(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, products)
		return
	}

	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Deals handles GET /api/deals and GET /api/deals/{id}.
func (h *CatalogHandler) Deals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/deals"), "/")
	if rest == "" {
		limit, offset := pagination(r)
		deals, err := h.service.GetDeals(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, deals)
		return
	}

	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deal ID format", h.logger)
		return
	}

	deal, err := h.service.GetDeal(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, deal)
}

// pagination reads limit/offset query parameters; the service clamps them.
func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
