package router

import (
	"net/http"
	"strings"

	"tuango/internal/handler"
	"tuango/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	commissionHandler *handler.CommissionHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Register product routes (both with and without trailing slash)
	mux.HandleFunc("/api/products", catalogHandler.Products)
	mux.HandleFunc("/api/products/", catalogHandler.Products)

	// Deal routes; /api/deals/{id}/commissions belongs to the commission handler
	dealRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/commissions") {
			commissionHandler.ServeHTTP(w, r)
			return
		}
		catalogHandler.Deals(w, r)
	}
	mux.HandleFunc("/api/deals", dealRouteHandler)
	mux.HandleFunc("/api/deals/", dealRouteHandler)

	// Register order routes (both with and without trailing slash)
	mux.Handle("/api/orders", orderHandler)
	mux.Handle("/api/orders/", orderHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
