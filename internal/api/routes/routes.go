package routes

import (
	"net/http"

	"github.com/PxPatel/trading-venue/internal/api/handlers"
	"github.com/PxPatel/trading-venue/internal/api/middleware"
)

// getOnly rejects every method but GET
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// SetupRoutes configures the monitoring routes with middleware. There is
// no order entry: every route is a read.
func SetupRoutes(engineHolder *handlers.EngineHolder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", getOnly(handlers.HealthHandler))
	mux.HandleFunc("/api/v1/stats", getOnly(engineHolder.GetStatsHandler))

	// Order endpoints
	mux.HandleFunc("/api/v1/orders", getOnly(engineHolder.GetAllOrdersHandler))
	mux.HandleFunc("/api/v1/orders/", getOnly(engineHolder.GetOrderHandler))

	// Order book endpoints
	mux.HandleFunc("/api/v1/orderbook", getOnly(engineHolder.GetOrderBookHandler))
	mux.HandleFunc("/api/v1/orderbook/top", getOnly(engineHolder.GetTopOfBookHandler))

	// Trade endpoints
	mux.HandleFunc("/api/v1/trades", getOnly(engineHolder.GetTradesHandler))

	// Requests pass Logging, then CORS, then Recovery before reaching the mux
	handler := middleware.Recovery(mux)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(handler)

	return handler
}
