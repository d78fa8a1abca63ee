package integration

import (
	"net/http"
	"net/http/httptest"

	"github.com/PxPatel/trading-venue/internal/api/handlers"
	"github.com/PxPatel/trading-venue/internal/api/routes"
)

func serve(holder *handlers.EngineHolder, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	routes.SetupRoutes(holder).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}
