package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PxPatel/trading-venue/internal/api/models"
	"github.com/PxPatel/trading-venue/internal/logger"
)

// Recovery turns a panicking handler into a 500 response. The panic value is
// logged as an error carrying the stack of the recovering goroutine.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			logger.Error("Panic recovered", map[string]interface{}{
				"error":      errors.Errorf("panic: %v", v),
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": w.Header().Get(RequestIDHeader),
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(models.ErrInternal("An unexpected error occurred").Response())
		}()

		next.ServeHTTP(w, r)
	})
}
