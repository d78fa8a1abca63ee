package handlers

import (
	"net/http"
	"time"

	"github.com/PxPatel/trading-venue/internal/api/models"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Version:       Version,
	})
}
