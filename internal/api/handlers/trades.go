package handlers

import (
	"net/http"
	"strconv"

	"github.com/PxPatel/trading-venue/internal/api/models"
	"github.com/PxPatel/trading-venue/internal/logger"
)

// GetTradesHandler handles retrieving recent trades
func (eh *EngineHolder) GetTradesHandler(w http.ResponseWriter, r *http.Request) {
	if eh.Trades == nil {
		writeErrorResponse(w, models.ErrUnavailable("Trade history is disabled"))
		return
	}

	limitStr := r.URL.Query().Get("limit")

	// Default limit: 100, max: 1000
	limit := 100
	if limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err == nil && parsedLimit > 0 {
			limit = parsedLimit
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	trades, err := eh.Trades.GetRecent(limit)
	if err != nil {
		logger.Error("Failed to read trades", map[string]interface{}{
			"error": err,
		})
		writeErrorResponse(w, models.ErrInternal("Failed to read trades"))
		return
	}

	tradeDTOs := convertTradesToDTO(trades)

	logger.Debug("Retrieved trades", map[string]interface{}{
		"count": len(tradeDTOs),
		"limit": limit,
	})

	writeJSON(w, http.StatusOK, models.GetTradesResponse{
		BaseResponse: ok(),
		Trades:       tradeDTOs,
		Count:        len(tradeDTOs),
	})
}
