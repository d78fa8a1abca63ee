package handlers

import (
	"net/http"

	"github.com/PxPatel/trading-venue/internal/api/models"
)

// GetStatsHandler reports engine counters and, when trades are dispatched
// asynchronously, delivery counters
func (eh *EngineHolder) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	s := eh.Engine.Stats()
	response := models.StatsResponse{
		BaseResponse: ok(),
		Engine: models.EngineStats{
			Instruments: s.Instruments,
			Submitted:   s.Submitted,
			Rejected:    s.Rejected,
			Trades:      s.Trades,
			Volume:      s.Volume,
			Resting:     s.Resting,
			Linked:      s.Linked,
		},
	}

	if eh.Publisher != nil {
		ps := eh.Publisher.Stats()
		response.Publisher = &models.PublisherStats{
			Enqueued:  ps.Enqueued,
			Published: ps.Published,
			Dropped:   ps.Dropped,
			Failed:    ps.Failed,
		}
	}

	writeJSON(w, http.StatusOK, response)
}
