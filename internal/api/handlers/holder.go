package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/PxPatel/trading-venue/internal/api/models"
	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/publisher"
	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/types"
)

// EngineHolder gives handlers read access to the engine and its stores.
// Trades, Orders and Publisher may be nil; the endpoints that need them then
// answer 503.
type EngineHolder struct {
	Engine    *matching.Engine
	Trades    storage.TradeStore
	Orders    storage.OrderStore
	Publisher *publisher.Dispatcher
}

// NewEngineHolder creates a new engine holder
func NewEngineHolder(engine *matching.Engine, trades storage.TradeStore, orders storage.OrderStore, pub *publisher.Dispatcher) *EngineHolder {
	return &EngineHolder{
		Engine:    engine,
		Trades:    trades,
		Orders:    orders,
		Publisher: pub,
	}
}

func writeJSON(w http.ResponseWriter, status int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Warn("Failed to encode response", map[string]interface{}{
			"error": err,
		})
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed", map[string]interface{}{
		"error_code": httpErr.Error.Code,
		"status":     httpErr.StatusCode,
	})

	writeJSON(w, httpErr.StatusCode, httpErr.Response())
}

func ok() models.BaseResponse {
	return models.BaseResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
	}
}

// convertTradesToDTO converts trades to DTO trades
func convertTradesToDTO(trades []*types.Trade) []models.TradeDTO {
	dtos := make([]models.TradeDTO, len(trades))
	for i, trade := range trades {
		dtos[i] = models.TradeDTO{
			TradeID:       trade.TradeID,
			Symbol:        trade.Symbol,
			BuyOrderID:    trade.BuyOrderID,
			SellOrderID:   trade.SellOrderID,
			AggressorSide: trade.AggressorSide.String(),
			Price:         trade.Price,
			Quantity:      trade.Quantity,
			Timestamp:     trade.Timestamp,
		}
	}
	return dtos
}

// convertOrderToDTO snapshots a live order
func convertOrderToDTO(order *matching.Order) models.OrderDTO {
	remaining := order.Remaining()
	return models.OrderDTO{
		OrderID:           order.ID,
		Symbol:            order.Symbol,
		Side:              order.Side.String(),
		Price:             order.Price,
		Quantity:          order.Quantity,
		FilledQuantity:    order.Quantity - remaining,
		RemainingQuantity: remaining,
		Status:            order.Status().String(),
		Sequence:          order.Sequence,
		Timestamp:         order.TimeStamp,
	}
}
