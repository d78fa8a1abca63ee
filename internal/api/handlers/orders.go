package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/PxPatel/trading-venue/internal/api/models"
	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/types"
)

// GetOrderHandler handles retrieving a single order
func (eh *EngineHolder) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/orders/")
	orderID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid order ID",
			map[string]interface{}{"provided_value": idStr}))
		return
	}

	order, err := eh.Engine.Order(orderID)
	if err != nil {
		writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	dto := convertOrderToDTO(order)
	writeJSON(w, http.StatusOK, models.GetOrderResponse{
		BaseResponse: ok(),
		Order:        &dto,
	})
}

// GetAllOrdersHandler lists indexed orders, optionally filtered by symbol
// or side
func (eh *EngineHolder) GetAllOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if eh.Orders == nil {
		writeErrorResponse(w, models.ErrUnavailable("Order index is disabled"))
		return
	}

	symbol := r.URL.Query().Get("symbol")
	sideStr := r.URL.Query().Get("side")

	side := types.NoActionSide
	if sideStr != "" {
		side = types.ParseSide(sideStr)
		if side == types.NoActionSide {
			writeErrorResponse(w, models.ErrInvalidSideError(sideStr))
			return
		}
	}

	var orders []*matching.Order
	switch {
	case symbol != "":
		orders = eh.Orders.GetBySymbol(symbol)
	case side != types.NoActionSide:
		orders = eh.Orders.GetBySide(side)
	default:
		orders = eh.Orders.GetAll()
	}

	dtos := make([]models.OrderDTO, 0, len(orders))
	for _, o := range orders {
		if side != types.NoActionSide && o.Side != side {
			continue
		}
		dtos = append(dtos, convertOrderToDTO(o))
	}

	logger.Debug("Retrieved orders", map[string]interface{}{
		"count":  len(dtos),
		"symbol": symbol,
		"side":   sideStr,
	})

	writeJSON(w, http.StatusOK, models.GetOrdersResponse{
		BaseResponse: ok(),
		Orders:       dtos,
		Count:        len(dtos),
	})
}
