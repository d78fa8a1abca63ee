package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/trading-venue/internal/api/models"
	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/types"
)

const (
	defaultDepth = 10
	maxDepth     = 50
)

var two = decimal.NewFromInt(2)

// resolveBook maps the symbol query parameter to its book, writing the error
// response itself when that fails
func (eh *EngineHolder) resolveBook(w http.ResponseWriter, r *http.Request) (*matching.OrderBook, string, bool) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeErrorResponse(w, models.ErrBadRequest("Missing symbol",
			map[string]interface{}{"field": "symbol"}))
		return nil, "", false
	}

	id, err := eh.Engine.ResolveInstrument(symbol)
	if err != nil {
		writeErrorResponse(w, models.ErrUnknownSymbolError(symbol))
		return nil, "", false
	}
	book, err := eh.Engine.Book(id)
	if err != nil {
		writeErrorResponse(w, models.ErrUnknownSymbolError(symbol))
		return nil, "", false
	}
	return book, symbol, true
}

func convertLevels(levels []matching.PriceLevel) []models.PriceLevel {
	out := make([]models.PriceLevel, len(levels))
	for i, lvl := range levels {
		out[i] = models.PriceLevel{
			Price:      lvl.Price,
			Quantity:   lvl.Quantity,
			OrderCount: lvl.OrderCount,
		}
	}
	return out
}

// spreadAndMid is nil, nil unless both sides are quoted
func spreadAndMid(bid, ask *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	if bid == nil || ask == nil {
		return nil, nil
	}
	spread := ask.Sub(*bid)
	mid := bid.Add(*ask).Div(two)
	return &spread, &mid
}

// GetOrderBookHandler returns aggregated depth for one symbol
func (eh *EngineHolder) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	book, symbol, found := eh.resolveBook(w, r)
	if !found {
		return
	}

	depth := defaultDepth
	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		parsedDepth, err := strconv.Atoi(depthStr)
		if err == nil && parsedDepth > 0 {
			depth = min(parsedDepth, maxDepth)
		}
	}

	bids := convertLevels(book.Depth(types.Buy, depth))
	asks := convertLevels(book.Depth(types.Sell, depth))

	var bestBid, bestAsk *decimal.Decimal
	if len(bids) > 0 {
		bestBid = &bids[0].Price
	}
	if len(asks) > 0 {
		bestAsk = &asks[0].Price
	}
	spread, mid := spreadAndMid(bestBid, bestAsk)

	logger.Debug("Order book snapshot retrieved", map[string]interface{}{
		"symbol":     symbol,
		"bid_levels": len(bids),
		"ask_levels": len(asks),
	})

	writeJSON(w, http.StatusOK, models.OrderBookResponse{
		BaseResponse: ok(),
		Symbol:       symbol,
		Bids:         bids,
		Asks:         asks,
		Spread:       spread,
		MidPrice:     mid,
	})
}

// GetTopOfBookHandler handles best bid/ask requests
func (eh *EngineHolder) GetTopOfBookHandler(w http.ResponseWriter, r *http.Request) {
	book, symbol, found := eh.resolveBook(w, r)
	if !found {
		return
	}

	response := models.TopOfBookResponse{
		BaseResponse: ok(),
		Symbol:       symbol,
	}

	var bidPrice, askPrice *decimal.Decimal
	if lvl, exists := book.Best(types.Buy); exists {
		response.BestBid = &models.BestQuote{Price: lvl.Price, Quantity: lvl.Quantity}
		bidPrice = &response.BestBid.Price
	}
	if lvl, exists := book.Best(types.Sell); exists {
		response.BestAsk = &models.BestQuote{Price: lvl.Price, Quantity: lvl.Quantity}
		askPrice = &response.BestAsk.Price
	}
	response.Spread, response.MidPrice = spreadAndMid(bidPrice, askPrice)

	writeJSON(w, http.StatusOK, response)
}
