package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// TradeDTO represents a trade in API responses
type TradeDTO struct {
	TradeID       string          `json:"trade_id"`
	Symbol        string          `json:"symbol"`
	BuyOrderID    uint64          `json:"buy_order_id"`
	SellOrderID   uint64          `json:"sell_order_id"`
	AggressorSide string          `json:"aggressor_side"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	OrderID           uint64          `json:"order_id"`
	Symbol            string          `json:"symbol"`
	Side              string          `json:"side"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int64           `json:"quantity"`
	FilledQuantity    int64           `json:"filled_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	Status            string          `json:"status"`
	Sequence          uint64          `json:"sequence"`
	Timestamp         time.Time       `json:"timestamp"`
}

// GetOrderResponse represents the response for getting a single order
type GetOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

// GetOrdersResponse represents the response for getting multiple orders
type GetOrdersResponse struct {
	BaseResponse
	Orders []OrderDTO `json:"orders"`
	Count  int        `json:"count"`
}

// PriceLevel represents a price level in the order book
type PriceLevel struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	OrderCount int             `json:"order_count"`
}

// OrderBookResponse represents the aggregated depth of one book
type OrderBookResponse struct {
	BaseResponse
	Symbol   string           `json:"symbol"`
	Bids     []PriceLevel     `json:"bids"`
	Asks     []PriceLevel     `json:"asks"`
	Spread   *decimal.Decimal `json:"spread,omitempty"`
	MidPrice *decimal.Decimal `json:"mid_price,omitempty"`
}

// BestQuote represents the best bid or ask
type BestQuote struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// TopOfBookResponse represents the best bid and ask
type TopOfBookResponse struct {
	BaseResponse
	Symbol   string           `json:"symbol"`
	BestBid  *BestQuote       `json:"best_bid,omitempty"`
	BestAsk  *BestQuote       `json:"best_ask,omitempty"`
	Spread   *decimal.Decimal `json:"spread,omitempty"`
	MidPrice *decimal.Decimal `json:"mid_price,omitempty"`
}

// GetTradesResponse represents the response for getting trades
type GetTradesResponse struct {
	BaseResponse
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// EngineStats mirrors matching.Stats
type EngineStats struct {
	Instruments int   `json:"instruments"`
	Submitted   int64 `json:"submitted"`
	Rejected    int64 `json:"rejected"`
	Trades      int64 `json:"trades"`
	Volume      int64 `json:"volume"`
	Resting     int   `json:"resting_orders"`
	Linked      int   `json:"linked_orders"`
}

// PublisherStats mirrors publisher.Stats
type PublisherStats struct {
	Enqueued  int64 `json:"enqueued"`
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
}

// StatsResponse reports engine and trade delivery counters
type StatsResponse struct {
	BaseResponse
	Engine    EngineStats     `json:"engine"`
	Publisher *PublisherStats `json:"publisher,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
}
