package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a matched trade between a buy and sell order.
// Price is always the resting (passive) order's limit price.
type Trade struct {
	TradeID       string          `json:"trade_id"`
	Instrument    InstrumentID    `json:"instrument"`
	Symbol        string          `json:"symbol"`
	BuyOrderID    uint64          `json:"buy_order_id"`
	SellOrderID   uint64          `json:"sell_order_id"`
	AggressorSide SideType        `json:"aggressor_side"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	Timestamp     time.Time       `json:"timestamp"`
}
