package storage

import (
	"github.com/pkg/errors"

	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/types"
)

// ErrOrderNotFound is returned by OrderStore lookups for unknown IDs
var ErrOrderNotFound = errors.New("order not found")

// OrderStore indexes accepted orders for lookups.
// Stored values are live order handles: remaining quantity keeps changing
// while an order rests, so implementations must not copy them.
type OrderStore interface {
	// Save indexes an accepted order
	Save(order *matching.Order) error

	// Get retrieves an order by ID
	Get(orderID uint64) (*matching.Order, error)

	// GetAll returns all tracked orders
	GetAll() []*matching.Order

	// GetBySymbol returns all orders submitted for a symbol
	GetBySymbol(symbol string) []*matching.Order

	// GetBySide returns all orders for a specific side (BUY or SELL)
	GetBySide(side types.SideType) []*matching.Order

	// Close releases any resources held by the store
	Close() error
}

// TradeStore abstracts trade storage and retrieval operations.
// Implementations can be in-memory buffer, file log, Redis, PostgreSQL, Kafka.
type TradeStore interface {
	// Save persists a single trade
	Save(trade *types.Trade) error

	// SaveBatch persists multiple trades (useful for database batch inserts)
	SaveBatch(trades []*types.Trade) error

	// GetRecent retrieves the N most recent trades, newest first
	GetRecent(limit int) ([]*types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}
