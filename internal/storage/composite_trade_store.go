package storage

import (
	"go.uber.org/multierr"

	"github.com/PxPatel/trading-venue/internal/types"
)

// CompositeTradeStore combines multiple TradeStore implementations.
// Writes go to ALL stores, reads come from the FIRST store that has data.
// Example: CompositeTradeStore([memoryStore, fileStore]) writes to both,
// reads from memory (fast), and persists to file (durable).
type CompositeTradeStore struct {
	stores []TradeStore
}

// NewCompositeTradeStore creates a composite store from multiple stores
func NewCompositeTradeStore(stores ...TradeStore) *CompositeTradeStore {
	return &CompositeTradeStore{
		stores: stores,
	}
}

// Len is the number of underlying stores
func (c *CompositeTradeStore) Len() int {
	return len(c.stores)
}

// Save writes to every store. A failing store does not stop the others;
// all failures are combined into the returned error.
func (c *CompositeTradeStore) Save(trade *types.Trade) error {
	var err error
	for _, store := range c.stores {
		err = multierr.Append(err, store.Save(trade))
	}
	return err
}

func (c *CompositeTradeStore) SaveBatch(trades []*types.Trade) error {
	var err error
	for _, store := range c.stores {
		err = multierr.Append(err, store.SaveBatch(trades))
	}
	return err
}

func (c *CompositeTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	// Read from first store that returns data
	for _, store := range c.stores {
		trades, err := store.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []*types.Trade{}, nil
}

func (c *CompositeTradeStore) Close() error {
	var err error
	for _, store := range c.stores {
		err = multierr.Append(err, store.Close())
	}
	return err
}
