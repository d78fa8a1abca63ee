package memory

import (
	"sync"

	"github.com/PxPatel/trading-venue/internal/types"
)

// TradeStore implements storage.TradeStore using a bounded buffer.
// Keeps only the N most recent trades in memory.
type TradeStore struct {
	trades  []*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewTradeStore creates a new in-memory trade store with a size limit
func NewTradeStore(maxSize int) *TradeStore {
	return &TradeStore{
		trades:  make([]*types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *TradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)

	// Trim to max size
	if len(s.trades) > s.maxSize {
		kept := make([]*types.Trade, s.maxSize, max(s.maxSize, cap(s.trades)/2))
		copy(kept, s.trades[len(s.trades)-s.maxSize:])
		s.trades = kept
	}

	return nil
}

// GetRecent returns up to limit trades, newest first. A non-positive limit
// returns everything held.
func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	result := make([]*types.Trade, limit)
	for i := 0; i < limit; i++ {
		result[i] = s.trades[len(s.trades)-1-i]
	}
	return result, nil
}

func (s *TradeStore) Close() error {
	return nil
}
