package memory

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/types"
)

// OrderStore implements storage.OrderStore using an in-memory map with FIFO eviction.
// Thread-safe for concurrent access via RWMutex.
// When maxSize is reached, oldest orders are evicted to maintain size limit.
type OrderStore struct {
	orders   map[uint64]*matching.Order
	orderIDs []uint64 // FIFO queue for eviction
	maxSize  int
	mutex    sync.RWMutex
}

// NewOrderStore creates a new in-memory order store with a size limit
func NewOrderStore(maxSize int) *OrderStore {
	return &OrderStore{
		orders:   make(map[uint64]*matching.Order),
		orderIDs: make([]uint64, 0, maxSize),
		maxSize:  maxSize,
	}
}

func (s *OrderStore) Save(order *matching.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[order.ID]; !exists {
		s.orderIDs = append(s.orderIDs, order.ID)

		// Evict oldest order if size limit exceeded
		if len(s.orderIDs) > s.maxSize {
			oldestID := s.orderIDs[0]
			delete(s.orders, oldestID)
			s.orderIDs = s.orderIDs[1:]
		}
	}

	s.orders[order.ID] = order
	return nil
}

func (s *OrderStore) Get(orderID uint64) (*matching.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, errors.Wrapf(storage.ErrOrderNotFound, "order %d", orderID)
	}
	return order, nil
}

func (s *OrderStore) GetAll() []*matching.Order {
	return s.filter(func(*matching.Order) bool { return true })
}

func (s *OrderStore) GetBySymbol(symbol string) []*matching.Order {
	return s.filter(func(o *matching.Order) bool { return o.Symbol == symbol })
}

func (s *OrderStore) GetBySide(side types.SideType) []*matching.Order {
	return s.filter(func(o *matching.Order) bool { return o.Side == side })
}

// filter returns matching orders in the order they were saved
func (s *OrderStore) filter(keep func(*matching.Order) bool) []*matching.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*matching.Order
	for _, id := range s.orderIDs {
		if order := s.orders[id]; keep(order) {
			orders = append(orders, order)
		}
	}
	return orders
}

// Len is the number of indexed orders
func (s *OrderStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.orders)
}

func (s *OrderStore) Close() error {
	return nil
}
