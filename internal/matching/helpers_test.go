package matching

import (
	"sync"

	"github.com/shopspring/decimal"
)

func px(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingSink struct {
	mu     sync.Mutex
	trades []*Trade
}

func (s *recordingSink) Emit(trade *Trade) {
	s.mu.Lock()
	s.trades = append(s.trades, trade)
	s.mu.Unlock()
}

func (s *recordingSink) Trades() []*Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// mapRecorder is an in-package OrderRecorder
type mapRecorder struct {
	orders sync.Map
}

func (r *mapRecorder) Save(order *Order) error {
	r.orders.Store(order.ID, order)
	return nil
}

func (r *mapRecorder) Get(id uint64) (*Order, error) {
	v, ok := r.orders.Load(id)
	if !ok {
		return nil, ErrUnknownOrder
	}
	return v.(*Order), nil
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, symbols ...string) (*Engine, *recordingSink, *mapRecorder) {
	sink := &recordingSink{}
	registry, err := NewRegistry(symbols, WithTradeSink(sink))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	recorder := &mapRecorder{}
	return NewEngine(registry, WithOrderRecorder(recorder)), sink, recorder
}
