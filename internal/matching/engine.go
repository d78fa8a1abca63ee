package matching

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/PxPatel/trading-venue/internal/logger"
)

// OrderRecorder indexes accepted orders so they can be looked up by ID
type OrderRecorder interface {
	Save(order *Order) error
	Get(id uint64) (*Order, error)
}

// Engine owns the instrument registry and is handed to every submitter. It
// replaces process-wide book and ticker tables with one explicitly
// constructed value.
type Engine struct {
	registry *Registry
	recorder OrderRecorder

	nextID    atomic.Uint64
	submitted atomic.Int64
	rejected  atomic.Int64
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithOrderRecorder registers accepted orders with r
func WithOrderRecorder(r OrderRecorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// Execution is the outcome of one submission: the order handle, whose
// remaining quantity keeps changing while it rests, and the trades it took
// part in as aggressor.
type Execution struct {
	Order  *Order
	Trades []*Trade
}

// NewEngine creates an engine over a fully built registry
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

// ResolveInstrument maps a symbol to its instrument
func (e *Engine) ResolveInstrument(symbol string) (InstrumentID, error) {
	return e.registry.Resolve(symbol)
}

// Order looks up an accepted order through the recorder. The returned handle
// is live: its remaining quantity reflects fills made after submission.
func (e *Engine) Order(id uint64) (*Order, error) {
	if e.recorder == nil {
		return nil, errors.Wrapf(ErrUnknownOrder, "order %d: no order index configured", id)
	}
	order, err := e.recorder.Get(id)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownOrder, "order %d: %v", id, err)
	}
	return order, nil
}

// Book returns the book of an instrument
func (e *Engine) Book(id InstrumentID) (*OrderBook, error) {
	return e.registry.Book(id)
}

// SubmitOrder places a limit order on an instrument and matches it. It
// returns once the order is filled or rests. Non-positive quantity or price
// fail with ErrInvalidInput and leave no trace in the book.
func (e *Engine) SubmitOrder(side SideType, instrument InstrumentID, quantity int64, price decimal.Decimal) (*Execution, error) {
	return e.submit(side, instrument, e.registry.Symbol(instrument), quantity, price)
}

// SubmitSymbol resolves the symbol and submits. The order carries the symbol
// as given, which differs from the book name in a bucket registry.
func (e *Engine) SubmitSymbol(side SideType, symbol string, quantity int64, price decimal.Decimal) (*Execution, error) {
	instrument, err := e.registry.Resolve(symbol)
	if err != nil {
		e.rejected.Add(1)
		return nil, err
	}
	return e.submit(side, instrument, symbol, quantity, price)
}

func (e *Engine) submit(side SideType, instrument InstrumentID, symbol string, quantity int64, price decimal.Decimal) (*Execution, error) {
	book, err := e.registry.Book(instrument)
	if err != nil {
		e.rejected.Add(1)
		return nil, err
	}

	order := NewOrder(0, instrument, symbol, side, price, quantity)
	if err := validate(order); err != nil {
		e.rejected.Add(1)
		logger.Debug("Order rejected", map[string]interface{}{
			"symbol": symbol,
			"error":  err,
		})
		return nil, err
	}
	order.ID = e.nextID.Add(1)

	trades, err := book.Submit(order)
	if err != nil {
		e.rejected.Add(1)
		return nil, err
	}
	e.submitted.Add(1)

	if e.recorder != nil {
		if err := e.recorder.Save(order); err != nil {
			logger.Warn("Failed to record order", map[string]interface{}{
				"order_id": order.ID,
				"error":    err,
			})
		}
	}

	return &Execution{Order: order, Trades: trades}, nil
}

// Compact unlinks filled orders from every book
func (e *Engine) Compact() int {
	removed := 0
	for _, book := range e.registry.Books() {
		removed += book.Compact()
	}
	return removed
}

// RunCompactor compacts every book on each tick until ctx is done
func (e *Engine) RunCompactor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			removed := e.Compact()
			logger.Debug("Compacted order books", map[string]interface{}{
				"removed":     removed,
				"duration_us": time.Since(start).Microseconds(),
			})
		}
	}
}

// Stats aggregates counters across all books
type Stats struct {
	Instruments int
	Submitted   int64
	Rejected    int64
	Trades      int64
	Volume      int64
	Resting     int
	Linked      int
}

// Stats sums the counters of every book
func (e *Engine) Stats() Stats {
	s := Stats{
		Instruments: e.registry.Len(),
		Submitted:   e.submitted.Load(),
		Rejected:    e.rejected.Load(),
	}
	for _, book := range e.registry.Books() {
		bs := book.Stats()
		s.Trades += bs.Trades
		s.Volume += bs.Volume
		s.Resting += bs.LiveBids + bs.LiveAsks
		s.Linked += bs.LinkedBids + bs.LinkedAsks
	}
	return s
}

// Audit runs the conservation check on every book. Call it only when no
// submission is in flight.
func (e *Engine) Audit() error {
	var err error
	for _, book := range e.registry.Books() {
		err = multierr.Append(err, book.Audit())
	}
	if err != nil {
		return errors.Wrap(err, "quantity audit failed")
	}
	return nil
}
