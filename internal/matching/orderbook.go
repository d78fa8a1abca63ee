package matching

import (
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeSink receives every trade the moment both sides have been
// decremented. Delivery beyond that call is the sink's business.
type TradeSink interface {
	Emit(trade *Trade)
}

// DefaultCompactEvery is how many appends to one side trigger an inline
// compaction of the book
const DefaultCompactEvery = 256

// OrderBook holds the bid and ask collections of a single instrument.
// There is no book-wide lock: submitters append and match concurrently and
// coordinate only through the atomic state word of each order.
type OrderBook struct {
	instrument InstrumentID
	symbol     string
	bids       *OrderCollection
	asks       *OrderCollection

	sink         TradeSink
	compactEvery int64

	arrivals atomic.Uint64
	accepted atomic.Int64 // sum of initial quantities
	trades   atomic.Int64
	volume   atomic.Int64
}

// BookOption configures an OrderBook
type BookOption func(*OrderBook)

// WithTradeSink sets where executed trades are emitted
func WithTradeSink(sink TradeSink) BookOption {
	return func(b *OrderBook) {
		b.sink = sink
	}
}

// WithCompactEvery sets the inline compaction period in appends per side.
// Zero disables inline compaction.
func WithCompactEvery(n int) BookOption {
	return func(b *OrderBook) {
		b.compactEvery = int64(n)
	}
}

// NewOrderBook creates an empty book
func NewOrderBook(instrument InstrumentID, symbol string, opts ...BookOption) *OrderBook {
	b := &OrderBook{
		instrument:   instrument,
		symbol:       symbol,
		bids:         NewOrderCollection(Buy),
		asks:         NewOrderCollection(Sell),
		compactEvery: DefaultCompactEvery,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *OrderBook) Instrument() InstrumentID {
	return b.instrument
}

func (b *OrderBook) Symbol() string {
	return b.symbol
}

// Collection returns the collection holding orders of the given side
func (b *OrderBook) Collection(side SideType) *OrderCollection {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func validate(o *Order) error {
	if o == nil {
		return errors.Wrap(ErrInvalidInput, "order is nil")
	}
	if o.Side != Buy && o.Side != Sell {
		return errors.Wrapf(ErrInvalidInput, "side %s", o.Side)
	}
	if o.Quantity <= 0 {
		return errors.Wrapf(ErrInvalidInput, "quantity %d must be positive", o.Quantity)
	}
	if !o.Price.IsPositive() {
		return errors.Wrapf(ErrInvalidInput, "price %s must be positive", o.Price)
	}
	return nil
}

// Submit appends the order to its side and matches it against the opposite
// side until it is filled or nothing eligible crosses it. The trades it
// executed are returned in execution order; each was also emitted to the
// sink. Invalid orders are rejected before anything is appended.
func (b *OrderBook) Submit(o *Order) ([]*Trade, error) {
	if err := validate(o); err != nil {
		return nil, err
	}

	own := b.Collection(o.Side)
	opposite := b.Collection(o.Side.Opposite())

	o.claim()
	own.Append(o)
	b.accepted.Add(o.Quantity)
	o.ticket.Store(b.arrivals.Add(1))

	var trades []*Trade
	for {
		executed, waiting := b.match(o, opposite)
		trades = append(trades, executed...)
		o.release()
		if !waiting {
			break
		}
		// an earlier order that crosses us is still matching; let it rest
		// and try again
		runtime.Gosched()
		if !o.claim() {
			break
		}
	}

	if b.compactEvery > 0 && own.Appended()%b.compactEvery == 0 {
		b.Compact()
	}
	return trades, nil
}

// Compact unlinks filled orders from both sides
func (b *OrderBook) Compact() int {
	return b.bids.Compact() + b.asks.Compact()
}

// PriceLevel aggregates the live orders resting at one price
type PriceLevel struct {
	Price      decimal.Decimal
	Quantity   int64
	OrderCount int
}

// Depth aggregates live orders of one side by price, best price first.
// It reads without synchronising with submitters, so under load it is a
// close approximation rather than a point-in-time snapshot.
func (b *OrderBook) Depth(side SideType, maxLevels int) []PriceLevel {
	levels := make(map[string]*PriceLevel)
	for o := range b.Collection(side).Live() {
		rem := o.Remaining()
		if rem == 0 {
			continue
		}
		key := o.Price.String()
		lvl, ok := levels[key]
		if !ok {
			lvl = &PriceLevel{Price: o.Price}
			levels[key] = lvl
		}
		lvl.Quantity += rem
		lvl.OrderCount++
	}

	out := make([]PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, *lvl)
	}
	sort.Slice(out, func(i, j int) bool {
		if side == Buy {
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].Price.LessThan(out[j].Price)
	})
	if maxLevels > 0 && len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}

// Best returns the best price level of one side
func (b *OrderBook) Best(side SideType) (PriceLevel, bool) {
	levels := b.Depth(side, 1)
	if len(levels) == 0 {
		return PriceLevel{}, false
	}
	return levels[0], true
}

// BookStats is a point-in-time view of a book's counters
type BookStats struct {
	Instrument InstrumentID
	Symbol     string
	Trades     int64
	Volume     int64
	Accepted   int64
	LiveBids   int
	LiveAsks   int
	LinkedBids int
	LinkedAsks int
}

func countLive(c *OrderCollection) int {
	n := 0
	for range c.Live() {
		n++
	}
	return n
}

// Stats counts trades, volume and resting orders
func (b *OrderBook) Stats() BookStats {
	return BookStats{
		Instrument: b.instrument,
		Symbol:     b.symbol,
		Trades:     b.trades.Load(),
		Volume:     b.volume.Load(),
		Accepted:   b.accepted.Load(),
		LiveBids:   countLive(b.bids),
		LiveAsks:   countLive(b.asks),
		LinkedBids: b.bids.Len(),
		LinkedAsks: b.asks.Len(),
	}
}

// Audit checks quantity conservation: every accepted unit is either still
// resting or was consumed by a trade, and each traded unit consumes one unit
// from each side. Only meaningful while no submission is in flight.
func (b *OrderBook) Audit() error {
	var resting int64
	for o := range b.bids.All() {
		resting += o.Remaining()
	}
	for o := range b.asks.All() {
		resting += o.Remaining()
	}

	accepted := b.accepted.Load()
	volume := b.volume.Load()
	if accepted != resting+2*volume {
		return errors.Errorf("instrument %d: accepted %d != resting %d + 2*traded %d",
			b.instrument, accepted, resting, volume)
	}
	return nil
}
