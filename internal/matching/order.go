package matching

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PxPatel/trading-venue/internal/types"
)

// Re-export types for callers that only import matching
type (
	SideType     = types.SideType
	InstrumentID = types.InstrumentID
	OrderStatus  = types.OrderStatus
	Trade        = types.Trade
)

const (
	NoActionSide = types.NoActionSide
	Buy          = types.Buy
	Sell         = types.Sell
)

// claimBit marks an order whose submitter is currently running the matcher
// with it. The remaining quantity lives in the bits above it.
const claimBit uint64 = 1

func pack(remaining int64, claimed bool) uint64 {
	s := uint64(remaining) << 1
	if claimed {
		s |= claimBit
	}
	return s
}

func unpack(s uint64) (int64, bool) {
	return int64(s >> 1), s&claimBit != 0
}

// Order is a limit order. Everything except the remaining quantity is
// immutable once the order is appended to a collection.
type Order struct {
	ID         uint64
	Instrument InstrumentID
	Symbol     string
	Side       SideType
	Price      decimal.Decimal
	Quantity   int64
	Sequence   uint64 // arrival order within (instrument, side)
	TimeStamp  time.Time

	state atomic.Uint64

	// book-wide arrival ticket, stored after the order becomes visible.
	// Zero means not assigned yet.
	ticket atomic.Uint64
}

// NewOrder creates an open, unclaimed order
func NewOrder(id uint64, instrument InstrumentID, symbol string, side SideType, price decimal.Decimal, quantity int64) *Order {
	o := &Order{
		ID:         id,
		Instrument: instrument,
		Symbol:     symbol,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		TimeStamp:  time.Now(),
	}
	if quantity > 0 {
		o.state.Store(pack(quantity, false))
	}
	return o
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() int64 {
	rem, _ := unpack(o.state.Load())
	return rem
}

// Filled returns the quantity traded so far
func (o *Order) Filled() int64 {
	return o.Quantity - o.Remaining()
}

func (o *Order) IsFilled() bool {
	return o.Remaining() == 0
}

// Status derives Open/PartiallyFilled/Filled from the remaining quantity
func (o *Order) Status() OrderStatus {
	switch rem := o.Remaining(); {
	case rem == 0:
		return types.Filled
	case rem < o.Quantity:
		return types.PartiallyFilled
	default:
		return types.Open
	}
}

// Crosses reports whether o and other can trade at their limit prices.
func (o *Order) Crosses(other *Order) bool {
	if o.Side == other.Side {
		return false
	}
	if o.Side == Buy {
		return o.Price.GreaterThanOrEqual(other.Price)
	}
	return o.Price.LessThanOrEqual(other.Price)
}

// betterThan reports whether o has priority over other as a resting
// counterparty: better price first, then earlier arrival.
func (o *Order) betterThan(other *Order) bool {
	if cmp := o.Price.Cmp(other.Price); cmp != 0 {
		if o.Side == Buy {
			return cmp > 0
		}
		return cmp < 0
	}
	return o.Sequence < other.Sequence
}

// claim sets the claim bit on behalf of the order's own submitter. Only the
// submitter ever sets it, so the loop retries only when a concurrent take
// changed the remaining quantity. Returns false once the order is filled.
func (o *Order) claim() bool {
	for {
		s := o.state.Load()
		rem, claimed := unpack(s)
		if claimed {
			return true
		}
		if rem == 0 {
			return false
		}
		if o.state.CompareAndSwap(s, pack(rem, true)) {
			return true
		}
	}
}

func (o *Order) release() {
	for {
		s := o.state.Load()
		if s&claimBit == 0 {
			return
		}
		if o.state.CompareAndSwap(s, s&^claimBit) {
			return
		}
	}
}

func (o *Order) claimed() bool {
	return o.state.Load()&claimBit != 0
}

// take removes up to want units from a resting order that is not claimed.
// A failed CAS means another aggressor got there first; the fresh value is
// re-read and the quantity recomputed from it. Returns 0 when the order is
// filled or its submitter has claimed it.
func (o *Order) take(want int64) int64 {
	for {
		s := o.state.Load()
		rem, claimed := unpack(s)
		if claimed || rem == 0 {
			return 0
		}
		q := min(want, rem)
		if o.state.CompareAndSwap(s, pack(rem-q, false)) {
			return q
		}
	}
}

// consume decrements a claimed order on behalf of its submitter.
func (o *Order) consume(q int64) {
	for {
		s := o.state.Load()
		rem, claimed := unpack(s)
		if q > rem {
			// only the claim holder decrements a claimed order, and it never
			// asks for more than it read
			panic("matching: consume exceeds remaining quantity")
		}
		if o.state.CompareAndSwap(s, pack(rem-q, claimed)) {
			return
		}
	}
}
