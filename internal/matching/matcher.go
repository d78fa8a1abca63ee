package matching

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// match runs the price-time priority loop for a claimed aggressor. waiting
// reports that a crossing order which arrived earlier is itself still
// matching, so the aggressor has to look again once that one settles.
func (b *OrderBook) match(o *Order, opposite *OrderCollection) (trades []*Trade, waiting bool) {
	for {
		remaining := o.Remaining()
		if remaining == 0 {
			return trades, false
		}

		best, blocked := bestCandidate(o, opposite)
		if best == nil {
			return trades, blocked
		}

		q := best.take(remaining)
		if q == 0 {
			// filled or re-claimed since the scan
			continue
		}
		o.consume(q)

		trades = append(trades, b.settle(o, best, q))
	}
}

// bestCandidate scans the opposite side for the unclaimed crossing order with
// the best price, breaking ties by arrival sequence. A claimed crossing order
// is skipped; if it arrived before o (or has no ticket yet) o is responsible
// for coming back to it, reported through waiting.
func bestCandidate(o *Order, opposite *OrderCollection) (best *Order, waiting bool) {
	mine := o.ticket.Load()
	for c := range opposite.All() {
		rem, claimed := unpack(c.state.Load())
		if rem == 0 || !o.Crosses(c) {
			continue
		}
		if claimed {
			if t := c.ticket.Load(); t == 0 || t < mine {
				waiting = true
			}
			continue
		}
		if best == nil || c.betterThan(best) {
			best = c
		}
	}
	return best, waiting
}

// settle records a fill of q between the aggressor and the passive order,
// whose price is the execution price, and emits it.
func (b *OrderBook) settle(aggressor, passive *Order, q int64) *Trade {
	trade := &Trade{
		TradeID:       ulid.Make().String(),
		Instrument:    b.instrument,
		Symbol:        aggressor.Symbol,
		AggressorSide: aggressor.Side,
		Price:         passive.Price,
		Quantity:      q,
		Timestamp:     time.Now(),
	}
	if aggressor.Side == Buy {
		trade.BuyOrderID = aggressor.ID
		trade.SellOrderID = passive.ID
	} else {
		trade.BuyOrderID = passive.ID
		trade.SellOrderID = aggressor.ID
	}

	b.trades.Add(1)
	b.volume.Add(q)

	if b.sink != nil {
		b.sink.Emit(trade)
	}
	return trade
}
