package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/trading-venue/internal/types"
)

func TestNewOrder(t *testing.T) {
	o := NewOrder(7, 3, "TICKER3", Buy, px("50.25"), 100)

	assert.Equal(t, uint64(7), o.ID)
	assert.Equal(t, InstrumentID(3), o.Instrument)
	assert.Equal(t, int64(100), o.Remaining())
	assert.Equal(t, int64(0), o.Filled())
	assert.Equal(t, types.Open, o.Status())
	assert.False(t, o.claimed())
	assert.False(t, o.TimeStamp.IsZero())
}

func TestOrderStatusTransitions(t *testing.T) {
	o := NewOrder(1, 0, "X", Sell, px("10"), 10)

	require.Equal(t, int64(4), o.take(4))
	assert.Equal(t, types.PartiallyFilled, o.Status())
	assert.Equal(t, int64(6), o.Remaining())
	assert.Equal(t, int64(4), o.Filled())

	require.Equal(t, int64(6), o.take(100))
	assert.Equal(t, types.Filled, o.Status())
	assert.True(t, o.IsFilled())

	assert.Equal(t, int64(0), o.take(1), "filled order yields nothing")
	assert.Equal(t, int64(0), o.Remaining())
}

func TestOrderClaimBlocksTake(t *testing.T) {
	o := NewOrder(1, 0, "X", Buy, px("10"), 10)

	require.True(t, o.claim())
	assert.True(t, o.claimed())
	assert.Equal(t, int64(0), o.take(5))
	assert.Equal(t, int64(10), o.Remaining())

	o.consume(3)
	assert.Equal(t, int64(7), o.Remaining())
	assert.True(t, o.claimed(), "consume keeps the claim")

	o.release()
	assert.False(t, o.claimed())
	assert.Equal(t, int64(5), o.take(5))
	assert.Equal(t, int64(2), o.Remaining())
}

func TestOrderClaimFilled(t *testing.T) {
	o := NewOrder(1, 0, "X", Buy, px("10"), 1)
	require.Equal(t, int64(1), o.take(1))
	assert.False(t, o.claim())
}

func TestOrderConsumeTooMuchPanics(t *testing.T) {
	o := NewOrder(1, 0, "X", Buy, px("10"), 2)
	require.True(t, o.claim())
	assert.Panics(t, func() { o.consume(3) })
}

func TestCrosses(t *testing.T) {
	tests := []struct {
		name    string
		buy     string
		sell    string
		crosses bool
	}{
		{"buy above sell", "50.00", "45.00", true},
		{"equal prices", "20.00", "20.00", true},
		{"buy below sell", "19.99", "20.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := NewOrder(1, 0, "X", Buy, px(tt.buy), 1)
			sell := NewOrder(2, 0, "X", Sell, px(tt.sell), 1)
			assert.Equal(t, tt.crosses, buy.Crosses(sell))
			assert.Equal(t, tt.crosses, sell.Crosses(buy))
		})
	}

	a := NewOrder(1, 0, "X", Buy, px("10"), 1)
	b := NewOrder(2, 0, "X", Buy, px("10"), 1)
	assert.False(t, a.Crosses(b), "same side never crosses")
}

func TestBetterThan(t *testing.T) {
	lowAsk := NewOrder(1, 0, "X", Sell, px("10"), 1)
	highAsk := NewOrder(2, 0, "X", Sell, px("11"), 1)
	assert.True(t, lowAsk.betterThan(highAsk))
	assert.False(t, highAsk.betterThan(lowAsk))

	highBid := NewOrder(3, 0, "X", Buy, px("11"), 1)
	lowBid := NewOrder(4, 0, "X", Buy, px("10"), 1)
	assert.True(t, highBid.betterThan(lowBid))

	early := NewOrder(5, 0, "X", Buy, px("10"), 1)
	late := NewOrder(6, 0, "X", Buy, px("10"), 1)
	early.Sequence, late.Sequence = 1, 2
	assert.True(t, early.betterThan(late))
	assert.False(t, late.betterThan(early))
}
