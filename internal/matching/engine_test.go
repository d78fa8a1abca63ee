package matching

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/trading-venue/internal/types"
)

func TestEngineSubmitOrder(t *testing.T) {
	engine, sink, _ := newTestEngine(t, "TICKER0", "TICKER1")

	id, err := engine.ResolveInstrument("TICKER1")
	require.NoError(t, err)

	buy, err := engine.SubmitOrder(Buy, id, 100, px("50.00"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), buy.Order.ID)
	assert.Equal(t, "TICKER1", buy.Order.Symbol)
	assert.Empty(t, buy.Trades)

	sell, err := engine.SubmitOrder(Sell, id, 60, px("45.00"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), sell.Order.ID)
	require.Len(t, sell.Trades, 1)
	assert.Equal(t, id, sell.Trades[0].Instrument)
	assert.Len(t, sink.Trades(), 1)

	// the handle returned for the buy tracks later fills
	assert.Equal(t, types.PartiallyFilled, buy.Order.Status())
	assert.Equal(t, int64(40), buy.Order.Remaining())

	stats := engine.Stats()
	assert.Equal(t, 2, stats.Instruments)
	assert.Equal(t, int64(2), stats.Submitted)
	assert.Equal(t, int64(1), stats.Trades)
	assert.Equal(t, int64(60), stats.Volume)
	assert.Equal(t, 1, stats.Resting)
	require.NoError(t, engine.Audit())
}

func TestEngineInstrumentsAreIsolated(t *testing.T) {
	engine, _, _ := newTestEngine(t, "AAA", "BBB")

	_, err := engine.SubmitSymbol(Buy, "AAA", 10, px("10"))
	require.NoError(t, err)
	exec, err := engine.SubmitSymbol(Sell, "BBB", 10, px("10"))
	require.NoError(t, err)
	assert.Empty(t, exec.Trades, "orders on different instruments never match")
}

func TestEngineRejects(t *testing.T) {
	engine, sink, _ := newTestEngine(t, "TICKER0")

	_, err := engine.SubmitOrder(Buy, 0, 0, px("10"))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = engine.SubmitOrder(Sell, 0, 10, decimal.Zero)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = engine.SubmitOrder(Buy, 9, 10, px("10"))
	assert.True(t, errors.Is(err, ErrUnknownInstrument))

	_, err = engine.SubmitSymbol(Buy, "NOPE", 10, px("10"))
	assert.True(t, errors.Is(err, ErrUnknownInstrument))

	stats := engine.Stats()
	assert.Equal(t, int64(0), stats.Submitted)
	assert.Equal(t, int64(4), stats.Rejected)
	assert.Zero(t, stats.Linked)
	assert.Empty(t, sink.Trades())

	// rejected submissions do not consume order IDs
	exec, err := engine.SubmitOrder(Buy, 0, 1, px("10"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), exec.Order.ID)
}

func TestEngineOrderLookup(t *testing.T) {
	engine, _, _ := newTestEngine(t, "TICKER0")

	exec, err := engine.SubmitOrder(Sell, 0, 5, px("10"))
	require.NoError(t, err)

	found, err := engine.Order(exec.Order.ID)
	require.NoError(t, err)
	assert.Same(t, exec.Order, found)

	_, err = engine.SubmitOrder(Buy, 0, 2, px("10"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), found.Remaining())

	_, err = engine.Order(999)
	assert.True(t, errors.Is(err, ErrUnknownOrder))

	registry, err := NewRegistry([]string{"X"})
	require.NoError(t, err)
	_, err = NewEngine(registry).Order(1)
	assert.True(t, errors.Is(err, ErrUnknownOrder))
}

func TestEngineBucketMode(t *testing.T) {
	registry, err := NewBucketRegistry(16)
	require.NoError(t, err)
	engine := NewEngine(registry)

	_, err = engine.SubmitSymbol(Buy, "AB", 10, px("10"))
	require.NoError(t, err)
	exec, err := engine.SubmitSymbol(Sell, "BA", 10, px("10"))
	require.NoError(t, err)

	require.Len(t, exec.Trades, 1, "colliding symbols share a book")
	assert.Equal(t, "BA", exec.Trades[0].Symbol)
}

func TestEngineCompact(t *testing.T) {
	sink := &recordingSink{}
	registry, err := NewRegistry([]string{"AAA", "BBB"}, WithTradeSink(sink), WithCompactEvery(0))
	require.NoError(t, err)
	engine := NewEngine(registry)

	for _, symbol := range []string{"AAA", "BBB"} {
		_, err := engine.SubmitSymbol(Sell, symbol, 5, px("10"))
		require.NoError(t, err)
		_, err = engine.SubmitSymbol(Buy, symbol, 5, px("10"))
		require.NoError(t, err)
	}
	assert.Equal(t, 4, engine.Stats().Linked)
	assert.Equal(t, 4, engine.Compact())
	assert.Zero(t, engine.Stats().Linked)
}

func TestEngineRunCompactor(t *testing.T) {
	registry, err := NewRegistry([]string{"AAA"}, WithCompactEvery(0))
	require.NoError(t, err)
	engine := NewEngine(registry)

	_, err = engine.SubmitSymbol(Sell, "AAA", 5, px("10"))
	require.NoError(t, err)
	_, err = engine.SubmitSymbol(Buy, "AAA", 5, px("10"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.RunCompactor(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return engine.Stats().Linked == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("compactor did not stop")
	}
}

func TestEngineConcurrentConservation(t *testing.T) {
	const (
		workers   = 8
		perWorker = 400
	)
	symbols := []string{"TICKER0", "TICKER1", "TICKER2", "TICKER3"}
	engine, sink, recorder := newTestEngine(t, symbols...)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 42))
			for i := 0; i < perWorker; i++ {
				side := Buy
				if rng.IntN(2) == 1 {
					side = Sell
				}
				// a narrow band keeps most orders crossing
				price := decimal.New(int64(95+rng.IntN(11)), -1)
				symbol := symbols[rng.IntN(len(symbols))]
				_, err := engine.SubmitSymbol(side, symbol, int64(1+rng.IntN(50)), price)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	require.NoError(t, engine.Audit())

	stats := engine.Stats()
	assert.Equal(t, int64(workers*perWorker), stats.Submitted)
	assert.Positive(t, stats.Trades)

	trades := sink.Trades()
	assert.Len(t, trades, int(stats.Trades))

	traded := make(map[uint64]int64)
	for _, tr := range trades {
		buy, err := recorder.Get(tr.BuyOrderID)
		require.NoError(t, err)
		sell, err := recorder.Get(tr.SellOrderID)
		require.NoError(t, err)

		require.Positive(t, tr.Quantity)
		require.Equal(t, buy.Instrument, sell.Instrument)
		require.True(t, buy.Price.GreaterThanOrEqual(sell.Price),
			"trade %s: buy %s < sell %s", tr.TradeID, buy.Price, sell.Price)
		traded[buy.ID] += tr.Quantity
		traded[sell.ID] += tr.Quantity
	}

	for id := uint64(1); id <= uint64(workers*perWorker); id++ {
		o, err := recorder.Get(id)
		require.NoError(t, err)
		require.GreaterOrEqual(t, o.Remaining(), int64(0))
		require.Equal(t, o.Filled(), traded[id], "order %d", id)
		require.False(t, o.claimed(), "order %d left claimed", id)
	}

	for _, book := range engine.Registry().Books() {
		bid, hasBid := book.Best(Buy)
		ask, hasAsk := book.Best(Sell)
		if hasBid && hasAsk {
			assert.True(t, bid.Price.LessThan(ask.Price),
				fmt.Sprintf("%s crossed: bid %s ask %s", book.Symbol(), bid.Price, ask.Price))
		}
	}
}

func TestConcurrentCrossingAggressors(t *testing.T) {
	// every buy crosses every sell, so racing submitters have to settle
	// against each other rather than rest side by side
	for round := 0; round < 50; round++ {
		engine, _, _ := newTestEngine(t, "X")

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				side := Buy
				price := px("11")
				if i%2 == 1 {
					side, price = Sell, px("10")
				}
				_, err := engine.SubmitOrder(side, 0, 10, price)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		require.NoError(t, engine.Audit())
		stats := engine.Stats()
		assert.Equal(t, int64(80), stats.Volume, "round %d", round)
		assert.Zero(t, stats.Resting, "round %d", round)
	}
}
