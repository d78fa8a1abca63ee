package publisher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/types"
)

const (
	DefaultBufferSize    = 4096
	DefaultBatchSize     = 100
	DefaultFlushInterval = 100 * time.Millisecond
)

// Config tunes a Dispatcher. Zero values select the defaults.
type Config struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	return c
}

// Stats counts what happened to emitted trades
type Stats struct {
	Enqueued  int64
	Published int64
	Dropped   int64
	Failed    int64
}

// Dispatcher is the engine's trade sink. Emit never blocks the matcher: a
// trade goes into a bounded buffer, or is dropped and counted when the buffer
// is full. A background loop hands trades to the store in batches, flushing
// when a batch fills or the flush interval passes.
type Dispatcher struct {
	store storage.TradeStore
	cfg   Config

	mu     sync.RWMutex // guards closed against the channel close
	closed bool
	queue  chan *types.Trade
	wg     sync.WaitGroup

	enqueued    atomic.Int64
	published   atomic.Int64
	dropped     atomic.Int64
	failed      atomic.Int64
	warnedDrops atomic.Bool
}

// NewDispatcher starts the delivery loop
func NewDispatcher(store storage.TradeStore, cfg Config) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		store: store,
		cfg:   cfg,
		queue: make(chan *types.Trade, cfg.BufferSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Emit enqueues a trade for delivery
func (d *Dispatcher) Emit(trade *types.Trade) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(trade, "dispatcher closed")
		return
	}
	select {
	case d.queue <- trade:
		d.enqueued.Add(1)
	default:
		d.drop(trade, "buffer full")
	}
}

func (d *Dispatcher) drop(trade *types.Trade, reason string) {
	d.dropped.Add(1)
	if d.warnedDrops.CompareAndSwap(false, true) {
		logger.Warn("Dropping trades", map[string]interface{}{
			"reason":   reason,
			"trade_id": trade.TradeID,
			"buffer":   d.cfg.BufferSize,
		})
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*types.Trade, 0, d.cfg.BatchSize)
	for {
		select {
		case trade, ok := <-d.queue:
			if !ok {
				d.flush(batch)
				return
			}
			batch = append(batch, trade)
			if len(batch) >= d.cfg.BatchSize {
				d.flush(batch)
				batch = make([]*types.Trade, 0, d.cfg.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(batch)
				batch = make([]*types.Trade, 0, d.cfg.BatchSize)
			}
		}
	}
}

func (d *Dispatcher) flush(batch []*types.Trade) {
	if len(batch) == 0 {
		return
	}
	if err := d.store.SaveBatch(batch); err != nil {
		d.failed.Add(int64(len(batch)))
		logger.Error("Failed to store trade batch", map[string]interface{}{
			"trades": len(batch),
			"error":  err,
		})
		return
	}
	d.published.Add(int64(len(batch)))
}

// Stats returns the delivery counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Enqueued:  d.enqueued.Load(),
		Published: d.published.Load(),
		Dropped:   d.dropped.Load(),
		Failed:    d.failed.Load(),
	}
}

// Close stops accepting trades, delivers everything already buffered and
// waits for the loop to exit. It does not close the store.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()

	stats := d.Stats()
	logger.Info("Trade dispatcher stopped", map[string]interface{}{
		"enqueued":  stats.Enqueued,
		"published": stats.Published,
		"dropped":   stats.Dropped,
		"failed":    stats.Failed,
	})
}
