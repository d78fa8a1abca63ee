package simulation

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/matching"
)

// yieldsPerBatch is how often a broker yields the processor between batches
const yieldsPerBatch = 100

// Report summarises a simulation run
type Report struct {
	Brokers   int
	Submitted int64
	Trades    int64
	Volume    int64
	Duration  time.Duration
	Engine    matching.Stats
	AuditErr  error
}

// Log writes the report at INFO, or at ERROR when the audit failed
func (r Report) Log() {
	fields := map[string]interface{}{
		"brokers":     r.Brokers,
		"submitted":   r.Submitted,
		"trades":      r.Trades,
		"volume":      r.Volume,
		"duration_ms": r.Duration.Milliseconds(),
		"resting":     r.Engine.Resting,
		"linked":      r.Engine.Linked,
		"rejected":    r.Engine.Rejected,
		"instruments": r.Engine.Instruments,
	}
	if r.AuditErr != nil {
		fields["error"] = r.AuditErr
		logger.Error("Simulation completed with audit failure", fields)
		return
	}
	logger.Info("Simulation completed", fields)
}

// Run starts one goroutine per broker, each submitting Iterations batches of
// BatchSize random orders, and waits for all of them. The first submission
// error cancels the remaining brokers. The audit runs once every broker
// has returned.
func Run(ctx context.Context, engine *matching.Engine, symbols []string, params Params) (Report, error) {
	if err := params.Validate(); err != nil {
		return Report{}, err
	}
	if len(symbols) == 0 {
		return Report{}, errors.New("simulation needs at least one symbol")
	}

	logger.Info("Starting simulation", map[string]interface{}{
		"brokers":    params.Brokers,
		"iterations": params.Iterations,
		"batch_size": params.BatchSize,
		"symbols":    len(symbols),
		"seed":       params.Seed,
	})

	var submitted, trades, volume atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < params.Brokers; id++ {
		g.Go(func() error {
			b := broker{
				id:     id,
				engine: engine,
				gen:    NewGenerator(params, uint64(id), symbols),
			}
			n, t, v, err := b.run(gctx, params.Iterations, params.BatchSize)
			submitted.Add(n)
			trades.Add(t)
			volume.Add(v)
			return err
		})
	}
	err := g.Wait()

	report := Report{
		Brokers:   params.Brokers,
		Submitted: submitted.Load(),
		Trades:    trades.Load(),
		Volume:    volume.Load(),
		Duration:  time.Since(start),
		Engine:    engine.Stats(),
		AuditErr:  engine.Audit(),
	}
	return report, err
}

type broker struct {
	id     int
	engine *matching.Engine
	gen    *Generator
}

func (b broker) run(ctx context.Context, iterations, batchSize int) (submitted, trades, volume int64, err error) {
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return submitted, trades, volume, err
		}
		for j := 0; j < batchSize; j++ {
			req := b.gen.Next()
			exec, err := b.engine.SubmitSymbol(req.Side, req.Symbol, req.Quantity, req.Price)
			if err != nil {
				return submitted, trades, volume, errors.Wrapf(err, "broker %d", b.id)
			}
			submitted++
			for _, t := range exec.Trades {
				trades++
				volume += t.Quantity
			}
		}
		for range yieldsPerBatch {
			runtime.Gosched()
		}
	}

	logger.Info("Broker completed activities", map[string]interface{}{
		"broker":    b.id,
		"submitted": submitted,
		"trades":    trades,
	})
	return submitted, trades, volume, nil
}
