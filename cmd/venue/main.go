package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/PxPatel/trading-venue/config"
	"github.com/PxPatel/trading-venue/internal/api/handlers"
	"github.com/PxPatel/trading-venue/internal/api/routes"
	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/publisher"
	"github.com/PxPatel/trading-venue/internal/simulation"
	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/storage/file"
	"github.com/PxPatel/trading-venue/internal/storage/kafka"
	"github.com/PxPatel/trading-venue/internal/storage/memory"
	"github.com/PxPatel/trading-venue/internal/storage/postgres"
	"github.com/PxPatel/trading-venue/internal/storage/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logger.SetMinLevel(level)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Venue exited with error", map[string]interface{}{
			"error": err,
		})
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info("Starting trading venue", map[string]interface{}{
		"version":     handlers.Version,
		"instruments": cfg.Engine.Instruments,
		"mode":        cfg.Engine.InstrumentMode,
	})

	tradeStore, closeStores := buildTradeStores(cfg)
	defer closeStores()

	bookOpts := []matching.BookOption{matching.WithCompactEvery(cfg.Engine.CompactEvery)}
	var dispatcher *publisher.Dispatcher
	if tradeStore != nil {
		dispatcher = publisher.NewDispatcher(tradeStore, publisher.Config{
			BufferSize:    cfg.Engine.TradeBufferSize,
			BatchSize:     cfg.Engine.TradeBatchSize,
			FlushInterval: cfg.Engine.TradeFlushInterval,
		})
		// Runs before closeStores so the last batch reaches every store
		defer dispatcher.Close()
		bookOpts = append(bookOpts, matching.WithTradeSink(dispatcher))
	}

	symbols := simulation.Tickers(cfg.Engine.SymbolPrefix, cfg.Engine.Instruments)
	registry, err := buildRegistry(cfg, symbols, bookOpts...)
	if err != nil {
		return err
	}

	var orderStore storage.OrderStore
	var engineOpts []matching.EngineOption
	if cfg.Memory.Enabled {
		orders := memory.NewOrderStore(cfg.Memory.MaxOrders)
		orderStore = orders
		engineOpts = append(engineOpts, matching.WithOrderRecorder(orders))
	}
	engine := matching.NewEngine(registry, engineOpts...)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Engine.OrderCleanupEnabled {
		g.Go(func() error {
			engine.RunCompactor(gctx, cfg.Engine.OrderCleanupInterval)
			return nil
		})
	}

	if cfg.Server.Enabled {
		holder := handlers.NewEngineHolder(engine, tradeStore, orderStore, dispatcher)
		g.Go(func() error {
			return serve(gctx, cfg.Server, routes.SetupRoutes(holder))
		})
	}

	g.Go(func() error {
		report, err := simulation.Run(gctx, engine, symbols, simulationParams(cfg.Simulation))
		report.Log()
		if err != nil {
			return errors.Wrap(err, "simulation failed")
		}
		if report.AuditErr != nil {
			return report.AuditErr
		}
		if !cfg.Server.Enabled && !cfg.Engine.OrderCleanupEnabled {
			return nil
		}
		// Keep the monitor up until a signal arrives
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := engine.Stats()
	logger.Info("Trading venue stopped", map[string]interface{}{
		"submitted": stats.Submitted,
		"trades":    stats.Trades,
	})
	return nil
}

func buildRegistry(cfg *config.Config, symbols []string, opts ...matching.BookOption) (*matching.Registry, error) {
	if cfg.Engine.InstrumentMode == "bucket" {
		return matching.NewBucketRegistry(cfg.Engine.Instruments, opts...)
	}
	return matching.NewRegistry(symbols, opts...)
}

func simulationParams(c config.SimulationConfig) simulation.Params {
	return simulation.Params{
		Brokers:     c.Brokers,
		Iterations:  c.Iterations,
		BatchSize:   c.BatchSize,
		Seed:        c.Seed,
		MinQuantity: c.MinQuantity,
		MaxQuantity: c.MaxQuantity,
		MinPrice:    c.MinPrice,
		MaxPrice:    c.MaxPrice,
	}
}

// serve runs the monitoring API until ctx is cancelled, then shuts it down
// within the configured timeout
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":    cfg.Port,
			"address": fmt.Sprintf("http://localhost:%s", cfg.Port),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server failed to start")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server shutting down...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	logger.Info("Server exited successfully", nil)
	return nil
}

// buildTradeStores layers every enabled trade store behind one composite.
// A backend that cannot be reached is logged and skipped. The returned store
// is nil when no layer is enabled.
func buildTradeStores(cfg *config.Config) (storage.TradeStore, func()) {
	var stores []storage.TradeStore

	// L1: In-memory (fastest, serves the monitoring reads)
	if cfg.Memory.Enabled {
		stores = append(stores, memory.NewTradeStore(cfg.Memory.MaxTrades))
		logger.Info("In-memory storage layer enabled", map[string]interface{}{
			"max_orders": cfg.Memory.MaxOrders,
			"max_trades": cfg.Memory.MaxTrades,
		})
	}

	// L2: Redis recent-trade cache
	if cfg.Redis.Enabled {
		store, err := redis.NewTradeStore(redis.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			MaxTrades:    cfg.Redis.MaxTrades,
			TradesKey:    cfg.Redis.TradesKey,
		})
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without trade cache", map[string]interface{}{
				"error": err,
			})
		} else {
			stores = append(stores, store)
			logger.Info("Redis cache connected successfully", map[string]interface{}{
				"host": cfg.Redis.Host,
				"port": cfg.Redis.Port,
			})
		}
	}

	// L3: PostgreSQL trade history
	if cfg.Database.Enabled {
		store, err := postgres.NewTradeStore(postgres.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without trade history", map[string]interface{}{
				"error": err,
			})
		} else {
			stores = append(stores, store)
			logger.Info("PostgreSQL connected successfully", map[string]interface{}{
				"host":     cfg.Database.Host,
				"database": cfg.Database.Name,
			})
		}
	}

	// L4: Kafka trade feed
	if cfg.Kafka.Enabled {
		store, err := kafka.NewTradeStore(kafka.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			logger.Warn("Failed to create Kafka producer, continuing without trade feed", map[string]interface{}{
				"error": err,
			})
		} else {
			stores = append(stores, store)
			logger.Info("Kafka trade feed enabled", map[string]interface{}{
				"brokers": cfg.Kafka.Brokers,
				"topic":   cfg.Kafka.Topic,
			})
		}
	}

	// L5: File audit log
	if cfg.Engine.TradeLogPath != "" {
		store, err := file.NewTradeStore(cfg.Engine.TradeLogPath)
		if err != nil {
			logger.Warn("Failed to open trade log", map[string]interface{}{
				"path":  cfg.Engine.TradeLogPath,
				"error": err,
			})
		} else {
			stores = append(stores, store)
			logger.Info("Trade file log enabled", map[string]interface{}{
				"path": cfg.Engine.TradeLogPath,
			})
		}
	}

	logger.Info("Storage layers initialized", map[string]interface{}{
		"trade_layers": len(stores),
	})

	closeAll := func() {
		var err error
		for _, store := range stores {
			err = multierr.Append(err, store.Close())
		}
		if err != nil {
			logger.Error("Failed to close trade stores", map[string]interface{}{
				"error": err,
			})
		}
	}

	switch len(stores) {
	case 0:
		return nil, closeAll
	case 1:
		return stores[0], closeAll
	default:
		return storage.NewCompositeTradeStore(stores...), closeAll
	}
}
