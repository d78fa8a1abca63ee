package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/trading-venue/internal/logger"
	"github.com/PxPatel/trading-venue/internal/types"
)

const (
	insertTradeSQL = `
		INSERT INTO trades (trade_id, instrument, symbol, buy_order_id, sell_order_id,
		                    aggressor_side, price, quantity, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)
		ON CONFLICT (trade_id) DO NOTHING
	`

	recentTradesSQL = `
		SELECT trade_id, instrument, symbol, buy_order_id, sell_order_id,
		       aggressor_side, price::text, quantity, executed_at
		FROM trades
		ORDER BY executed_at DESC, id DESC
		LIMIT $1
	`
)

// TradeStore persists trades to PostgreSQL
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore connects, runs migrations and creates a trade store
func NewTradeStore(cfg PostgresConfig) (*TradeStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newTradeStore(ctx, pool)
}

// NewTradeStoreFromURL is NewTradeStore for a postgres:// URL
func NewTradeStoreFromURL(url string) (*TradeStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := newPool(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newTradeStore(ctx, pool)
}

func newTradeStore(ctx context.Context, pool *pgxpool.Pool) (*TradeStore, error) {
	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &TradeStore{pool: pool}, nil
}

func insertArgs(trade *types.Trade) []any {
	return []any{
		trade.TradeID,
		int(trade.Instrument),
		trade.Symbol,
		int64(trade.BuyOrderID),
		int64(trade.SellOrderID),
		trade.AggressorSide.String(),
		trade.Price.String(),
		trade.Quantity,
		trade.Timestamp,
	}
}

func (s *TradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.pool.Exec(ctx, insertTradeSQL, insertArgs(trade)...); err != nil {
		return errors.Wrapf(err, "failed to insert trade %s", trade.TradeID)
	}
	return nil
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(insertTradeSQL, insertArgs(trade)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range trades {
		if _, err := results.Exec(); err != nil {
			return errors.Wrapf(err, "batch insert failed at index %d", i)
		}
	}
	return nil
}

func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, recentTradesSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query recent trades")
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		var (
			trade      types.Trade
			instrument int
			buyID      int64
			sellID     int64
			side       string
			price      string
		)
		err := rows.Scan(&trade.TradeID, &instrument, &trade.Symbol, &buyID, &sellID,
			&side, &price, &trade.Quantity, &trade.Timestamp)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan trade")
		}

		trade.Price, err = decimal.NewFromString(price)
		if err != nil {
			logger.Warn("Skipping trade with unparsable price", map[string]interface{}{
				"trade_id": trade.TradeID,
				"price":    price,
			})
			continue
		}
		trade.Instrument = types.InstrumentID(instrument)
		trade.BuyOrderID = uint64(buyID)
		trade.SellOrderID = uint64(sellID)
		trade.AggressorSide = types.ParseSide(side)
		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read recent trades")
	}

	return trades, nil
}

func (s *TradeStore) Close() error {
	s.pool.Close()
	return nil
}
