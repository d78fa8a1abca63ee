package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/PxPatel/trading-venue/internal/types"
)

// DefaultTradesKey is the sorted set holding recent trades
const DefaultTradesKey = "trades:recent"

// TradeStore caches the most recent trades in a Redis sorted set scored by
// execution time, trimming the oldest beyond maxTrades.
type TradeStore struct {
	client    *redis.Client
	key       string
	maxTrades int
}

// NewTradeStore connects to Redis and creates a trade store
func NewTradeStore(cfg RedisConfig) (*TradeStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewTradeStoreWithClient(client, cfg.TradesKey, cfg.MaxTrades), nil
}

// NewTradeStoreWithClient wraps an existing client. An empty key selects
// DefaultTradesKey.
func NewTradeStoreWithClient(client *redis.Client, key string, maxTrades int) *TradeStore {
	if key == "" {
		key = DefaultTradesKey
	}
	return &TradeStore{
		client:    client,
		key:       key,
		maxTrades: maxTrades,
	}
}

func tradeMember(trade *types.Trade) (redis.Z, error) {
	data, err := json.Marshal(trade)
	if err != nil {
		return redis.Z{}, errors.Wrapf(err, "failed to encode trade %s", trade.TradeID)
	}
	return redis.Z{
		Score:  float64(trade.Timestamp.UnixNano()),
		Member: data,
	}, nil
}

func decodeTrades(members []string) []*types.Trade {
	trades := make([]*types.Trade, 0, len(members))
	for _, data := range members {
		var trade types.Trade
		if err := json.Unmarshal([]byte(data), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}
	return trades
}

func (s *TradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	members := make([]redis.Z, 0, len(trades))
	for _, trade := range trades {
		z, err := tradeMember(trade)
		if err != nil {
			return err
		}
		members = append(members, z)
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, s.key, members...)
	if s.maxTrades > 0 {
		// Trim to keep only last N trades
		pipe.ZRemRangeByRank(ctx, s.key, 0, int64(-s.maxTrades-1))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to store %d trades", len(trades))
	}
	return nil
}

// GetRecent returns up to limit trades, newest first
func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	results, err := s.client.ZRevRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read recent trades")
	}
	return decodeTrades(results), nil
}

func (s *TradeStore) Close() error {
	return s.client.Close()
}
