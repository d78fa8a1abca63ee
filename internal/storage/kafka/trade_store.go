package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/PxPatel/trading-venue/internal/types"
)

// KafkaConfig holds producer configuration for the trade topic
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// TradeStore publishes trades to a Kafka topic, keyed by symbol so trades of
// one instrument keep their order within a partition. It is write-only.
type TradeStore struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewTradeStore creates a producer for the trade topic. Connections are
// established lazily on the first write.
func NewTradeStore(cfg KafkaConfig) (*TradeStore, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &TradeStore{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: batchTimeout,
		},
		timeout: timeout,
	}, nil
}

func tradeMessage(trade *types.Trade) (kafka.Message, error) {
	value, err := json.Marshal(trade)
	if err != nil {
		return kafka.Message{}, errors.Wrapf(err, "failed to encode trade %s", trade.TradeID)
	}
	return kafka.Message{
		Key:   []byte(trade.Symbol),
		Value: value,
		Time:  trade.Timestamp,
		Headers: []kafka.Header{
			{Key: "trade_id", Value: []byte(trade.TradeID)},
		},
	}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, trade := range trades {
		msg, err := tradeMessage(trade)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrapf(err, "failed to publish %d trades", len(trades))
	}
	return nil
}

// GetRecent returns empty: the topic is consumed elsewhere
func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	return []*types.Trade{}, nil
}

func (s *TradeStore) Close() error {
	return s.writer.Close()
}
