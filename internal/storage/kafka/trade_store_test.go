package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/types"
)

var _ storage.TradeStore = (*TradeStore)(nil)

func TestNewTradeStoreValidates(t *testing.T) {
	_, err := NewTradeStore(KafkaConfig{Topic: "trades"})
	assert.Error(t, err)

	_, err = NewTradeStore(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	s, err := NewTradeStore(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "trades"})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, s.timeout)
	assert.Equal(t, "trades", s.writer.Topic)
	assert.NoError(t, s.Close())
}

func TestTradeMessage(t *testing.T) {
	at := time.Now().UTC()
	msg, err := tradeMessage(&types.Trade{
		TradeID:   "01C",
		Symbol:    "TICKER9",
		Price:     decimal.RequireFromString("77.7"),
		Quantity:  3,
		Timestamp: at,
	})
	require.NoError(t, err)

	assert.Equal(t, "TICKER9", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "01C", string(msg.Headers[0].Value))

	var decoded types.Trade
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, int64(3), decoded.Quantity)
	assert.True(t, decoded.Price.Equal(decimal.RequireFromString("77.7")))
}

func TestSaveBatchEmpty(t *testing.T) {
	s, err := NewTradeStore(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "trades"})
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.SaveBatch(nil))
	got, err := s.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Runs against a live cluster only when TEST_KAFKA_BROKERS is set
func TestTradeStoreLive(t *testing.T) {
	brokers := os.Getenv("TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TEST_KAFKA_BROKERS not set")
	}
	topic := fmt.Sprintf("trades-test-%d", time.Now().UnixNano())
	addrs := strings.Split(brokers, ",")

	conn, err := kafka.Dial("tcp", addrs[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
	conn.Close()

	s, err := NewTradeStore(KafkaConfig{Brokers: addrs, Topic: topic})
	require.NoError(t, err)
	require.NoError(t, s.Save(&types.Trade{TradeID: "live", Symbol: "TICKER0", Price: decimal.NewFromInt(1), Quantity: 1, Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: addrs, Topic: topic})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TICKER0", string(msg.Key))
}
