package postgres

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/trading-venue/internal/storage"
	"github.com/PxPatel/trading-venue/internal/types"
)

var _ storage.TradeStore = (*TradeStore)(nil)

func TestConnString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		Database: "venue",
		User:     "venue",
		Password: "secret",
		SSLMode:  "disable",
		MaxConns: 8,
	}
	assert.Equal(t,
		"host=db port=5432 dbname=venue user=venue password=secret sslmode=disable pool_max_conns=8",
		cfg.ConnString())
}

func TestInsertArgs(t *testing.T) {
	at := time.Now()
	args := insertArgs(&types.Trade{
		TradeID:       "01B",
		Instrument:    3,
		Symbol:        "TICKER3",
		BuyOrderID:    7,
		SellOrderID:   8,
		AggressorSide: types.Sell,
		Price:         decimal.RequireFromString("19.50"),
		Quantity:      4,
		Timestamp:     at,
	})

	require.Len(t, args, 9)
	assert.Equal(t, 3, args[1])
	assert.Equal(t, int64(7), args[3])
	assert.Equal(t, "SELL", args[5])
	assert.Equal(t, "19.5", args[6])
	assert.Equal(t, at, args[8])
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, initialSchema, "CREATE TABLE IF NOT EXISTS trades")
	assert.Contains(t, initialSchema, "NUMERIC")
}

// Runs against a live database only when TEST_DATABASE_URL is set
func TestTradeStoreLive(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s, err := NewTradeStoreFromURL(url)
	require.NoError(t, err)
	defer s.Close()

	prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
	base := time.Now().Add(time.Hour)
	var batch []*types.Trade
	for i := 0; i < 3; i++ {
		batch = append(batch, &types.Trade{
			TradeID:       fmt.Sprintf("%s%d", prefix, i),
			Instrument:    1,
			Symbol:        "TICKER1",
			BuyOrderID:    uint64(i + 1),
			SellOrderID:   uint64(i + 100),
			AggressorSide: types.Buy,
			Price:         decimal.RequireFromString("12.34"),
			Quantity:      int64(i + 1),
			Timestamp:     base.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, s.SaveBatch(batch))
	require.NoError(t, s.Save(batch[0]), "duplicate trade IDs are ignored")

	got, err := s.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, prefix+"2", got[0].TradeID)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("12.34")))
	assert.Equal(t, types.Buy, got[0].AggressorSide)
}
