package file

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/PxPatel/trading-venue/internal/types"
)

// TradeStore appends trades to a JSON-lines log. Read operations return
// empty; use it behind a CompositeTradeStore with a memory store for reads.
type TradeStore struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewTradeStore opens (or creates) the trade log for appending
func NewTradeStore(filePath string) (*TradeStore, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open trade log %s", filePath)
	}

	w := bufio.NewWriter(f)
	return &TradeStore{
		file:    f,
		writer:  w,
		encoder: json.NewEncoder(w),
	}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

// SaveBatch writes the trades, one JSON object per line, and flushes
func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return errors.Wrapf(err, "failed to encode trade %s", trade.TradeID)
		}
	}
	return errors.Wrap(s.writer.Flush(), "failed to flush trade log")
}

func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	return []*types.Trade{}, nil
}

func (s *TradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return nil
	}
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "failed to flush trade log")
	}
	return errors.Wrap(closeErr, "failed to close trade log")
}
