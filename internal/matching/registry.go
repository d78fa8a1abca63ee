package matching

import (
	"fmt"

	"github.com/pkg/errors"
)

// Registry maps instrument symbols to their order books. It is built once,
// before any submission, and never changes afterwards, so lookups need no
// synchronisation.
type Registry struct {
	books   []*OrderBook
	symbols []string

	// nil for a bucket registry
	index map[string]InstrumentID
}

// NewRegistry builds one book per symbol. Symbols are matched by identity, so
// two distinct instruments never share a book.
func NewRegistry(symbols []string, opts ...BookOption) (*Registry, error) {
	if len(symbols) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "instrument table is empty")
	}

	r := &Registry{
		books:   make([]*OrderBook, len(symbols)),
		symbols: make([]string, len(symbols)),
		index:   make(map[string]InstrumentID, len(symbols)),
	}
	for i, symbol := range symbols {
		if symbol == "" {
			return nil, errors.Wrapf(ErrInvalidInput, "empty symbol at position %d", i)
		}
		if _, exists := r.index[symbol]; exists {
			return nil, errors.Wrapf(ErrDuplicateInstrument, "symbol %q", symbol)
		}
		id := InstrumentID(i)
		r.index[symbol] = id
		r.symbols[i] = symbol
		r.books[i] = NewOrderBook(id, symbol, opts...)
	}
	return r, nil
}

// NewBucketRegistry builds n books addressed by BucketIndex. Distinct symbols
// whose bytes sum to the same value modulo n share a book and match against
// each other.
func NewBucketRegistry(n int, opts ...BookOption) (*Registry, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "bucket count %d must be positive", n)
	}

	r := &Registry{
		books:   make([]*OrderBook, n),
		symbols: make([]string, n),
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("bucket-%d", i)
		r.symbols[i] = name
		r.books[i] = NewOrderBook(InstrumentID(i), name, opts...)
	}
	return r, nil
}

// BucketIndex is the sum of the symbol's bytes modulo n
func BucketIndex(symbol string, n int) int {
	total := 0
	for i := 0; i < len(symbol); i++ {
		total += int(symbol[i])
	}
	return total % n
}

// Resolve maps a symbol to its instrument. It has no side effects.
func (r *Registry) Resolve(symbol string) (InstrumentID, error) {
	if r.index == nil {
		if symbol == "" {
			return 0, errors.Wrap(ErrUnknownInstrument, "empty symbol")
		}
		return InstrumentID(BucketIndex(symbol, len(r.books))), nil
	}
	id, ok := r.index[symbol]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownInstrument, "symbol %q", symbol)
	}
	return id, nil
}

// Book returns the order book of an instrument
func (r *Registry) Book(id InstrumentID) (*OrderBook, error) {
	if id < 0 || int(id) >= len(r.books) {
		return nil, errors.Wrapf(ErrUnknownInstrument, "instrument %d", id)
	}
	return r.books[id], nil
}

// Symbol returns the symbol a book was registered under. Bucket books are
// named bucket-<n>.
func (r *Registry) Symbol(id InstrumentID) string {
	if id < 0 || int(id) >= len(r.symbols) {
		return ""
	}
	return r.symbols[id]
}

// Len is the number of books
func (r *Registry) Len() int {
	return len(r.books)
}

// Books returns every book in instrument order
func (r *Registry) Books() []*OrderBook {
	return r.books
}

// Keyed reports whether symbols are matched by identity
func (r *Registry) Keyed() bool {
	return r.index != nil
}
