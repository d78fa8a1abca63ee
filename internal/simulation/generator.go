package simulation

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/trading-venue/internal/types"
)

// Params describes the simulated market activity
type Params struct {
	Brokers     int
	Iterations  int
	BatchSize   int
	Seed        uint64
	MinQuantity int64
	MaxQuantity int64
	MinPrice    float64
	MaxPrice    float64
}

// DefaultParams are five brokers submitting 200 batches of five orders
func DefaultParams() Params {
	return Params{
		Brokers:     5,
		Iterations:  200,
		BatchSize:   5,
		Seed:        12345,
		MinQuantity: 1,
		MaxQuantity: 100,
		MinPrice:    10,
		MaxPrice:    100,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Brokers <= 0:
		return errors.Errorf("brokers must be positive, got %d", p.Brokers)
	case p.Iterations < 0:
		return errors.Errorf("iterations must not be negative, got %d", p.Iterations)
	case p.BatchSize <= 0:
		return errors.Errorf("batch size must be positive, got %d", p.BatchSize)
	case p.MinQuantity <= 0 || p.MaxQuantity < p.MinQuantity:
		return errors.Errorf("invalid quantity range [%d, %d]", p.MinQuantity, p.MaxQuantity)
	case p.MinPrice < 0.01 || p.MaxPrice < p.MinPrice:
		return errors.Errorf("invalid price range [%g, %g]", p.MinPrice, p.MaxPrice)
	}
	return nil
}

// OrderRequest is one generated order
type OrderRequest struct {
	Side     types.SideType
	Symbol   string
	Quantity int64
	Price    decimal.Decimal
}

// Generator draws random orders over a symbol table. It is not safe for
// concurrent use; each broker owns one.
type Generator struct {
	rng     *rand.Rand
	symbols []string
	params  Params
}

// NewGenerator seeds a generator. Generators with the same seed and stream
// produce the same orders.
func NewGenerator(params Params, stream uint64, symbols []string) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewPCG(params.Seed, stream)),
		symbols: symbols,
		params:  params,
	}
}

// Next draws a side (even odds), a symbol, a quantity in
// [MinQuantity, MaxQuantity] and a price uniform in [MinPrice, MaxPrice]
// truncated to cents.
func (g *Generator) Next() OrderRequest {
	side := types.Buy
	if g.rng.IntN(2) == 1 {
		side = types.Sell
	}

	symbol := g.symbols[g.rng.IntN(len(g.symbols))]
	quantity := g.params.MinQuantity + g.rng.Int64N(g.params.MaxQuantity-g.params.MinQuantity+1)

	raw := g.params.MinPrice + g.rng.Float64()*(g.params.MaxPrice-g.params.MinPrice)
	price := decimal.NewFromFloat(raw).Truncate(2)
	if price.LessThan(decimal.NewFromFloat(g.params.MinPrice)) {
		price = decimal.NewFromFloat(g.params.MinPrice).RoundUp(2)
	}

	return OrderRequest{
		Side:     side,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
	}
}
