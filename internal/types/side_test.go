package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSideTypeConstants(t *testing.T) {
	assert.Equal(t, 0, int(NoActionSide))
	assert.Equal(t, 1, int(Buy))
	assert.Equal(t, 2, int(Sell))
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want SideType
	}{
		{"buy", Buy},
		{" BUY ", Buy},
		{"Sell", Sell},
		{"hold", NoActionSide},
		{"", NoActionSide},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSide(tt.in))
		})
	}
}

func TestOpposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
	assert.Equal(t, NoActionSide, NoActionSide.Opposite())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "PARTIALLY_FILLED", PartiallyFilled.String())
	assert.Equal(t, "FILLED", Filled.String())
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
}
