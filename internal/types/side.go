package types

import "strings"

// SideType identifies which side of a book an order rests on
type SideType int

const (
	NoActionSide SideType = iota
	Buy
	Sell
)

func (s SideType) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Opposite returns the side an order of this side matches against
func (s SideType) Opposite() SideType {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	default:
		return NoActionSide
	}
}

// ParseSide converts "buy"/"sell" (any case) to a SideType
func ParseSide(side string) SideType {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy":
		return Buy
	case "sell":
		return Sell
	default:
		return NoActionSide
	}
}

// InstrumentID indexes an order book inside an instrument registry
type InstrumentID int

// OrderStatus is derived from an order's remaining quantity
type OrderStatus int

const (
	Open OrderStatus = iota
	PartiallyFilled
	Filled
)

func (s OrderStatus) String() string {
	switch s {
	case Open:
		return "OPEN"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}
