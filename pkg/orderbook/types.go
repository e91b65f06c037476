package orderbook

import (
	"fmt"
	"strings"
	"sync"
)

// MaxLevel bounds the scaled price domain: valid prices are [0, MaxLevel).
const MaxLevel = 99_999

// Prices and quantities are scaled by 100 (two fixed decimal digits).
const scale = 100

type Side uint8

const (
	SideNone Side = iota
	Bid
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "none"
	}
}

// ParseSide accepts the feed's single-letter codes as well as the long names.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "b", "bid", "buy":
		return Bid, nil
	case "s", "a", "ask", "sell":
		return Ask, nil
	default:
		return SideNone, fmt.Errorf("%w: %q", ErrInvalidSide, raw)
	}
}

// Level is one resting price level, both values scaled by 100.
type Level struct {
	Price    int   `json:"price"`
	Quantity int64 `json:"quantity"`
}

// Depth is a copy of ranked levels, index 0 being the most competitive.
type Depth struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

type Book struct {
	levels  [MaxLevel]int64
	sides   [MaxLevel]Side
	bestBid int // 0 when no bid rests
	bestAsk int // MaxLevel when no ask rests
	mu      sync.RWMutex
}
