package orderbook

import "github.com/shopspring/decimal"

// Fraction digits kept by the aggregates, rounded half-up.
const (
	PricePrecision    = 8
	QuantityPrecision = 2
)

var hundred = decimal.NewFromInt(scale)

// TopLevel returns the best bid and best ask, each side empty when absent.
func (b *Book) TopLevel() Depth {
	return b.depth(1)
}

// Snapshot returns every resting level, bids descending and asks ascending.
func (b *Book) Snapshot() Depth {
	return b.depth(MaxLevel)
}

func (b *Book) depth(limit int) Depth {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Depth{
		Bids: b.collect(b.walkBids, limit),
		Asks: b.collect(b.walkAsks, limit),
	}
}

// walkTop visits the top n levels of each side, bids first.
func (b *Book) walkTop(n int, visit func(Level)) {
	each := func(level Level) bool {
		visit(level)
		return true
	}
	b.walkBids(n, each)
	b.walkAsks(n, each)
}

// AveragePrice is the unweighted mean price over the top n levels of each side.
// n <= 0 selects no levels and yields zero; it is not read as "all levels".
func (b *Book) AveragePrice(n int) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sum := decimal.Zero
	count := int64(0)
	b.walkTop(n, func(level Level) {
		sum = sum.Add(decimal.NewFromInt(int64(level.Price)))
		count++
	})
	if count == 0 {
		return decimal.Zero
	}

	return sum.DivRound(decimal.NewFromInt(count).Mul(hundred), PricePrecision)
}

// TotalQuantity sums the quantity resting on the top n levels of each side.
func (b *Book) TotalQuantity(n int) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sum := decimal.Zero
	b.walkTop(n, func(level Level) {
		sum = sum.Add(decimal.NewFromInt(level.Quantity))
	})

	return sum.DivRound(hundred, QuantityPrecision)
}

// VolumeWeightedPrice weights each of the top n levels per side by its quantity.
func (b *Book) VolumeWeightedPrice(n int) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	notional := decimal.Zero
	quantity := decimal.Zero
	b.walkTop(n, func(level Level) {
		qty := decimal.NewFromInt(level.Quantity)
		notional = notional.Add(decimal.NewFromInt(int64(level.Price)).Mul(qty))
		quantity = quantity.Add(qty)
	})
	if quantity.IsZero() {
		return decimal.Zero
	}

	return notional.DivRound(quantity.Mul(hundred), PricePrecision)
}
