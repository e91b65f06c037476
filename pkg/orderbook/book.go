package orderbook

import "math"

func New() *Book {
	return &Book{
		bestBid: 0,
		bestAsk: MaxLevel,
	}
}

// UpdateLevel applies one aggregated quote. A zero quantity deletes the level,
// a quantity at an occupied price adds to it, anything else opens a new level.
func (b *Book) UpdateLevel(price int, quantity int64, side Side) error {
	if err := ValidateQuote(price, quantity, side); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if quantity == 0 {
		b.deleteLevel(price)
		return nil
	}

	if b.levels[price] != 0 {
		if b.sides[price] != side {
			return ErrSideConflict
		}
		if b.levels[price] > math.MaxInt64-quantity {
			return ErrInvalidQuantity
		}
		b.levels[price] += quantity
		return nil
	}

	b.levels[price] = quantity
	b.sides[price] = side
	if side == Bid && price > b.bestBid {
		b.bestBid = price
	} else if side == Ask && price < b.bestAsk {
		b.bestAsk = price
	}
	return nil
}

// ValidateQuote checks a quote against the book domain without touching any book.
func ValidateQuote(price int, quantity int64, side Side) error {
	if price < 0 || price >= MaxLevel {
		return &PriceRangeError{Price: price}
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if side != Bid && side != Ask {
		return ErrInvalidSide
	}
	return nil
}

func (b *Book) deleteLevel(price int) {
	held := b.sides[price]
	b.levels[price] = 0
	b.sides[price] = SideNone

	if held == Bid && price == b.bestBid {
		b.bestBid = b.nextBid(price)
	}
	if held == Ask && price == b.bestAsk {
		b.bestAsk = b.nextAsk(price)
	}
}

// nextBid scans strictly below price for the next bid level.
func (b *Book) nextBid(price int) int {
	for i := price - 1; i >= 0; i-- {
		if b.sides[i] == Bid {
			return i
		}
	}
	return 0
}

// nextAsk scans strictly above price for the next ask level.
func (b *Book) nextAsk(price int) int {
	for i := price + 1; i < MaxLevel; i++ {
		if b.sides[i] == Ask {
			return i
		}
	}
	return MaxLevel
}

// The sentinel 0 is only "no bid" when price 0 is not itself a bid level.
func (b *Book) hasBid() bool {
	return b.sides[b.bestBid] == Bid
}

func (b *Book) hasAsk() bool {
	return b.bestAsk < MaxLevel
}

func (b *Book) BestBid() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.hasBid() {
		return Level{}, false
	}
	return Level{Price: b.bestBid, Quantity: b.levels[b.bestBid]}, true
}

func (b *Book) BestAsk() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.hasAsk() {
		return Level{}, false
	}
	return Level{Price: b.bestAsk, Quantity: b.levels[b.bestAsk]}, true
}

// Quantity returns the resting quantity at price, 0 for empty or invalid prices.
func (b *Book) Quantity(price int) int64 {
	if price < 0 || price >= MaxLevel {
		return 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.levels[price]
}

func (b *Book) RankedBids(limit int) []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.collect(b.walkBids, limit)
}

func (b *Book) RankedAsks(limit int) []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.collect(b.walkAsks, limit)
}

func (b *Book) collect(walk func(int, func(Level) bool), limit int) []Level {
	levels := make([]Level, 0, min(max(limit, 0), 16))
	walk(limit, func(level Level) bool {
		levels = append(levels, level)
		return true
	})
	return levels
}

// walkBids visits up to limit bid levels from the best bid downward.
// Callers hold at least the read lock.
func (b *Book) walkBids(limit int, visit func(Level) bool) {
	if limit <= 0 || !b.hasBid() {
		return
	}

	seen := 0
	for i := b.bestBid; i >= 0 && seen < limit; i-- {
		if b.sides[i] != Bid {
			continue
		}
		seen++
		if !visit(Level{Price: i, Quantity: b.levels[i]}) {
			return
		}
	}
}

// walkAsks visits up to limit ask levels from the best ask upward.
// Callers hold at least the read lock.
func (b *Book) walkAsks(limit int, visit func(Level) bool) {
	if limit <= 0 || !b.hasAsk() {
		return
	}

	seen := 0
	for i := b.bestAsk; i < MaxLevel && seen < limit; i++ {
		if b.sides[i] != Ask {
			continue
		}
		seen++
		if !visit(Level{Price: i, Quantity: b.levels[i]}) {
			return
		}
	}
}
