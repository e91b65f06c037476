package orderbook

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidSide     = errors.New("invalid side")
	ErrSideConflict    = errors.New("price level is held by the opposite side")
)

// PriceRangeError reports a scaled price outside [0, MaxLevel).
type PriceRangeError struct {
	Price int
}

func (e *PriceRangeError) Error() string {
	return fmt.Sprintf("invalid price: scaled price %d outside [0, %d)", e.Price, MaxLevel)
}

func (e *PriceRangeError) Unwrap() error {
	return ErrInvalidPrice
}
