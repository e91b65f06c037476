package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"levelbook/pkg/obs"
	"levelbook/pkg/orderbook"

	"github.com/tidwall/btree"
)

var ErrEmptyInstrument = errors.New("instrument is required")

// Registry maps instrument identifiers to their books. Books are created on
// the first accepted quote and never removed.
type Registry struct {
	books   btree.Map[string, *orderbook.Book]
	obs     *obs.Client
	metrics *obs.Metrics
	mu      sync.RWMutex
}

func New(obs *obs.Client, metrics *obs.Metrics) *Registry {
	return &Registry{
		obs:     obs,
		metrics: metrics,
	}
}

// Book returns the instrument's book without creating one.
func (r *Registry) Book(instrument string) (*orderbook.Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.books.Get(instrument)
}

// GetOrCreate returns the instrument's book, creating it exactly once.
func (r *Registry) GetOrCreate(instrument string) *orderbook.Book {
	if book, ok := r.Book(instrument); ok {
		return book
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if book, ok := r.books.Get(instrument); ok {
		return book
	}
	book := orderbook.New()
	r.books.Set(instrument, book)
	r.metrics.BookCreated()
	r.obs.LogInfo(context.Background(), "registry.book.created instrument=%s books=%d", instrument, r.books.Len())
	return book
}

// Apply routes one quote to its instrument's book.
func (r *Registry) Apply(ctx context.Context, instrument string, price int, quantity int64, side orderbook.Side) error {
	instrument = strings.TrimSpace(instrument)
	if instrument == "" {
		r.metrics.QuoteRejected("empty_instrument")
		return ErrEmptyInstrument
	}
	if err := orderbook.ValidateQuote(price, quantity, side); err != nil {
		r.metrics.QuoteRejected(rejectReason(err))
		r.obs.LogDebug(ctx, "registry.apply.rejected instrument=%s price=%d quantity=%d err=%v", instrument, price, quantity, err)
		return err
	}

	if err := r.GetOrCreate(instrument).UpdateLevel(price, quantity, side); err != nil {
		r.metrics.QuoteRejected(rejectReason(err))
		r.obs.LogDebug(ctx, "registry.apply.rejected instrument=%s price=%d quantity=%d err=%v", instrument, price, quantity, err)
		return err
	}

	r.metrics.QuoteApplied(side.String())
	return nil
}

// Instruments lists known instruments in ascending order.
func (r *Registry) Instruments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instruments := make([]string, 0, r.books.Len())
	r.books.Scan(func(instrument string, _ *orderbook.Book) bool {
		instruments = append(instruments, instrument)
		return true
	})
	return instruments
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.books.Len()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, orderbook.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, orderbook.ErrInvalidSide):
		return "invalid_side"
	case errors.Is(err, orderbook.ErrSideConflict):
		return "side_conflict"
	default:
		return "other"
	}
}
