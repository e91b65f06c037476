package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"levelbook/pkg/orderbook"
	"levelbook/schemas"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var errNoBook = errors.New("no data exists for this instrument")

func (h *Handler) GetInstruments(c *fiber.Ctx) error {
	return jsonResponse(c, fiber.StatusOK, schemas.InstrumentsResponse{
		Instruments: h.registry.Instruments(),
	})
}

func (h *Handler) GetTopLevel(c *fiber.Ctx) error {
	defer h.metrics.ObserveQuery("top", time.Now())
	return h.depthResponse(c, "top", (*orderbook.Book).TopLevel)
}

func (h *Handler) GetDepth(c *fiber.Ctx) error {
	defer h.metrics.ObserveQuery("depth", time.Now())
	return h.depthResponse(c, "depth", (*orderbook.Book).Snapshot)
}

func (h *Handler) GetAveragePrice(c *fiber.Ctx) error {
	defer h.metrics.ObserveQuery("average_price", time.Now())
	return h.aggregateResponse(c, "average_price", (*orderbook.Book).AveragePrice)
}

func (h *Handler) GetTotalQuantity(c *fiber.Ctx) error {
	defer h.metrics.ObserveQuery("total_quantity", time.Now())
	return h.aggregateResponse(c, "total_quantity", (*orderbook.Book).TotalQuantity)
}

func (h *Handler) GetVolumeWeightedPrice(c *fiber.Ctx) error {
	defer h.metrics.ObserveQuery("vwap", time.Now())
	return h.aggregateResponse(c, "vwap", (*orderbook.Book).VolumeWeightedPrice)
}

func (h *Handler) lookupBook(c *fiber.Ctx, query string) (*orderbook.Book, string, error) {
	instrument := c.Params("instrument")
	book, ok := h.registry.Book(instrument)
	if !ok {
		h.obs.LogErr(c.UserContext(), "book.%s: unknown instrument=%s", query, instrument)
		return nil, instrument, fmt.Errorf("%w %s", errNoBook, instrument)
	}
	return book, instrument, nil
}

func (h *Handler) depthResponse(c *fiber.Ctx, query string, read func(*orderbook.Book) orderbook.Depth) error {
	book, instrument, err := h.lookupBook(c, query)
	if err != nil {
		return notFound(c, err)
	}

	depth := read(book)
	h.obs.LogInfo(c.UserContext(), "book.%s: instrument=%s bids=%d asks=%d", query, instrument, len(depth.Bids), len(depth.Asks))

	if c.Query("format") == "text" {
		return textResponse(c, depth.String())
	}
	return jsonResponse(c, fiber.StatusOK, schemas.DepthResponse{
		Instrument: instrument,
		Bids:       toLevels(depth.Bids),
		Asks:       toLevels(depth.Asks),
	})
}

func (h *Handler) aggregateResponse(c *fiber.Ctx, query string, compute func(*orderbook.Book, int) decimal.Decimal) error {
	levels, err := strconv.Atoi(c.Query("levels", "1"))
	if err != nil || levels < 1 {
		h.obs.LogErr(c.UserContext(), "book.%s: invalid levels=%q", query, c.Query("levels"))
		return badRequest(c, errors.New("levels must be a positive integer"))
	}

	book, instrument, err := h.lookupBook(c, query)
	if err != nil {
		return notFound(c, err)
	}

	value := compute(book, levels)
	h.obs.LogInfo(c.UserContext(), "book.%s: instrument=%s levels=%d value=%s", query, instrument, levels, value)
	return jsonResponse(c, fiber.StatusOK, schemas.AggregateResponse{
		Instrument: instrument,
		Levels:     levels,
		Value:      value.String(),
	})
}

func toLevels(levels []orderbook.Level) []schemas.Level {
	out := make([]schemas.Level, 0, len(levels))
	for _, level := range levels {
		out = append(out, schemas.Level{
			Price:    orderbook.FormatPrice(level.Price),
			Quantity: orderbook.FormatQuantity(level.Quantity),
		})
	}
	return out
}
