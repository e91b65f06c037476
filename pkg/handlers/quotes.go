package handlers

import (
	"errors"

	"levelbook/pkg/feed"
	"levelbook/schemas"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) PostQuote(c *fiber.Ctx) error {
	var req schemas.PostQuoteRequest
	ctx := c.UserContext()

	if err := c.BodyParser(&req); err != nil {
		h.obs.LogErr(ctx, "quote.post: invalid request body")
		return badRequest(c, errors.New("invalid request body"))
	}

	if req.Line != "" {
		h.obs.LogInfo(ctx, "quote.post: line=%q", req.Line)
		if err := h.ingester.ApplyLine(ctx, req.Line); err != nil {
			h.obs.LogErr(ctx, "quote.post: rejected line=%q err=%v", req.Line, err)
			return badRequest(c, err)
		}
		return success(c)
	}

	quote, err := feed.Decode(map[string]string{
		"i": req.Instrument,
		"p": req.Price,
		"q": req.Quantity,
		"s": req.Side,
	})
	if err != nil {
		h.metrics.QuoteRejected("malformed")
		h.obs.LogErr(ctx, "quote.post: invalid quote instrument=%s err=%v", req.Instrument, err)
		return badRequest(c, err)
	}

	h.obs.LogInfo(ctx, "quote.post: instrument=%s side=%s price=%d quantity=%d", quote.Instrument, quote.Side, quote.Price, quote.Quantity)
	if err := h.ingester.ApplyQuote(ctx, quote); err != nil {
		h.obs.LogErr(ctx, "quote.post: rejected instrument=%s err=%v", quote.Instrument, err)
		return badRequest(c, err)
	}

	return success(c)
}
