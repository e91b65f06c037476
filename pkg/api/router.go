package api

import (
	"context"

	"levelbook/pkg/handlers"
	"levelbook/pkg/obs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func New(router fiber.Router, handler *handlers.Handler, obs *obs.Client, gatherer prometheus.Gatherer) {
	router.Use(requestIDMiddleware)

	// quote writes are single-writer per book; the book lock serializes them
	router.Post("/quotes", handler.PostQuote)
	router.Get("/instruments", handler.GetInstruments)

	books := router.Group("/books/:instrument")
	books.Get("/top", handler.GetTopLevel)
	books.Get("/depth", handler.GetDepth)
	books.Get("/average-price", handler.GetAveragePrice)
	books.Get("/total-quantity", handler.GetTotalQuantity)
	books.Get("/vwap", handler.GetVolumeWeightedPrice)

	if gatherer != nil {
		router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	obs.LogInfo(context.Background(), "api.routes.registered metrics=%t", gatherer != nil)
}
