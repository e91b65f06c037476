package handlers

import (
	"levelbook/pkg/feed"
	"levelbook/pkg/obs"
	"levelbook/pkg/registry"
)

type Handler struct {
	registry *registry.Registry
	ingester *feed.Ingester
	obs      *obs.Client
	metrics  *obs.Metrics
}

func New(obs *obs.Client, metrics *obs.Metrics, reg *registry.Registry) *Handler {
	return &Handler{
		registry: reg,
		ingester: feed.NewIngester(reg, obs, metrics),
		obs:      obs,
		metrics:  metrics,
	}
}
