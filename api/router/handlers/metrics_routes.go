package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterMetricsRoutes(r chi.Router, h *MetricsHandlers) {
	r.Get("/metrics/summary", h.GetMetricsSummaryHandler)
}
