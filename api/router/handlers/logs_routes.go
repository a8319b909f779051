package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterLogRoutes(r chi.Router, h *LogHandlers) {
	r.Post("/logs/search", h.SearchLogsHandler)
}
