package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterAuditRoutes(r chi.Router, h *AuditHandlers) {
	r.Get("/audit", h.GetAuditLogsHandler)
	r.Get("/audit/entry/{entryID}", h.GetAuditEntryHandler)
}
