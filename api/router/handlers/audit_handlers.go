package handlers

import (
	"net/http"
	"strconv"
	"wafconsole/core"
	"wafconsole/logger"
	"wafconsole/models"

	"github.com/go-chi/chi/v5"
)

// AuditHandlers serves the audit trail page. The trail is backend-owned
// and read-only; the console only lists, selects and formats entries.
type AuditHandlers struct {
	Store *core.Store
}

// AuditEntryDetail decorates one audit entry with its display label and a
// short change summary for the detail pane.
type AuditEntryDetail struct {
	Entry       *models.AuditLogEntry `json:"entry"`
	ActionLabel string                `json:"action_label"`
	Summary     string                `json:"summary,omitempty"`
}

// GetAuditLogsHandler fetches a page of the audit trail.
func (h *AuditHandlers) GetAuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 100
	} else if limit > 500 {
		limit = 500
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	if err := h.Store.FetchAuditLogs(r.Context(), limit, offset); err != nil {
		if stale := h.Store.AuditLogs(); stale != nil {
			respondJSON(w, http.StatusOK, stale)
			return
		}
		respondError(w, http.StatusBadGateway, core.ReasonAuditFetchFailed)
		return
	}
	respondJSON(w, http.StatusOK, h.Store.AuditLogs())
}

// GetAuditEntryHandler returns one entry from the last fetched page, with
// formatting applied. Selection is purely local; no backend call is made.
func (h *AuditHandlers) GetAuditEntryHandler(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	entries := h.Store.AuditLogs()
	if entries == nil {
		respondError(w, http.StatusNotFound, "No audit logs fetched yet")
		return
	}
	entry := entries.FindEntry(entryID)
	if entry == nil {
		logger.Error("GetAuditEntryHandler: entry '%s' not in the current page", entryID)
		respondError(w, http.StatusNotFound, "Audit entry not found in the current page")
		return
	}

	respondJSON(w, http.StatusOK, AuditEntryDetail{
		Entry:       entry,
		ActionLabel: models.FormatAuditAction(entry.Action),
		Summary:     entry.ChangeSummary(),
	})
}
