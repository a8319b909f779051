package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"wafconsole/core"
	"wafconsole/logger"
	"wafconsole/models"
)

// LogHandlers serves the log search page.
type LogHandlers struct {
	Store *core.Store
}

// LogSearchRequest is the structured search form posted by the UI. The
// query string sent to the log store is built server-side so every client
// produces identical queries for identical filters.
type LogSearchRequest struct {
	models.LogSearchFilter
	TimeRange models.TimeRange `json:"time_range"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

// SearchLogsHandler translates the filter into a backend query, runs it
// through the store and returns the resulting page.
func (h *LogHandlers) SearchLogsHandler(w http.ResponseWriter, r *http.Request) {
	var req LogSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SearchLogsHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	// Default to the last 24 hours when the UI sends no range.
	if req.TimeRange.Start.IsZero() && req.TimeRange.End.IsZero() {
		req.TimeRange.End = time.Now().UTC()
		req.TimeRange.Start = req.TimeRange.End.Add(-24 * time.Hour)
	}
	if req.TimeRange.End.Before(req.TimeRange.Start) {
		respondError(w, http.StatusBadRequest, "Invalid time range: start must not be after end")
		return
	}
	if req.Limit < 1 {
		req.Limit = 100
	} else if req.Limit > 1000 { // Cap the limit to protect the log store
		req.Limit = 1000
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	query := models.BuildLogQuery(req.LogSearchFilter, req.TimeRange, req.Limit, req.Offset)
	if err := h.Store.SearchLogs(r.Context(), query); err != nil {
		logger.Error("SearchLogsHandler: search failed (query %q): %v", query.Query, err)
		respondError(w, http.StatusBadGateway, core.ReasonLogSearchFailed)
		return
	}
	respondJSON(w, http.StatusOK, h.Store.Logs())
}
