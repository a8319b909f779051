package handlers

import (
	"net/http"
	"time"
	"wafconsole/core"
	"wafconsole/logger"
	"wafconsole/models"
)

// MetricsHandlers serves the dashboard's metrics summary.
type MetricsHandlers struct {
	Store *core.Store
}

// GetMetricsSummaryHandler fetches aggregated metrics for the requested
// window. start/end are RFC3339; a missing window defaults to the last 24
// hours.
func (h *MetricsHandlers) GetMetricsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	tr := models.TimeRange{}
	if startStr == "" && endStr == "" {
		tr.End = time.Now().UTC()
		tr.Start = tr.End.Add(-24 * time.Hour)
	} else {
		var err error
		tr.Start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			logger.Error("GetMetricsSummaryHandler: Invalid start parameter '%s': %v", startStr, err)
			respondError(w, http.StatusBadRequest, "Invalid start parameter, must be RFC3339")
			return
		}
		tr.End, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			logger.Error("GetMetricsSummaryHandler: Invalid end parameter '%s': %v", endStr, err)
			respondError(w, http.StatusBadRequest, "Invalid end parameter, must be RFC3339")
			return
		}
		if tr.End.Before(tr.Start) {
			respondError(w, http.StatusBadRequest, "Invalid time range: start must not be after end")
			return
		}
	}

	if err := h.Store.FetchMetrics(r.Context(), tr); err != nil {
		// Stale metrics stay usable: return the previous summary when one
		// exists so the dashboard keeps rendering.
		if stale := h.Store.Metrics(); stale != nil {
			respondJSON(w, http.StatusOK, stale)
			return
		}
		respondError(w, http.StatusBadGateway, core.ReasonMetricsFetchFailed)
		return
	}
	respondJSON(w, http.StatusOK, h.Store.Metrics())
}
