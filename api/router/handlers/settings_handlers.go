package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"wafconsole/database"
	"wafconsole/logger"
	"wafconsole/models"

	"github.com/go-chi/chi/v5"
)

// GetUISettingsHandler retrieves the console display preferences.
func GetUISettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := database.GetUISettings()
	if err != nil {
		logger.Error("GetUISettingsHandler: Error getting UI settings: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve UI settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// SetUISettingsHandler saves the console display preferences.
func SetUISettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings models.UISettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		logger.Error("SetUISettingsHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := database.SetUISettings(settings); err != nil {
		logger.Error("SetUISettingsHandler: Error saving UI settings: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save UI settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "UI settings saved successfully."})
}

// GetDefaultLogRangeHandler retrieves the default log search window.
func GetDefaultLogRangeHandler(w http.ResponseWriter, r *http.Request) {
	rangeStr, err := database.GetSetting(models.DefaultLogRangeKey)
	if err != nil {
		logger.Error("GetDefaultLogRangeHandler: Error getting default log range: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve default log range")
		return
	}
	if rangeStr == "" {
		rangeStr = "24h"
	}
	respondJSON(w, http.StatusOK, map[string]string{"range": rangeStr})
}

// SetDefaultLogRangeHandler saves the default log search window. The value
// must parse as a positive duration.
func SetDefaultLogRangeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Range string `json:"range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SetDefaultLogRangeHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	d, err := time.ParseDuration(req.Range)
	if err != nil || d <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid range, must be a positive duration like '1h' or '24h'")
		return
	}

	if err := database.SetSetting(models.DefaultLogRangeKey, req.Range); err != nil {
		logger.Error("SetDefaultLogRangeHandler: Error saving default log range: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save default log range")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Default log range saved successfully."})
}

// GetSavedSearchesHandler lists all saved log searches.
func GetSavedSearchesHandler(w http.ResponseWriter, r *http.Request) {
	searches, err := database.GetSavedSearches()
	if err != nil {
		logger.Error("GetSavedSearchesHandler: Error listing saved searches: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve saved searches")
		return
	}
	if searches == nil {
		searches = []models.SavedSearch{}
	}
	respondJSON(w, http.StatusOK, searches)
}

// CreateSavedSearchHandler stores a named log search filter.
func CreateSavedSearchHandler(w http.ResponseWriter, r *http.Request) {
	var search models.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
		logger.Error("CreateSavedSearchHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if search.Name == "" {
		respondError(w, http.StatusBadRequest, "Saved search name is required")
		return
	}
	if search.RangeDur == "" {
		search.RangeDur = "24h"
	} else if d, err := time.ParseDuration(search.RangeDur); err != nil || d <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid range_duration, must be a positive duration like '1h' or '24h'")
		return
	}

	created, err := database.CreateSavedSearch(search)
	if err != nil {
		logger.Error("CreateSavedSearchHandler: Error saving search '%s': %v", search.Name, err)
		respondError(w, http.StatusInternalServerError, "Failed to save search")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DeleteSavedSearchHandler removes a saved search by id.
func DeleteSavedSearchHandler(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "searchID")
	if err := database.DeleteSavedSearch(searchID); err != nil {
		logger.Error("DeleteSavedSearchHandler: Error deleting search '%s': %v", searchID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete saved search")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Saved search deleted."})
}
