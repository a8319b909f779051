package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"wafconsole/core"
	"wafconsole/logger"
	"wafconsole/models"
)

// WAFHandlers serves the policy pages: status reads through the store,
// mutations through the sequencer.
type WAFHandlers struct {
	Store     *core.Store
	Sequencer *core.Sequencer
}

// SaveOutcomeResponse is the wire form of a save result. FailedStep names
// the sub-resource to retry when Error is set.
type SaveOutcomeResponse struct {
	State      core.SaveState `json:"state"`
	FailedStep string         `json:"failed_step,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// GetStatusHandler refreshes and returns the WAF status. If the refresh
// fails but an earlier snapshot exists, the stale snapshot is returned
// rather than blanking the page; the fetch error is reported alongside.
func (h *WAFHandlers) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	fetchErr := h.Store.FetchStatus(r.Context())
	status := h.Store.Status()
	if status == nil {
		logger.Error("GetStatusHandler: no status available: %v", fetchErr)
		respondError(w, http.StatusBadGateway, core.ReasonStatusFetchFailed)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		*models.WAFStatus
		Stale bool   `json:"stale,omitempty"`
		Error string `json:"error,omitempty"`
	}{
		WAFStatus: status,
		Stale:     fetchErr != nil,
		Error:     h.Store.LastError(),
	})
}

// SavePolicyHandler runs the full save protocol for a policy draft.
func (h *WAFHandlers) SavePolicyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.PolicyDraft
		Existing bool `json:"existing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SavePolicyHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	outcome := h.Sequencer.SavePolicy(r.Context(), req.PolicyDraft, req.Existing)
	resp := SaveOutcomeResponse{State: outcome.State, FailedStep: outcome.FailedStep}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}

	var valErr *models.ValidationError
	switch {
	case outcome.Err == nil:
		respondJSON(w, http.StatusOK, resp)
	case errors.As(outcome.Err, &valErr):
		respondJSON(w, http.StatusBadRequest, resp)
	default:
		respondJSON(w, http.StatusBadGateway, resp)
	}
}

// SetModeHandler changes only the enforcement mode of an existing policy
// (the quick toggle on the policy list).
func (h *WAFHandlers) SetModeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host      string         `json:"host"`
		Global    bool           `json:"global"`
		Mode      models.WAFMode `json:"mode"`
		EnableCRS bool           `json:"enable_crs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SetModeHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	draft := models.PolicyDraft{Host: req.Host, Global: req.Global, Mode: req.Mode, EnableCRS: req.EnableCRS}
	outcome := h.Sequencer.SavePolicy(r.Context(), draft, true)
	if outcome.Err != nil {
		var valErr *models.ValidationError
		if errors.As(outcome.Err, &valErr) {
			respondError(w, http.StatusBadRequest, outcome.Err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "Failed to update WAF mode")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "WAF mode updated successfully."})
}

// SetExceptionsHandler replaces the exception object for a host,
// independently of the save action.
func (h *WAFHandlers) SetExceptionsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host       string               `json:"host"`
		Exceptions models.WAFExceptions `json:"exceptions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SetExceptionsHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.Sequencer.UpdateExceptions(r.Context(), req.Host, req.Exceptions); err != nil {
		logger.Error("SetExceptionsHandler: update failed for host %q: %v", req.Host, err)
		respondError(w, http.StatusBadGateway, "Failed to update exceptions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Exceptions updated successfully."})
}

// SetRulesHandler replaces the custom rule list for a host.
func (h *WAFHandlers) SetRulesHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host  string              `json:"host"`
		Rules []models.CustomRule `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("SetRulesHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.Sequencer.UpdateRules(r.Context(), req.Host, req.Rules); err != nil {
		logger.Error("SetRulesHandler: update failed for host %q: %v", req.Host, err)
		respondError(w, http.StatusBadGateway, "Failed to update rules")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Rules updated successfully."})
}

// ApplyHandler materializes the saved policy for a host into enforcement.
func (h *WAFHandlers) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Host     string `json:"host"`
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("ApplyHandler: Error decoding request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.Strategy != "" && req.Strategy != core.ApplyStrategyAnnotation {
		respondError(w, http.StatusBadRequest, "Unsupported apply strategy: "+req.Strategy)
		return
	}

	if err := h.Sequencer.Apply(r.Context(), req.Host); err != nil {
		logger.Error("ApplyHandler: apply failed for host %q: %v", req.Host, err)
		respondError(w, http.StatusBadGateway, "Failed to apply configuration")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Configuration applied successfully."})
}
