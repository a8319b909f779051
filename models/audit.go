package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Audit actions recorded by the control service.
const (
	AuditActionUpdateMode         = "UPDATE_MODE"
	AuditActionUpdateExceptions   = "UPDATE_EXCEPTIONS"
	AuditActionUpdateRules        = "UPDATE_RULES"
	AuditActionApplyConfiguration = "APPLY_CONFIGURATION"
)

// AuditLogEntry is an immutable record of one past configuration change.
// OldValue/NewValue are opaque snapshots of the affected resource kept only
// for diff display; they are never replayed against the backend.
type AuditLogEntry struct {
	ID           string          `json:"id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	User         string          `json:"user"`
	Details      string          `json:"details"`
	OldValue     json.RawMessage `json:"old_value,omitempty"`
	NewValue     json.RawMessage `json:"new_value,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AuditLogResult is a page of audit entries, newest first as returned by
// the control service.
type AuditLogResult struct {
	Entries []AuditLogEntry `json:"entries"`
	Total   int             `json:"total"`
}

// FindEntry returns the entry with the given id, or nil if the page does
// not contain it.
func (r *AuditLogResult) FindEntry(id string) *AuditLogEntry {
	if r == nil {
		return nil
	}
	for i := range r.Entries {
		if r.Entries[i].ID == id {
			return &r.Entries[i]
		}
	}
	return nil
}

// FormatAuditAction turns an action code like UPDATE_MODE into a human
// label ("Update Mode"). Unknown codes format the same way, so new backend
// actions render reasonably without a console update.
func FormatAuditAction(action string) string {
	words := strings.Split(strings.ToLower(action), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ChangeSummary extracts a short description of what a snapshot changed,
// for list rendering. The snapshots are untyped backend payloads, so the
// relevant fields are probed by path rather than decoded into a schema.
func (e *AuditLogEntry) ChangeSummary() string {
	if len(e.NewValue) == 0 {
		return ""
	}
	switch e.Action {
	case AuditActionUpdateMode:
		oldMode := gjson.GetBytes(e.OldValue, "mode").String()
		newMode := gjson.GetBytes(e.NewValue, "mode").String()
		if oldMode != "" && oldMode != newMode {
			return oldMode + " -> " + newMode
		}
		return newMode
	case AuditActionUpdateExceptions:
		n := gjson.GetBytes(e.NewValue, "paths.#").Int() +
			gjson.GetBytes(e.NewValue, "methods.#").Int() +
			gjson.GetBytes(e.NewValue, "ip_allow.#").Int()
		if n == 1 {
			return "1 exception"
		}
		return strconv.FormatInt(n, 10) + " exceptions"
	case AuditActionUpdateRules:
		n := gjson.GetBytes(e.NewValue, "rules.#").Int()
		if n == 0 {
			n = gjson.GetBytes(e.NewValue, "custom_rules.#").Int()
		}
		if n == 1 {
			return "1 custom rule"
		}
		return strconv.FormatInt(n, 10) + " custom rules"
	case AuditActionApplyConfiguration:
		return gjson.GetBytes(e.NewValue, "strategy").String()
	}
	return ""
}
