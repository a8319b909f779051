package models

import "time"

// UISettingsKey is the database setting key for the UI settings blob.
const UISettingsKey = "ui_settings"

// DefaultLogRangeKey is the database setting key for the default log search
// window, stored as a duration string (e.g. "24h").
const DefaultLogRangeKey = "default_log_range"

// UISettings holds console display preferences persisted locally. None of
// these affect the control service.
type UISettings struct {
	Theme               string `json:"theme"`
	AutoRefreshEnabled  bool   `json:"auto_refresh_enabled"`
	LogPageSize         int    `json:"log_page_size"`
	ShowGlobalPolicyRow bool   `json:"show_global_policy_row"`
}

// SavedSearch is a named, reusable log search filter stored in the local
// console database.
type SavedSearch struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Filter    LogSearchFilter `json:"filter"`
	RangeDur  string          `json:"range_duration"` // e.g. "1h", "24h"; resolved at search time
	CreatedAt time.Time       `json:"created_at"`
}
