package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange bounds a metrics or log query. Start must not be after End;
// the control service rejects inverted ranges.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LogEntry is one observed request as recorded by the log store. Entries
// are immutable; the console never writes them back.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Host      string                 `json:"host"`
	Status    int                    `json:"status"`
	RuleID    string                 `json:"rule_id,omitempty"`
	ClientIP  string                 `json:"client_ip"`
	Path      string                 `json:"path"`
	Method    string                 `json:"method"`
}

// LogQuery is the complete search request sent to the log store.
type LogQuery struct {
	Query     string    `json:"query"`
	TimeRange TimeRange `json:"time_range"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// LogSearchResult is a page of matching entries.
type LogSearchResult struct {
	Entries   []LogEntry `json:"entries"`
	Total     int        `json:"total"`
	TimeRange TimeRange  `json:"time_range"`
}

// LogSearchFilter is the structured form of the log page's search inputs.
// All fields are optional.
type LogSearchFilter struct {
	FreeText string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Host     string `json:"host,omitempty"`
	RuleID   string `json:"rule_id,omitempty"`
}

// BuildQuery converts the filter to the log store's query dialect. Clauses
// are emitted in a fixed order (free text, status, host, rule id) and joined
// with AND so equal filters always produce identical query strings. An
// empty filter matches everything.
func (f LogSearchFilter) BuildQuery() string {
	var conditions []string
	if f.FreeText != "" {
		conditions = append(conditions, fmt.Sprintf("_msg:*%s*", f.FreeText))
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status:%s", f.Status))
	}
	if f.Host != "" {
		conditions = append(conditions, fmt.Sprintf("host:%s", f.Host))
	}
	if f.RuleID != "" {
		conditions = append(conditions, fmt.Sprintf("rule_id:%s", f.RuleID))
	}
	if len(conditions) == 0 {
		return "*"
	}
	return strings.Join(conditions, " AND ")
}

// BuildLogQuery pairs the filter's query string with a time range and page
// window. It performs no I/O; callers hand the result to the client.
func BuildLogQuery(f LogSearchFilter, tr TimeRange, limit, offset int) LogQuery {
	return LogQuery{
		Query:     f.BuildQuery(),
		TimeRange: tr,
		Limit:     limit,
		Offset:    offset,
	}
}
