package models

// MetricsSummary aggregates traffic and enforcement counters over a time
// range, as computed by the control service's metrics store.
type MetricsSummary struct {
	TotalRequests int64         `json:"total_requests"`
	Status4xx     int64         `json:"status_4xx"`
	Status5xx     int64         `json:"status_5xx"`
	Status403     int64         `json:"status_403"`
	WAFBlocked    int64         `json:"waf_blocked"`
	TopHosts      []HostMetrics `json:"top_hosts"`
	TopPaths      []PathMetrics `json:"top_paths"`
	TopRuleIDs    []RuleMetrics `json:"top_rule_ids"`
	TimeRange     TimeRange     `json:"time_range"`
}

type HostMetrics struct {
	Host      string  `json:"host"`
	Requests  int64   `json:"requests"`
	Blocked   int64   `json:"blocked"`
	ErrorRate float64 `json:"error_rate"`
}

type PathMetrics struct {
	Path      string  `json:"path"`
	Requests  int64   `json:"requests"`
	Blocked   int64   `json:"blocked"`
	ErrorRate float64 `json:"error_rate"`
}

type RuleMetrics struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Count    int64  `json:"count"`
}
