package core

import (
	"context"
	"sync"
	"wafconsole/logger"
	"wafconsole/models"
	"wafconsole/wafclient"
)

// Fixed per-operation failure reasons shown to the operator. Kept stable so
// the UI can match on them.
const (
	ReasonStatusFetchFailed  = "Failed to fetch status"
	ReasonMetricsFetchFailed = "Failed to fetch metrics"
	ReasonLogSearchFailed    = "Failed to search logs"
	ReasonAuditFetchFailed   = "Failed to fetch audit logs"
)

// Store is the session-wide cache of the last known backend truth. It is
// constructed at startup and injected wherever state is read; there is no
// package-level instance.
//
// Contract per fetch: loading is set and the error cleared when the fetch
// starts; a success replaces the whole slice; a failure records the fixed
// reason string and keeps the previous slice, so stale data stays visible
// instead of blanking the UI. When two fetches of the same slice are in
// flight the last one to resolve wins -- writes are serialized by the mutex
// but no ordering between requests is enforced.
type Store struct {
	mu     sync.RWMutex
	client wafclient.API

	status    *models.WAFStatus
	metrics   *models.MetricsSummary
	logs      *models.LogSearchResult
	auditLogs *models.AuditLogResult
	loading   bool
	lastError string
}

// NewStore builds an empty store around the given backend client.
func NewStore(client wafclient.API) *Store {
	return &Store{client: client}
}

func (s *Store) beginFetch() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Store) failFetch(reason string, err error) {
	logger.Error("Store: %s: %v", reason, err)
	s.mu.Lock()
	s.loading = false
	s.lastError = reason
	s.mu.Unlock()
}

// FetchStatus refreshes the policy status slice.
func (s *Store) FetchStatus(ctx context.Context) error {
	s.beginFetch()
	status, err := s.client.GetStatus(ctx)
	if err != nil {
		s.failFetch(ReasonStatusFetchFailed, err)
		return err
	}
	s.mu.Lock()
	s.status = status
	s.loading = false
	s.mu.Unlock()
	return nil
}

// FetchMetrics refreshes the metrics slice for the given time range.
func (s *Store) FetchMetrics(ctx context.Context, tr models.TimeRange) error {
	s.beginFetch()
	summary, err := s.client.GetMetricsSummary(ctx, tr)
	if err != nil {
		s.failFetch(ReasonMetricsFetchFailed, err)
		return err
	}
	s.mu.Lock()
	s.metrics = summary
	s.loading = false
	s.mu.Unlock()
	return nil
}

// SearchLogs runs the query and replaces the logs slice with the result.
func (s *Store) SearchLogs(ctx context.Context, query models.LogQuery) error {
	s.beginFetch()
	result, err := s.client.SearchLogs(ctx, query)
	if err != nil {
		s.failFetch(ReasonLogSearchFailed, err)
		return err
	}
	s.mu.Lock()
	s.logs = result
	s.loading = false
	s.mu.Unlock()
	return nil
}

// FetchAuditLogs refreshes the audit trail slice.
func (s *Store) FetchAuditLogs(ctx context.Context, limit, offset int) error {
	s.beginFetch()
	result, err := s.client.GetAuditLogs(ctx, limit, offset)
	if err != nil {
		s.failFetch(ReasonAuditFetchFailed, err)
		return err
	}
	s.mu.Lock()
	s.auditLogs = result
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Status returns the last fetched policy status, nil before the first
// successful fetch.
func (s *Store) Status() *models.WAFStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) Metrics() *models.MetricsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

func (s *Store) Logs() *models.LogSearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logs
}

func (s *Store) AuditLogs() *models.AuditLogResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auditLogs
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the reason string for the most recent failed fetch, or
// "" if the most recent fetch started cleanly.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
