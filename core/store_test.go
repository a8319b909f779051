package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"wafconsole/models"
	"wafconsole/wafclient"

	"github.com/stretchr/testify/assert"
)

// stubAPI is a function-field fake so each test can shape exactly the
// responses it needs.
type stubAPI struct {
	getStatus  func(ctx context.Context) (*models.WAFStatus, error)
	getMetrics func(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error)
	searchLogs func(ctx context.Context, query models.LogQuery) (*models.LogSearchResult, error)
	getAudit   func(ctx context.Context, limit, offset int) (*models.AuditLogResult, error)
}

func (s *stubAPI) GetStatus(ctx context.Context) (*models.WAFStatus, error) {
	return s.getStatus(ctx)
}
func (s *stubAPI) SetMode(ctx context.Context, req wafclient.ModeRequest) error             { return nil }
func (s *stubAPI) SetExceptions(ctx context.Context, req wafclient.ExceptionsRequest) error { return nil }
func (s *stubAPI) SetRules(ctx context.Context, req wafclient.RulesRequest) error           { return nil }
func (s *stubAPI) Apply(ctx context.Context, req wafclient.ApplyRequest) error              { return nil }
func (s *stubAPI) GetMetricsSummary(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error) {
	return s.getMetrics(ctx, tr)
}
func (s *stubAPI) SearchLogs(ctx context.Context, query models.LogQuery) (*models.LogSearchResult, error) {
	return s.searchLogs(ctx, query)
}
func (s *stubAPI) GetAuditLogs(ctx context.Context, limit, offset int) (*models.AuditLogResult, error) {
	return s.getAudit(ctx, limit, offset)
}

func TestFetchStatusReplacesSlice(t *testing.T) {
	// Arrange
	stub := &stubAPI{
		getStatus: func(ctx context.Context) (*models.WAFStatus, error) {
			return &models.WAFStatus{
				HostPolicies: map[string]models.WAFPolicy{
					"example.com": {Host: "example.com", Mode: models.WAFModeOn},
				},
			}, nil
		},
	}
	store := NewStore(stub)

	// Act
	err := store.FetchStatus(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.False(t, store.Loading())
	assert.Empty(t, store.LastError())
	status := store.Status()
	assert.NotNil(t, status)
	assert.Equal(t, models.WAFModeOn, status.HostPolicies["example.com"].Mode)
}

func TestFetchStatusFailureKeepsStaleData(t *testing.T) {
	// Arrange: one good fetch, then a failing one.
	good := &models.WAFStatus{
		HostPolicies: map[string]models.WAFPolicy{"example.com": {Host: "example.com"}},
	}
	calls := 0
	stub := &stubAPI{
		getStatus: func(ctx context.Context) (*models.WAFStatus, error) {
			calls++
			if calls == 1 {
				return good, nil
			}
			return nil, errors.New("backend unreachable")
		},
	}
	store := NewStore(stub)
	assert.NoError(t, store.FetchStatus(context.Background()))

	// Act
	err := store.FetchStatus(context.Background())

	// Assert: the stale slice survives, the fixed reason is set.
	assert.Error(t, err)
	assert.Equal(t, ReasonStatusFetchFailed, store.LastError())
	assert.False(t, store.Loading())
	assert.Same(t, good, store.Status())
}

func TestFetchClearsPreviousError(t *testing.T) {
	// Arrange: failing fetch first, then a successful one.
	calls := 0
	stub := &stubAPI{
		getMetrics: func(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("timeout")
			}
			return &models.MetricsSummary{TotalRequests: 42}, nil
		},
	}
	store := NewStore(stub)
	tr := models.TimeRange{}
	assert.Error(t, store.FetchMetrics(context.Background(), tr))
	assert.Equal(t, ReasonMetricsFetchFailed, store.LastError())

	// Act
	err := store.FetchMetrics(context.Background(), tr)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, store.LastError())
	assert.Equal(t, int64(42), store.Metrics().TotalRequests)
}

func TestSearchLogsFailureReason(t *testing.T) {
	// Arrange
	stub := &stubAPI{
		searchLogs: func(ctx context.Context, query models.LogQuery) (*models.LogSearchResult, error) {
			return nil, errors.New("log store down")
		},
	}
	store := NewStore(stub)

	// Act
	err := store.SearchLogs(context.Background(), models.LogQuery{Query: "*"})

	// Assert
	assert.Error(t, err)
	assert.Equal(t, ReasonLogSearchFailed, store.LastError())
	assert.Nil(t, store.Logs())
}

func TestFetchAuditLogsFailureReason(t *testing.T) {
	// Arrange
	stub := &stubAPI{
		getAudit: func(ctx context.Context, limit, offset int) (*models.AuditLogResult, error) {
			return nil, errors.New("nope")
		},
	}
	store := NewStore(stub)

	// Act
	err := store.FetchAuditLogs(context.Background(), 50, 0)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, ReasonAuditFetchFailed, store.LastError())
}

func TestConcurrentFetchesLastResolvedWins(t *testing.T) {
	// Arrange: two metrics fetches in flight at once, with completion order
	// forced. Whichever resolves second must be the one the store keeps,
	// regardless of issue order.
	first := &models.MetricsSummary{TotalRequests: 1}
	second := &models.MetricsSummary{TotalRequests: 2}

	var mu sync.Mutex
	calls := 0
	release1 := make(chan *models.MetricsSummary)
	release2 := make(chan *models.MetricsSummary)
	stub := &stubAPI{
		getMetrics: func(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error) {
			mu.Lock()
			calls++
			idx := calls
			mu.Unlock()
			if idx == 1 {
				return <-release1, nil
			}
			return <-release2, nil
		},
	}
	store := NewStore(stub)

	finished := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_ = store.FetchMetrics(context.Background(), models.TimeRange{})
			finished <- struct{}{}
		}()
	}

	// Act: resolve the second-issued request first, wait for its fetch to
	// finish writing, then resolve the first-issued one.
	release2 <- second
	<-finished
	release1 <- first
	<-finished

	// Assert: the first-issued fetch resolved last, so its data is kept.
	assert.Equal(t, int64(1), store.Metrics().TotalRequests)
	assert.False(t, store.Loading())
}
