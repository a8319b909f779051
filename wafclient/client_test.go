package wafclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"wafconsole/models"

	"github.com/stretchr/testify/assert"
)

// testBackend is a minimal in-memory control service. Mutations update its
// policy map so a follow-up status fetch reflects the writes, the way the
// real service behaves.
type testBackend struct {
	mu       sync.Mutex
	policies map[string]models.WAFPolicy
	requests []string

	failPath string
	failCode int
	failBody string
}

func newTestBackend() *testBackend {
	return &testBackend{policies: make(map[string]models.WAFPolicy)}
}

func (b *testBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/waf/status", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		b.mu.Lock()
		status := models.WAFStatus{HostPolicies: make(map[string]models.WAFPolicy)}
		for host, p := range b.policies {
			status.HostPolicies[host] = p
		}
		b.mu.Unlock()
		json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/api/waf/mode", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		var req ModeRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		p := b.policies[req.Host]
		p.Host = req.Host
		p.Mode = req.Mode
		if req.EnableCRS != nil {
			p.EnableCRS = *req.EnableCRS
		}
		b.policies[req.Host] = p
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/waf/exceptions", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		var req ExceptionsRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		p := b.policies[req.Host]
		p.Exceptions = models.WAFExceptions{
			Paths:        req.Paths,
			Methods:      req.Methods,
			IPAllow:      req.IPAllow,
			HeadersAllow: req.HeadersAllow,
		}
		b.policies[req.Host] = p
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/waf/rules", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		var req RulesRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		p := b.policies[req.Host]
		p.CustomRules = req.Rules
		b.policies[req.Host] = p
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/waf/apply", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/logs/search", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		var query models.LogQuery
		json.NewDecoder(r.Body).Decode(&query)
		json.NewEncoder(w).Encode(models.LogSearchResult{
			Entries:   []models.LogEntry{{Message: "matched " + query.Query, Host: "example.com", Status: 403}},
			Total:     1,
			TimeRange: query.TimeRange,
		})
	})
	mux.HandleFunc("/api/metrics/summary", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		json.NewEncoder(w).Encode(models.MetricsSummary{TotalRequests: 1000, WAFBlocked: 12})
	})
	mux.HandleFunc("/api/audit", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r) {
			return
		}
		json.NewEncoder(w).Encode(models.AuditLogResult{
			Entries: []models.AuditLogEntry{{ID: "a1", Action: models.AuditActionUpdateMode}},
			Total:   1,
		})
	})
	return mux
}

// record logs the request path and, if the path is configured to fail,
// writes the failure response and reports true.
func (b *testBackend) record(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	b.requests = append(b.requests, r.URL.Path)
	fail := b.failPath == r.URL.Path
	code, body := b.failCode, b.failBody
	b.mu.Unlock()
	if fail {
		w.WriteHeader(code)
		w.Write([]byte(body))
	}
	return fail
}

func (b *testBackend) requestPaths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func newTestClient(t *testing.T, backend *testBackend) *Client {
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestSetModeThenStatusRoundTrip(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	client := newTestClient(t, backend)
	ctx := context.Background()
	crs := true

	// Act: the creation sequence for a policy with one path exception.
	err := client.SetMode(ctx, ModeRequest{Host: "example.com", Mode: models.WAFModeOn, EnableCRS: &crs})
	assert.NoError(t, err)
	err = client.SetExceptions(ctx, ExceptionsRequest{Host: "example.com", Paths: []string{"/health"}, Enabled: true})
	assert.NoError(t, err)
	status, err := client.GetStatus(ctx)

	// Assert: the refetched status reflects both writes.
	assert.NoError(t, err)
	policy := status.HostPolicies["example.com"]
	assert.Equal(t, models.WAFModeOn, policy.Mode)
	assert.True(t, policy.EnableCRS)
	assert.Equal(t, []string{"/health"}, policy.Exceptions.Paths)
	assert.Equal(t, []string{"/api/waf/mode", "/api/waf/exceptions", "/api/waf/status"}, backend.requestPaths())
}

func TestSetRulesRoundTrip(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	client := newTestClient(t, backend)
	ctx := context.Background()
	rules := []models.CustomRule{{ID: "r1", Name: "block admin", Rule: "SecRule ...", Enabled: true}}

	// Act
	err := client.SetRules(ctx, RulesRequest{Host: "example.com", Rules: rules})
	assert.NoError(t, err)
	status, err := client.GetStatus(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, status.HostPolicies["example.com"].CustomRules, 1)
	assert.Equal(t, "r1", status.HostPolicies["example.com"].CustomRules[0].ID)
}

func TestSetModeFailureIsTypedStepError(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	backend.failPath = "/api/waf/mode"
	backend.failCode = http.StatusBadGateway
	backend.failBody = `{"error":"controller not ready"}`
	client := newTestClient(t, backend)

	// Act
	err := client.SetMode(context.Background(), ModeRequest{Host: "example.com", Mode: models.WAFModeOn})

	// Assert
	var stepErr *StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepMode, stepErr.Step)
	assert.Equal(t, http.StatusBadGateway, stepErr.HTTPStatus)
	assert.Contains(t, stepErr.Cause.Error(), "controller not ready")
}

func TestGetStatusFailureIsTypedFetchError(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	backend.failPath = "/api/waf/status"
	backend.failCode = http.StatusServiceUnavailable
	backend.failBody = `{"message":"maintenance"}`
	client := newTestClient(t, backend)

	// Act
	status, err := client.GetStatus(context.Background())

	// Assert
	assert.Nil(t, status)
	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, ResourceStatus, fetchErr.Resource)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.HTTPStatus)
	assert.Contains(t, fetchErr.Cause.Error(), "maintenance")
}

func TestTransportErrorHasZeroStatus(t *testing.T) {
	// Arrange: a client pointed at a closed server.
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, time.Second)

	// Act
	err := client.Apply(context.Background(), ApplyRequest{Host: "example.com", Strategy: "annotation"})

	// Assert
	var stepErr *StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepApply, stepErr.Step)
	assert.Equal(t, 0, stepErr.HTTPStatus)
}

func TestSearchLogsSendsQueryBody(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	client := newTestClient(t, backend)
	end := time.Now().UTC().Truncate(time.Second)
	query := models.LogQuery{
		Query:     "status:403 AND host:example.com",
		TimeRange: models.TimeRange{Start: end.Add(-time.Hour), End: end},
		Limit:     50,
	}

	// Act
	result, err := client.SearchLogs(context.Background(), query)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "matched status:403 AND host:example.com", result.Entries[0].Message)
	assert.Equal(t, query.TimeRange, result.TimeRange)
}

func TestGetMetricsSummary(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	client := newTestClient(t, backend)
	end := time.Now().UTC()

	// Act
	summary, err := client.GetMetricsSummary(context.Background(), models.TimeRange{Start: end.Add(-time.Hour), End: end})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), summary.TotalRequests)
	assert.Equal(t, int64(12), summary.WAFBlocked)
}

func TestGetAuditLogs(t *testing.T) {
	// Arrange
	backend := newTestBackend()
	client := newTestClient(t, backend)

	// Act
	result, err := client.GetAuditLogs(context.Background(), 50, 0)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, models.AuditActionUpdateMode, result.Entries[0].Action)
}
