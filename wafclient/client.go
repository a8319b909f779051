package wafclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"wafconsole/logger"
	"wafconsole/models"

	"github.com/tidwall/gjson"
)

// ModeRequest sets the enforcement mode (and optionally the CRS toggle)
// for a host. An empty Host addresses the global policy.
type ModeRequest struct {
	Host      string         `json:"host"`
	Mode      models.WAFMode `json:"mode"`
	EnableCRS *bool          `json:"enable_crs,omitempty"`
}

// ExceptionsRequest replaces the full exception object for a host.
type ExceptionsRequest struct {
	Host         string            `json:"host"`
	Paths        []string          `json:"paths"`
	Methods      []string          `json:"methods"`
	IPAllow      []string          `json:"ip_allow"`
	HeadersAllow map[string]string `json:"headers_allow,omitempty"`
	Enabled      bool              `json:"enabled"`
}

// RulesRequest replaces the full custom rule list for a host.
type RulesRequest struct {
	Host  string              `json:"host"`
	Rules []models.CustomRule `json:"rules"`
}

// ApplyRequest asks the control service to materialize the stored policy
// into enforcement configuration.
type ApplyRequest struct {
	Host     string `json:"host"`
	Strategy string `json:"strategy"`
}

// API is the full surface of the WAF control service used by the console.
// The sequencer and store depend on this interface so tests can substitute
// a recording fake.
type API interface {
	GetStatus(ctx context.Context) (*models.WAFStatus, error)
	SetMode(ctx context.Context, req ModeRequest) error
	SetExceptions(ctx context.Context, req ExceptionsRequest) error
	SetRules(ctx context.Context, req RulesRequest) error
	Apply(ctx context.Context, req ApplyRequest) error
	GetMetricsSummary(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error)
	SearchLogs(ctx context.Context, query models.LogQuery) (*models.LogSearchResult, error)
	GetAuditLogs(ctx context.Context, limit, offset int) (*models.AuditLogResult, error)
}

// Client talks HTTP to the WAF control service. Every method is a single
// attempt: no retries, no request cancellation beyond the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// NewClient builds a client for the control service at baseURL. A zero
// timeout falls back to 15 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// backendMessage pulls a human-readable reason out of a backend error body,
// which may use either an "error" or a "message" field.
func backendMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return msg
	}
	return gjson.GetBytes(body, "message").String()
}

// doJSON performs one request. A non-nil out is filled from a 2xx response
// body. Non-2xx responses and transport failures are returned as a plain
// error carrying the status (or 0); callers wrap it into the typed
// Step/Fetch error for their operation.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshalling request body for %s: %w", path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.BackendError("%s %s: transport error: %v", method, path, err)
		return 0, err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if readErr == nil {
			msg = backendMessage(respBody)
		}
		logger.BackendError("%s %s -> HTTP %d (%s)", method, path, resp.StatusCode, msg)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("backend responded %d: %s", resp.StatusCode, msg)
	}
	logger.BackendInfo("%s %s -> HTTP %d", method, path, resp.StatusCode)

	if out != nil {
		if readErr != nil {
			return resp.StatusCode, fmt.Errorf("reading response body for %s: %w", path, readErr)
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response for %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// GetStatus retrieves the full policy picture from the control service.
func (c *Client) GetStatus(ctx context.Context) (*models.WAFStatus, error) {
	var status models.WAFStatus
	code, err := c.doJSON(ctx, http.MethodGet, "/api/waf/status", nil, &status)
	if err != nil {
		return nil, &FetchError{Resource: ResourceStatus, HTTPStatus: code, Cause: err}
	}
	return &status, nil
}

// SetMode submits the mode endpoint call for one host.
func (c *Client) SetMode(ctx context.Context, req ModeRequest) error {
	code, err := c.doJSON(ctx, http.MethodPost, "/api/waf/mode", req, nil)
	if err != nil {
		return &StepError{Step: StepMode, HTTPStatus: code, Cause: err}
	}
	return nil
}

// SetExceptions replaces the exception object for one host.
func (c *Client) SetExceptions(ctx context.Context, req ExceptionsRequest) error {
	code, err := c.doJSON(ctx, http.MethodPost, "/api/waf/exceptions", req, nil)
	if err != nil {
		return &StepError{Step: StepExceptions, HTTPStatus: code, Cause: err}
	}
	return nil
}

// SetRules replaces the custom rule list for one host.
func (c *Client) SetRules(ctx context.Context, req RulesRequest) error {
	code, err := c.doJSON(ctx, http.MethodPost, "/api/waf/rules", req, nil)
	if err != nil {
		return &StepError{Step: StepRules, HTTPStatus: code, Cause: err}
	}
	return nil
}

// Apply asks the control service to push the stored policy into
// enforcement.
func (c *Client) Apply(ctx context.Context, req ApplyRequest) error {
	code, err := c.doJSON(ctx, http.MethodPost, "/api/waf/apply", req, nil)
	if err != nil {
		return &StepError{Step: StepApply, HTTPStatus: code, Cause: err}
	}
	return nil
}

// GetMetricsSummary retrieves aggregated metrics for a time range.
func (c *Client) GetMetricsSummary(ctx context.Context, tr models.TimeRange) (*models.MetricsSummary, error) {
	params := url.Values{}
	params.Set("start", tr.Start.Format(time.RFC3339))
	params.Set("end", tr.End.Format(time.RFC3339))

	var summary models.MetricsSummary
	code, err := c.doJSON(ctx, http.MethodGet, "/api/metrics/summary?"+params.Encode(), nil, &summary)
	if err != nil {
		return nil, &FetchError{Resource: ResourceMetrics, HTTPStatus: code, Cause: err}
	}
	return &summary, nil
}

// SearchLogs runs a structured query against the log store.
func (c *Client) SearchLogs(ctx context.Context, query models.LogQuery) (*models.LogSearchResult, error) {
	var result models.LogSearchResult
	code, err := c.doJSON(ctx, http.MethodPost, "/api/logs/search", query, &result)
	if err != nil {
		return nil, &FetchError{Resource: ResourceLogs, HTTPStatus: code, Cause: err}
	}
	return &result, nil
}

// GetAuditLogs retrieves a page of the configuration audit trail.
func (c *Client) GetAuditLogs(ctx context.Context, limit, offset int) (*models.AuditLogResult, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var result models.AuditLogResult
	code, err := c.doJSON(ctx, http.MethodGet, "/api/audit?"+params.Encode(), nil, &result)
	if err != nil {
		return nil, &FetchError{Resource: ResourceAudit, HTTPStatus: code, Cause: err}
	}
	return &result, nil
}
