package wafclient

import "fmt"

// Step identifiers for policy mutations. Surfaced with every StepError so
// the operator knows exactly which sub-resource to retry.
const (
	StepMode       = "mode"
	StepExceptions = "exceptions"
	StepRules      = "rules"
	StepApply      = "apply"
)

// Resource identifiers for read operations.
const (
	ResourceStatus  = "status"
	ResourceMetrics = "metrics"
	ResourceLogs    = "logs"
	ResourceAudit   = "audit"
)

// StepError reports the failure of one mutation step against the control
// service. HTTPStatus is zero when the request never produced a response
// (transport error).
type StepError struct {
	Step       string
	HTTPStatus int
	Cause      error
}

func (e *StepError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s step failed: backend returned HTTP %d", e.Step, e.HTTPStatus)
	}
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// FetchError reports the failure of a read operation. The store keeps its
// previous slice when it sees one of these.
type FetchError struct {
	Resource   string
	HTTPStatus int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("failed to fetch %s: backend returned HTTP %d", e.Resource, e.HTTPStatus)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }
