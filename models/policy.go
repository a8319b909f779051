package models

import (
	"fmt"
	"time"
)

// WAFMode is the enforcement level of a policy.
type WAFMode string

const (
	WAFModeOn            WAFMode = "On"
	WAFModeDetectionOnly WAFMode = "DetectionOnly"
	WAFModeOff           WAFMode = "Off"
)

// WAFPolicy is the protection configuration for a single host, or the
// distinguished global policy when Host is empty. The control service owns
// Version and increments it on every successful mutation; the console only
// displays it.
type WAFPolicy struct {
	ID          string        `json:"id"`
	Host        string        `json:"host"`
	Mode        WAFMode       `json:"mode"`
	EnableCRS   bool          `json:"enable_crs"`
	Exceptions  WAFExceptions `json:"exceptions"`
	CustomRules []CustomRule  `json:"custom_rules"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	UpdatedBy   string        `json:"updated_by"`
	Version     int           `json:"version"`
}

// WAFExceptions narrows where enforcement applies. All lists are optional
// and order-preserving.
type WAFExceptions struct {
	Paths        []string          `json:"paths"`
	Methods      []string          `json:"methods"`
	IPAllow      []string          `json:"ip_allow"`
	HeadersAllow map[string]string `json:"headers_allow"`
}

// CustomRule is an opaque rule-language expression attached to a policy.
// The console never parses Rule; Enabled toggles the rule independently of
// the policy's own mode.
type CustomRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rule        string    `json:"rule"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ControllerConfig reflects ingress controller settings reported by the
// control service.
type ControllerConfig struct {
	AllowSnippetAnnotations bool   `json:"allow_snippet_annotations"`
	ModSecuritySnippet      string `json:"modsecurity_snippet"`
}

// WAFStatus is the control service's full picture of configured policies.
type WAFStatus struct {
	GlobalPolicy     WAFPolicy            `json:"global_policy"`
	HostPolicies     map[string]WAFPolicy `json:"host_policies"`
	ControllerConfig ControllerConfig     `json:"controller_config"`
	LastUpdated      time.Time            `json:"last_updated"`
}

// PolicyDraft is the editable form of a policy before it is saved. Host is
// immutable once a policy exists; the UI disables the field and the
// sequencer never re-sends a changed host for an existing policy.
type PolicyDraft struct {
	Host        string        `json:"host"`
	Global      bool          `json:"global"`
	Mode        WAFMode       `json:"mode"`
	EnableCRS   bool          `json:"enable_crs"`
	Exceptions  WAFExceptions `json:"exceptions"`
	CustomRules []CustomRule  `json:"custom_rules"`
}

// Validation failure codes returned by PolicyDraft.Validate.
const (
	ValidationMissingHost     = "missing_host"
	ValidationDuplicateRuleID = "duplicate_rule_id"
)

// ValidationError reports a draft problem caught before any network call.
type ValidationError struct {
	Code   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy validation failed (%s): %s", e.Code, e.Detail)
}

// Validate checks a draft for problems the control service would reject.
// It runs before the sequencer issues any request.
func (d *PolicyDraft) Validate() error {
	if d.Host == "" && !d.Global {
		return &ValidationError{Code: ValidationMissingHost, Detail: "host is required for a non-global policy"}
	}
	seen := make(map[string]struct{}, len(d.CustomRules))
	for _, r := range d.CustomRules {
		if r.ID == "" {
			continue // provisional id assigned at save time
		}
		if _, dup := seen[r.ID]; dup {
			return &ValidationError{Code: ValidationDuplicateRuleID, Detail: fmt.Sprintf("custom rule id %q appears more than once", r.ID)}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// HasEntries reports whether any of the path/method/IP lists carry at least
// one value. Header-only exceptions do not count: they ride along with a
// list-triggered update but never trigger one on their own.
func (e *WAFExceptions) HasEntries() bool {
	return len(e.Paths) > 0 || len(e.Methods) > 0 || len(e.IPAllow) > 0
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func removeValue(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// The Add/Remove helpers are set-level idempotent: adding a present value or
// removing an absent one leaves the list unchanged, same elements same order.

func (e *WAFExceptions) AddPath(path string)       { e.Paths = appendUnique(e.Paths, path) }
func (e *WAFExceptions) RemovePath(path string)    { e.Paths = removeValue(e.Paths, path) }
func (e *WAFExceptions) AddMethod(m string)        { e.Methods = appendUnique(e.Methods, m) }
func (e *WAFExceptions) RemoveMethod(m string)     { e.Methods = removeValue(e.Methods, m) }
func (e *WAFExceptions) AddIPAllow(cidr string)    { e.IPAllow = appendUnique(e.IPAllow, cidr) }
func (e *WAFExceptions) RemoveIPAllow(cidr string) { e.IPAllow = removeValue(e.IPAllow, cidr) }

func (e *WAFExceptions) SetHeader(name, value string) {
	if e.HeadersAllow == nil {
		e.HeadersAllow = make(map[string]string)
	}
	e.HeadersAllow[name] = value
}

func (e *WAFExceptions) RemoveHeader(name string) {
	delete(e.HeadersAllow, name)
}
