package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDraftValidateMissingHost(t *testing.T) {
	// Arrange
	draft := PolicyDraft{Mode: WAFModeOn}

	// Act
	err := draft.Validate()

	// Assert
	assert.Error(t, err)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, ValidationMissingHost, verr.Code)
}

func TestPolicyDraftValidateGlobalNeedsNoHost(t *testing.T) {
	// Arrange
	draft := PolicyDraft{Global: true, Mode: WAFModeDetectionOnly}

	// Act
	err := draft.Validate()

	// Assert
	assert.NoError(t, err)
}

func TestPolicyDraftValidateDuplicateRuleID(t *testing.T) {
	// Arrange
	draft := PolicyDraft{
		Host: "example.com",
		Mode: WAFModeOn,
		CustomRules: []CustomRule{
			{ID: "r1", Name: "block admin", Rule: `SecRule REQUEST_URI "@contains /admin" "deny"`},
			{ID: "r1", Name: "block admin again", Rule: `SecRule REQUEST_URI "@contains /admin" "deny"`},
		},
	}

	// Act
	err := draft.Validate()

	// Assert
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, ValidationDuplicateRuleID, verr.Code)
}

func TestPolicyDraftValidateIgnoresProvisionalRuleIDs(t *testing.T) {
	// Arrange: two id-less rules are fine, ids are assigned at save time.
	draft := PolicyDraft{
		Host: "example.com",
		Mode: WAFModeOn,
		CustomRules: []CustomRule{
			{Name: "one", Rule: "SecRule ARGS noise deny"},
			{Name: "two", Rule: "SecRule ARGS noise deny"},
		},
	}

	// Act / Assert
	assert.NoError(t, draft.Validate())
}

func TestWAFExceptionsHasEntries(t *testing.T) {
	var e WAFExceptions
	assert.False(t, e.HasEntries())

	e.AddPath("/health")
	assert.True(t, e.HasEntries())

	e.RemovePath("/health")
	assert.False(t, e.HasEntries())

	// Header-only exceptions do not count as entries.
	e.SetHeader("X-Debug", "1")
	assert.False(t, e.HasEntries())

	e.AddIPAllow("10.0.0.0/8")
	assert.True(t, e.HasEntries())
}

func TestWAFExceptionsAddRemoveIdempotent(t *testing.T) {
	// Arrange
	var e WAFExceptions

	// Act
	e.AddMethod("OPTIONS")
	e.AddMethod("GET")
	e.AddMethod("OPTIONS")
	e.RemoveMethod("HEAD")

	// Assert: duplicate add and absent remove are both no-ops.
	assert.Equal(t, []string{"OPTIONS", "GET"}, e.Methods)

	e.RemoveMethod("OPTIONS")
	assert.Equal(t, []string{"GET"}, e.Methods)
}

func TestWAFExceptionsHeaderHelpers(t *testing.T) {
	var e WAFExceptions

	e.SetHeader("X-Internal", "yes")
	e.SetHeader("X-Internal", "no")
	assert.Equal(t, map[string]string{"X-Internal": "no"}, e.HeadersAllow)

	e.RemoveHeader("X-Internal")
	assert.Empty(t, e.HeadersAllow)

	// Removing from a nil map must not panic.
	var zero WAFExceptions
	zero.RemoveHeader("anything")
}
