package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAuditAction(t *testing.T) {
	assert.Equal(t, "Update Mode", FormatAuditAction("UPDATE_MODE"))
	assert.Equal(t, "Apply Configuration", FormatAuditAction("APPLY_CONFIGURATION"))
	// Unknown actions still format; nothing should panic or pass through raw.
	assert.Equal(t, "Rotate Signing Key", FormatAuditAction("ROTATE_SIGNING_KEY"))
	assert.Equal(t, "", FormatAuditAction(""))
}

func TestAuditLogResultFindEntry(t *testing.T) {
	// Arrange
	result := &AuditLogResult{
		Entries: []AuditLogEntry{
			{ID: "a1", Action: AuditActionUpdateMode},
			{ID: "a2", Action: AuditActionUpdateRules},
		},
		Total: 2,
	}

	// Act / Assert
	found := result.FindEntry("a2")
	assert.NotNil(t, found)
	assert.Equal(t, AuditActionUpdateRules, found.Action)

	assert.Nil(t, result.FindEntry("missing"))

	var nilResult *AuditLogResult
	assert.Nil(t, nilResult.FindEntry("a1"))
}

func TestChangeSummaryModeTransition(t *testing.T) {
	// Arrange
	entry := AuditLogEntry{
		Action:   AuditActionUpdateMode,
		OldValue: json.RawMessage(`{"mode":"DetectionOnly"}`),
		NewValue: json.RawMessage(`{"mode":"On"}`),
	}

	// Act / Assert
	assert.Equal(t, "DetectionOnly -> On", entry.ChangeSummary())

	// No old snapshot: just show the new mode.
	entry.OldValue = nil
	assert.Equal(t, "On", entry.ChangeSummary())
}

func TestChangeSummaryExceptionCounts(t *testing.T) {
	entry := AuditLogEntry{
		Action:   AuditActionUpdateExceptions,
		NewValue: json.RawMessage(`{"paths":["/health","/metrics"],"methods":["OPTIONS"],"ip_allow":[]}`),
	}
	assert.Equal(t, "3 exceptions", entry.ChangeSummary())

	entry.NewValue = json.RawMessage(`{"paths":["/health"]}`)
	assert.Equal(t, "1 exception", entry.ChangeSummary())
}

func TestChangeSummaryRuleCounts(t *testing.T) {
	entry := AuditLogEntry{
		Action:   AuditActionUpdateRules,
		NewValue: json.RawMessage(`{"rules":[{"id":"r1"},{"id":"r2"}]}`),
	}
	assert.Equal(t, "2 custom rules", entry.ChangeSummary())

	// Some backend versions snapshot under custom_rules instead.
	entry.NewValue = json.RawMessage(`{"custom_rules":[{"id":"r1"}]}`)
	assert.Equal(t, "1 custom rule", entry.ChangeSummary())
}

func TestChangeSummaryApplyAndEmpty(t *testing.T) {
	entry := AuditLogEntry{
		Action:   AuditActionApplyConfiguration,
		NewValue: json.RawMessage(`{"host":"example.com","strategy":"annotation"}`),
	}
	assert.Equal(t, "annotation", entry.ChangeSummary())

	empty := AuditLogEntry{Action: AuditActionUpdateMode}
	assert.Equal(t, "", empty.ChangeSummary())
}
