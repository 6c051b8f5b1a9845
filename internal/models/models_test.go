package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplication_DerivedFlags(t *testing.T) {
	tests := []struct {
		status         Status
		intervention   bool
		isComplete     bool
		requiresAction bool
	}{
		{StatusQueued, false, false, false},
		{StatusCustomizing, false, false, false},
		{StatusReady, false, false, false},
		{StatusApplying, false, false, false},
		{StatusCompleted, false, true, false},
		{StatusFailed, false, true, false},
		{StatusPaused, false, true, true},

		{StatusQueued, true, false, true},
		{StatusCustomizing, true, false, true},
		{StatusReady, true, false, true},
		{StatusApplying, true, false, true},
		{StatusCompleted, true, true, true},
		{StatusFailed, true, true, true},
		{StatusPaused, true, true, true},
	}

	for _, tt := range tests {
		name := string(tt.status)
		if tt.intervention {
			name += "/intervention"
		}
		t.Run(name, func(t *testing.T) {
			app := &Application{Status: tt.status, UserInterventionRequired: tt.intervention}
			assert.Equal(t, tt.isComplete, app.IsComplete())
			assert.Equal(t, tt.requiresAction, app.RequiresAction())
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.Len(t, AllStatuses, 7)

	_, ok := ParseStatus("archived")
	assert.False(t, ok)

	st, ok := ParseStatus("ready")
	assert.True(t, ok)
	assert.Equal(t, StatusReady, st)
}

func TestJob_IsStale(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fresh := &Job{ScrapedAt: now.AddDate(0, 0, -2)}
	old := &Job{ScrapedAt: now.AddDate(0, 0, -8)}

	assert.False(t, fresh.IsStale(now, 7))
	assert.True(t, old.IsStale(now, 7))
}

func TestSemanticType(t *testing.T) {
	assert.Equal(t, "consultant", SemanticType("resume_consultant.md"))
	assert.Equal(t, "solution_architect", ResumeTemplate{Key: "resume_solution_architect.md"}.SemanticType())
	assert.Equal(t, "custom", SemanticType("custom"))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", Deref(StringPtr("x")))
	assert.Equal(t, "", Deref(nil))
}
