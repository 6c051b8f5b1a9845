package models

import "time"

// Status is the lifecycle state of an Application.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusCustomizing Status = "customizing"
	StatusReady       Status = "ready"
	StatusApplying    Status = "applying"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusPaused      Status = "paused"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusQueued,
	StatusCustomizing,
	StatusReady,
	StatusApplying,
	StatusCompleted,
	StatusFailed,
	StatusPaused,
}

// Valid reports whether s is one of the seven known statuses.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts free text into a Status, reporting false when unknown.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

func (s Status) String() string { return string(s) }

// Application is one attempt against a Job. It is mutated only through the
// lifecycle service.
type Application struct {
	ID                       int64      `json:"id"`
	JobID                    string     `json:"jobId"`
	Status                   Status     `json:"status"`
	PausedFrom               *Status    `json:"pausedFrom,omitempty"`
	TailoredResumePath       *string    `json:"tailoredResumePath,omitempty"`
	CoverLetterPath          *string    `json:"coverLetterPath,omitempty"`
	ApplicationURL           *string    `json:"applicationUrl,omitempty"`
	AppliedAt                *time.Time `json:"appliedAt,omitempty"`
	ErrorMessage             *string    `json:"errorMessage,omitempty"`
	UserInterventionRequired bool       `json:"userInterventionRequired"`
	InterventionReason       *string    `json:"interventionReason,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

// IsComplete is true for completed, failed and paused applications.
func (a *Application) IsComplete() bool {
	switch a.Status {
	case StatusCompleted, StatusFailed, StatusPaused:
		return true
	}
	return false
}

// RequiresAction is true when a human has to step in.
func (a *Application) RequiresAction() bool {
	return a.UserInterventionRequired || a.Status == StatusPaused
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
