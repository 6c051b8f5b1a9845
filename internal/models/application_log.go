package models

import "time"

// Well-known audit event types. Collaborators may record other values.
const (
	EventStarted      = "started"
	EventFieldFilled  = "field_filled"
	EventFileUploaded = "file_uploaded"
	EventScreenshot   = "screenshot"
	EventError        = "error"
	EventCompleted    = "completed"
	EventPaused       = "paused"

	EventCustomizationStarted = "customization_started"
	EventCustomizationReady   = "customization_ready"
	EventResumed              = "resumed"
	EventInterventionCleared  = "intervention_cleared"
)

// ApplicationLog is an immutable audit record.
type ApplicationLog struct {
	ID            int64                  `json:"id"`
	ApplicationID int64                  `json:"applicationId"`
	EventType     string                 `json:"eventType"`
	Message       string                 `json:"message"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}
