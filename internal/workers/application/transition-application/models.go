package transitionapplication

// Actions accepted by the worker.
const (
	ActionTransition = "transition"
	ActionPause      = "pause"
	ActionClear      = "clear"
	ActionResume     = "resume"
)

type Input struct {
	ApplicationID      int64                  `json:"applicationId"`
	Action             string                 `json:"action,omitempty"`
	Status             string                 `json:"status,omitempty"`
	TailoredResumePath string                 `json:"tailoredResumePath,omitempty"`
	CoverLetterPath    string                 `json:"coverLetterPath,omitempty"`
	ApplicationURL     string                 `json:"applicationUrl,omitempty"`
	ErrorMessage       string                 `json:"errorMessage,omitempty"`
	InterventionReason string                 `json:"interventionReason,omitempty"`
	Message            string                 `json:"message,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	ApplicationID            int64  `json:"applicationId"`
	ApplicationStatus        string `json:"applicationStatus"`
	PausedFrom               string `json:"pausedFrom,omitempty"`
	UserInterventionRequired bool   `json:"userInterventionRequired"`
	RequiresAction           bool   `json:"requiresAction"`
	IsComplete               bool   `json:"isComplete"`
}
