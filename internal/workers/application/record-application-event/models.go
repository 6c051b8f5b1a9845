package recordapplicationevent

type Input struct {
	ApplicationID int64                  `json:"applicationId"`
	EventType     string                 `json:"eventType"`
	Message       string                 `json:"message,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	LogID     int64  `json:"logId"`
	Timestamp string `json:"timestamp"`
}
