// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	JobID string `json:"jobId"`
}

type Output struct {
	ApplicationID     int64  `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
