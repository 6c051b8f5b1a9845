// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	_ "embed"
	"time"

	"job-applier/internal/common/camunda"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/validation"
	"job-applier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "create-application-record"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Enqueuer is satisfied by lifecycle.Service.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID string) (*models.Application, error)
}

type Handler struct {
	config  *Config
	service Enqueuer
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Enqueuer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	err := inputSchema.Validate(job.Variables).Err()
	if err == nil {
		err = camunda.DecodeVariables(job, &input)
	}
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	return camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// Execute creates a queued application for an existing job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	app, err := h.service.Enqueue(ctx, input.JobID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
	})

	return &Output{
		ApplicationID:     app.ID,
		ApplicationStatus: string(app.Status),
		CreatedAt:         app.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}
