package recordapplicationevent

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

const TaskType = "record-application-event"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Recorder is satisfied by lifecycle.Service.
type Recorder interface {
	RecordEvent(ctx context.Context, applicationID int64, eventType, message string, metadata map[string]interface{}) (*models.ApplicationLog, error)
}

type Handler struct {
	config  *Config
	service Recorder
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Recorder, log logger.Logger) *Handler {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	entry, err := h.service.RecordEvent(ctx, input.ApplicationID, input.EventType, input.Message, input.Metadata)
	if err != nil {
		return nil, err
	}
	return &Output{
		LogID:     entry.ID,
		Timestamp: entry.Timestamp.UTC().Format(time.RFC3339Nano),
	}, nil
}
