package transitionapplication

import (
	"context"
	_ "embed"

	"job-applier/internal/common/camunda"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/validation"
	"job-applier/internal/lifecycle"
	"job-applier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "transition-application"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Lifecycle is satisfied by lifecycle.Service.
type Lifecycle interface {
	Transition(ctx context.Context, req lifecycle.Request) (*models.Application, error)
	Pause(ctx context.Context, applicationID int64, reason string) (*models.Application, error)
	ClearIntervention(ctx context.Context, applicationID int64, note string) (*models.Application, error)
	Resume(ctx context.Context, applicationID int64) (*models.Application, error)
}

type Handler struct {
	config  *Config
	service Lifecycle
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Lifecycle, log logger.Logger) *Handler {
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

// Execute dispatches on Action; an empty action is a plain transition.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		app *models.Application
		err error
	)

	switch input.Action {
	case "", ActionTransition:
		app, err = h.service.Transition(ctx, lifecycle.Request{
			ApplicationID:      input.ApplicationID,
			To:                 models.Status(input.Status),
			TailoredResumePath: input.TailoredResumePath,
			CoverLetterPath:    input.CoverLetterPath,
			ApplicationURL:     input.ApplicationURL,
			ErrorMessage:       input.ErrorMessage,
			InterventionReason: input.InterventionReason,
			Message:            input.Message,
			Metadata:           input.Metadata,
		})
	case ActionPause:
		app, err = h.service.Pause(ctx, input.ApplicationID, input.InterventionReason)
	case ActionClear:
		app, err = h.service.ClearIntervention(ctx, input.ApplicationID, input.Message)
	case ActionResume:
		app, err = h.service.Resume(ctx, input.ApplicationID)
	default:
		return nil, errors.NewValidationError("action", "unknown action "+input.Action)
	}
	if err != nil {
		return nil, err
	}

	out := &Output{
		ApplicationID:            app.ID,
		ApplicationStatus:        string(app.Status),
		UserInterventionRequired: app.UserInterventionRequired,
		RequiresAction:           app.RequiresAction(),
		IsComplete:               app.IsComplete(),
	}
	if app.PausedFrom != nil {
		out.PausedFrom = string(*app.PausedFrom)
	}
	return out, nil
}
