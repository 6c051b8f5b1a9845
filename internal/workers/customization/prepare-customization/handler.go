package preparecustomization

import (
	"context"
	_ "embed"
	"time"

	"job-applier/internal/common/camunda"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/validation"
	"job-applier/internal/customizer"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "prepare-customization"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Preparer is satisfied by customizer.Customizer.
type Preparer interface {
	Prepare(ctx context.Context, req customizer.Request) (*customizer.StagingRecord, error)
}

type Handler struct {
	config  *Config
	service Preparer
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Preparer, log logger.Logger) *Handler {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := h.service.Prepare(ctx, customizer.Request{
		TemplateKey:    input.TemplateKey,
		JobTitle:       input.JobTitle,
		JobDescription: input.JobDescription,
		Company:        input.Company,
		CompanyInfo:    input.CompanyInfo,
		ApplicationID:  input.ApplicationID,
		DryRun:         input.DryRun,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		StagingID:     rec.ID,
		ApplicationID: rec.ApplicationID,
		TemplateKey:   rec.TemplateKey,
		TemplateName:  rec.TemplateName,
		OutputPath:    rec.OutputPath,
		Status:        rec.Status,
		PreparedAt:    rec.PreparedAt.UTC().Format(time.RFC3339),
		DryRun:        input.DryRun,
	}, nil
}
