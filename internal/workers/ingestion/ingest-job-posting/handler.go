package ingestjobposting

import (
	"context"
	_ "embed"

	"job-applier/internal/common/camunda"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/validation"
	"job-applier/internal/ingest"
	"job-applier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "ingest-job-posting"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Ingester is satisfied by ingest.Service.
type Ingester interface {
	Ingest(ctx context.Context, posting models.Posting) (*ingest.Result, error)
}

type Handler struct {
	config  *Config
	service Ingester
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Ingester, log logger.Logger) *Handler {
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

	input, err := parseInput(job)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	return camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func parseInput(job entities.Job) (*Input, error) {
	if err := inputSchema.Validate(job.Variables).Err(); err != nil {
		return nil, err
	}
	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// Execute stores the posting, or resolves it to the job already stored.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.service.Ingest(ctx, models.Posting{
		URL:             input.URL,
		Company:         input.Company,
		Title:           input.Title,
		Location:        input.Location,
		Description:     models.StringPtr(input.Description),
		RawContent:      models.StringPtr(input.RawContent),
		Source:          input.Source,
		MatchedKeywords: input.MatchedKeywords,
	})
	if err != nil {
		return nil, err
	}

	return &Output{JobID: result.JobID, Duplicate: result.Duplicate}, nil
}
