// internal/workers/customization/recommend-template/handler.go
package recommendtemplate

import (
	"context"
	_ "embed"

	"job-applier/internal/common/camunda"
	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/validation"
	"job-applier/internal/models"
	"job-applier/internal/recommend"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "recommend-template"

//go:embed schema.json
var schemaJSON []byte

var inputSchema = validation.MustSchema(TaskType, schemaJSON)

// Selector is satisfied by recommend.Engine.
type Selector interface {
	Select(title, description, preference string, topN int) recommend.Selection
}

// JobLookup is satisfied by store.Store.
type JobLookup interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

type Handler struct {
	config   *Config
	selector Selector
	jobs     JobLookup
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, selector Selector, jobs JobLookup, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		selector: selector,
		jobs:     jobs,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
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

// Execute selects a template. A stored job supplies title and description
// unless the input overrides them.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	title, description := input.JobTitle, input.JobDescription

	if input.JobID != "" {
		job, err := h.jobs.GetJob(ctx, input.JobID)
		if err != nil {
			return nil, err
		}
		if title == "" {
			title = job.Title
		}
		if description == "" {
			description = job.DescriptionText()
		}
	}

	if title == "" {
		return nil, errors.NewValidationError("jobTitle", "job title is required")
	}

	topN := input.TopN
	if topN <= 0 {
		topN = h.config.TopN
	}

	selection := h.selector.Select(title, description, input.PreferredTemplate, topN)

	keys := make([]string, len(selection.Recommendations))
	for i, t := range selection.Recommendations {
		keys[i] = t.Key
	}

	h.logger.Info("template selected", map[string]interface{}{
		"templateKey": selection.Template.Key,
		"outcome":     selection.Outcome,
		"jobId":       input.JobID,
	})

	return &Output{
		SelectedTemplateKey:  selection.Template.Key,
		SelectedTemplateName: selection.Template.Name,
		SelectionOutcome:     selection.Outcome,
		Recommendations:      keys,
	}, nil
}
