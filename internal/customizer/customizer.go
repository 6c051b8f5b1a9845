// Package customizer prepares staging records that hand a resume template
// and a job posting to the content-generation collaborator. It never moves
// an application through its lifecycle.
package customizer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// StatusReadyForAIProcessing is the only status a staging record is created with.
const StatusReadyForAIProcessing = "ready_for_ai_processing"

// TemplateSource resolves catalog entries and their content.
type TemplateSource interface {
	Get(key string) (models.ResumeTemplate, error)
	Load(key string) (string, error)
}

// Publisher makes a staging record available to collaborators.
type Publisher interface {
	Publish(ctx context.Context, rec *StagingRecord) error
}

// Request describes one customization.
type Request struct {
	TemplateKey    string
	JobTitle       string
	JobDescription string
	Company        string
	CompanyInfo    map[string]interface{}
	ApplicationID  int64
	DryRun         bool
}

// StagingRecord is what content generation consumes.
type StagingRecord struct {
	ID              string                 `json:"id"`
	ApplicationID   int64                  `json:"applicationId,omitempty"`
	TemplateKey     string                 `json:"templateKey"`
	TemplateName    string                 `json:"templateName"`
	TemplateContent string                 `json:"templateContent"`
	JobTitle        string                 `json:"jobTitle"`
	JobDescription  string                 `json:"jobDescription"`
	Company         string                 `json:"company"`
	CompanyInfo     map[string]interface{} `json:"companyInfo,omitempty"`
	OutputPath      string                 `json:"outputPath"`
	Status          string                 `json:"status"`
	PreparedAt      time.Time              `json:"preparedAt"`
}

type Customizer struct {
	templates TemplateSource
	fs        afero.Fs
	outputDir string
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time
}

// New builds a Customizer writing under outputDir on fs. publisher may be nil,
// in which case records are only returned.
func New(templates TemplateSource, fs afero.Fs, outputDir string, publisher Publisher, log logger.Logger) *Customizer {
	return &Customizer{
		templates: templates,
		fs:        fs,
		outputDir: outputDir,
		publisher: publisher,
		logger:    logger.Component(log, "customizer"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OutputPath derives the target file for a tailored resume.
func (c *Customizer) OutputPath(company, title, templateKey string) string {
	return OutputPath(c.outputDir, company, title, templateKey)
}

// Prepare loads the template, derives and creates the output directory and
// returns the staging record. A dry run leaves the filesystem and Redis
// untouched but returns a record of the same shape.
func (c *Customizer) Prepare(ctx context.Context, req Request) (*StagingRecord, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tmpl, err := c.templates.Get(req.TemplateKey)
	if err != nil {
		return nil, err
	}
	content, err := c.templates.Load(req.TemplateKey)
	if err != nil {
		return nil, err
	}

	outputPath := c.OutputPath(req.Company, req.JobTitle, req.TemplateKey)
	dir := filepath.Dir(outputPath)

	if req.DryRun {
		exists, err := afero.DirExists(c.fs, dir)
		if err != nil {
			return nil, errors.NewIOFailureError("stat", dir, err)
		}
		c.logger.Info("dry run, output directory not created", map[string]interface{}{
			"dir":    dir,
			"exists": exists,
		})
	} else if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOFailureError("mkdir", dir, err)
	}

	rec := &StagingRecord{
		ID:              uuid.NewString(),
		ApplicationID:   req.ApplicationID,
		TemplateKey:     tmpl.Key,
		TemplateName:    tmpl.Name,
		TemplateContent: content,
		JobTitle:        req.JobTitle,
		JobDescription:  req.JobDescription,
		Company:         req.Company,
		OutputPath:      outputPath,
		Status:          StatusReadyForAIProcessing,
		PreparedAt:      c.now(),
	}
	if len(req.CompanyInfo) > 0 {
		rec.CompanyInfo = req.CompanyInfo
	}

	mode := "dry_run"
	if !req.DryRun {
		mode = "prepared"
		if req.ApplicationID > 0 && c.publisher != nil {
			if err := c.publisher.Publish(ctx, rec); err != nil {
				return nil, err
			}
			mode = "published"
		}
	}
	metrics.StagingRecordsPrepared.WithLabelValues(tmpl.SemanticType(), mode).Inc()

	c.logger.Info("customization prepared", map[string]interface{}{
		"stagingId":     rec.ID,
		"applicationId": req.ApplicationID,
		"template":      tmpl.Key,
		"company":       req.Company,
		"outputPath":    outputPath,
		"mode":          mode,
	})
	return rec, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.TemplateKey) == "" {
		return errors.NewValidationError("templateKey", "template key is required")
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		return errors.NewValidationError("jobTitle", "job title is required")
	}
	if strings.TrimSpace(req.Company) == "" {
		return errors.NewValidationError("company", "company is required")
	}
	return nil
}
