package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/models"
	"job-applier/internal/store"
)

// Notifier is told when an application is paused for a human.
type Notifier interface {
	NotifyIntervention(ctx context.Context, app *models.Application, job *models.Job) error
}

// Request is one transition. Optional fields are applied only where the
// target state uses them.
type Request struct {
	ApplicationID      int64
	To                 models.Status
	TailoredResumePath string
	CoverLetterPath    string
	ApplicationURL     string
	ErrorMessage       string
	InterventionReason string
	Message            string
	Metadata           map[string]interface{}
}

type Service struct {
	store    *store.Store
	machine  Machine
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

// NewService builds the lifecycle service. notifier may be nil.
func NewService(st *store.Store, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		logger:   logger.Component(log, "lifecycle"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue creates a queued application for a job. Creation is not a
// transition and writes no audit log.
func (s *Service) Enqueue(ctx context.Context, jobID string) (*models.Application, error) {
	app, err := s.store.CreateApplication(ctx, jobID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("application queued", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
	})
	return app, nil
}

// Transition moves an application to req.To under a row lock and appends the
// matching audit log in the same transaction.
func (s *Service) Transition(ctx context.Context, req Request) (*models.Application, error) {
	var (
		updated *models.Application
		from    models.Status
	)

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		app, err := q.GetApplicationForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		from = app.Status

		if err := s.machine.Check(app, req.To); err != nil {
			return err
		}

		event := s.machine.EventFor(req.To)
		if from == models.StatusPaused {
			event = models.EventResumed
		}

		now := s.now()
		if err := apply(app, req, now); err != nil {
			return err
		}
		app.UpdatedAt = now

		if err := q.UpdateApplicationState(ctx, app); err != nil {
			return err
		}

		entry := &models.ApplicationLog{
			ApplicationID: app.ID,
			EventType:     event,
			Message:       logMessage(req, from),
			Metadata:      logMetadata(req, from),
			Timestamp:     now,
		}
		if err := q.AppendLog(ctx, entry); err != nil {
			return err
		}

		updated = app
		return nil
	})
	if err != nil {
		metrics.ApplicationTransitions.WithLabelValues(string(from), string(req.To), string(errors.CodeOf(err))).Inc()
		s.logger.Warn("transition rejected", map[string]interface{}{
			"applicationId": req.ApplicationID,
			"from":          string(from),
			"to":            string(req.To),
			"error":         err,
		})
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(from), string(req.To), "ok").Inc()
	s.logger.Info("application transitioned", map[string]interface{}{
		"applicationId": updated.ID,
		"from":          string(from),
		"to":            string(updated.Status),
	})

	if updated.Status == models.StatusPaused {
		s.notifyIntervention(ctx, updated)
	}
	return updated, nil
}

// Pause flags an operative application for a human.
func (s *Service) Pause(ctx context.Context, applicationID int64, reason string) (*models.Application, error) {
	return s.Transition(ctx, Request{
		ApplicationID:      applicationID,
		To:                 models.StatusPaused,
		InterventionReason: reason,
	})
}

// ClearIntervention lowers the intervention flag. A paused application stays
// paused until Resume.
func (s *Service) ClearIntervention(ctx context.Context, applicationID int64, note string) (*models.Application, error) {
	var cleared *models.Application

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		app, err := q.GetApplicationForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if !app.UserInterventionRequired {
			return errors.NewValidationError("user_intervention_required", "no intervention pending")
		}

		now := s.now()
		app.UserInterventionRequired = false
		app.UpdatedAt = now
		if err := q.UpdateApplicationState(ctx, app); err != nil {
			return err
		}

		message := note
		if message == "" {
			message = "intervention cleared"
		}
		if err := q.AppendLog(ctx, &models.ApplicationLog{
			ApplicationID: app.ID,
			EventType:     models.EventInterventionCleared,
			Message:       message,
			Metadata:      map[string]interface{}{"reason": models.Deref(app.InterventionReason)},
			Timestamp:     now,
		}); err != nil {
			return err
		}

		cleared = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("intervention cleared", map[string]interface{}{
		"applicationId": applicationID,
	})
	return cleared, nil
}

// Resume returns a paused application to the state it was paused from.
func (s *Service) Resume(ctx context.Context, applicationID int64) (*models.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusPaused || app.PausedFrom == nil {
		return nil, errors.NewInvalidTransitionError(string(app.Status), "resume")
	}
	return s.Transition(ctx, Request{
		ApplicationID: applicationID,
		To:            *app.PausedFrom,
	})
}

// RecordEvent appends a free-form automation event (field_filled,
// screenshot and the like) without touching status.
func (s *Service) RecordEvent(ctx context.Context, applicationID int64, eventType, message string, metadata map[string]interface{}) (*models.ApplicationLog, error) {
	if strings.TrimSpace(eventType) == "" {
		return nil, errors.NewValidationError("eventType", "event type is required")
	}

	entry := &models.ApplicationLog{
		ApplicationID: applicationID,
		EventType:     eventType,
		Message:       message,
		Metadata:      metadata,
		Timestamp:     s.now(),
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the audit trail in replay order.
func (s *Service) History(ctx context.Context, applicationID int64) ([]*models.ApplicationLog, error) {
	if _, err := s.store.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, applicationID)
}

// apply sets the fields the target state requires, or fails with
// VALIDATION_ERROR when one is missing.
func apply(app *models.Application, req Request, now time.Time) error {
	from := app.Status

	switch req.To {
	case models.StatusReady:
		if req.TailoredResumePath != "" {
			app.TailoredResumePath = models.StringPtr(req.TailoredResumePath)
		}
		if models.Deref(app.TailoredResumePath) == "" {
			return errors.NewValidationError("tailoredResumePath", "tailored resume path is required to enter ready")
		}
		if req.CoverLetterPath != "" {
			app.CoverLetterPath = models.StringPtr(req.CoverLetterPath)
		}

	case models.StatusApplying:
		if req.ApplicationURL != "" {
			app.ApplicationURL = models.StringPtr(req.ApplicationURL)
		}

	case models.StatusCompleted:
		if req.ApplicationURL != "" {
			app.ApplicationURL = models.StringPtr(req.ApplicationURL)
		}
		applied := now
		app.AppliedAt = &applied
		app.UserInterventionRequired = false

	case models.StatusFailed:
		if strings.TrimSpace(req.ErrorMessage) == "" {
			return errors.NewValidationError("errorMessage", "error message is required to enter failed")
		}
		app.ErrorMessage = models.StringPtr(req.ErrorMessage)

	case models.StatusPaused:
		if strings.TrimSpace(req.InterventionReason) == "" {
			return errors.NewValidationError("interventionReason", "intervention reason is required to pause")
		}
		prior := from
		app.PausedFrom = &prior
		app.UserInterventionRequired = true
		app.InterventionReason = models.StringPtr(req.InterventionReason)
	}

	if from == models.StatusPaused {
		app.PausedFrom = nil
		app.InterventionReason = nil
	}

	app.Status = req.To
	return nil
}

func logMessage(req Request, from models.Status) string {
	if req.Message != "" {
		return req.Message
	}
	switch req.To {
	case models.StatusFailed:
		return req.ErrorMessage
	case models.StatusPaused:
		return req.InterventionReason
	}
	return fmt.Sprintf("%s -> %s", from, req.To)
}

func logMetadata(req Request, from models.Status) map[string]interface{} {
	md := map[string]interface{}{
		"from": string(from),
		"to":   string(req.To),
	}
	for k, v := range req.Metadata {
		if _, reserved := md[k]; !reserved {
			md[k] = v
		}
	}
	return md
}

func (s *Service) notifyIntervention(ctx context.Context, app *models.Application) {
	if s.notifier == nil {
		return
	}

	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		s.logger.Warn("job lookup for intervention notice failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
		job = nil
	}

	if err := s.notifier.NotifyIntervention(ctx, app, job); err != nil {
		s.logger.Error("intervention notification failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
	}
}
