package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/models"
)

const applicationColumns = `id, job_id, status, paused_from, tailored_resume_path,
	cover_letter_path, application_url, applied_at, error_message,
	user_intervention_required, intervention_reason, created_at, updated_at`

func scanApplication(row scanner) (*models.Application, error) {
	var (
		app        models.Application
		status     string
		pausedFrom sql.NullString
		appliedAt  sql.NullTime
	)
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&status,
		&pausedFrom,
		&app.TailoredResumePath,
		&app.CoverLetterPath,
		&app.ApplicationURL,
		&appliedAt,
		&app.ErrorMessage,
		&app.UserInterventionRequired,
		&app.InterventionReason,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}

	app.Status = models.Status(status)
	if pausedFrom.Valid {
		prior := models.Status(pausedFrom.String)
		app.PausedFrom = &prior
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		app.AppliedAt = &t
	}
	return &app, nil
}

// CreateApplication inserts a queued application for an existing job. A
// missing job is reported as NOT_FOUND.
func (q *Queries) CreateApplication(ctx context.Context, jobID string) (*models.Application, error) {
	now := time.Now().UTC()
	app := &models.Application{
		JobID:     jobID,
		Status:    models.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := q.db.QueryRowContext(ctx, `
		INSERT INTO applications (job_id, status, user_intervention_required, created_at, updated_at)
		VALUES ($1, $2, FALSE, $3, $3)
		RETURNING id`,
		jobID, string(models.StatusQueued), now,
	).Scan(&app.ID)
	if err != nil {
		if foreignKeyViolation(err) {
			return nil, errors.NewNotFoundError("job", jobID)
		}
		return nil, dbError("create application", err)
	}
	return app, nil
}

// GetApplication loads one application.
func (q *Queries) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return oneApplication(row, "get application", id)
}

// GetApplicationForUpdate loads and row-locks one application. It is only
// meaningful on Queries bound to a transaction.
func (q *Queries) GetApplicationForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	return oneApplication(row, "lock application", id)
}

// UpdateApplicationState writes every mutable column of app. The lifecycle
// service is the only caller.
func (q *Queries) UpdateApplicationState(ctx context.Context, app *models.Application) error {
	var pausedFrom interface{}
	if app.PausedFrom != nil {
		pausedFrom = string(*app.PausedFrom)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE applications SET
			status                     = $2,
			paused_from                = $3,
			tailored_resume_path       = $4,
			cover_letter_path          = $5,
			application_url            = $6,
			applied_at                 = $7,
			error_message              = $8,
			user_intervention_required = $9,
			intervention_reason        = $10,
			updated_at                 = $11
		WHERE id = $1`,
		app.ID,
		string(app.Status),
		pausedFrom,
		app.TailoredResumePath,
		app.CoverLetterPath,
		app.ApplicationURL,
		app.AppliedAt,
		app.ErrorMessage,
		app.UserInterventionRequired,
		app.InterventionReason,
		app.UpdatedAt,
	)
	if err != nil {
		return dbError("update application", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbError("update application", err)
	}
	if n == 0 {
		return errors.NewNotFoundError("application", strconv.FormatInt(app.ID, 10))
	}
	return nil
}

// ListApplicationsByJob returns a job's applications in creation order.
func (q *Queries) ListApplicationsByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE job_id = $1
		ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, dbError("list applications by job", err)
	}
	return collectApplications(rows, "list applications by job")
}

// ListApplicationsByStatus returns applications in one status, oldest update first.
func (q *Queries) ListApplicationsByStatus(ctx context.Context, status models.Status) ([]*models.Application, error) {
	if !status.Valid() {
		return nil, errors.NewValidationError("status", "unknown status: "+string(status))
	}
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE status = $1
		ORDER BY updated_at, id`, string(status))
	if err != nil {
		return nil, dbError("list applications by status", err)
	}
	return collectApplications(rows, "list applications by status")
}

// ListRequiringAction returns applications flagged for a human or paused.
func (q *Queries) ListRequiringAction(ctx context.Context) ([]*models.Application, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE user_intervention_required OR status = 'paused'
		ORDER BY updated_at, id`)
	if err != nil {
		return nil, dbError("list applications requiring action", err)
	}
	return collectApplications(rows, "list applications requiring action")
}

func oneApplication(row *sql.Row, op string, id int64) (*models.Application, error) {
	app, err := scanApplication(row)
	if isNoRows(err) {
		return nil, errors.NewNotFoundError("application", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, dbError(op, err)
	}
	return app, nil
}

func collectApplications(rows *sql.Rows, op string) ([]*models.Application, error) {
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, dbError(op, err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(op, err)
	}
	return apps, nil
}
