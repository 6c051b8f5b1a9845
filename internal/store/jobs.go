package store

import (
	"context"
	"database/sql"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/models"

	"github.com/lib/pq"
)

const jobColumns = `id, url, company, title, location, description, raw_content,
	source, scraped_at, updated_at, matched_keywords`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*models.Job, error) {
	var job models.Job
	var keywords pq.StringArray
	if err := row.Scan(
		&job.ID,
		&job.URL,
		&job.Company,
		&job.Title,
		&job.Location,
		&job.Description,
		&job.RawContent,
		&job.Source,
		&job.ScrapedAt,
		&job.UpdatedAt,
		&keywords,
	); err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		job.MatchedKeywords = []string(keywords)
	}
	return &job, nil
}

// InsertJob stores a new posting. A unique violation comes back as CONFLICT
// naming the violated key; ConflictKey extracts it.
func (q *Queries) InsertJob(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	if job.ScrapedAt.IsZero() {
		job.ScrapedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.ScrapedAt
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID,
		job.URL,
		job.Company,
		job.Title,
		job.Location,
		job.Description,
		job.RawContent,
		job.Source,
		job.ScrapedAt,
		job.UpdatedAt,
		keywordArray(job.MatchedKeywords),
	)
	if err != nil {
		if key, ok := uniqueViolation(err); ok {
			return errors.NewConflictError("job", key, err)
		}
		return dbError("insert job", err)
	}
	return nil
}

// GetJob loads a job by fingerprint id.
func (q *Queries) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return oneJob(row, "get job", id)
}

// FindJobByURL resolves the unique url key.
func (q *Queries) FindJobByURL(ctx context.Context, url string) (*models.Job, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = $1`, url)
	return oneJob(row, "find job by url", url)
}

// FindJobByKey resolves the unique (company, title, location) key.
func (q *Queries) FindJobByKey(ctx context.Context, company, title, location string) (*models.Job, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE company = $1 AND title = $2 AND location = $3`,
		company, title, location)
	return oneJob(row, "find job by key", company+"|"+title+"|"+location)
}

// JobDetails carries the mutable job fields. Nil fields are left unchanged.
type JobDetails struct {
	Description     *string
	RawContent      *string
	MatchedKeywords []string
}

// UpdateJobDetails refreshes non-key fields and updated_at. The four key
// fields, and therefore the id, never change.
func (q *Queries) UpdateJobDetails(ctx context.Context, id string, details JobDetails) (*models.Job, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE jobs SET
			description      = COALESCE($2, description),
			raw_content      = COALESCE($3, raw_content),
			matched_keywords = COALESCE($4, matched_keywords),
			updated_at       = $5
		WHERE id = $1
		RETURNING `+jobColumns,
		id,
		details.Description,
		details.RawContent,
		keywordArray(details.MatchedKeywords),
		time.Now().UTC(),
	)
	return oneJob(row, "update job", id)
}

// ListJobs returns the most recently scraped jobs, optionally for one source.
func (q *Queries) ListJobs(ctx context.Context, source string, limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE ($1 = '' OR source = $1)
		ORDER BY scraped_at DESC, id
		LIMIT $2`, source, limit)
	if err != nil {
		return nil, dbError("list jobs", err)
	}
	return collectJobs(rows, "list jobs")
}

// ListStaleJobs returns jobs scraped before olderThan, oldest first.
func (q *Queries) ListStaleJobs(ctx context.Context, olderThan time.Time) ([]*models.Job, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE scraped_at < $1
		ORDER BY scraped_at, id`, olderThan)
	if err != nil {
		return nil, dbError("list stale jobs", err)
	}
	return collectJobs(rows, "list stale jobs")
}

func oneJob(row *sql.Row, op, id string) (*models.Job, error) {
	job, err := scanJob(row)
	if isNoRows(err) {
		return nil, errors.NewNotFoundError("job", id)
	}
	if err != nil {
		return nil, dbError(op, err)
	}
	return job, nil
}

func collectJobs(rows *sql.Rows, op string) ([]*models.Job, error) {
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, dbError(op, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(op, err)
	}
	return jobs, nil
}

// keywordArray maps an empty list to NULL.
func keywordArray(keywords []string) interface{} {
	if len(keywords) == 0 {
		return nil
	}
	return pq.StringArray(keywords)
}
