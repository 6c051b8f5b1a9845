package store

import (
	"context"
	"fmt"

	"job-applier/internal/common/errors"
)

// Stats is the operator summary served on /stats.
type Stats struct {
	TotalJobs         int64 `json:"totalJobs"`
	TotalApplications int64 `json:"totalApplications"`
	Completed         int64 `json:"completed"`
	Failed            int64 `json:"failed"`
	Pending           int64 `json:"pending"`
	RequiringAction   int64 `json:"requiringAction"`
	TotalLogs         int64 `json:"totalLogs"`
}

// Stats counts rows in one round trip. Pending covers queued and applying.
func (q *Queries) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM applications WHERE status = 'completed'),
			(SELECT COUNT(*) FROM applications WHERE status = 'failed'),
			(SELECT COUNT(*) FROM applications WHERE status IN ('queued', 'applying')),
			(SELECT COUNT(*) FROM applications WHERE user_intervention_required OR status = 'paused'),
			(SELECT COUNT(*) FROM application_logs)`,
	).Scan(
		&s.TotalJobs,
		&s.TotalApplications,
		&s.Completed,
		&s.Failed,
		&s.Pending,
		&s.RequiringAction,
		&s.TotalLogs,
	)
	if err != nil {
		return nil, dbError("stats", err)
	}
	return &s, nil
}

// PurgeResult reports what a job purge removed.
type PurgeResult struct {
	JobID        string `json:"jobId"`
	Applications int64  `json:"applications"`
	Logs         int64  `json:"logs"`
}

// PurgeJob deletes a job and, through the foreign-key cascade, its
// applications and their logs. The counts are taken inside the same
// transaction, and the delete is rejected if anything survives it.
func (s *Store) PurgeJob(ctx context.Context, id string) (*PurgeResult, error) {
	result := &PurgeResult{JobID: id}

	err := s.WithTx(ctx, func(q *Queries) error {
		var locked string
		err := q.db.QueryRowContext(ctx, `SELECT id FROM jobs WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if isNoRows(err) {
				return errors.NewNotFoundError("job", id)
			}
			return dbError("purge job", err)
		}

		if err := q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM applications WHERE job_id = $1`, id,
		).Scan(&result.Applications); err != nil {
			return dbError("purge job", err)
		}
		if err := q.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM application_logs l
			JOIN applications a ON a.id = l.application_id
			WHERE a.job_id = $1`, id,
		).Scan(&result.Logs); err != nil {
			return dbError("purge job", err)
		}

		if _, err := q.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
			return dbError("purge job", err)
		}

		var remaining int64
		if err := q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM applications WHERE job_id = $1`, id,
		).Scan(&remaining); err != nil {
			return dbError("purge job", err)
		}
		if remaining != 0 {
			return errors.NewDatabaseError("purge job",
				fmt.Errorf("cascade left %d applications for job %s", remaining, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job purged", map[string]interface{}{
		"jobId":        id,
		"applications": result.Applications,
		"logs":         result.Logs,
	})
	return result, nil
}
