package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/models"
)

// AppendLog inserts one immutable audit record and fills in its id. There is
// no update or delete counterpart; logs go away only with their job.
func (q *Queries) AppendLog(ctx context.Context, entry *models.ApplicationLog) error {
	if entry.EventType == "" {
		return errors.NewValidationError("event_type", "event type is required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var metadata interface{}
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return errors.NewValidationError("metadata", err.Error())
		}
		metadata = raw
	}

	err := q.db.QueryRowContext(ctx, `
		INSERT INTO application_logs (application_id, event_type, message, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		entry.ApplicationID,
		entry.EventType,
		entry.Message,
		metadata,
		entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		if foreignKeyViolation(err) {
			return errors.NewNotFoundError("application", strconv.FormatInt(entry.ApplicationID, 10))
		}
		return dbError("append log", err)
	}
	return nil
}

// ListLogs returns an application's audit trail in replay order.
func (q *Queries) ListLogs(ctx context.Context, applicationID int64) ([]*models.ApplicationLog, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, application_id, event_type, message, metadata, timestamp
		FROM application_logs
		WHERE application_id = $1
		ORDER BY timestamp, id`, applicationID)
	if err != nil {
		return nil, dbError("list logs", err)
	}
	defer rows.Close()

	logs := make([]*models.ApplicationLog, 0)
	for rows.Next() {
		var (
			entry    models.ApplicationLog
			metadata []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&entry.EventType,
			&entry.Message,
			&metadata,
			&entry.Timestamp,
		); err != nil {
			return nil, dbError("list logs", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, dbError("decode log metadata", err)
			}
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list logs", err)
	}
	return logs, nil
}
