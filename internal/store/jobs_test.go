package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() *models.Job {
	return &models.Job{
		ID:          "675e9b3bd1299775",
		URL:         "https://example.com/jobs/1",
		Company:     "Acme Corp",
		Title:       "Senior Engineer",
		Location:    "Remote",
		Description: models.StringPtr("Build things"),
		Source:      models.SourceLinkedIn,
		ScrapedAt:   fixedTime,
	}
}

func TestQueries_InsertJob(t *testing.T) {
	s, mock := newTestStore(t)
	job := testJob()

	mock.ExpectExec(`INSERT INTO jobs`).
		WithArgs(
			"675e9b3bd1299775",
			"https://example.com/jobs/1",
			"Acme Corp",
			"Senior Engineer",
			"Remote",
			sqlmock.AnyArg(), // description
			nil,              // raw_content
			models.SourceLinkedIn,
			fixedTime,
			fixedTime,
			nil, // matched_keywords
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.InsertJob(context.Background(), job))
	assert.Equal(t, fixedTime, job.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_InsertJob_Conflict(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		key        string
	}{
		{"duplicate url", "jobs_url_key", "url"},
		{"duplicate composite key", "jobs_company_title_location_key", "company_title_location"},
		{"duplicate id", "jobs_pkey", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStore(t)

			mock.ExpectExec(`INSERT INTO jobs`).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			err := s.InsertJob(context.Background(), testJob())
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
			assert.Equal(t, tt.key, ConflictKey(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueries_InsertJob_DatabaseError(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO jobs`).WillReturnError(errors.New("connection reset"))

	err := s.InsertJob(context.Background(), testJob())
	assert.True(t, apperrors.Is(err, apperrors.ErrDatabase))
	assert.False(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestQueries_GetJob(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs("675e9b3bd1299775").
		WillReturnRows(addJob(jobRows(), "675e9b3bd1299775", "https://example.com/jobs/1"))

	job, err := s.GetJob(context.Background(), "675e9b3bd1299775")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs/1", job.URL)
	assert.Equal(t, "Build pipelines", job.DescriptionText())
	assert.Nil(t, job.RawContent)
	assert.Equal(t, []string{"spark", "etl"}, job.MatchedKeywords)
	assert.Equal(t, fixedTime, job.ScrapedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_GetJob_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`FROM jobs WHERE id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := s.GetJob(context.Background(), "nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_FindJobByURLAndKey(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`FROM jobs WHERE url = \$1`).
		WithArgs("https://example.com/jobs/1").
		WillReturnRows(addJob(jobRows(), "a", "https://example.com/jobs/1"))
	mock.ExpectQuery(`WHERE company = \$1 AND title = \$2 AND location = \$3`).
		WithArgs("Acme", "Data Engineer", "Berlin").
		WillReturnRows(addJob(jobRows(), "b", "https://example.com/jobs/2"))

	byURL, err := s.FindJobByURL(context.Background(), "https://example.com/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, "a", byURL.ID)

	byKey, err := s.FindJobByKey(context.Background(), "Acme", "Data Engineer", "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "b", byKey.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_UpdateJobDetails(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`UPDATE jobs SET`).
		WithArgs("a", "new description", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(addJob(jobRows(), "a", "https://example.com/jobs/1"))

	job, err := s.UpdateJobDetails(context.Background(), "a", JobDetails{
		Description:     models.StringPtr("new description"),
		MatchedKeywords: []string{"spark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_UpdateJobDetails_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`UPDATE jobs SET`).WillReturnError(sql.ErrNoRows)

	_, err := s.UpdateJobDetails(context.Background(), "gone", JobDetails{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestQueries_ListJobs(t *testing.T) {
	s, mock := newTestStore(t)

	rows := addJob(addJob(jobRows(), "a", "u1"), "b", "u2")
	mock.ExpectQuery(`FROM jobs\s+WHERE \(\$1 = '' OR source = \$1\)`).
		WithArgs(models.SourceLinkedIn, 100).
		WillReturnRows(rows)

	jobs, err := s.ListJobs(context.Background(), models.SourceLinkedIn, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].ID)
	assert.Equal(t, "b", jobs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_ListStaleJobs(t *testing.T) {
	s, mock := newTestStore(t)
	cutoff := fixedTime.Add(-7 * 24 * time.Hour)

	mock.ExpectQuery(`WHERE scraped_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(jobRows())

	jobs, err := s.ListStaleJobs(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
