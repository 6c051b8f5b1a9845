package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/dedup"
	"job-applier/internal/models"
	"job-applier/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Doubles
// ==========================

// memStore enforces the same uniqueness keys as the jobs table: the
// fingerprint id, the url and the composite key, all case-sensitive.
type memStore struct {
	mu      sync.Mutex
	jobs    map[string]*models.Job
	inserts int
	purged  []string
	stale   time.Time
}

func newMemStore() *memStore {
	return &memStore{jobs: map[string]*models.Job{}}
}

func (m *memStore) InsertJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if _, ok := m.jobs[job.ID]; ok {
		return apperrors.NewConflictError("job", "id", nil)
	}
	for _, j := range m.jobs {
		if j.URL == job.URL {
			return apperrors.NewConflictError("job", "url", nil)
		}
		if j.Company == job.Company && j.Title == job.Title && j.Location == job.Location {
			return apperrors.NewConflictError("job", "company_title_location", nil)
		}
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, apperrors.NewNotFoundError("job", id)
}

func (m *memStore) FindJobByURL(_ context.Context, url string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.URL == url {
			return j, nil
		}
	}
	return nil, apperrors.NewNotFoundError("job", url)
}

func (m *memStore) FindJobByKey(_ context.Context, company, title, location string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.Company == company && j.Title == title && j.Location == location {
			return j, nil
		}
	}
	return nil, apperrors.NewNotFoundError("job", company)
}

func (m *memStore) ListStaleJobs(_ context.Context, olderThan time.Time) ([]*models.Job, error) {
	m.stale = olderThan
	return nil, nil
}

func (m *memStore) PurgeJob(_ context.Context, id string) (*store.PurgeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	m.purged = append(m.purged, id)
	return &store.PurgeResult{JobID: id}, nil
}

type fakeIndexer struct {
	indexed []string
	deleted []string
	err     error
}

func (f *fakeIndexer) IndexJob(_ context.Context, job *models.Job) error {
	f.indexed = append(f.indexed, job.ID)
	return f.err
}

func (f *fakeIndexer) DeleteJob(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type brokenCache struct{}

func (brokenCache) Lookup(context.Context, string) (string, bool, error) {
	return "", false, errors.New("redis down")
}
func (brokenCache) Remember(context.Context, string, string) error { return errors.New("redis down") }
func (brokenCache) Forget(context.Context, string) error           { return errors.New("redis down") }

// ==========================
// Test Helper Functions
// ==========================

func newTestCache(t *testing.T) *dedup.SeenCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return dedup.NewSeenCache(client, time.Hour)
}

func testPosting() models.Posting {
	return models.Posting{
		URL:         "https://example.com/jobs/1",
		Company:     "Acme Corp",
		Title:       "Senior Engineer",
		Location:    "Remote",
		Description: models.StringPtr("Build distributed systems"),
		Source:      models.SourceLinkedIn,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Ingest_New(t *testing.T) {
	st := newMemStore()
	idx := &fakeIndexer{}
	svc := NewService(st, newTestCache(t), idx, logger.NewTestLogger(t))

	res, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)
	assert.Equal(t, "675e9b3bd1299775", res.JobID)
	assert.False(t, res.Duplicate)
	assert.Equal(t, []string{"675e9b3bd1299775"}, idx.indexed)

	stored, err := st.GetJob(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Build distributed systems", stored.DescriptionText())
	assert.False(t, stored.ScrapedAt.IsZero())
}

func TestService_Ingest_RepeatHitsCache(t *testing.T) {
	st := newMemStore()
	svc := NewService(st, newTestCache(t), nil, logger.NewTestLogger(t))

	first, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)

	second, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)

	assert.Equal(t, first.JobID, second.JobID)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 1, st.inserts)
}

func TestService_Ingest_ConflictResolvesExisting(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.Posting)
	}{
		{"same url, different title", func(p *models.Posting) { p.Title = "Staff Engineer" }},
		{"same composite key, different url", func(p *models.Posting) { p.URL = "https://mirror.example.com/1" }},
		{"same fingerprint, different case", func(p *models.Posting) {
			p.URL = strings.ToUpper(p.URL)
			p.Company = strings.ToUpper(p.Company)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			svc := NewService(st, nil, nil, logger.NewTestLogger(t))

			original, err := svc.Ingest(context.Background(), testPosting())
			require.NoError(t, err)

			p := testPosting()
			tt.mutate(&p)
			dup, err := svc.Ingest(context.Background(), p)
			require.NoError(t, err)

			assert.True(t, dup.Duplicate)
			assert.Equal(t, original.JobID, dup.JobID)
			assert.Len(t, st.jobs, 1)
		})
	}
}

func TestService_Ingest_PrimaryKeyConflictAgainstPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewService(store.New(db, logger.NewTestLogger(t)), nil, nil, logger.NewTestLogger(t))

	stored := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO jobs").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "jobs_pkey"})
	mock.ExpectQuery(`FROM jobs WHERE id = \$1`).
		WithArgs("675e9b3bd1299775").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "url", "company", "title", "location", "description", "raw_content",
			"source", "scraped_at", "updated_at", "matched_keywords",
		}).AddRow("675e9b3bd1299775", "https://example.com/jobs/1", "Acme Corp", "Senior Engineer",
			"Remote", nil, nil, models.SourceLinkedIn, stored, stored, nil))

	p := testPosting()
	p.URL = strings.ToUpper(p.URL)
	p.Company = strings.ToUpper(p.Company)
	res, err := svc.Ingest(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, res.Duplicate)
	assert.Equal(t, "675e9b3bd1299775", res.JobID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Ingest_CacheFailureDegrades(t *testing.T) {
	st := newMemStore()
	svc := NewService(st, brokenCache{}, nil, logger.NewTestLogger(t))

	res, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	res, err = svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 2, st.inserts)
}

func TestService_Ingest_IndexFailureIgnored(t *testing.T) {
	svc := NewService(newMemStore(), nil, &fakeIndexer{err: errors.New("es down")}, logger.NewTestLogger(t))

	res, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)
	assert.NotEmpty(t, res.JobID)
}

func TestService_Ingest_Validation(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil, logger.NewTestLogger(t))

	for _, field := range []string{"url", "company", "title", "source"} {
		t.Run(field, func(t *testing.T) {
			p := testPosting()
			switch field {
			case "url":
				p.URL = ""
			case "company":
				p.Company = " "
			case "title":
				p.Title = ""
			case "source":
				p.Source = ""
			}
			_, err := svc.Ingest(context.Background(), p)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestService_Purge(t *testing.T) {
	st := newMemStore()
	cache := newTestCache(t)
	idx := &fakeIndexer{}
	svc := NewService(st, cache, idx, logger.NewTestLogger(t))

	res, err := svc.Ingest(context.Background(), testPosting())
	require.NoError(t, err)

	_, err = svc.Purge(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.JobID}, st.purged)
	assert.Equal(t, []string{res.JobID}, idx.deleted)

	_, found, err := cache.Lookup(context.Background(), testPosting().URL)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.Purge(context.Background(), res.JobID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_Stale(t *testing.T) {
	st := newMemStore()
	svc := NewService(st, nil, nil, logger.NewTestLogger(t))
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Stale(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -DefaultStaleAfterDays), st.stale)
}
