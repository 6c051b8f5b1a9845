// Package ingest turns scraped postings into deduplicated jobs. A posting
// seen before, whether through the URL cache or a store uniqueness conflict,
// resolves to the existing job id and counts as success.
package ingest

import (
	"context"
	"strings"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/dedup"
	"job-applier/internal/models"
	"job-applier/internal/store"
)

// JobStore is the subset of the store used by ingestion.
type JobStore interface {
	InsertJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	FindJobByURL(ctx context.Context, url string) (*models.Job, error)
	FindJobByKey(ctx context.Context, company, title, location string) (*models.Job, error)
	ListStaleJobs(ctx context.Context, olderThan time.Time) ([]*models.Job, error)
	PurgeJob(ctx context.Context, id string) (*store.PurgeResult, error)
}

// SeenCache remembers url -> job id across runs.
type SeenCache interface {
	Lookup(ctx context.Context, url string) (string, bool, error)
	Remember(ctx context.Context, url, jobID string) error
	Forget(ctx context.Context, url string) error
}

// Indexer mirrors jobs into the search index.
type Indexer interface {
	IndexJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id string) error
}

// DefaultStaleAfterDays is the age after which a posting is considered stale.
const DefaultStaleAfterDays = 7

// Result is the outcome of one ingestion.
type Result struct {
	JobID     string `json:"jobId"`
	Duplicate bool   `json:"duplicate"`
}

type Service struct {
	store   JobStore
	cache   SeenCache
	indexer Indexer
	logger  logger.Logger
	now     func() time.Time
}

// NewService wires the ingestion path. cache and indexer may be nil.
func NewService(jobs JobStore, cache SeenCache, indexer Indexer, log logger.Logger) *Service {
	return &Service{
		store:   jobs,
		cache:   cache,
		indexer: indexer,
		logger:  logger.Component(log, "ingest"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ingest stores a posting or resolves it to the job already on file.
func (s *Service) Ingest(ctx context.Context, posting models.Posting) (*Result, error) {
	if err := validate(posting); err != nil {
		metrics.PostingsIngested.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if id, ok := s.lookupCache(ctx, posting.URL); ok {
		metrics.PostingsIngested.WithLabelValues("cached").Inc()
		s.logger.Debug("posting already seen", map[string]interface{}{
			"jobId": id,
			"url":   posting.URL,
		})
		return &Result{JobID: id, Duplicate: true}, nil
	}

	now := s.now()
	job := &models.Job{
		ID:              dedup.Fingerprint(posting.URL, posting.Company, posting.Title, posting.Location),
		URL:             posting.URL,
		Company:         posting.Company,
		Title:           posting.Title,
		Location:        posting.Location,
		Description:     posting.Description,
		RawContent:      posting.RawContent,
		Source:          posting.Source,
		ScrapedAt:       now,
		UpdatedAt:       now,
		MatchedKeywords: posting.MatchedKeywords,
	}

	err := s.store.InsertJob(ctx, job)
	if err != nil {
		if !errors.Is(err, errors.ErrConflict) {
			metrics.PostingsIngested.WithLabelValues("error").Inc()
			return nil, err
		}

		existing, resolveErr := s.resolveExisting(ctx, job.ID, posting)
		if resolveErr != nil {
			metrics.PostingsIngested.WithLabelValues("error").Inc()
			return nil, resolveErr
		}

		s.logger.Info("duplicate posting", map[string]interface{}{
			"jobId":       existing.ID,
			"conflictKey": store.ConflictKey(err),
			"url":         posting.URL,
		})
		s.remember(ctx, posting.URL, existing.ID)
		metrics.PostingsIngested.WithLabelValues("duplicate").Inc()
		return &Result{JobID: existing.ID, Duplicate: true}, nil
	}

	s.remember(ctx, job.URL, job.ID)
	s.index(ctx, job)

	metrics.PostingsIngested.WithLabelValues("created").Inc()
	s.logger.Info("job stored", map[string]interface{}{
		"jobId":   job.ID,
		"company": job.Company,
		"title":   job.Title,
		"source":  job.Source,
	})
	return &Result{JobID: job.ID}, nil
}

// Purge removes a job with its applications and logs, then drops it from
// the cache and the search index.
func (s *Service) Purge(ctx context.Context, jobID string) (*store.PurgeResult, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.store.PurgeJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Forget(ctx, job.URL); err != nil {
			s.logger.Warn("seen cache forget failed", map[string]interface{}{
				"jobId": jobID,
				"error": err,
			})
		}
	}
	if s.indexer != nil {
		if err := s.indexer.DeleteJob(ctx, jobID); err != nil {
			s.logger.Warn("search index delete failed", map[string]interface{}{
				"jobId": jobID,
				"error": err,
			})
		}
	}
	return res, nil
}

// Stale lists jobs scraped more than days ago.
func (s *Service) Stale(ctx context.Context, days int) ([]*models.Job, error) {
	if days <= 0 {
		days = DefaultStaleAfterDays
	}
	return s.store.ListStaleJobs(ctx, s.now().AddDate(0, 0, -days))
}

// resolveExisting finds the row that won the uniqueness race: by the
// fingerprint id first, since it folds case where the url and composite key
// columns do not, then by url, then by the composite key.
func (s *Service) resolveExisting(ctx context.Context, id string, posting models.Posting) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	job, err = s.store.FindJobByURL(ctx, posting.URL)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	return s.store.FindJobByKey(ctx, posting.Company, posting.Title, posting.Location)
}

func (s *Service) lookupCache(ctx context.Context, url string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	id, ok, err := s.cache.Lookup(ctx, url)
	if err != nil {
		s.logger.Warn("seen cache lookup failed, using store", map[string]interface{}{
			"url":   url,
			"error": err,
		})
		return "", false
	}
	return id, ok
}

func (s *Service) remember(ctx context.Context, url, jobID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, url, jobID); err != nil {
		s.logger.Warn("seen cache write failed", map[string]interface{}{
			"jobId": jobID,
			"error": err,
		})
	}
}

func (s *Service) index(ctx context.Context, job *models.Job) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexJob(ctx, job); err != nil {
		s.logger.Warn("search index write failed", map[string]interface{}{
			"jobId": job.ID,
			"error": err,
		})
	}
}

func validate(p models.Posting) error {
	required := []struct {
		field, value string
	}{
		{"url", p.URL},
		{"company", p.Company},
		{"title", p.Title},
		{"source", p.Source},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.NewValidationError(r.field, r.field+" is required")
		}
	}
	return nil
}
