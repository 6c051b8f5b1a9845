package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/models"
	"job-applier/internal/search"
	"job-applier/internal/store"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type statsSource interface {
	Stats(ctx context.Context) (*store.Stats, error)
}

type jobAdmin interface {
	Stale(ctx context.Context, days int) ([]*models.Job, error)
	Purge(ctx context.Context, jobID string) (*store.PurgeResult, error)
}

type historySource interface {
	History(ctx context.Context, applicationID int64) ([]*models.ApplicationLog, error)
}

type catalogView interface {
	Describe() string
}

type jobSearcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Hit, error)
}

// readinessCheck is one named dependency probe for /ready.
type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

type server struct {
	stats     statsSource
	jobs      jobAdmin
	history   historySource
	catalog   catalogView
	search    jobSearcher // nil when Elasticsearch is not configured
	checks    []readinessCheck
	staleDays int
	logger    logger.Logger
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/templates", s.handleTemplates).Methods(http.MethodGet)

	jobs := r.PathPrefix("/jobs").Subrouter()
	jobs.HandleFunc("/stale", s.handleStaleJobs).Methods(http.MethodGet)
	jobs.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	jobs.HandleFunc("/{id}", s.handlePurgeJob).Methods(http.MethodDelete)

	r.HandleFunc("/applications/{id}/logs", s.handleHistory).Methods(http.MethodGet)
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if r.URL.Path == "/metrics" || r.URL.Path == "/health" {
			return
		}
		s.logger.Debug("request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

func (s *server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				})
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "job-applier",
	})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := map[string]string{}
	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[c.name] = err.Error()
			continue
		}
		results[c.name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{"status": state, "checks": results})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.catalog.Describe()))
}

func (s *server) handleStaleJobs(w http.ResponseWriter, r *http.Request) {
	days := s.staleDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, errors.NewValidationError("days", "must be a positive integer"))
			return
		}
		days = n
	}

	jobs, err := s.jobs.Stale(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": days, "jobs": jobs})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "search index not configured"})
		return
	}

	q := search.Query{
		Text:   r.URL.Query().Get("q"),
		Source: r.URL.Query().Get("source"),
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		q.Size, _ = strconv.Atoi(raw)
	}

	hits, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hits": hits})
}

func (s *server) handlePurgeJob(w http.ResponseWriter, r *http.Request) {
	result, err := s.jobs.Purge(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, errors.NewValidationError("id", "must be a positive integer"))
		return
	}

	logs, err := s.history.History(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applicationId": id, "logs": logs})
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandard(err)

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeValidation, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeConflict, errors.ErrCodeInvalidTransition:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"code":  stdErr.Code,
			"error": stdErr.Error(),
		})
	}
	writeJSON(w, status, stdErr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
