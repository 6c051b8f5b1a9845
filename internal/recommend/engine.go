// Package recommend scores catalog templates against a job posting.
//
// A template earns +10 once when any of its target roles appears in the job
// title, +2 for every distinct keyword found in the combined title and
// description, plus its priority. Templates scoring zero or less are
// dropped; ties keep catalog order.
package recommend

import (
	"sort"
	"strings"

	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/models"
)

const (
	RoleMatchScore    = 10
	KeywordMatchScore = 2

	// DefaultTopN applies when a caller passes topN <= 0.
	DefaultTopN = 3
)

// Selection outcomes.
const (
	OutcomePreference = "preference"
	OutcomeMatched    = "matched"
	OutcomeFallback   = "fallback"
)

// Catalog is the read side of catalog.Catalog.
type Catalog interface {
	List() []models.ResumeTemplate
	Get(key string) (models.ResumeTemplate, error)
	Default() models.ResumeTemplate
	Validate(key string) bool
}

// Score is one template's breakdown.
type Score struct {
	Template        models.ResumeTemplate `json:"template"`
	RoleMatch       bool                  `json:"roleMatch"`
	MatchedKeywords []string              `json:"matchedKeywords"`
	Total           int                   `json:"total"`
}

type Engine struct {
	catalog Catalog
	logger  logger.Logger
}

func NewEngine(catalog Catalog, log logger.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		logger:  logger.Component(log, "recommend"),
	}
}

// Scores returns every template's score in catalog order.
func (e *Engine) Scores(title, description string) []Score {
	lowerTitle := strings.ToLower(title)
	combined := strings.ToLower(title + " " + description)

	templates := e.catalog.List()
	scores := make([]Score, 0, len(templates))
	for _, t := range templates {
		s := Score{Template: t, MatchedKeywords: []string{}}

		for _, role := range t.TargetRoles {
			if role != "" && strings.Contains(lowerTitle, strings.ToLower(role)) {
				s.RoleMatch = true
				s.Total += RoleMatchScore
				break
			}
		}

		for _, kw := range t.Keywords {
			if strings.Contains(combined, kw) {
				s.MatchedKeywords = append(s.MatchedKeywords, kw)
			}
		}
		s.Total += KeywordMatchScore * len(s.MatchedKeywords)
		s.Total += t.Priority

		scores = append(scores, s)
	}
	return scores
}

// Recommend returns up to topN templates with a positive score, best first.
func (e *Engine) Recommend(title, description string, topN int) []models.ResumeTemplate {
	if topN <= 0 {
		topN = DefaultTopN
	}

	positive := make([]Score, 0)
	for _, s := range e.Scores(title, description) {
		if s.Total > 0 {
			positive = append(positive, s)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Total > positive[j].Total
	})
	if len(positive) > topN {
		positive = positive[:topN]
	}

	out := make([]models.ResumeTemplate, 0, len(positive))
	names := make([]string, 0, len(positive))
	for _, s := range positive {
		out = append(out, s.Template)
		names = append(names, s.Template.Name)
	}

	e.logger.Info("templates recommended", map[string]interface{}{
		"title":     title,
		"count":     len(out),
		"templates": names,
	})
	return out
}

// Selection is the template chosen for one posting.
type Selection struct {
	Template        models.ResumeTemplate   `json:"template"`
	Outcome         string                  `json:"outcome"`
	Recommendations []models.ResumeTemplate `json:"recommendations"`
}

// Select honours preference when it names a catalog template whose content
// is readable. Otherwise it takes the best recommendation, falling back to
// the first catalog entry when nothing scores.
func (e *Engine) Select(title, description, preference string, topN int) Selection {
	recs := e.Recommend(title, description, topN)

	if preference != "" {
		if t, err := e.catalog.Get(preference); err == nil && e.catalog.Validate(preference) {
			metrics.Recommendations.WithLabelValues(OutcomePreference).Inc()
			return Selection{Template: t, Outcome: OutcomePreference, Recommendations: recs}
		}
		e.logger.Warn("preferred template unavailable, using recommendation", map[string]interface{}{
			"preference": preference,
		})
	}

	if len(recs) > 0 {
		metrics.Recommendations.WithLabelValues(OutcomeMatched).Inc()
		return Selection{Template: recs[0], Outcome: OutcomeMatched, Recommendations: recs}
	}

	fallback := e.catalog.Default()
	e.logger.Info("no template scored, using default", map[string]interface{}{
		"title":    title,
		"template": fallback.Key,
	})
	metrics.Recommendations.WithLabelValues(OutcomeFallback).Inc()
	return Selection{Template: fallback, Outcome: OutcomeFallback, Recommendations: recs}
}
