// Package search mirrors jobs into an Elasticsearch index so operators can
// search postings. The index is a convenience copy; PostgreSQL stays the
// source of truth.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "jobs"

// document is the indexed shape of a job.
type document struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Company         string    `json:"company"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Description     string    `json:"description,omitempty"`
	Source          string    `json:"source"`
	MatchedKeywords []string  `json:"matchedKeywords,omitempty"`
	ScrapedAt       time.Time `json:"scrapedAt"`
}

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: logger.Component(log, "search"),
	}
}

// mappings keep id, url and source as exact-match keywords so the source
// filter in Search is a term query.
const mappings = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "url":             {"type": "keyword"},
      "company":         {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "title":           {"type": "text"},
      "location":        {"type": "text"},
      "description":     {"type": "text"},
      "source":          {"type": "keyword"},
      "matchedKeywords": {"type": "keyword"},
      "scrapedAt":       {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mappings when it does not exist yet.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return errors.NewIndexError("check index", err)
	}
	exists.Body.Close()

	switch {
	case exists.StatusCode == http.StatusOK:
		return nil
	case exists.StatusCode != http.StatusNotFound:
		return errors.NewIndexError("check index", fmt.Errorf("status %s", exists.Status()))
	}

	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(mappings),
	}.Do(ctx, i.client)
	if err != nil {
		return errors.NewIndexError("create index", err)
	}
	defer res.Body.Close()

	// another replica may have created it between the two calls
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return errors.NewIndexError("create index", responseError(res))
	}

	i.logger.Info("search index created", map[string]interface{}{"index": i.index})
	return nil
}

// IndexJob upserts job under its fingerprint id.
func (i *Indexer) IndexJob(ctx context.Context, job *models.Job) error {
	body, err := json.Marshal(document{
		ID:              job.ID,
		URL:             job.URL,
		Company:         job.Company,
		Title:           job.Title,
		Location:        job.Location,
		Description:     job.DescriptionText(),
		Source:          job.Source,
		MatchedKeywords: job.MatchedKeywords,
		ScrapedAt:       job.ScrapedAt,
	})
	if err != nil {
		return errors.NewIndexError("encode job", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: job.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewIndexError("index job", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexError("index job", responseError(res))
	}

	i.logger.Debug("job indexed", map[string]interface{}{
		"jobId": job.ID,
		"index": i.index,
	})
	return nil
}

// DeleteJob removes a job document. A missing document is not an error.
func (i *Indexer) DeleteJob(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: id,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewIndexError("delete job", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return errors.NewIndexError("delete job", responseError(res))
	}
	return nil
}

// Query filters a search.
type Query struct {
	Text   string
	Source string
	From   int
	Size   int
}

// Hit is one search result.
type Hit struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Company string  `json:"company"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
}

// Search runs a multi_match over title, company and description, optionally
// filtered by source.
func (i *Indexer) Search(ctx context.Context, q Query) ([]Hit, error) {
	if q.Size <= 0 {
		q.Size = 20
	}

	boolQuery := map[string]interface{}{}
	if strings.TrimSpace(q.Text) != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"title^3", "company^2", "description"},
					"type":   "best_fields",
				},
			},
		}
	}
	if q.Source != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"source": q.Source}},
		}
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(boolQuery) > 0 {
		query = map[string]interface{}{"bool": boolQuery}
	}
	body, _ := json.Marshal(map[string]interface{}{"query": query})

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, errors.NewIndexError("search jobs", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewIndexError("search jobs", responseError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Score  float64  `json:"_score"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewIndexError("decode search response", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{
			ID:      h.ID,
			Score:   h.Score,
			Company: h.Source.Company,
			Title:   h.Source.Title,
			URL:     h.Source.URL,
		})
	}
	return hits, nil
}

func responseError(res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(msg)))
}
