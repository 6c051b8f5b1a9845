package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"job-applier/internal/common/config"
	"job-applier/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient holds the optional job search cluster connection.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch builds a client for cfg.Addresses. Transient gateway
// statuses are retried by the transport.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	if !cfg.Enabled() {
		return nil, errors.NewValidationError("database.elasticsearch.addresses", "at least one address is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		MaxRetries:    3,
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 200 * time.Millisecond },
	})
	if err != nil {
		return nil, errors.NewIndexError("connect", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping reports whether the cluster answers.
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return errors.NewIndexError("ping", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexError("ping", fmt.Errorf("status %s", res.Status()))
	}
	return nil
}
