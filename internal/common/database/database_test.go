package database

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"job-applier/internal/common/config"
	apperrors "job-applier/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// PostgreSQL
// ==========================

func TestPostgres_PoolDefaults(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := newPostgresClient(db, config.PostgresConfig{})
	assert.Equal(t, defaultMaxOpen, c.DB.Stats().MaxOpenConnections)

	c = newPostgresClient(db, config.PostgresConfig{MaxConnections: 25, MaxIdle: 5})
	assert.Equal(t, 25, c.DB.Stats().MaxOpenConnections)
}

func TestPostgres_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	c := newPostgresClient(db, config.PostgresConfig{})

	mock.ExpectPing()
	require.NoError(t, c.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(stderrors.New("connection refused"))
	err = c.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.CodeOf(err))

	mock.ExpectClose()
	require.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Redis
// ==========================

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCache, apperrors.CodeOf(err))
}

// ==========================
// Elasticsearch
// ==========================

func TestElasticsearch_RequiresAddress(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestElasticsearch_Ping(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))

	status = http.StatusUnauthorized
	err = c.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIndex, apperrors.CodeOf(err))
}
