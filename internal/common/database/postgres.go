package database

import (
	"context"
	"database/sql"
	"time"

	"job-applier/internal/common/config"
	"job-applier/internal/common/errors"

	_ "github.com/lib/pq"
)

const (
	defaultMaxOpen = 10
	defaultMaxIdle = 2
	connLifetime   = 30 * time.Minute
	connIdleTime   = 5 * time.Minute
)

// PostgresClient owns the pool backing the job and application store.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection. sql.Open does not dial; call Ping to
// verify reachability.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, errors.NewDatabaseError("open", err)
	}
	return newPostgresClient(db, cfg), nil
}

func newPostgresClient(db *sql.DB, cfg config.PostgresConfig) *PostgresClient {
	maxOpen, maxIdle := cfg.MaxConnections, cfg.MaxIdle
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = min(defaultMaxIdle, maxOpen)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connLifetime)
	db.SetConnMaxIdleTime(connIdleTime)
	return &PostgresClient{DB: db}
}

// Ping reports whether the store is reachable. It doubles as the /ready probe.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return errors.NewDatabaseError("ping", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
