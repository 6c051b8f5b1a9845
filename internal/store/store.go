// Package store persists jobs, applications and the application audit log in
// PostgreSQL. Uniqueness and foreign-key constraints in the schema are the
// concurrency control for dedup and referential integrity; callers get
// NOT_FOUND or CONFLICT errors instead of driver errors.
package store

import (
	"context"
	"database/sql"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries holds every single-statement operation. It runs against the pool
// or inside a transaction depending on how it was built.
type Queries struct {
	db DBTX
}

// NewQueries binds the query set to a pool or transaction.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// Store owns the pool and opens short-lived transactions.
type Store struct {
	*Queries
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		Queries: NewQueries(db),
		db:      db,
		logger:  logger.Component(log, "store"),
	}
}

// WithTx runs fn inside one transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("begin transaction", err)
	}

	if err := fn(NewQueries(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", map[string]interface{}{
				"error": rbErr,
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("commit transaction", err)
	}
	return nil
}

// HealthCheck verifies the database answers a trivial query.
func (s *Store) HealthCheck(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return errors.NewDatabaseError("health check", err)
	}
	return nil
}

// ==========================
// Driver error mapping
// ==========================

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// conflictKeys maps constraint names from schema.go onto the key reported in
// CONFLICT errors.
var conflictKeys = map[string]string{
	"jobs_pkey":                       "id",
	"jobs_url_key":                    "url",
	"jobs_company_title_location_key": "company_title_location",
}

// ConflictKey returns the violated key recorded on a CONFLICT error, or "".
func ConflictKey(err error) string {
	var se *errors.StandardError
	if !errors.As(err, &se) || se.Code != errors.ErrCodeConflict {
		return ""
	}
	key, _ := se.Metadata["key"].(string)
	return key
}

func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return "", false
	}
	if key, ok := conflictKeys[pqErr.Constraint]; ok {
		return key, true
	}
	return pqErr.Constraint, true
}

func foreignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation
}

func dbError(op string, err error) error {
	return errors.NewDatabaseError(op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
