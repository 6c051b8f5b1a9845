package store

import "context"

// schemaStatements is applied in order by Migrate. Every statement is
// idempotent so Migrate can run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id               VARCHAR(16) PRIMARY KEY,
		url              TEXT NOT NULL,
		company          TEXT NOT NULL,
		title            TEXT NOT NULL,
		location         TEXT NOT NULL DEFAULT '',
		description      TEXT,
		raw_content      TEXT,
		source           VARCHAR(64) NOT NULL,
		scraped_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		matched_keywords TEXT[],
		CONSTRAINT jobs_url_key UNIQUE (url),
		CONSTRAINT jobs_company_title_location_key UNIQUE (company, title, location)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at_source ON jobs (scraped_at, source)`,

	`CREATE TABLE IF NOT EXISTS applications (
		id                         BIGSERIAL PRIMARY KEY,
		job_id                     VARCHAR(16) NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
		status                     VARCHAR(20) NOT NULL DEFAULT 'queued',
		paused_from                VARCHAR(20),
		tailored_resume_path       TEXT,
		cover_letter_path          TEXT,
		application_url            TEXT,
		applied_at                 TIMESTAMPTZ,
		error_message              TEXT,
		user_intervention_required BOOLEAN NOT NULL DEFAULT FALSE,
		intervention_reason        TEXT,
		created_at                 TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                 TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT applications_status_check CHECK (status IN
			('queued', 'customizing', 'ready', 'applying', 'completed', 'failed', 'paused')),
		CONSTRAINT applications_paused_from_check CHECK (paused_from IS NULL OR paused_from IN
			('queued', 'customizing', 'ready', 'applying'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status)`,

	`CREATE TABLE IF NOT EXISTS application_logs (
		id             BIGSERIAL PRIMARY KEY,
		application_id BIGINT NOT NULL REFERENCES applications (id) ON DELETE CASCADE,
		event_type     VARCHAR(64) NOT NULL,
		message        TEXT NOT NULL DEFAULT '',
		metadata       JSONB,
		timestamp      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_application_logs_app_ts ON application_logs (application_id, timestamp)`,
}

// Migrate creates the three tables and their indexes when absent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return dbError("migrate", err)
		}
	}
	s.logger.Info("schema ready", map[string]interface{}{
		"statements": len(schemaStatements),
	})
	return nil
}
