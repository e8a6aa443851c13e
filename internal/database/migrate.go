package database

import (
	"context"
	"database/sql"

	"rcvj/internal/common"
	"rcvj/internal/security"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username VARCHAR(50) UNIQUE NOT NULL,
	email VARCHAR(100) UNIQUE NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'admin',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	company VARCHAR(200) NOT NULL,
	location VARCHAR(100) NOT NULL,
	salary_range VARCHAR(100) NOT NULL DEFAULT '',
	job_type VARCHAR(20) NOT NULL DEFAULT 'full-time',
	description TEXT NOT NULL,
	requirements TEXT NOT NULL,
	responsibilities TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_by UUID REFERENCES users(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_active_created ON jobs (is_active, created_at DESC);

CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	application_id VARCHAR(40) UNIQUE NOT NULL,
	job_id UUID,
	job_title VARCHAR(200) NOT NULL DEFAULT '',
	job_company VARCHAR(200) NOT NULL DEFAULT '',
	applicant_name VARCHAR(200) NOT NULL,
	applicant_email VARCHAR(200) NOT NULL,
	applicant_phone VARCHAR(50) NOT NULL,
	cover_letter TEXT NOT NULL DEFAULT '',
	resume_filename VARCHAR(255) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	notes TEXT NOT NULL DEFAULT '',
	applied_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_applied ON applications (applied_at DESC);
`

// Migrate creates the tables on startup. Statements are idempotent so the
// process can restart against an existing database.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return common.NewError(common.CodeInternal, "failed to run migrations", err)
	}
	return nil
}

// SeedAdmin provisions the single administrative account. An existing
// username is left untouched.
func SeedAdmin(ctx context.Context, db *sql.DB, username, email, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to hash admin password", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'super_admin', NOW(), NOW())
		ON CONFLICT (username) DO NOTHING`,
		common.NewUUID(), username, email, hash)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to seed admin user", err)
	}
	return nil
}
