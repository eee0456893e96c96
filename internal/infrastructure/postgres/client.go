// Package postgres is the durable identity store: identities, role-specific
// profile rows and verification audit records, accessed through
// parameterized SQL with explicit transaction discipline.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres through the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests.
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Bootstrap creates the auth tables when they don't exist. Idempotent, run
// once at process start.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			id                 TEXT PRIMARY KEY,
			phone_number       TEXT NOT NULL UNIQUE,
			email              TEXT,
			password_hash      TEXT NOT NULL,
			first_name         TEXT NOT NULL DEFAULT '',
			last_name          TEXT NOT NULL DEFAULT '',
			role               TEXT NOT NULL,
			status             TEXT NOT NULL DEFAULT 'pending',
			token_version      INTEGER NOT NULL DEFAULT 1,
			date_of_birth      DATE,
			gender             TEXT,
			fayda_id           TEXT,
			fayda_id_front_url TEXT,
			fayda_id_back_url  TEXT,
			last_login_at      TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS identities_email_idx
			ON identities (email) WHERE email IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS verification_records (
			id          TEXT PRIMARY KEY,
			identity_id TEXT NOT NULL REFERENCES identities(id),
			kind        TEXT NOT NULL,
			code        TEXT NOT NULL,
			verified    BOOLEAN NOT NULL DEFAULT FALSE,
			verified_at TIMESTAMPTZ,
			expires_at  TIMESTAMPTZ NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS passengers (
			identity_id TEXT PRIMARY KEY REFERENCES identities(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			identity_id TEXT PRIMARY KEY REFERENCES identities(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
