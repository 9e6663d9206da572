package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion is bumped whenever schemaStatements changes.
const SchemaVersion = 1

// schemaStatements create the library schema. Copy-count bounds, the
// one-open-loan rule and the one-active-reservation rule are enforced by the
// database as well as by the services.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id               UUID PRIMARY KEY,
		isbn             TEXT UNIQUE,
		title            TEXT NOT NULL,
		author           TEXT NOT NULL,
		category         TEXT NOT NULL,
		publisher        TEXT NOT NULL DEFAULT '',
		publication_year INTEGER NOT NULL DEFAULT 0,
		description      TEXT NOT NULL DEFAULT '',
		total_copies     INTEGER NOT NULL DEFAULT 1,
		available_copies INTEGER NOT NULL DEFAULT 1,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT books_copies_bounds
			CHECK (available_copies >= 0 AND available_copies <= total_copies)
	)`,
	`CREATE INDEX IF NOT EXISTS books_category_idx ON books (category)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users (id),
		book_id     UUID NOT NULL REFERENCES books (id),
		issue_date  TIMESTAMPTZ NOT NULL DEFAULT now(),
		due_date    TIMESTAMPTZ NOT NULL,
		return_date TIMESTAMPTZ,
		fine_amount BIGINT NOT NULL DEFAULT 0 CHECK (fine_amount >= 0),
		status      TEXT NOT NULL DEFAULT 'issued' CHECK (status IN ('issued', 'returned')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS transactions_one_open_loan
		ON transactions (user_id, book_id) WHERE status = 'issued'`,
	`CREATE INDEX IF NOT EXISTS transactions_due_idx
		ON transactions (due_date) WHERE status = 'issued'`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		book_id    UUID NOT NULL REFERENCES books (id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'fulfilled', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_one_active
		ON reservations (user_id, book_id) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS queries (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		subject        TEXT NOT NULL,
		message        TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'open'
			CHECK (status IN ('open', 'resolved', 'closed')),
		admin_response TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema inside one transaction and records the version.
// It is a no-op when the stored version is already current.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaStatements[0]); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	var current int
	err := pool.QueryRow(ctx, `SELECT value::int FROM meta WHERE key = 'schema_version'`).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range schemaStatements[1:] {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO meta (key, value) VALUES ('schema_version', $1)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(SchemaVersion),
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit(ctx)
}
