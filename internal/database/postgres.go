// Package database opens the PostgreSQL connection and applies the schema.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresConnection opens and verifies a PostgreSQL connection.
func NewPostgresConnection(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	avatar_url    TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS groups (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	created_by  TEXT NOT NULL REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS group_members (
	id        TEXT PRIMARY KEY,
	group_id  TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status    TEXT NOT NULL DEFAULT 'INVITED',
	role      TEXT NOT NULL DEFAULT 'MEMBER',
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS expenses (
	id          TEXT PRIMARY KEY,
	group_id    TEXT REFERENCES groups(id) ON DELETE SET NULL,
	payer_id    TEXT NOT NULL REFERENCES users(id),
	description TEXT NOT NULL,
	amount      NUMERIC(12,2) NOT NULL,
	split_type  TEXT NOT NULL,
	date        TIMESTAMPTZ NOT NULL,
	is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expense_shares (
	id             TEXT PRIMARY KEY,
	expense_id     TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
	participant_id TEXT NOT NULL REFERENCES users(id),
	amount         NUMERIC(12,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id           TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	message      TEXT NOT NULL,
	is_read      BOOLEAN NOT NULL DEFAULT FALSE,
	entity_type  TEXT,
	entity_id    TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_expenses_payer ON expenses(payer_id) WHERE NOT is_deleted;
CREATE INDEX IF NOT EXISTS idx_expenses_group ON expenses(group_id) WHERE NOT is_deleted;
CREATE INDEX IF NOT EXISTS idx_expense_shares_expense ON expense_shares(expense_id);
CREATE INDEX IF NOT EXISTS idx_expense_shares_participant ON expense_shares(participant_id);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read);
`

// Migrate applies the schema. Statements are idempotent, so running it on
// every boot is safe.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
