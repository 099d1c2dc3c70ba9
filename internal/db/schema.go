package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
    is_verified   BOOLEAN NOT NULL DEFAULT 0,
    is_banned     BOOLEAN NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login    DATETIME
);

CREATE TABLE IF NOT EXISTS lost_items (
    id               INTEGER PRIMARY KEY,
    item_name        TEXT NOT NULL,
    category         TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL,
    current_location TEXT NOT NULL DEFAULT '',
    full_names       TEXT NOT NULL,
    student_number   TEXT NOT NULL,
    student_email    TEXT NOT NULL,
    photo_filename   TEXT,
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'claimed', 'returned', 'expired')),
    is_verified      BOOLEAN NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_lost_items_status ON lost_items(status, created_at);
CREATE INDEX IF NOT EXISTS idx_lost_items_email ON lost_items(student_email);

CREATE TABLE IF NOT EXISTS found_items (
    id               INTEGER PRIMARY KEY,
    item_name        TEXT NOT NULL,
    category         TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL,
    current_location TEXT NOT NULL DEFAULT '',
    full_names       TEXT NOT NULL,
    student_number   TEXT NOT NULL,
    student_email    TEXT NOT NULL,
    photo_filename   TEXT,
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'claimed', 'returned', 'expired')),
    is_verified      BOOLEAN NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_found_items_status ON found_items(status, created_at);
CREATE INDEX IF NOT EXISTS idx_found_items_email ON found_items(student_email);

CREATE TABLE IF NOT EXISTS claims (
    id             INTEGER PRIMARY KEY,
    full_names     TEXT NOT NULL,
    student_number TEXT NOT NULL,
    student_email  TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    item_type      TEXT CHECK (item_type IN ('lost', 'found')),
    item_id        INTEGER,
    status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    admin_notes    TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at    DATETIME,
    CHECK ((item_type IS NULL) = (item_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status, created_at);
CREATE INDEX IF NOT EXISTS idx_claims_email ON claims(student_email);

CREATE TABLE IF NOT EXISTS claim_history (
    id         INTEGER PRIMARY KEY,
    claim_id   INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
    admin_id   INTEGER REFERENCES users(id) ON DELETE SET NULL,
    action     TEXT NOT NULL,
    status     TEXT NOT NULL,
    notes      TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claim_history_claim ON claim_history(claim_id);

CREATE TABLE IF NOT EXISTS categories (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT,
    is_active   BOOLEAN NOT NULL DEFAULT 1,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT,
    is_active   BOOLEAN NOT NULL DEFAULT 1,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS system_settings (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    description TEXT,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by  INTEGER REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS user_activities (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER REFERENCES users(id) ON DELETE CASCADE,
    action     TEXT NOT NULL,
    details    TEXT,
    ip_address TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_user_activities_created ON user_activities(created_at);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// tables lists every table in drop order.
var tables = []string{
	"revoked_tokens",
	"user_activities",
	"system_settings",
	"locations",
	"categories",
	"claim_history",
	"claims",
	"found_items",
	"lost_items",
	"users",
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// DropSchema removes every table. All data is lost.
func DropSchema(db *sql.DB) error {
	for _, t := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("dropping %s: %w", t, err)
		}
	}
	return nil
}

// Recreate drops and recreates the schema.
func Recreate(db *sql.DB) error {
	if err := DropSchema(db); err != nil {
		return err
	}
	return EnsureSchema(db)
}
