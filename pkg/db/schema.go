package db

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the DDL of each schema version; migrations[i] brings the
// schema from version i to i+1. Append only.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- One profile per linked account
CREATE TABLE IF NOT EXISTS profiles (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL UNIQUE,
    agent_user_id  TEXT NOT NULL DEFAULT '123',
    is_active      INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS api_servers (
    profile_id  INTEGER PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
    host        TEXT NOT NULL DEFAULT '0.0.0.0',
    port        INTEGER NOT NULL DEFAULT 8080,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Outbound integrations; empty values mean disabled
CREATE TABLE IF NOT EXISTS integrations (
    profile_id          INTEGER PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
    homegraph_key_file  TEXT NOT NULL DEFAULT '',
    mqtt_broker         TEXT NOT NULL DEFAULT '',
    mqtt_topic_prefix   TEXT NOT NULL DEFAULT 'homelink',
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(is_active);
`,
}

var currentSchemaVersion = len(migrations)

// Migrate applies every migration newer than the stored schema version, each
// in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if err := db.applySchema(ctx, v+1, migrations[v]); err != nil {
			return fmt.Errorf("failed to apply schema v%d: %w", v+1, err)
		}
	}
	return nil
}

// SchemaVersion returns the current schema version, or 0 on an empty database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'schema_version')
	`).Scan(&exists)
	if err != nil || !exists {
		return 0, err
	}

	var version int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}

func (db *DB) applySchema(ctx context.Context, version int, ddl string) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version)
		return err
	})
}
