package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS budget_commits (
    hash TEXT PRIMARY KEY,
    timestamp BIGINT NOT NULL,
    message TEXT NOT NULL,
    author TEXT NOT NULL,
    parent_hash TEXT,
    snapshot_data JSONB,
    device_fingerprint TEXT
);

CREATE INDEX IF NOT EXISTS idx_budget_commits_timestamp ON budget_commits (timestamp);
CREATE INDEX IF NOT EXISTS idx_budget_commits_author_ts ON budget_commits (author, timestamp DESC);

CREATE TABLE IF NOT EXISTS budget_changes (
    commit_hash TEXT NOT NULL REFERENCES budget_commits(hash),
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    change_type TEXT NOT NULL,
    description TEXT,
    before_data JSONB,
    after_data JSONB
);

CREATE INDEX IF NOT EXISTS idx_budget_changes_commit ON budget_changes (commit_hash);
CREATE INDEX IF NOT EXISTS idx_budget_changes_entity ON budget_changes (entity_type, entity_id);

CREATE TABLE IF NOT EXISTS branches (
    name TEXT PRIMARY KEY,
    description TEXT,
    source_commit_hash TEXT NOT NULL REFERENCES budget_commits(hash),
    head_commit_hash TEXT NOT NULL,
    author TEXT,
    created BIGINT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    is_merged BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY,
    description TEXT,
    commit_hash TEXT NOT NULL REFERENCES budget_commits(hash),
    tag_type TEXT NOT NULL DEFAULT 'milestone',
    author TEXT,
    created BIGINT NOT NULL
);
`

// InitPostgres opens the history database and ensures the schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
