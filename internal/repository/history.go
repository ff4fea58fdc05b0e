// Package repository provides persistence implementations for the budget
// history services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// PostgresHistoryRepository implements commit and change persistence against
// a PostgreSQL database. Commits and changes are append-only; no method
// updates or deletes them.
type PostgresHistoryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresHistoryRepository creates a PostgresHistoryRepository using the
// provided *sql.DB.
func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{DB: db}
}

// InsertCommit persists a single commit record.
func (r *PostgresHistoryRepository) InsertCommit(ctx context.Context, c models.Commit) error {
	snapshot, err := json.Marshal(c.SnapshotData)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO budget_commits (hash, timestamp, message, author, parent_hash, snapshot_data, device_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.Hash, c.Timestamp, c.Message, c.Author, c.ParentHash, snapshot, c.DeviceFingerprint)
	if err != nil {
		return fmt.Errorf("insert commit: %w", err)
	}
	return nil
}

// InsertChanges persists the change list of a commit. The writes are
// intentionally separate from InsertCommit; a failure here leaves an orphan
// commit, which the caller accepts.
func (r *PostgresHistoryRepository) InsertChanges(ctx context.Context, changes []models.Change) error {
	for _, ch := range changes {
		before, err := json.Marshal(ch.BeforeData)
		if err != nil {
			return fmt.Errorf("marshal before data: %w", err)
		}
		after, err := json.Marshal(ch.AfterData)
		if err != nil {
			return fmt.Errorf("marshal after data: %w", err)
		}
		_, err = r.DB.ExecContext(ctx, `
			INSERT INTO budget_changes (commit_hash, entity_type, entity_id, change_type, description, before_data, after_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ch.CommitHash, ch.EntityType, ch.EntityID, ch.ChangeType, ch.Description, before, after)
		if err != nil {
			return fmt.Errorf("insert change: %w", err)
		}
	}
	return nil
}

// CommitExists reports whether a commit with the given hash is stored.
func (r *PostgresHistoryRepository) CommitExists(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM budget_commits WHERE hash = $1)
	`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("commit exists: %w", err)
	}
	return exists, nil
}

const changeColumns = `c.commit_hash, c.entity_type, c.entity_id, c.change_type, c.description, c.before_data, c.after_data`

// ChangesByEntityType fetches the most recent changes of one entity type,
// newest first, capped at limit.
func (r *PostgresHistoryRepository) ChangesByEntityType(ctx context.Context, entityType string, limit int) ([]models.Change, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+changeColumns+` FROM budget_changes c
		  JOIN budget_commits m ON m.hash = c.commit_hash
		 WHERE c.entity_type = $1
		 ORDER BY m.timestamp DESC
		 LIMIT $2
	`, entityType, limit)
	if err != nil {
		return nil, fmt.Errorf("ChangesByEntityType: %w", err)
	}
	defer rows.Close()
	return scanChanges(rows)
}

// EntityChanges fetches all changes for an entity type, optionally filtered
// to one entity instance, newest first and unbounded.
func (r *PostgresHistoryRepository) EntityChanges(ctx context.Context, entityType, entityID string) ([]models.Change, error) {
	query := `
		SELECT ` + changeColumns + ` FROM budget_changes c
		  JOIN budget_commits m ON m.hash = c.commit_hash
		 WHERE c.entity_type = $1`
	args := []any{entityType}
	if entityID != "" {
		query += ` AND c.entity_id = $2`
		args = append(args, entityID)
	}
	query += ` ORDER BY m.timestamp DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("EntityChanges: %w", err)
	}
	defer rows.Close()
	return scanChanges(rows)
}

// ChangesForEntityTypes fetches recent changes across a set of entity types,
// newest first, capped at limit.
func (r *PostgresHistoryRepository) ChangesForEntityTypes(ctx context.Context, entityTypes []string, limit int) ([]models.Change, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+changeColumns+` FROM budget_changes c
		  JOIN budget_commits m ON m.hash = c.commit_hash
		 WHERE c.entity_type = ANY($1)
		 ORDER BY m.timestamp DESC
		 LIMIT $2
	`, pq.Array(entityTypes), limit)
	if err != nil {
		return nil, fmt.Errorf("ChangesForEntityTypes: %w", err)
	}
	defer rows.Close()
	return scanChanges(rows)
}

// ChangesForCommits fetches every change belonging to the given commits.
func (r *PostgresHistoryRepository) ChangesForCommits(ctx context.Context, hashes []string) ([]models.Change, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+changeColumns+` FROM budget_changes c
		 WHERE c.commit_hash = ANY($1)
	`, pq.Array(hashes))
	if err != nil {
		return nil, fmt.Errorf("ChangesForCommits: %w", err)
	}
	defer rows.Close()
	return scanChanges(rows)
}

const commitColumns = `hash, timestamp, message, author, parent_hash, snapshot_data, device_fingerprint`

// CommitsByAuthor fetches the author's most recent commits, newest first,
// capped at limit.
func (r *PostgresHistoryRepository) CommitsByAuthor(ctx context.Context, author string, limit int) ([]models.Commit, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+commitColumns+` FROM budget_commits
		 WHERE author = $1
		 ORDER BY timestamp DESC
		 LIMIT $2
	`, author, limit)
	if err != nil {
		return nil, fmt.Errorf("CommitsByAuthor: %w", err)
	}
	defer rows.Close()
	return scanCommits(rows)
}

// CommitsSince fetches every commit created strictly after the given epoch
// millisecond instant.
func (r *PostgresHistoryRepository) CommitsSince(ctx context.Context, sinceMs int64) ([]models.Commit, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+commitColumns+` FROM budget_commits
		 WHERE timestamp > $1
	`, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("CommitsSince: %w", err)
	}
	defer rows.Close()
	return scanCommits(rows)
}

func scanChanges(rows *sql.Rows) ([]models.Change, error) {
	var changes []models.Change
	for rows.Next() {
		var ch models.Change
		var before, after []byte
		if err := rows.Scan(&ch.CommitHash, &ch.EntityType, &ch.EntityID, &ch.ChangeType, &ch.Description, &before, &after); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := unmarshalPayload(before, &ch.BeforeData); err != nil {
			return nil, err
		}
		if err := unmarshalPayload(after, &ch.AfterData); err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}

func scanCommits(rows *sql.Rows) ([]models.Commit, error) {
	var commits []models.Commit
	for rows.Next() {
		var c models.Commit
		var parent sql.NullString
		var snapshot []byte
		if err := rows.Scan(&c.Hash, &c.Timestamp, &c.Message, &c.Author, &parent, &snapshot, &c.DeviceFingerprint); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		c.ParentHash = parent.String
		if err := unmarshalPayload(snapshot, &c.SnapshotData); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

func unmarshalPayload(raw []byte, dst *models.Payload) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}
