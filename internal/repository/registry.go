package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// PostgresRegistryRepository implements branch and tag persistence against a
// PostgreSQL database.
type PostgresRegistryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRegistryRepository creates a PostgresRegistryRepository using
// the provided *sql.DB.
func NewPostgresRegistryRepository(db *sql.DB) *PostgresRegistryRepository {
	return &PostgresRegistryRepository{DB: db}
}

// BranchExists reports whether a branch with the given name is stored.
func (r *PostgresRegistryRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM branches WHERE name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("branch exists: %w", err)
	}
	return exists, nil
}

// InsertBranch persists a new branch record.
func (r *PostgresRegistryRepository) InsertBranch(ctx context.Context, b models.Branch) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO branches (name, description, source_commit_hash, head_commit_hash, author, created, is_active, is_merged)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.Name, b.Description, b.SourceCommitHash, b.HeadCommitHash, b.Author, b.Created, b.IsActive, b.IsMerged)
	if err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// TagExists reports whether a tag with the given name is stored.
func (r *PostgresRegistryRepository) TagExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM tags WHERE name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tag exists: %w", err)
	}
	return exists, nil
}

// InsertTag persists a new tag record.
func (r *PostgresRegistryRepository) InsertTag(ctx context.Context, t models.Tag) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tags (name, description, commit_hash, tag_type, author, created)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.Name, t.Description, t.CommitHash, t.TagType, t.Author, t.Created)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// DeactivateBranches clears the active flag on every branch.
func (r *PostgresRegistryRepository) DeactivateBranches(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE branches SET is_active = FALSE WHERE is_active`)
	if err != nil {
		return fmt.Errorf("deactivate branches: %w", err)
	}
	return nil
}

// ActivateBranch sets the active flag on the named branch and returns the
// number of rows matched, zero when the branch does not exist.
func (r *PostgresRegistryRepository) ActivateBranch(ctx context.Context, name string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE branches SET is_active = TRUE WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("activate branch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

const branchColumns = `name, description, source_commit_hash, head_commit_hash, author, created, is_active, is_merged`

// GetBranch fetches a single branch by name.
func (r *PostgresRegistryRepository) GetBranch(ctx context.Context, name string) (*models.Branch, error) {
	var b models.Branch
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+branchColumns+` FROM branches WHERE name = $1
	`, name).Scan(&b.Name, &b.Description, &b.SourceCommitHash, &b.HeadCommitHash, &b.Author, &b.Created, &b.IsActive, &b.IsMerged)
	if err != nil {
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// ListBranches fetches all branches ordered by creation time, oldest first.
func (r *PostgresRegistryRepository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+branchColumns+` FROM branches ORDER BY created ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListBranches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.Name, &b.Description, &b.SourceCommitHash, &b.HeadCommitHash, &b.Author, &b.Created, &b.IsActive, &b.IsMerged); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// ListTags fetches all tags ordered by creation time, newest first.
func (r *PostgresRegistryRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT name, description, commit_hash, tag_type, author, created FROM tags ORDER BY created DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListTags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.Name, &t.Description, &t.CommitHash, &t.TagType, &t.Author, &t.Created); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
