package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

func setupRegistryMock(t *testing.T) (*PostgresRegistryRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresRegistryRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestBranchExists(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM branches WHERE name = $1)`)).
		WithArgs("experiment").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.BranchExists(context.Background(), "experiment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected branch to be absent")
	}
}

func TestInsertBranch_Success(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	b := models.Branch{
		Name:             "experiment",
		Description:      "try a new envelope split",
		SourceCommitHash: "bafyhash",
		HeadCommitHash:   "bafyhash",
		Author:           "family",
		Created:          1700000000000,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO branches`)).
		WithArgs(b.Name, b.Description, b.SourceCommitHash, b.HeadCommitHash, b.Author, b.Created, b.IsActive, b.IsMerged).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertBranch(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertTag_Error(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).
		WillReturnError(errors.New("write fail"))

	err := repo.InsertTag(context.Background(), models.Tag{Name: "v1"})
	if err == nil || !regexp.MustCompile(`insert tag`).MatchString(err.Error()) {
		t.Errorf("expected insert tag error, got %v", err)
	}
}

func TestActivateBranch_RowsAffected(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE branches SET is_active = TRUE WHERE name = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.ActivateBranch(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows affected, got %d", n)
	}
}

func TestDeactivateBranches(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE branches SET is_active = FALSE WHERE is_active`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeactivateBranches(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetBranch_ErrorWrapped(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM branches WHERE name = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBranch(context.Background(), "ghost")
	if err == nil || !regexp.MustCompile(`get branch`).MatchString(err.Error()) {
		t.Errorf("expected wrapped get branch error, got %v", err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("error %v does not preserve sql.ErrNoRows", err)
	}
}

func TestListBranches_Order(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name", "description", "source_commit_hash", "head_commit_hash", "author", "created", "is_active", "is_merged"}).
		AddRow("main", "", "h0", "h0", "family", int64(1), true, false).
		AddRow("experiment", "", "h1", "h1", "family", int64(2), false, false)

	mock.ExpectQuery(`SELECT (.+) FROM branches ORDER BY created ASC`).
		WillReturnRows(rows)

	branches, err := repo.ListBranches(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(branches) != 2 || branches[0].Name != "main" {
		t.Errorf("unexpected branches: %+v", branches)
	}
}

func TestListTags_NewestFirst(t *testing.T) {
	repo, mock, cleanup := setupRegistryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name", "description", "commit_hash", "tag_type", "author", "created"}).
		AddRow("march-close", "", "h2", models.TagMilestone, "family", int64(2)).
		AddRow("feb-close", "", "h1", models.TagBackup, "family", int64(1))

	mock.ExpectQuery(`SELECT (.+) FROM tags ORDER BY created DESC`).
		WillReturnRows(rows)

	tags, err := repo.ListTags(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "march-close" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}
