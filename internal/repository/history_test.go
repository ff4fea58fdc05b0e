package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

func setupHistoryMock(t *testing.T) (*PostgresHistoryRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresHistoryRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestInsertCommit_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	c := models.Commit{
		Hash:              "bafyhash",
		Timestamp:         1700000000000,
		Message:           "Updated unassigned cash from $10.00 to $5.00",
		Author:            "family",
		DeviceFingerprint: "fp-1",
		SnapshotData:      models.Payload{"unassignedCash": map[string]any{"main": map[string]any{"amount": 5.0}}},
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO budget_commits`)).
		WithArgs(c.Hash, c.Timestamp, c.Message, c.Author, c.ParentHash, sqlmock.AnyArg(), c.DeviceFingerprint).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertCommit(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertCommit_Error(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO budget_commits`)).
		WillReturnError(errors.New("write fail"))

	err := repo.InsertCommit(context.Background(), models.Commit{Hash: "h"})
	if err == nil || !regexp.MustCompile(`insert commit`).MatchString(err.Error()) {
		t.Errorf("expected insert commit error, got %v", err)
	}
}

func TestInsertChanges_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	changes := []models.Change{
		{
			CommitHash:  "bafyhash",
			EntityType:  models.EntityDebt,
			EntityID:    "debt-1",
			ChangeType:  models.ChangeUpdate,
			Description: "Updated Car loan balance from $900.00 to $850.00",
			BeforeData:  models.Payload{"currentBalance": 900.0},
			AfterData:   models.Payload{"currentBalance": 850.0},
		},
	}

	for _, ch := range changes {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO budget_changes`)).
			WithArgs(ch.CommitHash, ch.EntityType, ch.EntityID, ch.ChangeType, ch.Description, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := repo.InsertChanges(context.Background(), changes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCommitExists(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM budget_commits WHERE hash = $1)`)).
		WithArgs("bafyhash").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.CommitExists(context.Background(), "bafyhash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected commit to exist")
	}
}

func TestChangesByEntityType_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"commit_hash", "entity_type", "entity_id", "change_type", "description", "before_data", "after_data"}).
		AddRow("h2", models.EntityDebt, "debt-1", "update", "Updated debt: Car loan", []byte(`{"name":"Car loan"}`), []byte(`{"name":"Car loan"}`)).
		AddRow("h1", models.EntityDebt, "debt-1", "create", "Added new debt: Car loan ($900.00)", nil, []byte(`{"name":"Car loan"}`))

	mock.ExpectQuery(`SELECT (.+) FROM budget_changes c`).
		WithArgs(models.EntityDebt, 10).
		WillReturnRows(rows)

	changes, err := repo.ChangesByEntityType(context.Background(), models.EntityDebt, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].CommitHash != "h2" || changes[1].CommitHash != "h1" {
		t.Errorf("unexpected order: %+v", changes)
	}
	if changes[1].BeforeData != nil {
		t.Errorf("expected nil before data, got %+v", changes[1].BeforeData)
	}
	if name, _ := changes[0].AfterData["name"].(string); name != "Car loan" {
		t.Errorf("after data not decoded: %+v", changes[0].AfterData)
	}
}

func TestEntityChanges_FiltersByID(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"commit_hash", "entity_type", "entity_id", "change_type", "description", "before_data", "after_data"}).
		AddRow("h1", models.EntityDebt, "debt-1", "update", "Updated debt: Car loan", nil, nil)

	mock.ExpectQuery(`SELECT (.+) FROM budget_changes c(.+)AND c\.entity_id`).
		WithArgs(models.EntityDebt, "debt-1").
		WillReturnRows(rows)

	changes, err := repo.EntityChanges(context.Background(), models.EntityDebt, "debt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 || changes[0].EntityID != "debt-1" {
		t.Errorf("unexpected changes: %+v", changes)
	}
}

func TestChangesForEntityTypes_Error(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM budget_changes c`).
		WillReturnError(errors.New("query fail"))

	_, err := repo.ChangesForEntityTypes(context.Background(), models.TrackedEntityTypes(), 20)
	if err == nil || !regexp.MustCompile(`ChangesForEntityTypes`).MatchString(err.Error()) {
		t.Errorf("expected ChangesForEntityTypes error, got %v", err)
	}
}

func TestCommitsByAuthor_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"hash", "timestamp", "message", "author", "parent_hash", "snapshot_data", "device_fingerprint"}).
		AddRow("h2", int64(2000), "m2", "family", nil, nil, "fp-2").
		AddRow("h1", int64(1000), "m1", "family", "h0", []byte(`{"timestamp":1000}`), "fp-1")

	mock.ExpectQuery(`SELECT (.+) FROM budget_commits`).
		WithArgs("family", 10).
		WillReturnRows(rows)

	commits, err := repo.CommitsByAuthor(context.Background(), "family", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[1].ParentHash != "h0" {
		t.Errorf("parent hash not decoded: %+v", commits[1])
	}
	if commits[0].SnapshotData != nil {
		t.Errorf("expected nil snapshot, got %+v", commits[0].SnapshotData)
	}
}

func TestCommitsSince_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"hash", "timestamp", "message", "author", "parent_hash", "snapshot_data", "device_fingerprint"}).
		AddRow("h1", int64(5000), "m1", "family", nil, nil, "fp-1")

	mock.ExpectQuery(`SELECT (.+) FROM budget_commits(.+)timestamp > \$1`).
		WithArgs(int64(4000)).
		WillReturnRows(rows)

	commits, err := repo.CommitsSince(context.Background(), 4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 1 || commits[0].Hash != "h1" {
		t.Errorf("unexpected commits: %+v", commits)
	}
}
