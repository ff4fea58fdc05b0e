// Package service implements the budget history engine: commit building,
// domain trackers, read-only queries, the branch/tag registry, device
// consistency checks and analytics. Services hold only injected collaborator
// handles and keep no process-wide state.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/contenthash"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/currency"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// HistoryRepository defines the persistence operations needed by the
// HistoryService.
type HistoryRepository interface {
	// InsertCommit persists a single commit record.
	InsertCommit(ctx context.Context, c models.Commit) error
	// InsertChanges persists the change list belonging to a commit.
	InsertChanges(ctx context.Context, changes []models.Change) error
}

// HistoryService builds and persists history commits. It is the single
// write path for the commit graph.
type HistoryService struct {
	repo HistoryRepository
	// now supplies commit timestamps; injected for deterministic tests.
	now func() time.Time
	// fingerprint supplies a device identifier when the caller omits one.
	fingerprint func() string
}

// NewHistoryService constructs a HistoryService. fingerprint is consulted
// only when a commit input carries no device fingerprint.
func NewHistoryService(repo HistoryRepository, now func() time.Time, fingerprint func() string) *HistoryService {
	return &HistoryService{repo: repo, now: now, fingerprint: fingerprint}
}

// Policy reports the error-handling contract: commit writes are Strict.
func (s *HistoryService) Policy() Policy { return Strict }

// CommitInput carries the raw inputs of one history commit.
type CommitInput struct {
	EntityType        string         `json:"entityType"`
	EntityID          string         `json:"entityId"`
	ChangeType        string         `json:"changeType"`
	Description       string         `json:"description"`
	BeforeData        models.Payload `json:"beforeData"`
	AfterData         models.Payload `json:"afterData"`
	Author            string         `json:"author"`
	DeviceFingerprint string         `json:"deviceFingerprint"`
	ParentHash        string         `json:"parentHash"`
}

// CommitResult is the persisted (commit, changes) pair.
type CommitResult struct {
	Commit  models.Commit   `json:"commit"`
	Changes []models.Change `json:"changes"`
}

// CreateHistoryCommit derives a content hash for the change, persists the
// commit and then its one-element change list, and returns both. The two
// writes are deliberately not transactional; if the change write fails the
// orphan commit stays behind and the error propagates.
func (s *HistoryService) CreateHistoryCommit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	ts := s.now().UnixMilli()

	fp := in.DeviceFingerprint
	if fp == "" {
		fp = s.fingerprint()
	}

	entityID := in.EntityID
	if entityID == "" {
		entityID = models.SingletonEntityID
	}

	assembled := map[string]any{
		"entityType":        in.EntityType,
		"entityId":          entityID,
		"changeType":        in.ChangeType,
		"description":       in.Description,
		"beforeData":        in.BeforeData,
		"afterData":         in.AfterData,
		"author":            in.Author,
		"parentHash":        in.ParentHash,
		"timestamp":         ts,
		"deviceFingerprint": fp,
	}
	hash, err := contenthash.Sum(assembled)
	if err != nil {
		return nil, fmt.Errorf("hash commit: %w", err)
	}

	commit := models.Commit{
		Hash:       hash,
		Timestamp:  ts,
		Message:    in.Description,
		Author:     in.Author,
		ParentHash: in.ParentHash,
		SnapshotData: models.Payload{
			in.EntityType: map[string]any{entityID: in.AfterData},
			"timestamp":   ts,
		},
		DeviceFingerprint: fp,
	}
	changes := []models.Change{{
		CommitHash:  hash,
		EntityType:  in.EntityType,
		EntityID:    entityID,
		ChangeType:  models.NormalizeChangeType(in.ChangeType),
		Description: in.Description,
		BeforeData:  in.BeforeData,
		AfterData:   in.AfterData,
	}}

	if err := s.repo.InsertCommit(ctx, commit); err != nil {
		return nil, fmt.Errorf("insert commit: %w", err)
	}
	if err := s.repo.InsertChanges(ctx, changes); err != nil {
		return nil, fmt.Errorf("insert changes: %w", err)
	}

	return &CommitResult{Commit: commit, Changes: changes}, nil
}

// SourceDistribution marks an unassigned-cash change caused by distributing
// funds to envelopes.
const SourceDistribution = "distribution"

// TrackUnassignedCashChange records a change to the singleton unassigned
// cash amount.
func (s *HistoryService) TrackUnassignedCashChange(ctx context.Context, previousAmount, newAmount float64, author, source string) (*CommitResult, error) {
	var description string
	if source == SourceDistribution {
		description = fmt.Sprintf("Distributed %s to envelopes", currency.Format(currency.Sub(previousAmount, newAmount)))
	} else {
		description = fmt.Sprintf("Updated unassigned cash from %s to %s", currency.Format(previousAmount), currency.Format(newAmount))
	}

	return s.CreateHistoryCommit(ctx, CommitInput{
		EntityType:  models.EntityUnassignedCash,
		ChangeType:  "modify",
		Description: description,
		BeforeData:  models.Payload{"amount": previousAmount},
		AfterData:   models.Payload{"amount": newAmount},
		Author:      author,
	})
}

// TrackActualBalanceChange records a change to the singleton actual balance.
// The before payload stores the opposite of the new isManual flag as the
// implied prior state; the true prior flag is not known here.
func (s *HistoryService) TrackActualBalanceChange(ctx context.Context, previousBalance, newBalance float64, isManual bool, author string) (*CommitResult, error) {
	method := "automatic calculation"
	if isManual {
		method = "manual entry"
	}
	description := fmt.Sprintf("Updated actual balance from %s to %s (%s)",
		currency.Format(previousBalance), currency.Format(newBalance), method)

	return s.CreateHistoryCommit(ctx, CommitInput{
		EntityType:  models.EntityActualBalance,
		ChangeType:  "modify",
		Description: description,
		BeforeData:  models.Payload{"balance": previousBalance, "isManual": !isManual},
		AfterData:   models.Payload{"balance": newBalance, "isManual": isManual},
		Author:      author,
	})
}

// DebtSnapshot is the tracker-facing view of a debt account.
type DebtSnapshot struct {
	Name           string  `json:"name"`
	CurrentBalance float64 `json:"currentBalance"`
}

func (d *DebtSnapshot) payload() models.Payload {
	if d == nil {
		return nil
	}
	return models.Payload{"name": d.Name, "currentBalance": d.CurrentBalance}
}

// TrackDebtChange records a create/update/delete of a debt account.
func (s *HistoryService) TrackDebtChange(ctx context.Context, debtID, changeType string, previousData, newData *DebtSnapshot, author string) (*CommitResult, error) {
	name := debtName(previousData, newData)

	var description string
	switch changeType {
	case "add":
		if newData != nil {
			description = fmt.Sprintf("Added new debt: %s (%s)", name, currency.Format(newData.CurrentBalance))
		} else {
			description = fmt.Sprintf("Added new debt: %s", name)
		}
	case "modify":
		if previousData != nil && newData != nil && !currency.Equal(previousData.CurrentBalance, newData.CurrentBalance) {
			description = fmt.Sprintf("Updated %s balance from %s to %s",
				name, currency.Format(previousData.CurrentBalance), currency.Format(newData.CurrentBalance))
		} else {
			description = fmt.Sprintf("Updated debt: %s", name)
		}
	case "delete":
		description = fmt.Sprintf("Deleted debt: %s", name)
	default:
		description = fmt.Sprintf("Modified debt: %s", name)
	}

	return s.CreateHistoryCommit(ctx, CommitInput{
		EntityType:  models.EntityDebt,
		EntityID:    debtID,
		ChangeType:  changeType,
		Description: description,
		BeforeData:  previousData.payload(),
		AfterData:   newData.payload(),
		Author:      author,
	})
}

func debtName(previous, next *DebtSnapshot) string {
	if next != nil && next.Name != "" {
		return next.Name
	}
	if previous != nil && previous.Name != "" {
		return previous.Name
	}
	return "unknown debt"
}
