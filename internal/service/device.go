package service

import (
	"context"
	"fmt"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/contenthash"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

const (
	// deviceHistoryWindow is how many recent commits back the verifier looks.
	deviceHistoryWindow = 10
	// maxTrustedDevices caps how many distinct fingerprints an author may
	// accumulate before new ones stop verifying.
	maxTrustedDevices = 3
)

// DeviceRepository defines the persistence operations needed by the
// DeviceService.
type DeviceRepository interface {
	// CommitsByAuthor fetches the author's most recent commits, newest
	// first, capped at limit.
	CommitsByAuthor(ctx context.Context, author string, limit int) ([]models.Commit, error)
}

// DeviceService flags commits arriving from an unexpected number of
// distinct devices. Its results are advisory; no caller is required to
// block a commit on them.
type DeviceService struct {
	repo DeviceRepository
	now  func() time.Time
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(repo DeviceRepository, now func() time.Time) *DeviceService {
	return &DeviceService{repo: repo, now: now}
}

// VerifyDeviceConsistency checks the author's 10 most recent commits and
// reports whether the current fingerprint fits the known device set. An
// author with no prior commits is trusted on first use; the known set may
// grow to three devices, after which only already-known fingerprints verify.
func (s *DeviceService) VerifyDeviceConsistency(ctx context.Context, author, currentFingerprint string) (bool, error) {
	commits, err := s.repo.CommitsByAuthor(ctx, author, deviceHistoryWindow)
	if err != nil {
		return false, fmt.Errorf("load author commits: %w", err)
	}
	if len(commits) == 0 {
		return true, nil
	}

	known := make(map[string]struct{})
	for _, c := range commits {
		if c.DeviceFingerprint != "" {
			known[c.DeviceFingerprint] = struct{}{}
		}
	}
	_, isKnown := known[currentFingerprint]

	if len(known) <= maxTrustedDevices {
		return isKnown || len(known) < maxTrustedDevices, nil
	}
	return isKnown, nil
}

// SignedCommit is the audit artifact produced by SignCommit. The signature
// is a non-verified hash, not a trust anchor; nothing re-checks it.
type SignedCommit struct {
	Signature          string `json:"signature"`
	DeviceFingerprint  string `json:"deviceFingerprint"`
	IsDeviceConsistent bool   `json:"isDeviceConsistent"`
	SignedAt           int64  `json:"signedAt"`
}

// SignCommit hashes the commit data together with the device fingerprint
// and signing instant, runs the consistency check for the commit's author,
// and returns the combined audit record.
func (s *DeviceService) SignCommit(ctx context.Context, commitData models.Payload, deviceFingerprint string) (*SignedCommit, error) {
	signedAt := s.now().UnixMilli()

	assembled := make(map[string]any, len(commitData)+2)
	for k, v := range commitData {
		assembled[k] = v
	}
	assembled["deviceFingerprint"] = deviceFingerprint
	assembled["timestamp"] = signedAt

	canonical, err := contenthash.CanonicalJSON(assembled)
	if err != nil {
		return nil, fmt.Errorf("serialize commit data: %w", err)
	}
	signature, err := contenthash.SumBytes(append(canonical, deviceFingerprint...))
	if err != nil {
		return nil, fmt.Errorf("sign commit: %w", err)
	}

	author, _ := commitData["author"].(string)
	consistent, err := s.VerifyDeviceConsistency(ctx, author, deviceFingerprint)
	if err != nil {
		return nil, err
	}

	return &SignedCommit{
		Signature:          signature,
		DeviceFingerprint:  deviceFingerprint,
		IsDeviceConsistent: consistent,
		SignedAt:           signedAt,
	}, nil
}
