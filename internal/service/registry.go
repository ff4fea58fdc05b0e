package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// Validation errors raised before any write is applied.
var (
	// ErrDuplicateName is returned when a branch or tag name is taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrCommitNotFound is returned when a referenced commit is not stored.
	ErrCommitNotFound = errors.New("commit not found")
	// ErrBranchNotFound is returned when switching to an unknown branch.
	ErrBranchNotFound = errors.New("branch not found")
)

// RegistryRepository defines the persistence operations needed by the
// RegistryService.
type RegistryRepository interface {
	BranchExists(ctx context.Context, name string) (bool, error)
	InsertBranch(ctx context.Context, b models.Branch) error
	TagExists(ctx context.Context, name string) (bool, error)
	InsertTag(ctx context.Context, t models.Tag) error
	// DeactivateBranches clears the active flag on every branch.
	DeactivateBranches(ctx context.Context) error
	// ActivateBranch marks the named branch active and returns the number
	// of rows matched.
	ActivateBranch(ctx context.Context, name string) (int64, error)
	GetBranch(ctx context.Context, name string) (*models.Branch, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// CommitChecker resolves whether a commit hash exists in the graph.
type CommitChecker interface {
	CommitExists(ctx context.Context, hash string) (bool, error)
}

// RegistryService manages named pointers into the commit graph: branches
// and tags.
type RegistryService struct {
	repo    RegistryRepository
	commits CommitChecker
	now     func() time.Time
}

// NewRegistryService constructs a RegistryService.
func NewRegistryService(repo RegistryRepository, commits CommitChecker, now func() time.Time) *RegistryService {
	return &RegistryService{repo: repo, commits: commits, now: now}
}

// Policy reports the error-handling contract: registry writes are Strict.
func (s *RegistryService) Policy() Policy { return Strict }

// CreateBranchInput carries the inputs of a branch creation.
type CreateBranchInput struct {
	FromCommitHash string `json:"fromCommitHash"`
	BranchName     string `json:"branchName"`
	Description    string `json:"description"`
	Author         string `json:"author"`
}

// CreateBranch creates an inactive, unmerged branch whose head starts at
// the source commit. Both guard checks run before any write.
func (s *RegistryService) CreateBranch(ctx context.Context, in CreateBranchInput) (*models.Branch, error) {
	exists, err := s.repo.BranchExists(ctx, in.BranchName)
	if err != nil {
		return nil, fmt.Errorf("check branch name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("branch %q: %w", in.BranchName, ErrDuplicateName)
	}

	ok, err := s.commits.CommitExists(ctx, in.FromCommitHash)
	if err != nil {
		return nil, fmt.Errorf("check source commit: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("source commit %q: %w", in.FromCommitHash, ErrCommitNotFound)
	}

	b := models.Branch{
		Name:             in.BranchName,
		Description:      in.Description,
		SourceCommitHash: in.FromCommitHash,
		HeadCommitHash:   in.FromCommitHash,
		Author:           in.Author,
		Created:          s.now().UnixMilli(),
	}
	if err := s.repo.InsertBranch(ctx, b); err != nil {
		return nil, fmt.Errorf("insert branch: %w", err)
	}
	return &b, nil
}

// CreateTagInput carries the inputs of a tag creation.
type CreateTagInput struct {
	CommitHash  string `json:"commitHash"`
	TagName     string `json:"tagName"`
	Description string `json:"description"`
	TagType     string `json:"tagType"`
	Author      string `json:"author"`
}

// CreateTag creates an immutable tag pointing at one commit. Both guard
// checks run before any write; an empty tag type defaults to milestone.
func (s *RegistryService) CreateTag(ctx context.Context, in CreateTagInput) (*models.Tag, error) {
	exists, err := s.repo.TagExists(ctx, in.TagName)
	if err != nil {
		return nil, fmt.Errorf("check tag name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("tag %q: %w", in.TagName, ErrDuplicateName)
	}

	ok, err := s.commits.CommitExists(ctx, in.CommitHash)
	if err != nil {
		return nil, fmt.Errorf("check commit: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("commit %q: %w", in.CommitHash, ErrCommitNotFound)
	}

	tagType := in.TagType
	if tagType == "" {
		tagType = models.TagMilestone
	}

	t := models.Tag{
		Name:        in.TagName,
		Description: in.Description,
		CommitHash:  in.CommitHash,
		TagType:     tagType,
		Author:      in.Author,
		Created:     s.now().UnixMilli(),
	}
	if err := s.repo.InsertTag(ctx, t); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &t, nil
}

// SwitchBranch deactivates every active branch and then activates the named
// one, returning it. The two steps are not atomic: when the target does not
// exist the deactivation has already been applied and ErrBranchNotFound is
// returned with no branch active.
func (s *RegistryService) SwitchBranch(ctx context.Context, name string) (*models.Branch, error) {
	if err := s.repo.DeactivateBranches(ctx); err != nil {
		return nil, fmt.Errorf("deactivate branches: %w", err)
	}

	n, err := s.repo.ActivateBranch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("activate branch: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("branch %q: %w", name, ErrBranchNotFound)
	}

	b, err := s.repo.GetBranch(ctx, name)
	if err != nil {
		// The branch can be deleted between the activate and the load.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("branch %q: %w", name, ErrBranchNotFound)
		}
		return nil, fmt.Errorf("load branch: %w", err)
	}
	return b, nil
}

// GetBranches lists all branches, oldest first.
func (s *RegistryService) GetBranches(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

// GetTags lists all tags, newest first.
func (s *RegistryService) GetTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
