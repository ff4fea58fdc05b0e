package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// Defaults for query result caps.
const (
	defaultRecentLimit   = 10
	defaultActivityLimit = 20
)

// QueryRepository defines the persistence operations needed by the
// QueryService.
type QueryRepository interface {
	// ChangesByEntityType fetches recent changes of one entity type,
	// newest first, capped at limit.
	ChangesByEntityType(ctx context.Context, entityType string, limit int) ([]models.Change, error)
	// EntityChanges fetches all changes for an entity type, optionally
	// filtered to one entity instance, newest first.
	EntityChanges(ctx context.Context, entityType, entityID string) ([]models.Change, error)
	// ChangesForEntityTypes fetches recent changes across a set of entity
	// types, newest first, capped at limit.
	ChangesForEntityTypes(ctx context.Context, entityTypes []string, limit int) ([]models.Change, error)
}

// QueryService serves read-only history queries. A persistence failure is
// logged and degrades to an empty result; it never propagates.
type QueryService struct {
	repo QueryRepository
	log  *zap.Logger
}

// NewQueryService constructs a QueryService.
func NewQueryService(repo QueryRepository, log *zap.Logger) *QueryService {
	return &QueryService{repo: repo, log: log}
}

// Policy reports the error-handling contract: reads are BestEffort.
func (s *QueryService) Policy() Policy { return BestEffort }

// GetRecentChanges returns the newest changes of one entity type, capped at
// limit (10 when limit is not positive).
func (s *QueryService) GetRecentChanges(ctx context.Context, entityType string, limit int) []models.Change {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	changes, err := s.repo.ChangesByEntityType(ctx, entityType, limit)
	if err != nil {
		s.log.Warn("recent changes query failed",
			zap.String("entityType", entityType),
			zap.Error(err),
		)
		return []models.Change{}
	}
	return nonNil(changes)
}

// GetEntityHistory returns all changes for an entity type, optionally
// narrowed to one entity instance, newest first and unbounded.
func (s *QueryService) GetEntityHistory(ctx context.Context, entityType, entityID string) []models.Change {
	changes, err := s.repo.EntityChanges(ctx, entityType, entityID)
	if err != nil {
		s.log.Warn("entity history query failed",
			zap.String("entityType", entityType),
			zap.String("entityId", entityID),
			zap.Error(err),
		)
		return []models.Change{}
	}
	return nonNil(changes)
}

// GetRecentActivity returns the newest changes across the tracked entity
// set, capped at limit (20 when limit is not positive).
func (s *QueryService) GetRecentActivity(ctx context.Context, limit int) []models.Change {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	changes, err := s.repo.ChangesForEntityTypes(ctx, models.TrackedEntityTypes(), limit)
	if err != nil {
		s.log.Warn("recent activity query failed", zap.Error(err))
		return []models.Change{}
	}
	return nonNil(changes)
}

func nonNil(changes []models.Change) []models.Change {
	if changes == nil {
		return []models.Change{}
	}
	return changes
}
