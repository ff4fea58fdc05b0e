package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// defaultPatternWindow is the analytics window when the caller passes none.
const defaultPatternWindow = 30 * 24 * time.Hour

// AnalyticsRepository defines the persistence operations needed by the
// AnalyticsService.
type AnalyticsRepository interface {
	// CommitsSince fetches every commit created strictly after the given
	// epoch millisecond instant.
	CommitsSince(ctx context.Context, sinceMs int64) ([]models.Commit, error)
	// ChangesForCommits fetches every change belonging to the given commits.
	ChangesForCommits(ctx context.Context, hashes []string) ([]models.Change, error)
}

// ChangePatterns aggregates windowed statistics over the commit graph.
// A zero-valued (but non-nil) result means "no activity in range"; a nil
// result means the query itself failed.
type ChangePatterns struct {
	ChangesByType        map[string]int `json:"changesByType"`
	ChangesByEntity      map[string]int `json:"changesByEntity"`
	AuthorActivity       map[string]int `json:"authorActivity"`
	DailyActivity        map[string]int `json:"dailyActivity"`
	AverageChangesPerDay float64        `json:"averageChangesPerDay"`
	// MostActiveHour is the 0-23 hour with the most commits, nil when the
	// window holds no commits.
	MostActiveHour *int `json:"mostActiveHour"`
	TotalCommits   int  `json:"totalCommits"`
	TotalChanges   int  `json:"totalChanges"`
}

// AnalyticsService computes windowed statistics over commits and changes.
type AnalyticsService struct {
	repo AnalyticsRepository
	now  func() time.Time
	log  *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(repo AnalyticsRepository, now func() time.Time, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: now, log: log}
}

// Policy reports the error-handling contract: analytics reads are BestEffort.
func (s *AnalyticsService) Policy() Policy { return BestEffort }

// GetChangePatterns aggregates commits newer than now minus timeRange
// (30 days when timeRange is not positive). On persistence failure it logs
// and returns nil, which callers must distinguish from an empty result.
func (s *AnalyticsService) GetChangePatterns(ctx context.Context, timeRange time.Duration) *ChangePatterns {
	if timeRange <= 0 {
		timeRange = defaultPatternWindow
	}
	since := s.now().Add(-timeRange).UnixMilli()

	commits, err := s.repo.CommitsSince(ctx, since)
	if err != nil {
		s.log.Warn("change pattern query failed", zap.Error(err))
		return nil
	}

	var changes []models.Change
	if len(commits) > 0 {
		hashes := make([]string, 0, len(commits))
		for _, c := range commits {
			hashes = append(hashes, c.Hash)
		}
		changes, err = s.repo.ChangesForCommits(ctx, hashes)
		if err != nil {
			s.log.Warn("change pattern query failed", zap.Error(err))
			return nil
		}
	}

	patterns := &ChangePatterns{
		ChangesByType:   make(map[string]int),
		ChangesByEntity: make(map[string]int),
		AuthorActivity:  make(map[string]int),
		DailyActivity:   make(map[string]int),
		TotalCommits:    len(commits),
		TotalChanges:    len(changes),
	}

	var hourCounts [24]int
	for _, c := range commits {
		t := time.UnixMilli(c.Timestamp)
		patterns.AuthorActivity[c.Author]++
		patterns.DailyActivity[t.Format("2006-01-02")]++
		hourCounts[t.Hour()]++
	}
	for _, ch := range changes {
		patterns.ChangesByType[ch.ChangeType]++
		patterns.ChangesByEntity[ch.EntityType]++
	}

	if days := len(patterns.DailyActivity); days > 0 {
		patterns.AverageChangesPerDay = float64(len(changes)) / float64(days)
	}

	if len(commits) > 0 {
		best := 0
		for hour, count := range hourCounts {
			if count > hourCounts[best] {
				best = hour
			}
		}
		patterns.MostActiveHour = &best
	}

	return patterns
}
