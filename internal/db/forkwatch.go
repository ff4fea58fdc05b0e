package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fork describes a parent commit with more than one child, i.e. a point
// where two writers extended the same head concurrently.
type Fork struct {
	ParentHash string
	Children   int64
}

// ScanForks returns every parent hash referenced by more than one commit.
// Forks are legal in the append-only model; surfacing them is advisory.
func ScanForks(ctx context.Context, db *sql.DB) ([]Fork, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT parent_hash, COUNT(*) FROM budget_commits
		 WHERE parent_hash IS NOT NULL AND parent_hash <> ''
		 GROUP BY parent_hash
		HAVING COUNT(*) > 1
	`)
	if err != nil {
		return nil, fmt.Errorf("scan forks: %w", err)
	}
	defer rows.Close()

	var forks []Fork
	for rows.Next() {
		var f Fork
		if err := rows.Scan(&f.ParentHash, &f.Children); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		forks = append(forks, f)
	}
	return forks, rows.Err()
}

// StartForkWatcher periodically scans the commit graph for forks and logs
// them. Writers are never blocked; a fork only means two devices committed
// against the same parent.
func StartForkWatcher(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				forks, err := ScanForks(ctx, db)
				if err != nil {
					log.Error("fork scan failed", zap.Error(err))
					continue
				}
				for _, f := range forks {
					log.Warn("commit graph fork detected",
						zap.String("parentHash", f.ParentHash),
						zap.Int64("children", f.Children),
					)
				}
			}
		}
	}()
}
