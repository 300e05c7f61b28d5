package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/services"
)

// StatsRefresher recomputes the home statistics
type StatsRefresher interface {
	Refresh(ctx context.Context) (services.Stats, error)
}

// CacheInvalidator drops cached keys by pattern
type CacheInvalidator interface {
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// LogPruner deletes old run rows
type LogPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshStats keeps the cached home statistics warm
func RefreshStats(stats StatsRefresher) Job {
	return Job{
		Name:     "refresh_stats",
		Schedule: "0 */10 * * * *",
		Timeout:  time.Minute,
		Run: func(ctx context.Context) (string, error) {
			s, err := stats.Refresh(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d resources, %d downloads", s.TotalResources, s.TotalDownloads), nil
		},
	}
}

// WarmCatalogCache drops the cached catalog and walks the whole tree through
// fetcher, which must sit on a catalog.CachedStore for the walk to refill it.
func WarmCatalogCache(fetcher *catalog.Fetcher, cache CacheInvalidator) Job {
	return Job{
		Name:     "warm_catalog_cache",
		Schedule: "0 0 * * * *",
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			removed, err := cache.DeletePattern(ctx, "catalog:*")
			if err != nil {
				return "", fmt.Errorf("invalidate catalog cache: %w", err)
			}
			visited, err := walkCatalog(ctx, fetcher, catalog.KindUniversity, nil)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("dropped %d keys, cached %d entries", removed, visited), nil
		},
	}
}

func walkCatalog(ctx context.Context, fetcher *catalog.Fetcher, kind catalog.Kind, parentID *uuid.UUID) (int, error) {
	res := fetcher.ListChildren(ctx, kind, parentID)
	if res.Failed() {
		return 0, fmt.Errorf("warm %s: %w", kind.Plural(), res.Err)
	}

	visited := len(res.Entities)
	child, ok := kind.Child()
	if !ok {
		return visited, nil
	}
	for _, e := range res.Entities {
		id := e.ID
		n, err := walkCatalog(ctx, fetcher, child, &id)
		if err != nil {
			return visited, err
		}
		visited += n
	}
	return visited, nil
}

// PruneRunLogs removes cron_job_logs rows older than retention
func PruneRunLogs(logs LogPruner, retention time.Duration) Job {
	return Job{
		Name:     "prune_cron_logs",
		Schedule: "0 0 2 * * *",
		Timeout:  time.Minute,
		Run: func(ctx context.Context) (string, error) {
			n, err := logs.DeleteBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("removed %d run logs", n), nil
		},
	}
}
