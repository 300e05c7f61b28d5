package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/database"
)

// StatsCacheKey is where the home statistics are cached
const StatsCacheKey = "stats:home"

// Stats are the counters shown on the home page
type Stats struct {
	TotalResources    int64     `json:"total_resources"`
	TotalUniversities int64     `json:"total_universities"`
	TotalSubjects     int64     `json:"total_subjects"`
	TotalDownloads    int64     `json:"total_downloads"`
	ComputedAt        time.Time `json:"computed_at"`
}

// CatalogCounter counts active catalog rows
type CatalogCounter interface {
	CountActive(ctx context.Context, kind catalog.Kind) (int64, error)
}

// TotalsSource sums the published resources
type TotalsSource interface {
	ResourceTotals(ctx context.Context) (database.Totals, error)
}

// StatsService computes and caches the home statistics
type StatsService struct {
	counter CatalogCounter
	totals  TotalsSource
	cache   catalog.Cache
	ttl     time.Duration
	log     zerolog.Logger
}

// NewStatsService creates the service; cache may be nil
func NewStatsService(counter CatalogCounter, totals TotalsSource, cache catalog.Cache, ttl time.Duration, logger zerolog.Logger) *StatsService {
	return &StatsService{
		counter: counter,
		totals:  totals,
		cache:   cache,
		ttl:     ttl,
		log:     logger.With().Str("component", "stats").Logger(),
	}
}

// Get serves cached stats when present, otherwise computes them
func (s *StatsService) Get(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		var cached Stats
		if err := s.cache.GetJSON(ctx, StatsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the stats and overwrites the cache entry
func (s *StatsService) Refresh(ctx context.Context) (Stats, error) {
	var (
		universities int64
		subjects     int64
		totals       database.Totals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.counter.CountActive(gctx, catalog.KindUniversity)
		universities = n
		return err
	})
	g.Go(func() error {
		n, err := s.counter.CountActive(gctx, catalog.KindSubject)
		subjects = n
		return err
	})
	g.Go(func() error {
		t, err := s.totals.ResourceTotals(gctx)
		totals = t
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("compute stats: %w", err)
	}

	stats := Stats{
		TotalResources:    totals.Resources,
		TotalUniversities: universities,
		TotalSubjects:     subjects,
		TotalDownloads:    totals.TotalDownloads,
		ComputedAt:        time.Now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, StatsCacheKey, stats, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache stats")
		}
	}
	return stats, nil
}
