package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxTTL caps how long a catalog row is cached. Cached rows carry the
// active flag, so a deactivated row stays visible for at most this long.
const MaxTTL = time.Minute

// Cache is the subset of utils/cache.RedisCache the catalog needs
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedStore is a read-through cache in front of another Store.
// Errors are never cached; cache failures fall back to the store.
type CachedStore struct {
	next  Store
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedStore wraps next with cache
func NewCachedStore(next Store, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   logger.With().Str("component", "catalog_cache").Logger(),
	}
}

func (s *CachedStore) ListChildren(ctx context.Context, level Level, parentID *uuid.UUID) ([]Entity, error) {
	key := ListKey(level.Kind, parentID)

	var cached []Entity
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	entities, err := s.next.ListChildren(ctx, level, parentID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, entities, min(s.ttl, MaxTTL)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog listing")
	}
	return entities, nil
}

func (s *CachedStore) GetEntity(ctx context.Context, level Level, id uuid.UUID) (Entity, error) {
	key := EntityKey(level.Kind, id)

	var cached Entity
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	}

	entity, err := s.next.GetEntity(ctx, level, id)
	if err != nil {
		return Entity{}, err
	}

	if err := s.cache.SetJSON(ctx, key, entity, min(s.ttl, MaxTTL)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog entry")
	}
	return entity, nil
}

// ListKey is the cache key of one level listing
func ListKey(kind Kind, parentID *uuid.UUID) string {
	parent := "root"
	if parentID != nil {
		parent = parentID.String()
	}
	return fmt.Sprintf("catalog:list:%s:%s", kind, parent)
}

// EntityKey is the cache key of a single entry
func EntityKey(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("catalog:get:%s:%s", kind, id)
}
