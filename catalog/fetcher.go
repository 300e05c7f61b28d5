package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound    = errors.New("catalog entry not found")
	ErrUnknownKind = errors.New("unknown catalog level")
)

// Store is the data backend for catalog levels. Implementations filter on
// the active column and the parent key and apply Level.OrderBy.
type Store interface {
	ListChildren(ctx context.Context, level Level, parentID *uuid.UUID) ([]Entity, error)
	GetEntity(ctx context.Context, level Level, id uuid.UUID) (Entity, error)
}

// Fetcher loads the children of one hierarchy level
type Fetcher struct {
	store Store
	log   zerolog.Logger
}

// NewFetcher creates a fetcher over the injected store
func NewFetcher(store Store, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		store: store,
		log:   logger.With().Str("component", "catalog").Logger(),
	}
}

// ListChildren returns the active entities of kind below parentID in
// canonical order. A non-root level without a parent id issues no request.
func (f *Fetcher) ListChildren(ctx context.Context, kind Kind, parentID *uuid.UUID) Result {
	level, ok := LevelOf(kind)
	if !ok {
		return failed(kind, parentID, fmt.Errorf("%w: %q", ErrUnknownKind, kind))
	}

	if level.IsRoot() {
		parentID = nil
	} else if parentID == nil || *parentID == uuid.Nil {
		return skipped(kind)
	}

	entities, err := f.store.ListChildren(ctx, level, parentID)
	if err != nil {
		f.log.Error().Err(err).Str("kind", string(kind)).Msg("failed to list catalog level")
		return failed(kind, parentID, err)
	}

	return succeeded(kind, parentID, normalize(level, parentID, entities))
}

// Get fetches one active entity of kind by id
func (f *Fetcher) Get(ctx context.Context, kind Kind, id uuid.UUID) (Entity, error) {
	level, ok := LevelOf(kind)
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if id == uuid.Nil {
		return Entity{}, ErrNotFound
	}

	entity, err := f.store.GetEntity(ctx, level, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			f.log.Error().Err(err).Str("kind", string(kind)).Str("id", id.String()).Msg("failed to fetch catalog entry")
		}
		return Entity{}, err
	}
	if !entity.Active {
		return Entity{}, ErrNotFound
	}
	return entity, nil
}

// normalize drops rows the store should not have returned and re-applies
// the level order so listings stay stable whatever the backend does.
func normalize(level Level, parentID *uuid.UUID, entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if !e.Active {
			continue
		}
		if parentID != nil && !e.HasParent(*parentID) {
			continue
		}
		e.Kind = level.Kind
		out = append(out, e)
	}
	slices.SortStableFunc(out, level.Compare)
	return out
}
