package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/model"
	"gorm.io/gorm"
)

// CatalogRepository implements catalog.Store on PostgreSQL. Every query
// is derived from the catalog level table.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a repository over the injected connection
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListChildren(ctx context.Context, level catalog.Level, parentID *uuid.UUID) ([]catalog.Entity, error) {
	query := r.db.WithContext(ctx).
		Table(level.Table).
		Where(level.ActiveColumn+" = ?", true)

	if !level.IsRoot() && parentID != nil {
		query = query.Where(level.ParentKey+" = ?", *parentID)
	}
	query = query.Order(level.OrderBy)

	switch level.Kind {
	case catalog.KindUniversity:
		return findAll(query, catalog.FromUniversity)
	case catalog.KindDegree:
		return findAll(query, catalog.FromDegree)
	case catalog.KindSemester:
		return findAll(query, catalog.FromSemester)
	case catalog.KindSubject:
		return findAll(query, catalog.FromSubject)
	}
	return nil, catalog.ErrUnknownKind
}

func (r *CatalogRepository) GetEntity(ctx context.Context, level catalog.Level, id uuid.UUID) (catalog.Entity, error) {
	query := r.db.WithContext(ctx).Table(level.Table).Where("id = ?", id)

	switch level.Kind {
	case catalog.KindUniversity:
		return findOne(query, catalog.FromUniversity)
	case catalog.KindDegree:
		return findOne(query, catalog.FromDegree)
	case catalog.KindSemester:
		return findOne(query, catalog.FromSemester)
	case catalog.KindSubject:
		return findOne(query, catalog.FromSubject)
	}
	return catalog.Entity{}, catalog.ErrUnknownKind
}

// CountActive counts the active rows of a level, used by the home statistics
func (r *CatalogRepository) CountActive(ctx context.Context, kind catalog.Kind) (int64, error) {
	level, ok := catalog.LevelOf(kind)
	if !ok {
		return 0, catalog.ErrUnknownKind
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(levelModel(kind)).
		Where(level.ActiveColumn+" = ?", true).
		Count(&count).Error
	return count, err
}

type catalogRow interface {
	model.University | model.Degree | model.Semester | model.Subject
}

func findAll[T catalogRow](query *gorm.DB, convert func(T) catalog.Entity) ([]catalog.Entity, error) {
	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]catalog.Entity, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert(row))
	}
	return out, nil
}

func findOne[T catalogRow](query *gorm.DB, convert func(T) catalog.Entity) (catalog.Entity, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if IsNotFound(err) {
			return catalog.Entity{}, catalog.ErrNotFound
		}
		return catalog.Entity{}, err
	}
	return convert(row), nil
}

func levelModel(kind catalog.Kind) interface{} {
	switch kind {
	case catalog.KindDegree:
		return &model.Degree{}
	case catalog.KindSemester:
		return &model.Semester{}
	case catalog.KindSubject:
		return &model.Subject{}
	}
	return &model.University{}
}
