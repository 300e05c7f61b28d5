package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"gorm.io/gorm"
)

// ResourceRepository implements resources.Store and search.Store
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a repository over the injected connection
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) ListResources(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.Resource, error) {
	query := r.db.WithContext(ctx).Where("subject_id = ?", subjectID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var rows []model.Resource
	err := query.Order("created_at DESC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *ResourceRepository) ListSolvedArticles(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.SolvedArticle, error) {
	query := r.db.WithContext(ctx).
		Omit("content"). // the listing never renders the article body
		Where("subject_id = ?", subjectID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var rows []model.SolvedArticle
	err := query.Order("created_at DESC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *ResourceRepository) GetResource(ctx context.Context, id uuid.UUID) (model.Resource, error) {
	var row model.Resource
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if IsNotFound(err) {
			return model.Resource{}, resources.ErrNotFound
		}
		return model.Resource{}, err
	}
	return row, nil
}

func (r *ResourceRepository) GetArticle(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	var row model.SolvedArticle
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if IsNotFound(err) {
			return model.SolvedArticle{}, resources.ErrNotFound
		}
		return model.SolvedArticle{}, err
	}
	return row, nil
}

// IncrementDownloads bumps the counter in one UPDATE so concurrent
// downloads never lose an increment.
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.Resource{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return resources.ErrNotFound
	}
	return nil
}

func (r *ResourceRepository) SearchResources(ctx context.Context, c search.Criteria) ([]model.Resource, error) {
	query := r.db.WithContext(ctx).Model(&model.Resource{})
	if c.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if c.Recent {
		query = query.Where("show_in_recent = ?", true)
	} else {
		where, args := c.Where()
		query = query.Where("("+where+")", args...)
	}

	var rows []model.Resource
	err := query.Order("created_at DESC, id ASC").Limit(c.Limit).Find(&rows).Error
	return rows, err
}

// Totals are the aggregate numbers shown on the home page
type Totals struct {
	Resources      int64
	TotalDownloads int64
}

// ResourceTotals counts published resources and sums their downloads
func (r *ResourceRepository) ResourceTotals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.WithContext(ctx).
		Model(&model.Resource{}).
		Select("COUNT(*) AS resources, COALESCE(SUM(download_count), 0) AS total_downloads").
		Where("is_published = ?", true).
		Scan(&t).Error
	return t, err
}
