package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahilchouksey/examace-vault/model"
)

// FormRepository stores the public write paths: mailing-list sign ups and
// contact form messages
type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// CreateSubscriber inserts a subscriber; duplicates surface as a unique
// violation (see IsUniqueViolation)
func (r *FormRepository) CreateSubscriber(ctx context.Context, s *model.Subscriber) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *FormRepository) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *FormRepository) UpdateContactStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"error_msg":  errMsg,
			"updated_at": time.Now(),
		}).Error
}
