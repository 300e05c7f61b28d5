package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sahilchouksey/examace-vault/model"
)

// CronLogRepository records scheduled job runs in cron_job_logs
type CronLogRepository struct {
	db *gorm.DB
}

func NewCronLogRepository(db *gorm.DB) *CronLogRepository {
	return &CronLogRepository{db: db}
}

// Begin inserts a running row and returns its id
func (r *CronLogRepository) Begin(ctx context.Context, job string) (uint, error) {
	row := model.CronJobLog{
		JobName:   job,
		Status:    model.CronJobRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// Finish closes the run started by Begin
func (r *CronLogRepository) Finish(ctx context.Context, id uint, status model.CronJobStatus, message, errMsg string, took time.Duration) error {
	return r.db.WithContext(ctx).
		Model(&model.CronJobLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": time.Now(),
			"duration":     took.Milliseconds(),
			"message":      message,
			"error_msg":    errMsg,
		}).Error
}

// DeleteBefore prunes runs that started before cutoff
func (r *CronLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	return res.RowsAffected, res.Error
}
