package repository

import (
	"context"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ActivityRepository) ListByEntity(ctx context.Context, entityType, entityID string, page, size int) ([]entity.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var logs []entity.ActivityLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&logs).Error
	return logs, total, err
}
