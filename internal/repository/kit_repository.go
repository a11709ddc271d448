package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

// KitRepository covers kit aliases and the external order lines they
// bind to.
type KitRepository struct {
	db *gorm.DB
}

func NewKitRepository(db *gorm.DB) *KitRepository {
	return &KitRepository{db: db}
}

// FindAlias resolves a normalized free-text alias to a kit SKU.
func (r *KitRepository) FindAlias(ctx context.Context, alias string) (*entity.KitAlias, error) {
	var ka entity.KitAlias
	err := r.db.WithContext(ctx).
		Where("alias = ?", strings.ToLower(strings.TrimSpace(alias))).
		First(&ka).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ka, nil
}

// ListUnmatchedItems returns external order lines not yet bound to a
// product SKU.
func (r *KitRepository) ListUnmatchedItems(ctx context.Context, page, size int) ([]entity.ExternalOrderItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ExternalOrderItem{}).Where("product_sku IS NULL")
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var items []entity.ExternalOrderItem
	err := query.Order("created_at ASC").
		Offset((page - 1) * size).Limit(size).
		Find(&items).Error
	return items, total, err
}

// BindItemsByDescription binds, on the supplied transaction, every
// unmatched external line whose description equals the given text
// (case-insensitive) to the kit SKU. Returns how many lines were bound.
func (r *KitRepository) BindItemsByDescription(tx *gorm.DB, description, kitSKU string) (int64, error) {
	now := time.Now()
	res := tx.Model(&entity.ExternalOrderItem{}).
		Where("product_sku IS NULL AND LOWER(TRIM(description)) = ?", strings.ToLower(strings.TrimSpace(description))).
		Updates(map[string]interface{}{"product_sku": kitSKU, "matched_at": now, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *KitRepository) CreateItem(ctx context.Context, item *entity.ExternalOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DB exposes the underlying handle for transactional callers.
func (r *KitRepository) DB() *gorm.DB {
	return r.db
}
