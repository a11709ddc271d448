package repository

import (
	"context"
	"errors"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) FindBySKU(ctx context.Context, sku string) (*entity.RawMaterial, error) {
	var material entity.RawMaterial
	err := r.db.WithContext(ctx).
		Where("sku = ? AND deleted_at IS NULL", sku).
		First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindBySKUs loads several materials at once, keyed by SKU.
func (r *MaterialRepository) FindBySKUs(ctx context.Context, skus []string) (map[string]entity.RawMaterial, error) {
	var materials []entity.RawMaterial
	err := r.db.WithContext(ctx).
		Where("sku IN ? AND deleted_at IS NULL", skus).
		Find(&materials).Error
	if err != nil {
		return nil, err
	}
	bySKU := make(map[string]entity.RawMaterial, len(materials))
	for _, m := range materials {
		bySKU[m.SKU] = m
	}
	return bySKU, nil
}

func (r *MaterialRepository) Create(ctx context.Context, material *entity.RawMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) Update(ctx context.Context, material *entity.RawMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

type MaterialListParams struct {
	Keyword string
	Page    int
	Size    int
}

func (r *MaterialRepository) List(ctx context.Context, params MaterialListParams) ([]entity.RawMaterial, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.RawMaterial{}).Where("deleted_at IS NULL")
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var materials []entity.RawMaterial
	err := query.Order("sku ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&materials).Error
	return materials, total, err
}

// GetNegative returns raw materials whose balance went below zero.
// Negative stock is permitted; it is surfaced as an alert, not blocked.
func (r *MaterialRepository) GetNegative(ctx context.Context) ([]entity.RawMaterial, error) {
	var alerts []entity.RawMaterial
	err := r.db.WithContext(ctx).
		Where("quantity < 0 AND deleted_at IS NULL").
		Order("quantity ASC").
		Find(&alerts).Error
	return alerts, err
}

// DB exposes the underlying handle for transactional callers.
func (r *MaterialRepository) DB() *gorm.DB {
	return r.db
}
