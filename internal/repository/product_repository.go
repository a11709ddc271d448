package repository

import (
	"context"
	"errors"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindBySKU loads a product with its recipe and kit components.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Recipe", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Where("sku = ? AND deleted_at IS NULL", sku).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

type ProductListParams struct {
	Keyword  string
	KitsOnly bool
	Page     int
	Size     int
}

func (r *ProductRepository) List(ctx context.Context, params ProductListParams) ([]entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("deleted_at IS NULL")
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", kw, kw)
	}
	if params.KitsOnly {
		query = query.Where("is_kit")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var products []entity.Product
	err := query.Order("sku ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&products).Error
	return products, total, err
}

// FindKitsByComponentCount returns all kit products whose BOM has
// exactly n component lines, components preloaded. This is the cheap
// pre-filter for composition matching.
func (r *ProductRepository) FindKitsByComponentCount(ctx context.Context, n int) ([]entity.Product, error) {
	var kits []entity.Product
	err := r.db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Where(`is_kit AND deleted_at IS NULL AND id IN (
			SELECT product_id FROM kit_components GROUP BY product_id HAVING COUNT(*) = ?
		)`, n).
		Order("sku ASC").
		Find(&kits).Error
	return kits, err
}

// DB exposes the underlying handle for transactional callers.
func (r *ProductRepository) DB() *gorm.DB {
	return r.db
}
