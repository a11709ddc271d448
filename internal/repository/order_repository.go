package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NextNumber draws the next human-readable order number from the
// database sequence.
func (r *OrderRepository) NextNumber(ctx context.Context) (string, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('production_order_seq')").Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("OP-%06d", seq), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	var order entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Materials").
		Preload("Reports", func(db *gorm.DB) *gorm.DB { return db.Order("reported_at ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateStatusGuarded flips an order's status only when its current
// status is one of the expected source states. Returns ErrNotFound when
// no row matched, which callers treat as a lost transition race.
func (r *OrderRepository) UpdateStatusGuarded(tx *gorm.DB, orderID string, from []string, updates map[string]interface{}) error {
	res := tx.Model(&entity.ProductionOrder{}).
		Where("id = ? AND status IN ? AND deleted_at IS NULL", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type OrderListParams struct {
	Status     string
	Sector     string
	ProductSKU string
	Keyword    string
	From       *time.Time
	To         *time.Time
	Page       int
	Size       int
}

func (r *OrderRepository) List(ctx context.Context, params OrderListParams) ([]entity.ProductionOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ProductionOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Sector != "" {
		query = query.Where("sector = ?", params.Sector)
	}
	if params.ProductSKU != "" {
		query = query.Where("product_sku = ?", params.ProductSKU)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("number ILIKE ? OR product_sku ILIKE ?", kw, kw)
	}
	if params.From != nil {
		query = query.Where("opened_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("opened_at < ?", *params.To)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.ProductionOrder
	err := query.Order("opened_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}

// GetMaterials loads the consumption plan of an order.
func (r *OrderRepository) GetMaterials(ctx context.Context, orderID string) ([]entity.OrderMaterial, error) {
	var materials []entity.OrderMaterial
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&materials).Error
	return materials, err
}

// DB exposes the underlying handle for transactional callers.
func (r *OrderRepository) DB() *gorm.DB {
	return r.db
}
