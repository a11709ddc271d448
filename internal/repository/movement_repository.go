package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Apply inserts a ledger entry and moves the matching balance by the
// entry's signed quantity, both on the supplied transaction handle.
// This is the only code path that touches a balance: the ledger insert
// and the balance update either commit together or not at all.
// Balances are allowed to go negative.
func (r *MovementRepository) Apply(tx *gorm.DB, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := tx.Create(m).Error; err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	var res *gorm.DB
	switch m.ItemType {
	case entity.ItemTypeRaw:
		res = tx.Model(&entity.RawMaterial{}).
			Where("sku = ? AND deleted_at IS NULL", m.SKU).
			Update("quantity", gorm.Expr("quantity + ?", m.Quantity))
	case entity.ItemTypeProduct:
		res = tx.Model(&entity.Product{}).
			Where("sku = ? AND deleted_at IS NULL", m.SKU).
			Update("quantity", gorm.Expr("quantity + ?", m.Quantity))
	default:
		return fmt.Errorf("unknown item type %q", m.ItemType)
	}
	if res.Error != nil {
		return fmt.Errorf("update balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("balance update for %s %s: %w", m.ItemType, m.SKU, ErrNotFound)
	}
	return nil
}

// SumForSKU returns the signed sum of all ledger entries for a SKU.
func (r *MovementRepository) SumForSKU(ctx context.Context, itemType, sku string) (float64, error) {
	var result struct{ Total float64 }
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(quantity), 0) AS total
		FROM stock_movements
		WHERE item_type = ? AND sku = ?
	`, itemType, sku).Scan(&result).Error
	return result.Total, err
}

type MovementListParams struct {
	ItemType     string
	SKU          string
	MovementType string
	OriginTable  string
	OriginID     string
	From         *time.Time
	To           *time.Time
	Page         int
	Size         int
}

func (r *MovementRepository) List(ctx context.Context, params MovementListParams) ([]entity.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockMovement{})
	if params.ItemType != "" {
		query = query.Where("item_type = ?", params.ItemType)
	}
	if params.SKU != "" {
		query = query.Where("sku = ?", params.SKU)
	}
	if params.MovementType != "" {
		query = query.Where("movement_type = ?", params.MovementType)
	}
	if params.OriginTable != "" {
		query = query.Where("origin_table = ?", params.OriginTable)
	}
	if params.OriginID != "" {
		query = query.Where("origin_id = ?", params.OriginID)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 50
	}
	var movements []entity.StockMovement
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&movements).Error
	return movements, total, err
}

// DB exposes the underlying handle for transactional callers.
func (r *MovementRepository) DB() *gorm.DB {
	return r.db
}
