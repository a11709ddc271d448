package entity

import (
	"time"
)

// RawMaterial units of measure
const (
	UnitPiece      = "un"
	UnitMeter      = "m"
	UnitCentimeter = "cm"
	UnitKilogram   = "kg"
)

// RawMaterial holds the denormalized current balance for a raw-material
// SKU. The balance is mutated only alongside a StockMovement insert in
// the same transaction; it may go negative, surfaced as an alert.
type RawMaterial struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	SKU       string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Unit      string     `json:"unit" gorm:"size:16;not null;default:un"`
	Quantity  float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"` // signed balance
	UnitCost  float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	CreatedBy string     `json:"created_by" gorm:"size:128"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (RawMaterial) TableName() string {
	return "raw_materials"
}
