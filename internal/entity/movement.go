package entity

import (
	"time"
)

// StockItemType distinguishes which balance a movement applies to.
const (
	ItemTypeRaw     = "RAW"
	ItemTypeProduct = "PRODUCT"
)

// MovementType tags the cause of a ledger entry.
const (
	MovementConsumption = "CONSUMPTION" // raw material consumed at order start
	MovementEntry       = "ENTRY"       // stock increase (production output, purchases)
	MovementScrap       = "SCRAP"       // finished goods discarded with a reason
	MovementReversal    = "REVERSAL"    // compensation for a deleted report
	MovementAdjustment  = "ADJUSTMENT"  // compensation for a cancelled order, manual corrections
	MovementManual      = "MANUAL"      // operator-entered movement
)

// StockMovement is one entry of the append-only ledger: a signed
// quantity change against a SKU, tagged with its cause and origin.
// Entries are never updated or deleted; for every SKU the signed sum of
// its entries reconciles with the denormalized balance because both
// writes always share one transaction.
type StockMovement struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemType     string    `json:"item_type" gorm:"size:10;not null;index:idx_movements_item"`
	SKU          string    `json:"sku" gorm:"size:64;not null;index:idx_movements_item"`
	MovementType string    `json:"movement_type" gorm:"size:16;not null"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // signed: positive in, negative out
	OriginTable  string    `json:"origin_table" gorm:"size:50"`
	OriginID     string    `json:"origin_id" gorm:"size:64"`
	Note         string    `json:"note" gorm:"type:text"`
	CreatedBy    string    `json:"created_by" gorm:"size:128;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
