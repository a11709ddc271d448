package entity

import (
	"time"
)

// OrderStatus production order states
const (
	OrderStatusAwaiting         = "AWAITING"
	OrderStatusAwaitingMaterial = "AWAITING_MATERIAL"
	OrderStatusReadyToStart     = "READY_TO_START"
	OrderStatusInProduction     = "IN_PRODUCTION"
	OrderStatusPaused           = "PAUSED"
	OrderStatusCompleted        = "COMPLETED"
	OrderStatusCancelled        = "CANCELLED"
)

// OrderPriority ordered priority levels
const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// ProductionOrder instructs manufacture of a planned quantity of one
// finished-product SKU. Produced/Scrap accumulate from reports; the
// order is never physically deleted after consuming material unless the
// consumption was reversed first.
type ProductionOrder struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	Number      string     `json:"number" gorm:"size:32;not null;uniqueIndex"`
	ProductSKU  string     `json:"product_sku" gorm:"size:64;not null;index"`
	PlannedQty  float64    `json:"planned_qty" gorm:"type:decimal(12,4);not null"`
	ProducedQty float64    `json:"produced_qty" gorm:"type:decimal(12,4);not null;default:0"`
	ScrapQty    float64    `json:"scrap_qty" gorm:"type:decimal(12,4);not null;default:0"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:NORMAL"`
	Status      string     `json:"status" gorm:"size:24;not null;index"`
	Sector      string     `json:"sector" gorm:"size:64"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:128;not null"`
	OpenedAt    time.Time  `json:"opened_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	Materials []OrderMaterial    `json:"materials,omitempty" gorm:"foreignKey:OrderID"`
	Reports   []ProductionReport `json:"reports,omitempty" gorm:"foreignKey:OrderID"`
}

func (ProductionOrder) TableName() string {
	return "production_orders"
}

// Active reports whether the order can still receive production reports.
func (o *ProductionOrder) Active() bool {
	return o.Status == OrderStatusInProduction || o.Status == OrderStatusPaused
}

// Terminal reports whether the order reached a final state.
func (o *ProductionOrder) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// OrderMaterial is one consumption-plan line: planned quantity of a raw
// material for the order, and how much of it was actually consumed.
// ConsumedQty is either 0 or PlannedQty: consumption is all-or-nothing
// per line, applied once at order start and zeroed on cancel.
type OrderMaterial struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID     string    `json:"order_id" gorm:"type:uuid;not null;index"`
	RawSKU      string    `json:"raw_sku" gorm:"size:64;not null"`
	PlannedQty  float64   `json:"planned_qty" gorm:"type:decimal(12,4);not null"`
	ConsumedQty float64   `json:"consumed_qty" gorm:"type:decimal(12,4);not null;default:0"`
	Unit        string    `json:"unit" gorm:"size:16;not null;default:un"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (OrderMaterial) TableName() string {
	return "production_order_materials"
}
