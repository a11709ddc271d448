package entity

import (
	"time"
)

// ProductionReport records an output increment against an open order.
// Quantities are immutable after creation; deleting a report triggers a
// compensating reversal of the order totals and the finished-goods
// ledger.
type ProductionReport struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID      string    `json:"order_id" gorm:"type:uuid;not null;index"`
	ProducedQty  float64   `json:"produced_qty" gorm:"type:decimal(12,4);not null"`
	ScrapQty     float64   `json:"scrap_qty" gorm:"type:decimal(12,4);not null;default:0"`
	ScrapReason  string    `json:"scrap_reason" gorm:"size:256"`
	MinutesSpent int       `json:"minutes_spent" gorm:"default:0"`
	Operator     string    `json:"operator" gorm:"size:128"`
	Notes        string    `json:"notes" gorm:"type:text"`
	ReportedBy   string    `json:"reported_by" gorm:"size:128;not null"`
	ReportedAt   time.Time `json:"reported_at" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ProductionReport) TableName() string {
	return "production_reports"
}

// ScrapRecord is derived 1:1 from the scrap portion of a report and is
// never independently mutated.
type ScrapRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID    string    `json:"order_id" gorm:"type:uuid;not null;index"`
	ReportID   string    `json:"report_id" gorm:"type:uuid;not null;index"`
	ProductSKU string    `json:"product_sku" gorm:"size:64;not null"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Reason     string    `json:"reason" gorm:"size:256;not null"`
	RecordedBy string    `json:"recorded_by" gorm:"size:128;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ScrapRecord) TableName() string {
	return "scrap_records"
}
