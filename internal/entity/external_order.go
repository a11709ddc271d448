package entity

import (
	"time"
)

// ExternalOrderItem is an incoming order line imported from an outside
// channel. Lines arrive with a free-text description and get bound to a
// canonical product SKU either by alias lookup or in bulk when a new
// kit with a matching name is registered.
type ExternalOrderItem struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	OrderRef    string     `json:"order_ref" gorm:"size:64;index"`
	Description string     `json:"description" gorm:"size:256;not null"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:1"`
	ProductSKU  *string    `json:"product_sku" gorm:"size:64;index"` // nil until matched
	MatchedAt   *time.Time `json:"matched_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ExternalOrderItem) TableName() string {
	return "external_order_items"
}
