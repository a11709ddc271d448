package entity

import (
	"time"
)

// ProductStatus lifecycle of a finished-product record
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a finished good. Kits are products assembled on demand from
// component products; their composition lives in Components.
type Product struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	SKU       string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Status    string     `json:"status" gorm:"size:16;not null;default:active"`
	Unit      string     `json:"unit" gorm:"size:16;not null;default:un"`
	Price     float64    `json:"price" gorm:"type:decimal(12,4);default:0"`
	Quantity  float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"` // finished-goods balance, signed
	IsKit     bool       `json:"is_kit" gorm:"not null;default:false"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:128"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Recipe     []RecipeItem   `json:"recipe,omitempty" gorm:"foreignKey:ProductID"`
	Components []KitComponent `json:"components,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// RecipeItem is one raw-material line of a simple product's recipe,
// expressed per unit of finished product.
type RecipeItem struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProductID  string    `json:"product_id" gorm:"type:uuid;not null;index"`
	RawSKU     string    `json:"raw_sku" gorm:"size:64;not null"`
	QtyPerUnit float64   `json:"qty_per_unit" gorm:"type:decimal(12,4);not null"`
	Unit       string    `json:"unit" gorm:"size:16;not null;default:un"`
	Sequence   int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (RecipeItem) TableName() string {
	return "product_recipe_items"
}

// KitComponent is one component line of a kit's bill of materials.
type KitComponent struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProductID    string    `json:"product_id" gorm:"type:uuid;not null;index"`
	ComponentSKU string    `json:"component_sku" gorm:"size:64;not null"`
	QtyPerKit    float64   `json:"qty_per_kit" gorm:"type:decimal(12,4);not null;default:1"`
	Sequence     int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (KitComponent) TableName() string {
	return "kit_components"
}

// KitAlias maps a normalized free-text description to a kit SKU so that
// future external order lines bind automatically.
type KitAlias struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Alias     string    `json:"alias" gorm:"size:256;not null;uniqueIndex"`
	KitSKU    string    `json:"kit_sku" gorm:"size:64;not null;index"`
	CreatedBy string    `json:"created_by" gorm:"size:128"`
	CreatedAt time.Time `json:"created_at"`
}

func (KitAlias) TableName() string {
	return "kit_aliases"
}
