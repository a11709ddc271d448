package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles every repository over one gorm handle.
type Repositories struct {
	Product  *ProductRepository
	Material *MaterialRepository
	Order    *OrderRepository
	Movement *MovementRepository
	Report   *ReportRepository
	Kit      *KitRepository
	Activity *ActivityRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:  NewProductRepository(db),
		Material: NewMaterialRepository(db),
		Order:    NewOrderRepository(db),
		Movement: NewMovementRepository(db),
		Report:   NewReportRepository(db),
		Kit:      NewKitRepository(db),
		Activity: NewActivityRepository(db),
	}
}
