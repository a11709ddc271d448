package entity

import "gorm.io/gorm"

// AutoMigrate creates or updates all inventory/production tables plus
// the order-number sequence.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// catalog
		&Product{},
		&RecipeItem{},
		&KitComponent{},
		&KitAlias{},
		&RawMaterial{},

		// production
		&ProductionOrder{},
		&OrderMaterial{},
		&ProductionReport{},
		&ScrapRecord{},

		// inventory ledger
		&StockMovement{},

		// integrations
		&ExternalOrderItem{},

		// audit
		&ActivityLog{},
	); err != nil {
		return err
	}
	return db.Exec("CREATE SEQUENCE IF NOT EXISTS production_order_seq START 1").Error
}
