package service

import (
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the identity attached to every mutating call for audit
// purposes.
type Actor struct {
	Email string
	Name  string
}

// Services bundles the production/inventory services.
type Services struct {
	Requirement *RequirementService
	Order       *OrderService
	Report      *ReportService
	Kit         *KitService
	Stock       *StockService
	Activity    *ActivityService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Services {
	activity := NewActivityService(repos.Activity, logger)
	requirement := NewRequirementService(repos.Product, repos.Material)
	return &Services{
		Requirement: requirement,
		Order:       NewOrderService(repos.Order, repos.Movement, requirement, activity, db, logger),
		Report:      NewReportService(repos.Report, repos.Order, repos.Movement, activity, db, logger),
		Kit:         NewKitService(repos.Product, repos.Kit, activity, db, rdb, logger),
		Stock:       NewStockService(repos.Movement, repos.Material, repos.Product, activity, db),
		Activity:    activity,
	}
}
