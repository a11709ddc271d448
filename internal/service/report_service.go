package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService records production output against open orders and keeps
// the finished-goods ledger in step with the order counters.
type ReportService struct {
	reportRepo   *repository.ReportRepository
	orderRepo    *repository.OrderRepository
	movementRepo *repository.MovementRepository
	activity     *ActivityService
	db           *gorm.DB
	logger       *zap.Logger
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	orderRepo *repository.OrderRepository,
	movementRepo *repository.MovementRepository,
	activity *ActivityService,
	db *gorm.DB,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		activity:     activity,
		db:           db,
		logger:       logger,
	}
}

type CreateReportRequest struct {
	ProducedQty  float64 `json:"produced_qty" binding:"required,gt=0"`
	ScrapQty     float64 `json:"scrap_qty" binding:"omitempty,gte=0"`
	ScrapReason  string  `json:"scrap_reason"`
	MinutesSpent int     `json:"minutes_spent" binding:"omitempty,gte=0"`
	Operator     string  `json:"operator"`
	Notes        string  `json:"notes"`
}

// Create records one output increment. In a single transaction it
// inserts the report, raises the finished-goods balance by the produced
// amount, writes the scrap record and its negative ledger entry when
// scrap was declared, bumps the order counters, and completes the order
// once cumulative production reaches the plan. Over-production is
// allowed and only warned about.
func (s *ReportService) Create(ctx context.Context, orderID string, req CreateReportRequest, actor Actor) (*entity.ProductionReport, []string, error) {
	if req.ProducedQty <= 0 || req.ScrapQty < 0 {
		return nil, nil, ErrInvalidQuantity
	}
	if req.ScrapQty > 0 && req.ScrapReason == "" {
		return nil, nil, ErrMissingScrapReason
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !order.Active() {
		return nil, nil, &InvalidTransitionError{Current: order.Status, Action: "report"}
	}

	now := time.Now()
	report := &entity.ProductionReport{
		ID:           uuid.New().String(),
		OrderID:      order.ID,
		ProducedQty:  req.ProducedQty,
		ScrapQty:     req.ScrapQty,
		ScrapReason:  req.ScrapReason,
		MinutesSpent: req.MinutesSpent,
		Operator:     req.Operator,
		Notes:        req.Notes,
		ReportedBy:   actor.Email,
		ReportedAt:   now,
	}

	var warnings []string
	newProduced := order.ProducedQty + req.ProducedQty
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := s.movementRepo.Apply(tx, &entity.StockMovement{
			ItemType:     entity.ItemTypeProduct,
			SKU:          order.ProductSKU,
			MovementType: entity.MovementEntry,
			Quantity:     req.ProducedQty,
			OriginTable:  "production_reports",
			OriginID:     report.ID,
			Note:         fmt.Sprintf("output of order %s", order.Number),
			CreatedBy:    actor.Email,
		}); err != nil {
			return err
		}
		if req.ScrapQty > 0 {
			scrap := &entity.ScrapRecord{
				ID:         uuid.New().String(),
				OrderID:    order.ID,
				ReportID:   report.ID,
				ProductSKU: order.ProductSKU,
				Quantity:   req.ScrapQty,
				Reason:     req.ScrapReason,
				RecordedBy: actor.Email,
			}
			if err := tx.Create(scrap).Error; err != nil {
				return fmt.Errorf("create scrap record: %w", err)
			}
			if err := s.movementRepo.Apply(tx, &entity.StockMovement{
				ItemType:     entity.ItemTypeProduct,
				SKU:          order.ProductSKU,
				MovementType: entity.MovementScrap,
				Quantity:     -req.ScrapQty,
				OriginTable:  "production_reports",
				OriginID:     report.ID,
				Note:         req.ScrapReason,
				CreatedBy:    actor.Email,
			}); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"produced_qty": gorm.Expr("produced_qty + ?", req.ProducedQty),
			"scrap_qty":    gorm.Expr("scrap_qty + ?", req.ScrapQty),
			"updated_at":   now,
		}
		if newProduced >= order.PlannedQty {
			updates["status"] = entity.OrderStatusCompleted
			updates["completed_at"] = now
		}
		res := tx.Model(&entity.ProductionOrder{}).
			Where("id = ? AND status IN ?", order.ID, []string{entity.OrderStatusInProduction, entity.OrderStatusPaused}).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update order counters: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &InvalidTransitionError{Current: order.Status, Action: "report"}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if newProduced > order.PlannedQty {
		w := fmt.Sprintf("order %s over-produced: %.4f of %.4f planned", order.Number, newProduced, order.PlannedQty)
		warnings = append(warnings, w)
		s.logger.Warn("over-production reported",
			zap.String("order", order.Number),
			zap.Float64("produced", newProduced),
			zap.Float64("planned", order.PlannedQty))
	}

	s.activity.Record(actor, "report.create", "production_reports", report.ID,
		fmt.Sprintf("order %s: +%g produced, %g scrap", order.Number, req.ProducedQty, req.ScrapQty))
	return report, warnings, nil
}

// Delete compensates a report: the order counters drop by the report's
// amounts, one negative finished-goods reversal entry undoes the
// produced gain, and an order completed solely by this report returns
// to production. The scrap ledger entry written at report time stays in
// the ledger; only the derived scrap record row goes away.
func (s *ReportService) Delete(ctx context.Context, reportID string, actor Actor) error {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	order, err := s.orderRepo.GetByID(ctx, report.OrderID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.movementRepo.Apply(tx, &entity.StockMovement{
			ItemType:     entity.ItemTypeProduct,
			SKU:          order.ProductSKU,
			MovementType: entity.MovementReversal,
			Quantity:     -report.ProducedQty,
			OriginTable:  "production_reports",
			OriginID:     report.ID,
			Note:         fmt.Sprintf("report deleted on order %s", order.Number),
			CreatedBy:    actor.Email,
		}); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"produced_qty": gorm.Expr("produced_qty - ?", report.ProducedQty),
			"scrap_qty":    gorm.Expr("scrap_qty - ?", report.ScrapQty),
			"updated_at":   now,
		}
		if order.Status == entity.OrderStatusCompleted && order.ProducedQty-report.ProducedQty < order.PlannedQty {
			updates["status"] = entity.OrderStatusInProduction
			updates["completed_at"] = nil
		}
		if err := tx.Model(&entity.ProductionOrder{}).
			Where("id = ?", order.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("revert order counters: %w", err)
		}

		if err := tx.Where("report_id = ?", report.ID).Delete(&entity.ScrapRecord{}).Error; err != nil {
			return fmt.Errorf("delete scrap record: %w", err)
		}
		if err := tx.Delete(&entity.ProductionReport{}, "id = ?", report.ID).Error; err != nil {
			return fmt.Errorf("delete report: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(actor, "report.delete", "production_reports", report.ID,
		fmt.Sprintf("order %s: -%g produced reversed", order.Number, report.ProducedQty))
	return nil
}

func (s *ReportService) ListByOrder(ctx context.Context, orderID string) ([]entity.ProductionReport, error) {
	return s.reportRepo.ListByOrder(ctx, orderID)
}

// Stats aggregates reporting over [from, to).
func (s *ReportService) Stats(ctx context.Context, from, to time.Time) (*repository.ProductionStats, error) {
	return s.reportRepo.Stats(ctx, from, to)
}
