package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"gorm.io/gorm"
)

func startedOrder(t *testing.T, db *gorm.DB, svc *Services, plannedQty float64) *entity.ProductionOrder {
	t.Helper()
	seedShirtCatalog(t, db, 1000, 1000)
	order := mustCreateOrder(t, svc, plannedQty)
	started, _, err := svc.Order.Start(context.Background(), order.ID, testActor)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return started
}

func TestReportTotalsAndDelete(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 10)
	ctx := context.Background()

	if _, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 5}, testActor); err != nil {
		t.Fatalf("First report failed: %v", err)
	}
	second, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 3}, testActor)
	if err != nil {
		t.Fatalf("Second report failed: %v", err)
	}

	current, _ := svc.Order.Get(ctx, order.ID)
	if current.ProducedQty != 8 {
		t.Fatalf("Expected produced 8, got %v", current.ProducedQty)
	}

	var product entity.Product
	db.Where("sku = ?", "CAM-001").First(&product)
	if product.Quantity != 8 {
		t.Errorf("Expected finished-goods balance 8, got %v", product.Quantity)
	}

	if err := svc.Report.Delete(ctx, second.ID, testActor); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	current, _ = svc.Order.Get(ctx, order.ID)
	if current.ProducedQty != 5 {
		t.Errorf("Expected produced back to 5, got %v", current.ProducedQty)
	}
	if len(current.Reports) != 1 {
		t.Errorf("Expected 1 remaining report, got %d", len(current.Reports))
	}

	var reversal entity.StockMovement
	err = db.Where("movement_type = ? AND origin_id = ?", entity.MovementReversal, second.ID).First(&reversal).Error
	if err != nil {
		t.Fatalf("Expected a reversal entry: %v", err)
	}
	if reversal.Quantity != -3 {
		t.Errorf("Expected reversal -3, got %v", reversal.Quantity)
	}

	db.Where("sku = ?", "CAM-001").First(&product)
	if product.Quantity != 5 {
		t.Errorf("Expected balance back to 5, got %v", product.Quantity)
	}
}

func TestScrapRequiresReason(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 10)
	ctx := context.Background()

	_, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 5, ScrapQty: 2}, testActor)
	if !errors.Is(err, ErrMissingScrapReason) {
		t.Fatalf("Expected ErrMissingScrapReason, got %v", err)
	}

	// zero scrap needs no reason
	if _, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 5}, testActor); err != nil {
		t.Fatalf("Report without scrap failed: %v", err)
	}
}

func TestScrapWritesRecordAndLedger(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 10)
	ctx := context.Background()

	report, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{
		ProducedQty: 5,
		ScrapQty:    2,
		ScrapReason: "costura torta",
	}, testActor)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var scrap entity.ScrapRecord
	if err := db.Where("report_id = ?", report.ID).First(&scrap).Error; err != nil {
		t.Fatalf("Expected a scrap record: %v", err)
	}
	if scrap.Quantity != 2 || scrap.Reason != "costura torta" {
		t.Errorf("Expected scrap 2 / reason set, got %v / %q", scrap.Quantity, scrap.Reason)
	}

	var scrapEntry entity.StockMovement
	if err := db.Where("movement_type = ? AND origin_id = ?", entity.MovementScrap, report.ID).First(&scrapEntry).Error; err != nil {
		t.Fatalf("Expected a scrap ledger entry: %v", err)
	}
	if scrapEntry.Quantity != -2 {
		t.Errorf("Expected scrap entry -2, got %v", scrapEntry.Quantity)
	}

	// +5 entry and -2 scrap leave 3 in finished goods
	var product entity.Product
	db.Where("sku = ?", "CAM-001").First(&product)
	if product.Quantity != 3 {
		t.Errorf("Expected balance 3, got %v", product.Quantity)
	}

	current, _ := svc.Order.Get(ctx, order.ID)
	if current.ScrapQty != 2 {
		t.Errorf("Expected order scrap total 2, got %v", current.ScrapQty)
	}
}

func TestReportCompletesAndDeleteReverts(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 5)
	ctx := context.Background()

	report, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 5}, testActor)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	current, _ := svc.Order.Get(ctx, order.ID)
	if current.Status != entity.OrderStatusCompleted {
		t.Fatalf("Expected COMPLETED, got %s", current.Status)
	}
	if current.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	// a completed order takes no further reports
	_, _, err = svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 1}, testActor)
	if !IsInvalidTransition(err) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}

	if err := svc.Report.Delete(ctx, report.ID, testActor); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	current, _ = svc.Order.Get(ctx, order.ID)
	if current.Status != entity.OrderStatusInProduction {
		t.Errorf("Expected revert to IN_PRODUCTION, got %s", current.Status)
	}
	if current.ProducedQty != 0 {
		t.Errorf("Expected produced back to 0, got %v", current.ProducedQty)
	}
}

func TestOverProductionWarnsButAccepts(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 5)

	_, warnings, err := svc.Report.Create(context.Background(), order.ID, CreateReportRequest{ProducedQty: 8}, testActor)
	if err != nil {
		t.Fatalf("Over-producing report failed: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("Expected an over-production warning")
	}
}

func TestReportOnInactiveOrderRejected(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 1000, 1000)
	order := mustCreateOrder(t, svc, 10)

	_, _, err := svc.Report.Create(context.Background(), order.ID, CreateReportRequest{ProducedQty: 1}, testActor)
	if !IsInvalidTransition(err) {
		t.Fatalf("Expected InvalidTransitionError before start, got %v", err)
	}
}

func TestProductionStats(t *testing.T) {
	db, svc := setupServices(t)
	order := startedOrder(t, db, svc, 100)
	ctx := context.Background()

	if _, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 6}, testActor); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if _, _, err := svc.Report.Create(ctx, order.ID, CreateReportRequest{ProducedQty: 10, ScrapQty: 4, ScrapReason: "mancha"}, testActor); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	now := time.Now()
	stats, err := svc.Report.Stats(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.OrdersTouched != 1 || stats.TotalReports != 2 {
		t.Errorf("Expected 1 order / 2 reports, got %d / %d", stats.OrdersTouched, stats.TotalReports)
	}
	if stats.TotalProduced != 16 || stats.TotalScrap != 4 {
		t.Errorf("Expected produced 16 / scrap 4, got %v / %v", stats.TotalProduced, stats.TotalScrap)
	}
	if stats.AvgPerReport != 8 {
		t.Errorf("Expected avg 8, got %v", stats.AvgPerReport)
	}
	if stats.ScrapRate != 0.2 {
		t.Errorf("Expected scrap rate 0.2, got %v", stats.ScrapRate)
	}
}
