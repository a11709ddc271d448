package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/testutil"
	"gorm.io/gorm"
)

var testActor = Actor{Email: "operator@test.com", Name: "Test Operator"}

func seedShirtCatalog(t *testing.T, db *gorm.DB, tecBalance, botBalance float64) {
	t.Helper()
	testutil.SeedRawMaterial(t, db, "FAB-TEC", "Tecido", entity.UnitMeter, tecBalance)
	testutil.SeedRawMaterial(t, db, "FAB-BOT", "Botao", entity.UnitPiece, botBalance)
	testutil.SeedProduct(t, db, "CAM-001", "Camisa", []testutil.RecipeLine{
		{RawSKU: "FAB-TEC", QtyPerUnit: 2, Unit: entity.UnitMeter},
		{RawSKU: "FAB-BOT", QtyPerUnit: 5, Unit: entity.UnitPiece},
	})
}

func mustCreateOrder(t *testing.T, svc *Services, qty float64) *entity.ProductionOrder {
	t.Helper()
	order, err := svc.Order.Create(context.Background(), CreateOrderRequest{
		ProductSKU: "CAM-001",
		PlannedQty: qty,
	}, testActor)
	if err != nil {
		t.Fatalf("Create order failed: %v", err)
	}
	return order
}

func TestCreateOrderRoutesByShortage(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)

	// 10 units need 20 m and 50 buttons, both covered
	order := mustCreateOrder(t, svc, 10)
	if order.Status != entity.OrderStatusReadyToStart {
		t.Errorf("Expected READY_TO_START, got %s", order.Status)
	}
	if !strings.HasPrefix(order.Number, "OP-") {
		t.Errorf("Expected OP- number, got %s", order.Number)
	}
	if len(order.Materials) != 2 {
		t.Fatalf("Expected 2 plan lines, got %d", len(order.Materials))
	}
	for _, line := range order.Materials {
		if line.ConsumedQty != 0 {
			t.Errorf("Line %s: expected consumed 0 before start, got %v", line.RawSKU, line.ConsumedQty)
		}
	}

	// 100 units need 200 m of fabric, only 80 m left
	db.Model(&entity.RawMaterial{}).Where("sku = ?", "FAB-TEC").Update("quantity", 80)
	short := mustCreateOrder(t, svc, 100)
	if short.Status != entity.OrderStatusAwaitingMaterial {
		t.Errorf("Expected AWAITING_MATERIAL, got %s", short.Status)
	}
}

func TestCreateOrderNoRecipeCreatesNothing(t *testing.T) {
	db, svc := setupServices(t)
	testutil.SeedProduct(t, db, "SEM-REC", "Sem Receita", nil)

	_, err := svc.Order.Create(context.Background(), CreateOrderRequest{
		ProductSKU: "SEM-REC",
		PlannedQty: 5,
	}, testActor)
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("Expected ErrRecipeNotFound, got %v", err)
	}

	var orders, plans int64
	db.Model(&entity.ProductionOrder{}).Count(&orders)
	db.Model(&entity.OrderMaterial{}).Count(&plans)
	if orders != 0 || plans != 0 {
		t.Errorf("Expected no rows persisted, got %d orders and %d plan lines", orders, plans)
	}
}

func TestStartOrderConsumesPlanAtomically(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)

	started, warnings, err := svc.Order.Start(context.Background(), order.ID, testActor)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Status != entity.OrderStatusInProduction {
		t.Errorf("Expected IN_PRODUCTION, got %s", started.Status)
	}
	if started.StartedAt == nil {
		t.Error("Expected started_at to be set")
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	var movements []entity.StockMovement
	db.Where("movement_type = ? AND origin_id = ?", entity.MovementConsumption, order.ID).
		Order("sku ASC").Find(&movements)
	if len(movements) != 2 {
		t.Fatalf("Expected 2 consumption entries, got %d", len(movements))
	}
	if movements[0].SKU != "FAB-BOT" || movements[0].Quantity != -50 {
		t.Errorf("Expected FAB-BOT -50, got %s %v", movements[0].SKU, movements[0].Quantity)
	}
	if movements[1].SKU != "FAB-TEC" || movements[1].Quantity != -20 {
		t.Errorf("Expected FAB-TEC -20, got %s %v", movements[1].SKU, movements[1].Quantity)
	}

	var tec, bot entity.RawMaterial
	db.Where("sku = ?", "FAB-TEC").First(&tec)
	db.Where("sku = ?", "FAB-BOT").First(&bot)
	if tec.Quantity != 80 {
		t.Errorf("Expected tecido balance 80, got %v", tec.Quantity)
	}
	if bot.Quantity != 50 {
		t.Errorf("Expected botao balance 50, got %v", bot.Quantity)
	}

	for _, line := range started.Materials {
		if line.ConsumedQty != line.PlannedQty {
			t.Errorf("Line %s: expected consumed == planned (%v), got %v", line.RawSKU, line.PlannedQty, line.ConsumedQty)
		}
	}
}

func TestStartOrderAllowsNegativeBalanceWithWarning(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 5, 100)
	order := mustCreateOrder(t, svc, 10)

	// shortage routed the order to AWAITING_MATERIAL; force it startable
	db.Model(&entity.ProductionOrder{}).Where("id = ?", order.ID).
		Update("status", entity.OrderStatusReadyToStart)

	_, warnings, err := svc.Order.Start(context.Background(), order.ID, testActor)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("Expected a negative-balance warning")
	}

	var tec entity.RawMaterial
	db.Where("sku = ?", "FAB-TEC").First(&tec)
	if tec.Quantity != -15 {
		t.Errorf("Expected tecido balance -15, got %v", tec.Quantity)
	}
}

func TestStartOrderInvalidTransition(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)

	if _, _, err := svc.Order.Start(context.Background(), order.ID, testActor); err != nil {
		t.Fatalf("First start failed: %v", err)
	}
	_, _, err := svc.Order.Start(context.Background(), order.ID, testActor)
	if !IsInvalidTransition(err) {
		t.Fatalf("Expected InvalidTransitionError on second start, got %v", err)
	}

	var count int64
	db.Model(&entity.StockMovement{}).
		Where("movement_type = ? AND origin_id = ?", entity.MovementConsumption, order.ID).
		Count(&count)
	if count != 2 {
		t.Errorf("Expected consumption applied once (2 entries), got %d", count)
	}
}

func TestCancelReversalIsExact(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)

	if _, _, err := svc.Order.Start(context.Background(), order.ID, testActor); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancelled, err := svc.Order.Cancel(context.Background(), order.ID, "cliente desistiu", testActor)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != entity.OrderStatusCancelled {
		t.Errorf("Expected CANCELLED, got %s", cancelled.Status)
	}
	if !strings.Contains(cancelled.Notes, "cliente desistiu") {
		t.Errorf("Expected reason in notes, got %q", cancelled.Notes)
	}

	var adjustments []entity.StockMovement
	db.Where("movement_type = ? AND origin_id = ?", entity.MovementAdjustment, order.ID).
		Order("sku ASC").Find(&adjustments)
	if len(adjustments) != 2 {
		t.Fatalf("Expected 2 compensating entries, got %d", len(adjustments))
	}
	if adjustments[0].Quantity != 50 || adjustments[1].Quantity != 20 {
		t.Errorf("Expected +50 and +20, got %v and %v", adjustments[0].Quantity, adjustments[1].Quantity)
	}

	var tec entity.RawMaterial
	db.Where("sku = ?", "FAB-TEC").First(&tec)
	if tec.Quantity != 100 {
		t.Errorf("Expected tecido balance restored to 100, got %v", tec.Quantity)
	}

	for _, line := range cancelled.Materials {
		if line.ConsumedQty != 0 {
			t.Errorf("Line %s: expected consumed reset to 0, got %v", line.RawSKU, line.ConsumedQty)
		}
	}
}

func TestCancelBeforeStartWritesNoLedger(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)

	if _, err := svc.Order.Cancel(context.Background(), order.ID, "", testActor); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	var count int64
	db.Model(&entity.StockMovement{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected empty ledger, got %d entries", count)
	}
}

func TestCancelRacingStartStillCompensates(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 0, 0)
	ctx := context.Background()

	// opening stock goes through the ledger so it reconciles afterwards
	for _, sku := range []string{"FAB-TEC", "FAB-BOT"} {
		if _, err := svc.Stock.Entry(ctx, StockEntryRequest{
			ItemType: entity.ItemTypeRaw,
			SKU:      sku,
			Quantity: 100,
		}, testActor); err != nil {
			t.Fatalf("Entry %s failed: %v", sku, err)
		}
	}
	order := mustCreateOrder(t, svc, 10)

	// Whichever order the database serializes these in, the cancel must
	// win the order's final state: either the start loses its status
	// guard and consumes nothing, or it commits first and the cancel
	// returns exactly what it consumed.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.Order.Start(ctx, order.ID, testActor)
	}()
	go func() {
		defer wg.Done()
		svc.Order.Cancel(ctx, order.ID, "pedido duplicado", testActor)
	}()
	wg.Wait()

	final, err := svc.Order.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if final.Status != entity.OrderStatusCancelled {
		t.Fatalf("Expected CANCELLED, got %s", final.Status)
	}
	for _, line := range final.Materials {
		if line.ConsumedQty != 0 {
			t.Errorf("Line %s: expected consumed 0 after cancel, got %v", line.RawSKU, line.ConsumedQty)
		}
	}

	for _, sku := range []string{"FAB-TEC", "FAB-BOT"} {
		var material entity.RawMaterial
		db.Where("sku = ?", sku).First(&material)
		if material.Quantity != 100 {
			t.Errorf("%s: expected balance restored to 100, got %v", sku, material.Quantity)
		}
		result, err := svc.Stock.Reconcile(ctx, entity.ItemTypeRaw, sku)
		if err != nil {
			t.Fatalf("Reconcile %s failed: %v", sku, err)
		}
		if !result.Consistent {
			t.Errorf("%s: ledger drifted from balance by %v", sku, result.Drift)
		}
	}
}

func TestCancelTerminalOrderRejected(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)

	db.Model(&entity.ProductionOrder{}).Where("id = ?", order.ID).
		Update("status", entity.OrderStatusCompleted)

	_, err := svc.Order.Cancel(context.Background(), order.ID, "", testActor)
	if !IsInvalidTransition(err) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}
}

func TestPauseResumeToggleAndNoop(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)
	ctx := context.Background()

	// pause before start is silently ignored
	paused, err := svc.Order.Pause(ctx, order.ID, testActor)
	if err != nil {
		t.Fatalf("Pause no-op failed: %v", err)
	}
	if paused.Status != entity.OrderStatusReadyToStart {
		t.Errorf("Expected status unchanged, got %s", paused.Status)
	}

	if _, _, err := svc.Order.Start(ctx, order.ID, testActor); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	paused, err = svc.Order.Pause(ctx, order.ID, testActor)
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if paused.Status != entity.OrderStatusPaused {
		t.Errorf("Expected PAUSED, got %s", paused.Status)
	}

	resumed, err := svc.Order.Resume(ctx, order.ID, testActor)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed.Status != entity.OrderStatusInProduction {
		t.Errorf("Expected IN_PRODUCTION, got %s", resumed.Status)
	}

	// resume while already running is silently ignored
	again, err := svc.Order.Resume(ctx, order.ID, testActor)
	if err != nil {
		t.Fatalf("Resume no-op failed: %v", err)
	}
	if again.Status != entity.OrderStatusInProduction {
		t.Errorf("Expected IN_PRODUCTION, got %s", again.Status)
	}
}

func TestUpdateOrderFields(t *testing.T) {
	db, svc := setupServices(t)
	seedShirtCatalog(t, db, 100, 100)
	order := mustCreateOrder(t, svc, 10)
	ctx := context.Background()

	if _, err := svc.Order.Update(ctx, order.ID, UpdateOrderRequest{}, testActor); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("Expected ErrNoFieldsToUpdate, got %v", err)
	}

	priority := entity.PriorityUrgent
	sector := "costura"
	updated, err := svc.Order.Update(ctx, order.ID, UpdateOrderRequest{
		Priority: &priority,
		Sector:   &sector,
	}, testActor)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Priority != entity.PriorityUrgent || updated.Sector != "costura" {
		t.Errorf("Expected URGENT/costura, got %s/%s", updated.Priority, updated.Sector)
	}
}
