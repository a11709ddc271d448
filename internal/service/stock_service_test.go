package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/testutil"
)

func TestStockEntryAndAdjust(t *testing.T) {
	db, svc := setupServices(t)
	testutil.SeedRawMaterial(t, db, "FAB-TEC", "Tecido", entity.UnitMeter, 10)
	ctx := context.Background()

	entry, err := svc.Stock.Entry(ctx, StockEntryRequest{
		ItemType: entity.ItemTypeRaw,
		SKU:      "FAB-TEC",
		Quantity: 40,
		Note:     "compra NF 1234",
	}, testActor)
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if entry.MovementType != entity.MovementEntry {
		t.Errorf("Expected ENTRY, got %s", entry.MovementType)
	}

	if _, err := svc.Stock.Adjust(ctx, StockAdjustRequest{
		ItemType: entity.ItemTypeRaw,
		SKU:      "FAB-TEC",
		Quantity: -5,
		Note:     "contagem fisica",
	}, testActor); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	var material entity.RawMaterial
	db.Where("sku = ?", "FAB-TEC").First(&material)
	if material.Quantity != 45 {
		t.Errorf("Expected balance 45, got %v", material.Quantity)
	}
}

func TestStockEntryUnknownSKURollsBack(t *testing.T) {
	db, svc := setupServices(t)

	_, err := svc.Stock.Entry(context.Background(), StockEntryRequest{
		ItemType: entity.ItemTypeRaw,
		SKU:      "NOPE-001",
		Quantity: 10,
	}, testActor)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// the ledger insert must not survive the failed balance update
	var count int64
	db.Model(&entity.StockMovement{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected empty ledger after rollback, got %d entries", count)
	}
}

func TestReconcileMatchesLedger(t *testing.T) {
	db, svc := setupServices(t)
	testutil.SeedRawMaterial(t, db, "FAB-TEC", "Tecido", entity.UnitMeter, 0)
	ctx := context.Background()

	for _, qty := range []float64{30, 12} {
		if _, err := svc.Stock.Entry(ctx, StockEntryRequest{
			ItemType: entity.ItemTypeRaw,
			SKU:      "FAB-TEC",
			Quantity: qty,
		}, testActor); err != nil {
			t.Fatalf("Entry failed: %v", err)
		}
	}
	if _, err := svc.Stock.Adjust(ctx, StockAdjustRequest{
		ItemType: entity.ItemTypeRaw,
		SKU:      "FAB-TEC",
		Quantity: -7,
		Note:     "avaria",
	}, testActor); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	result, err := svc.Stock.Reconcile(ctx, entity.ItemTypeRaw, "FAB-TEC")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !result.Consistent {
		t.Errorf("Expected consistent, got drift %v", result.Drift)
	}
	if result.Balance != 35 || result.LedgerSum != 35 {
		t.Errorf("Expected 35/35, got %v/%v", result.Balance, result.LedgerSum)
	}
}

func TestNegativeBalanceAlerts(t *testing.T) {
	db, svc := setupServices(t)
	testutil.SeedRawMaterial(t, db, "FAB-TEC", "Tecido", entity.UnitMeter, 3)
	testutil.SeedRawMaterial(t, db, "FAB-BOT", "Botao", entity.UnitPiece, 50)
	ctx := context.Background()

	if _, err := svc.Stock.Adjust(ctx, StockAdjustRequest{
		ItemType: entity.ItemTypeRaw,
		SKU:      "FAB-TEC",
		Quantity: -10,
		Note:     "perda",
	}, testActor); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	alerts, err := svc.Stock.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].SKU != "FAB-TEC" {
		t.Fatalf("Expected one alert for FAB-TEC, got %+v", alerts)
	}
	if alerts[0].Quantity != -7 {
		t.Errorf("Expected balance -7, got %v", alerts[0].Quantity)
	}
}
