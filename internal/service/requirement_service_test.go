package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewServices(repos, db, nil, zap.NewNop())
}

func TestComputeRequirement(t *testing.T) {
	db, svc := setupServices(t)
	ctx := context.Background()

	testutil.SeedRawMaterial(t, db, "FAB-TEC", "Tecido", entity.UnitCentimeter, 150)
	testutil.SeedRawMaterial(t, db, "FAB-BOT", "Botao", entity.UnitPiece, 100)
	testutil.SeedProduct(t, db, "CAM-001", "Camisa", []testutil.RecipeLine{
		{RawSKU: "FAB-TEC", QtyPerUnit: 0.5, Unit: entity.UnitMeter},
		{RawSKU: "FAB-BOT", QtyPerUnit: 6, Unit: entity.UnitPiece},
	})

	lines, err := svc.Requirement.Compute(ctx, "CAM-001", 4)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	// 0.5 m per unit x 4 units = 2 m, stocked in cm so required = 200 cm
	tec := lines[0]
	if tec.RawSKU != "FAB-TEC" {
		t.Fatalf("Expected FAB-TEC first, got %s", tec.RawSKU)
	}
	if tec.Required != 200 {
		t.Errorf("Expected required 200 cm, got %v", tec.Required)
	}
	if tec.Available != 150 {
		t.Errorf("Expected available 150, got %v", tec.Available)
	}
	if tec.Shortfall != 50 {
		t.Errorf("Expected shortfall 50, got %v", tec.Shortfall)
	}

	// 6 x 4 = 24 of 100: covered, shortfall floored at zero
	bot := lines[1]
	if bot.Required != 24 {
		t.Errorf("Expected required 24, got %v", bot.Required)
	}
	if bot.Shortfall != 0 {
		t.Errorf("Expected shortfall 0, got %v", bot.Shortfall)
	}
}

func TestComputeRequirementConvertsCentimetersToMeters(t *testing.T) {
	db, svc := setupServices(t)

	testutil.SeedRawMaterial(t, db, "FAB-ELA", "Elastico", entity.UnitMeter, 10)
	testutil.SeedProduct(t, db, "BER-001", "Bermuda", []testutil.RecipeLine{
		{RawSKU: "FAB-ELA", QtyPerUnit: 50, Unit: entity.UnitCentimeter},
	})

	lines, err := svc.Requirement.Compute(context.Background(), "BER-001", 4)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}

	// 50 cm per unit x 4 units = 200 cm, stocked in m so required = 2 m
	ela := lines[0]
	if ela.Required != 2 {
		t.Errorf("Expected required 2 m, got %v", ela.Required)
	}
	if ela.Unit != entity.UnitMeter {
		t.Errorf("Expected unit %s, got %s", entity.UnitMeter, ela.Unit)
	}
	if ela.Shortfall != 0 {
		t.Errorf("Expected shortfall 0, got %v", ela.Shortfall)
	}
}

func TestComputeRequirementNoRecipe(t *testing.T) {
	db, svc := setupServices(t)

	testutil.SeedProduct(t, db, "SEM-REC", "Sem Receita", nil)

	_, err := svc.Requirement.Compute(context.Background(), "SEM-REC", 1)
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("Expected ErrRecipeNotFound, got %v", err)
	}
}

func TestComputeRequirementUnknownProduct(t *testing.T) {
	_, svc := setupServices(t)

	_, err := svc.Requirement.Compute(context.Background(), "NOPE-001", 1)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestComputeRequirementInvalidQuantity(t *testing.T) {
	_, svc := setupServices(t)

	for _, qty := range []float64{0, -3} {
		if _, err := svc.Requirement.Compute(context.Background(), "CAM-001", qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("qty %v: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}
