package service

import (
	"context"
	"fmt"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
)

// RequirementService expands a product's recipe into raw-material
// requirements for a target quantity.
type RequirementService struct {
	productRepo  *repository.ProductRepository
	materialRepo *repository.MaterialRepository
}

func NewRequirementService(productRepo *repository.ProductRepository, materialRepo *repository.MaterialRepository) *RequirementService {
	return &RequirementService{productRepo: productRepo, materialRepo: materialRepo}
}

// RequirementLine is one raw material of the expanded requirement,
// expressed in the material's native unit.
type RequirementLine struct {
	RawSKU    string  `json:"raw_sku"`
	RawName   string  `json:"raw_name"`
	Unit      string  `json:"unit"`
	Required  float64 `json:"required"`
	Available float64 `json:"available"`
	Shortfall float64 `json:"shortfall"`
}

// Compute expands the recipe of productSKU for the target quantity.
// Shortage never blocks the computation; it only shows up as a
// per-line shortfall, floored at zero.
func (s *RequirementService) Compute(ctx context.Context, productSKU string, qty float64) ([]RequirementLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.FindBySKU(ctx, productSKU)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", productSKU, err)
	}
	if len(product.Recipe) == 0 {
		return nil, fmt.Errorf("product %s: %w", productSKU, ErrRecipeNotFound)
	}

	skus := make([]string, 0, len(product.Recipe))
	for _, item := range product.Recipe {
		skus = append(skus, item.RawSKU)
	}
	materials, err := s.materialRepo.FindBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}

	lines := make([]RequirementLine, 0, len(product.Recipe))
	for _, item := range product.Recipe {
		material, ok := materials[item.RawSKU]
		line := RequirementLine{RawSKU: item.RawSKU, Unit: item.Unit}
		required := item.QtyPerUnit * qty
		if ok {
			line.RawName = material.Name
			line.Unit = material.Unit
			line.Available = material.Quantity
			required = convertUnit(required, item.Unit, material.Unit)
		}
		line.Required = required
		if shortfall := required - line.Available; shortfall > 0 {
			line.Shortfall = shortfall
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// convertUnit reconciles a recipe line's unit with the stocked
// material's native unit. Only the centimeter/meter pair is converted
// (fixed x100 factor); any other mismatch is treated as same-unit.
// This is a known approximation, not a general unit system.
func convertUnit(qty float64, from, to string) float64 {
	switch {
	case from == entity.UnitCentimeter && to == entity.UnitMeter:
		return qty / 100
	case from == entity.UnitMeter && to == entity.UnitCentimeter:
		return qty * 100
	default:
		return qty
	}
}
