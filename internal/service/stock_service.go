package service

import (
	"context"
	"fmt"
	"math"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"gorm.io/gorm"
)

// reconcileTolerance absorbs float accumulation noise when comparing a
// ledger sum against its balance column.
const reconcileTolerance = 0.0001

// StockService covers manual stock mutations and read-side views of the
// ledger and balances.
type StockService struct {
	movementRepo *repository.MovementRepository
	materialRepo *repository.MaterialRepository
	productRepo  *repository.ProductRepository
	activity     *ActivityService
	db           *gorm.DB
}

func NewStockService(
	movementRepo *repository.MovementRepository,
	materialRepo *repository.MaterialRepository,
	productRepo *repository.ProductRepository,
	activity *ActivityService,
	db *gorm.DB,
) *StockService {
	return &StockService{
		movementRepo: movementRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		activity:     activity,
		db:           db,
	}
}

type StockEntryRequest struct {
	ItemType string  `json:"item_type" binding:"required,oneof=RAW PRODUCT"`
	SKU      string  `json:"sku" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Note     string  `json:"note"`
}

// Entry records a positive stock arrival (purchase receipt, found
// stock) as an ENTRY ledger line plus the balance increase.
func (s *StockService) Entry(ctx context.Context, req StockEntryRequest, actor Actor) (*entity.StockMovement, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	movement := &entity.StockMovement{
		ItemType:     req.ItemType,
		SKU:          req.SKU,
		MovementType: entity.MovementEntry,
		Quantity:     req.Quantity,
		Note:         req.Note,
		CreatedBy:    actor.Email,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.movementRepo.Apply(tx, movement)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, "stock.entry", "stock_movements", movement.ID,
		fmt.Sprintf("%s %s +%g", req.ItemType, req.SKU, req.Quantity))
	return movement, nil
}

type StockAdjustRequest struct {
	ItemType string  `json:"item_type" binding:"required,oneof=RAW PRODUCT"`
	SKU      string  `json:"sku" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"` // signed
	Note     string  `json:"note" binding:"required"`
}

// Adjust records a signed manual correction. The note is mandatory so
// that every hand adjustment carries its reason into the ledger.
func (s *StockService) Adjust(ctx context.Context, req StockAdjustRequest, actor Actor) (*entity.StockMovement, error) {
	if req.Quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	movement := &entity.StockMovement{
		ItemType:     req.ItemType,
		SKU:          req.SKU,
		MovementType: entity.MovementManual,
		Quantity:     req.Quantity,
		Note:         req.Note,
		CreatedBy:    actor.Email,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.movementRepo.Apply(tx, movement)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, "stock.adjust", "stock_movements", movement.ID,
		fmt.Sprintf("%s %s %+g: %s", req.ItemType, req.SKU, req.Quantity, req.Note))
	return movement, nil
}

// Movements lists ledger entries with the repository's filters.
func (s *StockService) Movements(ctx context.Context, params repository.MovementListParams) ([]entity.StockMovement, int64, error) {
	return s.movementRepo.List(ctx, params)
}

// Materials lists raw-material balances.
func (s *StockService) Materials(ctx context.Context, params repository.MaterialListParams) ([]entity.RawMaterial, int64, error) {
	return s.materialRepo.List(ctx, params)
}

// Products lists finished-product balances.
func (s *StockService) Products(ctx context.Context, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

// Alerts returns raw materials with a negative balance.
func (s *StockService) Alerts(ctx context.Context) ([]entity.RawMaterial, error) {
	return s.materialRepo.GetNegative(ctx)
}

// ReconcileResult compares one SKU's ledger sum against its balance.
type ReconcileResult struct {
	ItemType   string  `json:"item_type"`
	SKU        string  `json:"sku"`
	Balance    float64 `json:"balance"`
	LedgerSum  float64 `json:"ledger_sum"`
	Drift      float64 `json:"drift"`
	Consistent bool    `json:"consistent"`
}

// Reconcile checks the ledger-sum invariant for one SKU. Drift should
// only ever appear after out-of-band database edits; the write path
// cannot produce it.
func (s *StockService) Reconcile(ctx context.Context, itemType, sku string) (*ReconcileResult, error) {
	var balance float64
	switch itemType {
	case entity.ItemTypeRaw:
		material, err := s.materialRepo.FindBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		balance = material.Quantity
	case entity.ItemTypeProduct:
		product, err := s.productRepo.FindBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		balance = product.Quantity
	default:
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}

	sum, err := s.movementRepo.SumForSKU(ctx, itemType, sku)
	if err != nil {
		return nil, err
	}
	drift := balance - sum
	return &ReconcileResult{
		ItemType:   itemType,
		SKU:        sku,
		Balance:    balance,
		LedgerSum:  sum,
		Drift:      drift,
		Consistent: math.Abs(drift) < reconcileTolerance,
	}, nil
}
