package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	kitSKUPrefix   = "KIT-"
	kitBOMCacheKey = "kit:bom:"
	kitBOMCacheTTL = 10 * time.Minute
)

// KitService expands kit bills of materials, matches component sets to
// known kits, and creates kits from free-form component lists.
type KitService struct {
	productRepo *repository.ProductRepository
	kitRepo     *repository.KitRepository
	activity    *ActivityService
	db          *gorm.DB
	rdb         *redis.Client
	logger      *zap.Logger
}

func NewKitService(
	productRepo *repository.ProductRepository,
	kitRepo *repository.KitRepository,
	activity *ActivityService,
	db *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) *KitService {
	return &KitService{
		productRepo: productRepo,
		kitRepo:     kitRepo,
		activity:    activity,
		db:          db,
		rdb:         rdb,
		logger:      logger,
	}
}

// BOMLine is one expanded component of a kit.
type BOMLine struct {
	ComponentSKU string  `json:"component_sku"`
	Quantity     float64 `json:"quantity"`
}

// Expand returns the ordered component list of a kit. Results are
// cached in redis; cache failures fall through to the database.
func (s *KitService) Expand(ctx context.Context, kitSKU string) ([]BOMLine, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, kitBOMCacheKey+kitSKU).Bytes()
		if err == nil {
			var lines []BOMLine
			if json.Unmarshal(data, &lines) == nil {
				return lines, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("kit bom cache read failed", zap.String("sku", kitSKU), zap.Error(err))
		}
	}

	product, err := s.productRepo.FindBySKU(ctx, kitSKU)
	if err != nil {
		return nil, err
	}
	if !product.IsKit {
		return nil, fmt.Errorf("kit %s: %w", kitSKU, repository.ErrNotFound)
	}
	lines := make([]BOMLine, 0, len(product.Components))
	for _, c := range product.Components {
		lines = append(lines, BOMLine{ComponentSKU: c.ComponentSKU, Quantity: c.QtyPerKit})
	}

	if s.rdb != nil {
		if data, err := json.Marshal(lines); err == nil {
			if err := s.rdb.Set(ctx, kitBOMCacheKey+kitSKU, data, kitBOMCacheTTL).Err(); err != nil {
				s.logger.Warn("kit bom cache write failed", zap.String("sku", kitSKU), zap.Error(err))
			}
		}
	}
	return lines, nil
}

// ComponentInput is one requested component line.
type ComponentInput struct {
	SKU      string  `json:"sku" binding:"required"`
	Quantity float64 `json:"quantity" binding:"omitempty,gt=0"`
}

// MatchResult reports composition matching: the first matching kit plus
// every candidate that matched.
type MatchResult struct {
	Found      bool     `json:"found"`
	KitSKU     string   `json:"kit_sku,omitempty"`
	Candidates []string `json:"candidates"`
}

// normalizeSKUSet returns the deduplicated, upper-cased, sorted SKU set.
func normalizeSKUSet(skus []string) []string {
	seen := make(map[string]struct{}, len(skus))
	out := make([]string, 0, len(skus))
	for _, sku := range skus {
		key := strings.ToUpper(strings.TrimSpace(sku))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// MatchByComposition finds kits whose BOM is an exact set match for the
// requested components. Only the SKU set and its size matter; requested
// quantities do not influence matching. An empty result is a valid
// answer, not an error.
func (s *KitService) MatchByComposition(ctx context.Context, components []ComponentInput) (*MatchResult, error) {
	skus := make([]string, 0, len(components))
	for _, c := range components {
		skus = append(skus, c.SKU)
	}
	wanted := normalizeSKUSet(skus)
	result := &MatchResult{Candidates: []string{}}
	if len(wanted) == 0 {
		return result, nil
	}

	kits, err := s.productRepo.FindKitsByComponentCount(ctx, len(wanted))
	if err != nil {
		return nil, err
	}
	for _, kit := range kits {
		bom := make([]string, 0, len(kit.Components))
		for _, c := range kit.Components {
			bom = append(bom, c.ComponentSKU)
		}
		if skuSetsEqual(wanted, normalizeSKUSet(bom)) {
			result.Candidates = append(result.Candidates, kit.SKU)
		}
	}
	if len(result.Candidates) > 0 {
		result.Found = true
		result.KitSKU = result.Candidates[0]
	}
	return result, nil
}

func skuSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type CreateKitRequest struct {
	Name       string           `json:"name" binding:"required"`
	SKU        string           `json:"sku"`
	Price      float64          `json:"price" binding:"omitempty,gte=0"`
	Components []ComponentInput `json:"components" binding:"required,min=1,dive"`
}

// CreateKitResult carries the created kit plus how many previously
// unmatched external order lines were bound to it by description.
type CreateKitResult struct {
	Kit        *entity.Product `json:"kit"`
	LinesBound int64           `json:"lines_bound"`
}

// DeriveKitSKU builds a deterministic SKU from the component set.
func DeriveKitSKU(components []ComponentInput) string {
	skus := make([]string, 0, len(components))
	for _, c := range components {
		skus = append(skus, c.SKU)
	}
	return kitSKUPrefix + strings.Join(normalizeSKUSet(skus), "-")
}

// CreateKit validates every component, upserts the kit product with its
// BOM, registers a name alias, and binds unmatched external order lines
// whose description equals the kit name. All inside one transaction; a
// single unknown component aborts the whole operation.
func (s *KitService) CreateKit(ctx context.Context, req CreateKitRequest, actor Actor) (*CreateKitResult, error) {
	if len(req.Components) == 0 {
		return nil, ErrInvalidQuantity
	}
	for _, c := range req.Components {
		if _, err := s.productRepo.FindBySKU(ctx, strings.ToUpper(strings.TrimSpace(c.SKU))); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("component %s: %w", c.SKU, ErrComponentNotFound)
			}
			return nil, err
		}
	}

	kitSKU := strings.ToUpper(strings.TrimSpace(req.SKU))
	if kitSKU == "" {
		kitSKU = DeriveKitSKU(req.Components)
	}

	var kit entity.Product
	var bound int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("sku = ? AND deleted_at IS NULL", kitSKU).First(&kit).Error
		switch {
		case err == nil:
			kit.Name = req.Name
			kit.IsKit = true
			if req.Price > 0 {
				kit.Price = req.Price
			}
			if err := tx.Save(&kit).Error; err != nil {
				return fmt.Errorf("update kit: %w", err)
			}
			if err := tx.Where("product_id = ?", kit.ID).Delete(&entity.KitComponent{}).Error; err != nil {
				return fmt.Errorf("clear kit components: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			kit = entity.Product{
				ID:        uuid.New().String(),
				SKU:       kitSKU,
				Name:      req.Name,
				Status:    entity.ProductStatusActive,
				Price:     req.Price,
				IsKit:     true,
				CreatedBy: actor.Email,
			}
			if err := tx.Create(&kit).Error; err != nil {
				return fmt.Errorf("create kit: %w", err)
			}
		default:
			return err
		}

		components := make([]entity.KitComponent, 0, len(req.Components))
		for i, c := range req.Components {
			qty := c.Quantity
			if qty <= 0 {
				qty = 1
			}
			components = append(components, entity.KitComponent{
				ID:           uuid.New().String(),
				ProductID:    kit.ID,
				ComponentSKU: strings.ToUpper(strings.TrimSpace(c.SKU)),
				QtyPerKit:    qty,
				Sequence:     i,
			})
		}
		if err := tx.Create(&components).Error; err != nil {
			return fmt.Errorf("create kit components: %w", err)
		}
		kit.Components = components

		alias := entity.KitAlias{
			ID:        uuid.New().String(),
			Alias:     strings.ToLower(strings.TrimSpace(req.Name)),
			KitSKU:    kit.SKU,
			CreatedBy: actor.Email,
		}
		if err := tx.Where("alias = ?", alias.Alias).FirstOrCreate(&alias).Error; err != nil {
			return fmt.Errorf("register kit alias: %w", err)
		}

		bound, err = s.kitRepo.BindItemsByDescription(tx, req.Name, kit.SKU)
		if err != nil {
			return fmt.Errorf("bind external order lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, kitBOMCacheKey+kit.SKU).Err(); err != nil {
			s.logger.Warn("kit bom cache invalidation failed", zap.String("sku", kit.SKU), zap.Error(err))
		}
	}

	s.activity.Record(actor, "kit.create", "products", kit.ID,
		fmt.Sprintf("kit %s with %d components, %d external lines bound", kit.SKU, len(kit.Components), bound))
	return &CreateKitResult{Kit: &kit, LinesBound: bound}, nil
}

// ResolveAlias maps a free-text description to a kit SKU when a
// registered alias exists.
func (s *KitService) ResolveAlias(ctx context.Context, description string) (string, error) {
	alias, err := s.kitRepo.FindAlias(ctx, description)
	if err != nil {
		return "", err
	}
	return alias.KitSKU, nil
}

// ListUnmatched returns external order lines still awaiting a kit.
func (s *KitService) ListUnmatched(ctx context.Context, page, size int) ([]entity.ExternalOrderItem, int64, error) {
	return s.kitRepo.ListUnmatchedItems(ctx, page, size)
}
