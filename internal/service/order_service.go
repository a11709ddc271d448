package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Lifecycle actions validated against the transition table.
const (
	ActionStart  = "start"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionCancel = "cancel"
)

// transitions is the closed state machine: source status -> allowed
// action -> target status. Anything not listed here is rejected with
// InvalidTransitionError. Starting from AWAITING is a lenient entry
// point kept for orders created before requirement routing existed.
var transitions = map[string]map[string]string{
	ActionStart: {
		entity.OrderStatusReadyToStart: entity.OrderStatusInProduction,
		entity.OrderStatusAwaiting:     entity.OrderStatusInProduction,
	},
	ActionPause: {
		entity.OrderStatusInProduction: entity.OrderStatusPaused,
	},
	ActionResume: {
		entity.OrderStatusPaused: entity.OrderStatusInProduction,
	},
	ActionCancel: {
		entity.OrderStatusAwaiting:         entity.OrderStatusCancelled,
		entity.OrderStatusAwaitingMaterial: entity.OrderStatusCancelled,
		entity.OrderStatusReadyToStart:     entity.OrderStatusCancelled,
		entity.OrderStatusInProduction:     entity.OrderStatusCancelled,
		entity.OrderStatusPaused:           entity.OrderStatusCancelled,
	},
}

func allowedTarget(action, current string) (string, bool) {
	target, ok := transitions[action][current]
	return target, ok
}

func sourceStates(action string) []string {
	states := make([]string, 0, len(transitions[action]))
	for s := range transitions[action] {
		states = append(states, s)
	}
	return states
}

// OrderService owns the production order state machine and
// orchestrates ledger mutations on start and cancel.
type OrderService struct {
	orderRepo    *repository.OrderRepository
	movementRepo *repository.MovementRepository
	requirement  *RequirementService
	activity     *ActivityService
	db           *gorm.DB
	logger       *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	movementRepo *repository.MovementRepository,
	requirement *RequirementService,
	activity *ActivityService,
	db *gorm.DB,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		requirement:  requirement,
		activity:     activity,
		db:           db,
		logger:       logger,
	}
}

type CreateOrderRequest struct {
	ProductSKU string  `json:"product_sku" binding:"required"`
	PlannedQty float64 `json:"planned_qty" binding:"required,gt=0"`
	Priority   string  `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Sector     string  `json:"sector"`
	Notes      string  `json:"notes"`
}

// Create computes the material requirement, routes the initial status
// by shortage, and persists the order together with its consumption
// plan in one transaction. A product without a recipe cannot be
// ordered.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest, actor Actor) (*entity.ProductionOrder, error) {
	if req.PlannedQty <= 0 {
		return nil, ErrInvalidQuantity
	}
	lines, err := s.requirement.Compute(ctx, req.ProductSKU, req.PlannedQty)
	if err != nil {
		return nil, err
	}

	status := entity.OrderStatusReadyToStart
	for _, line := range lines {
		if line.Shortfall > 0 {
			status = entity.OrderStatusAwaitingMaterial
			break
		}
	}

	number, err := s.orderRepo.NextNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}

	now := time.Now()
	order := &entity.ProductionOrder{
		ID:         uuid.New().String(),
		Number:     number,
		ProductSKU: req.ProductSKU,
		PlannedQty: req.PlannedQty,
		Priority:   priority,
		Status:     status,
		Sector:     req.Sector,
		Notes:      req.Notes,
		CreatedBy:  actor.Email,
		OpenedAt:   now,
	}
	materials := make([]entity.OrderMaterial, 0, len(lines))
	for _, line := range lines {
		materials = append(materials, entity.OrderMaterial{
			ID:         uuid.New().String(),
			OrderID:    order.ID,
			RawSKU:     line.RawSKU,
			PlannedQty: line.Required,
			Unit:       line.Unit,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := tx.Create(&materials).Error; err != nil {
			return fmt.Errorf("create consumption plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Materials = materials

	s.activity.Record(actor, "order.create", "production_orders", order.ID,
		fmt.Sprintf("order %s for %gx %s, status %s", order.Number, order.PlannedQty, order.ProductSKU, order.Status))
	return order, nil
}

// Start consumes the whole consumption plan: one negative ledger entry
// and one balance decrement per line, all-or-nothing. The status flip
// is a conditional update on the expected source states so that two
// racing starts (or a start racing a cancel) cannot both win.
func (s *OrderService) Start(ctx context.Context, orderID string, actor Actor) (*entity.ProductionOrder, []string, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	target, ok := allowedTarget(ActionStart, order.Status)
	if !ok {
		return nil, nil, &InvalidTransitionError{Current: order.Status, Action: ActionStart}
	}

	var warnings []string
	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.orderRepo.UpdateStatusGuarded(tx, order.ID, sourceStates(ActionStart), map[string]interface{}{
			"status":     target,
			"started_at": now,
			"updated_at": now,
		})
		if err != nil {
			if err == repository.ErrNotFound {
				return &InvalidTransitionError{Current: order.Status, Action: ActionStart}
			}
			return err
		}

		for i := range order.Materials {
			line := &order.Materials[i]
			if err := s.movementRepo.Apply(tx, &entity.StockMovement{
				ItemType:     entity.ItemTypeRaw,
				SKU:          line.RawSKU,
				MovementType: entity.MovementConsumption,
				Quantity:     -line.PlannedQty,
				OriginTable:  "production_orders",
				OriginID:     order.ID,
				Note:         fmt.Sprintf("consumption for order %s", order.Number),
				CreatedBy:    actor.Email,
			}); err != nil {
				return err
			}
			if err := tx.Model(&entity.OrderMaterial{}).
				Where("id = ?", line.ID).
				Updates(map[string]interface{}{"consumed_qty": line.PlannedQty, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("mark line consumed: %w", err)
			}

			var balance float64
			if err := tx.Model(&entity.RawMaterial{}).
				Select("quantity").
				Where("sku = ?", line.RawSKU).
				Scan(&balance).Error; err == nil && balance < 0 {
				warnings = append(warnings, fmt.Sprintf("raw material %s balance is negative (%.4f)", line.RawSKU, balance))
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, w := range warnings {
		s.logger.Warn("negative balance after order start", zap.String("order", order.Number), zap.String("detail", w))
	}
	s.activity.Record(actor, "order.start", "production_orders", order.ID,
		fmt.Sprintf("order %s started, %d plan lines consumed", order.Number, len(order.Materials)))

	started, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return started, warnings, nil
}

// Pause suspends an in-production order. Not an error when the order is
// in any other state: the call is silently ignored.
func (s *OrderService) Pause(ctx context.Context, orderID string, actor Actor) (*entity.ProductionOrder, error) {
	return s.toggle(ctx, orderID, ActionPause, actor)
}

// Resume returns a paused order to production. No-op outside PAUSED.
func (s *OrderService) Resume(ctx context.Context, orderID string, actor Actor) (*entity.ProductionOrder, error) {
	return s.toggle(ctx, orderID, ActionResume, actor)
}

func (s *OrderService) toggle(ctx context.Context, orderID, action string, actor Actor) (*entity.ProductionOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	target, ok := allowedTarget(action, order.Status)
	if !ok {
		return order, nil
	}
	err = s.orderRepo.UpdateStatusGuarded(s.db.WithContext(ctx), order.ID, sourceStates(action), map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	})
	if err != nil {
		if err == repository.ErrNotFound {
			// lost the race; treat like the no-op case
			return order, nil
		}
		return nil, err
	}
	s.activity.Record(actor, "order."+action, "production_orders", order.ID, fmt.Sprintf("order %s %sd", order.Number, action))
	return s.orderRepo.GetByID(ctx, order.ID)
}

// Cancel closes the order from any non-terminal state. Material already
// consumed is compensated exactly: one positive adjustment entry per
// consumed plan line for the consumed amount, and the line resets to
// zero. The plan lines are re-read inside the transaction, after the
// guarded status flip, so a start committing between the initial read
// and the cancel still gets its consumption returned. A completed
// order cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, orderID, reason string, actor Actor) (*entity.ProductionOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, ok := allowedTarget(ActionCancel, order.Status); !ok {
		return nil, &InvalidTransitionError{Current: order.Status, Action: ActionCancel}
	}

	notes := order.Notes
	if reason != "" {
		if notes != "" {
			notes += "\n"
		}
		notes += "cancelled: " + reason
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.orderRepo.UpdateStatusGuarded(tx, order.ID, sourceStates(ActionCancel), map[string]interface{}{
			"status":     entity.OrderStatusCancelled,
			"notes":      notes,
			"updated_at": now,
		})
		if err != nil {
			if err == repository.ErrNotFound {
				return &InvalidTransitionError{Current: order.Status, Action: ActionCancel}
			}
			return err
		}

		var lines []entity.OrderMaterial
		if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
			return fmt.Errorf("load consumption plan: %w", err)
		}
		for i := range lines {
			line := &lines[i]
			if line.ConsumedQty <= 0 {
				continue
			}
			if err := s.movementRepo.Apply(tx, &entity.StockMovement{
				ItemType:     entity.ItemTypeRaw,
				SKU:          line.RawSKU,
				MovementType: entity.MovementAdjustment,
				Quantity:     line.ConsumedQty,
				OriginTable:  "production_orders",
				OriginID:     order.ID,
				Note:         fmt.Sprintf("reversal for cancelled order %s", order.Number),
				CreatedBy:    actor.Email,
			}); err != nil {
				return err
			}
			if err := tx.Model(&entity.OrderMaterial{}).
				Where("id = ?", line.ID).
				Updates(map[string]interface{}{"consumed_qty": 0, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("reset line consumption: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(actor, "order.cancel", "production_orders", order.ID,
		strings.TrimSpace(fmt.Sprintf("order %s cancelled %s", order.Number, reason)))
	return s.orderRepo.GetByID(ctx, order.ID)
}

type UpdateOrderRequest struct {
	Priority *string `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Sector   *string `json:"sector"`
	Notes    *string `json:"notes"`
}

// Update changes priority, sector or notes; any state allows it. A
// request carrying none of the three fields is rejected.
func (s *OrderService) Update(ctx context.Context, orderID string, req UpdateOrderRequest, actor Actor) (*entity.ProductionOrder, error) {
	updates := map[string]interface{}{}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Sector != nil {
		updates["sector"] = *req.Sector
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	updates["updated_at"] = time.Now()
	if err := s.db.WithContext(ctx).Model(&entity.ProductionOrder{}).
		Where("id = ?", order.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.activity.Record(actor, "order.update", "production_orders", order.ID, fmt.Sprintf("order %s fields updated", order.Number))
	return s.orderRepo.GetByID(ctx, order.ID)
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*entity.ProductionOrder, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context, params repository.OrderListParams) ([]entity.ProductionOrder, int64, error) {
	return s.orderRepo.List(ctx, params)
}
