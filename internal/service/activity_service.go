package service

import (
	"context"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityService writes the audit trail. Writes run detached from the
// caller's transaction and never fail the primary operation: a lost
// audit row is logged and dropped.
type ActivityService struct {
	repo   *repository.ActivityRepository
	logger *zap.Logger
}

func NewActivityService(repo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Record queues one audit entry. Fire-and-forget: the insert happens on
// a background context after the caller's transaction decided its fate.
func (s *ActivityService) Record(actor Actor, action, entityType, entityID, details string) {
	log := &entity.ActivityLog{
		ID:         uuid.New().String(),
		ActorEmail: actor.Email,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, log); err != nil {
			s.logger.Warn("audit write failed",
				zap.String("action", action),
				zap.String("entity_type", entityType),
				zap.String("entity_id", entityID),
				zap.Error(err),
			)
		}
	}()
}
