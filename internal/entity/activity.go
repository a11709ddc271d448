package entity

import (
	"time"
)

// ActivityLog is the write-only audit sink. Writes are best-effort and
// must never fail the operation being audited.
type ActivityLog struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	ActorEmail string    `json:"actor_email" gorm:"size:128;not null;index"`
	ActorName  string    `json:"actor_name" gorm:"size:128"`
	Action     string    `json:"action" gorm:"size:64;not null"`
	EntityType string    `json:"entity_type" gorm:"size:50;not null"`
	EntityID   string    `json:"entity_id" gorm:"size:64;not null;index"`
	Details    string    `json:"details" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
