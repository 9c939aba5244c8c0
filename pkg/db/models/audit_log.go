package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// AuditLog is an append-only record of an admin action. Writes are
// best-effort; a failed audit insert never unwinds the action it describes.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null"`
	EntityType string            `gorm:"column:entity_type;not null"`
	EntityID   uuid.UUID         `gorm:"column:entity_id;type:uuid;not null"`
	Detail     json.RawMessage   `gorm:"column:detail;type:jsonb"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
