package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-backend/pkg/db/models"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	"github.com/taskhive/taskhive-backend/pkg/logger"
)

// Entry describes one admin action to be recorded.
type Entry struct {
	ActorID    uuid.UUID
	Action     enums.AuditAction
	EntityType string
	EntityID   uuid.UUID
	Detail     any
}

// Service is a write-only audit sink. Record is called after the primary
// transaction commits; a failed insert is logged and swallowed so it can
// never unwind the action it describes.
type Service interface {
	Record(ctx context.Context, entry Entry)
}

type service struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewService wires the audit sink.
func NewService(db *gorm.DB, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("audit database required")
	}
	return &service{db: db, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := models.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}

	if entry.Detail != nil {
		detail, err := json.Marshal(entry.Detail)
		if err != nil {
			s.warn(ctx, entry, err)
			return
		}
		row.Detail = detail
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.warn(ctx, entry, err)
	}
}

func (s *service) warn(ctx context.Context, entry Entry, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"action":      entry.Action,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID.String(),
		"error":       err.Error(),
	})
	s.logg.Warn(logCtx, "audit write failed")
}
