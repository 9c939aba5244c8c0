package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// Order represents a buyer's engagement purchase.
// approved_at and rejected_at are mutually exclusive and settable once.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Platform        enums.Platform    `gorm:"column:platform;type:text;not null"`
	ServiceType     enums.ServiceType `gorm:"column:service_type;type:text;not null"`
	TargetURL       string            `gorm:"column:target_url;not null"`
	Quantity        int               `gorm:"column:quantity;not null"`
	StartCount      int               `gorm:"column:start_count;not null;default:0"`
	RemainingCount  int               `gorm:"column:remaining_count;not null;default:0"`
	Amount          decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AdminNotes      *string           `gorm:"column:admin_notes"`
	ApprovedBy      *uuid.UUID        `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time        `gorm:"column:approved_at"`
	RejectedBy      *uuid.UUID        `gorm:"column:rejected_by;type:uuid"`
	RejectedAt      *time.Time        `gorm:"column:rejected_at"`
	RejectionReason *string           `gorm:"column:rejection_reason"`
	RefundReason    *string           `gorm:"column:refund_reason"`
	UpdatedBy       *uuid.UUID        `gorm:"column:updated_by;type:uuid"`
	StartedAt       *time.Time        `gorm:"column:started_at"`
	CompletedAt     *time.Time        `gorm:"column:completed_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
