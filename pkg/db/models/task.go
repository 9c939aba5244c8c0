package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// Task represents a worker's claim on a slice of an order. The admin review
// gate decides approved/rejected; payout is handled by the earnings flow.
type Task struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID         *uuid.UUID       `gorm:"column:order_id;type:uuid;index"`
	Quantity        int              `gorm:"column:quantity;not null"`
	Reward          decimal.Decimal  `gorm:"column:reward;type:numeric(12,2);not null"`
	Status          enums.TaskStatus `gorm:"column:status;type:text;not null;default:'available'"`
	ProofURL        *string          `gorm:"column:proof_url"`
	RejectionReason *string          `gorm:"column:rejection_reason"`
	AdminReviewedBy *uuid.UUID       `gorm:"column:admin_reviewed_by;type:uuid"`
	AdminReviewedAt *time.Time       `gorm:"column:admin_reviewed_at"`
	ApprovedAt      *time.Time       `gorm:"column:approved_at"`
	RejectedAt      *time.Time       `gorm:"column:rejected_at"`
	SubmittedAt     *time.Time       `gorm:"column:submitted_at"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
