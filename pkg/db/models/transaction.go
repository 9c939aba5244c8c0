package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// Transaction records a single money movement request against a user account.
// Created pending by the payment/withdrawal flows; terminated exactly once by
// the approval engine. Withdrawals and order payments carry negative amounts.
type Transaction struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID         *uuid.UUID              `gorm:"column:order_id;type:uuid"`
	Type            enums.TransactionType   `gorm:"column:type;type:text;not null"`
	Amount          decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Status          enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AdminNotes      *string                 `gorm:"column:admin_notes"`
	RejectionReason *string                 `gorm:"column:rejection_reason"`
	ProcessedBy     *uuid.UUID              `gorm:"column:processed_by;type:uuid"`
	ProcessedAt     *time.Time              `gorm:"column:processed_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
