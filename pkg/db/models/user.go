package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-backend/pkg/enums"
)

// User represents a marketplace account. Balance is only ever written through
// the ledger service; approval code must not set it directly.
type User struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	DisplayName string          `gorm:"column:display_name;not null"`
	Role        enums.UserRole  `gorm:"column:role;type:text;not null;default:'buyer'"`
	Balance     decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt *time.Time      `gorm:"column:last_login_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
