package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-backend/pkg/db/models"
)

// Repository manages balance persistence for user accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (int64, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ApplyDelta applies the delta with the balance floor folded into the WHERE
// clause, so the check and the write are one statement. Zero rows affected
// means the user is missing or the delta would drive the balance negative.
func (r *repository) ApplyDelta(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users
		SET balance = balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND balance + ? >= 0
	`, delta, userID, delta)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Select("id", "balance").
		First(&user, "id = ?", userID).Error; err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}
