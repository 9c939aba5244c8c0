package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
)

// Service is the only code path permitted to mutate a user's balance.
// Every call runs inside a caller-owned transaction so the balance change
// commits or rolls back together with the state transition that caused it.
type Service interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ApplyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for balance mutation")
	}
	if userID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	repo := s.repo.WithTx(tx)

	if delta.IsZero() {
		return s.balanceIn(ctx, repo, userID)
	}

	rows, err := repo.ApplyDelta(ctx, userID, delta)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply balance delta")
	}
	if rows == 0 {
		// Distinguish a missing account from a floored balance.
		if _, err := s.balanceIn(ctx, repo, userID); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance would go negative")
	}

	return s.balanceIn(ctx, repo, userID)
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if userID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.balanceIn(ctx, s.repo, userID)
}

func (s *service) balanceIn(ctx context.Context, repo Repository, userID uuid.UUID) (decimal.Decimal, error) {
	balance, err := repo.GetBalance(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	return balance, nil
}
