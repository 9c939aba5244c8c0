package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-backend/internal/audit"
	"github.com/taskhive/taskhive-backend/internal/ledger"
	"github.com/taskhive/taskhive-backend/pkg/db/models"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/outbox"
	"github.com/taskhive/taskhive-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the admin decisions on pending transactions.
type Service interface {
	Approve(ctx context.Context, input ApproveInput) (*models.Transaction, error)
	Reject(ctx context.Context, input RejectInput) (*models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByStatus(ctx context.Context, status enums.TransactionStatus, params pagination.Params) ([]models.Transaction, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Service
	tx        txRunner
	outbox    outboxPublisher
	audit     audit.Service
	minReason int
}

// ApproveInput carries the data for a transaction approval.
type ApproveInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
	ActorRole     string
	Notes         *string
}

// RejectInput carries the data for a transaction rejection.
type RejectInput struct {
	TransactionID uuid.UUID
	ActorID       uuid.UUID
	ActorRole     string
	Reason        string
	Notes         *string
}

// TransactionDecisionEvent is emitted when an admin terminates a transaction.
type TransactionDecisionEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	UserID        uuid.UUID               `json:"user_id"`
	Type          enums.TransactionType   `json:"type"`
	Amount        decimal.Decimal         `json:"amount"`
	Status        enums.TransactionStatus `json:"status"`
}

// NewService builds a transaction service with the required dependencies.
func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner, outboxSvc outboxPublisher, auditSvc audit.Service, minReason int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	if minReason <= 0 {
		minReason = 5
	}
	return &service{
		repo:      repo,
		ledger:    ledgerSvc,
		tx:        tx,
		outbox:    outboxSvc,
		audit:     auditSvc,
		minReason: minReason,
	}, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.Transaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		txn, err := repo.FindByID(ctx, input.TransactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if txn.Status != enums.TransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "transaction already processed")
		}

		switch txn.Type {
		case enums.TransactionTypeDeposit, enums.TransactionTypeWithdrawal:
		default:
			return pkgerrors.New(pkgerrors.CodeInvalidTransactionType, "only deposits and withdrawals can be approved")
		}

		now := time.Now()
		updates := map[string]any{
			"status":       enums.TransactionStatusCompleted,
			"processed_by": input.ActorID,
			"processed_at": now,
		}
		if input.Notes != nil {
			updates["admin_notes"] = *input.Notes
		}

		claimed, err := repo.ClaimPending(ctx, txn.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "transaction already processed")
		}

		// Deposits credit on approval; withdrawals were debited at request
		// time so completion is balance-neutral.
		if txn.Type == enums.TransactionTypeDeposit {
			if _, err := s.ledger.ApplyDelta(ctx, tx, txn.UserID, txn.Amount); err != nil {
				return err
			}
		}

		txn.Status = enums.TransactionStatusCompleted
		txn.ProcessedBy = &input.ActorID
		txn.ProcessedAt = &now
		if input.Notes != nil {
			txn.AdminNotes = input.Notes
		}
		updated = txn

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionApproved,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: input.ActorRole},
			Data: TransactionDecisionEvent{
				TransactionID: txn.ID,
				UserID:        txn.UserID,
				Type:          txn.Type,
				Amount:        txn.Amount,
				Status:        txn.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionTransactionApprove,
		EntityType: "transaction",
		EntityID:   updated.ID,
		Detail:     map[string]any{"type": updated.Type, "amount": updated.Amount},
	})

	return updated, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Transaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) < s.minReason {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rejection reason must be at least %d characters", s.minReason))
	}

	var updated *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		txn, err := repo.FindByID(ctx, input.TransactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if txn.Status != enums.TransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "transaction already processed")
		}

		now := time.Now()
		updates := map[string]any{
			"status":           enums.TransactionStatusFailed,
			"rejection_reason": reason,
			"processed_by":     input.ActorID,
			"processed_at":     now,
		}
		if input.Notes != nil {
			updates["admin_notes"] = *input.Notes
		}

		claimed, err := repo.ClaimPending(ctx, txn.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "transaction already processed")
		}

		// Rejected withdrawals return the held amount. Deposits never
		// credited anything, so rejection is balance-neutral.
		if txn.Type == enums.TransactionTypeWithdrawal {
			if _, err := s.ledger.ApplyDelta(ctx, tx, txn.UserID, txn.Amount.Abs()); err != nil {
				return err
			}
		}

		txn.Status = enums.TransactionStatusFailed
		txn.RejectionReason = &reason
		txn.ProcessedBy = &input.ActorID
		txn.ProcessedAt = &now
		if input.Notes != nil {
			txn.AdminNotes = input.Notes
		}
		updated = txn

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionRejected,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: input.ActorRole},
			Data: TransactionDecisionEvent{
				TransactionID: txn.ID,
				UserID:        txn.UserID,
				Type:          txn.Type,
				Amount:        txn.Amount,
				Status:        txn.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionTransactionReject,
		EntityType: "transaction",
		EntityID:   updated.ID,
		Detail:     map[string]any{"type": updated.Type, "reason": reason},
	})

	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.TransactionStatus, params pagination.Params) ([]models.Transaction, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction status")
	}
	cursor, err := pagination.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, status, cursor, pagination.Clamp(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return rows, nil
}
