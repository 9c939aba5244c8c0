package orders

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

// Service defines the admin decisions on buyer orders.
type Service interface {
	Approve(ctx context.Context, input ApproveInput) (*models.Order, error)
	Reject(ctx context.Context, input RejectInput) (*models.Order, error)
	Refund(ctx context.Context, input RefundInput) (*models.Order, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) ([]models.Order, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Service
	tx        txRunner
	outbox    outboxPublisher
	audit     audit.Service
	minReason int
}

// ApproveInput carries the data for an order approval.
type ApproveInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Notes     *string
}

// RejectInput carries the data for an order rejection.
type RejectInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Reason    string
	Notes     *string
}

// RefundInput carries the data for an order refund.
type RefundInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Reason    string
}

// SetStatusInput carries the data for the manual status override.
type SetStatusInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Status    enums.OrderStatus
	Reason    *string
}

// OrderDecisionEvent is emitted when an admin moves an order.
type OrderDecisionEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	UserID  uuid.UUID         `json:"user_id"`
	Status  enums.OrderStatus `json:"status"`
	Amount  decimal.Decimal   `json:"amount"`
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner, outboxSvc outboxPublisher, auditSvc audit.Service, minReason int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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

func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "order already processed")
		}

		now := time.Now()
		updates := map[string]any{
			"status":      enums.OrderStatusProcessing,
			"approved_by": input.ActorID,
			"approved_at": now,
			"started_at":  now,
		}
		if input.Notes != nil {
			updates["admin_notes"] = *input.Notes
		}

		claimed, err := repo.ClaimStatus(ctx, order.ID, []enums.OrderStatus{enums.OrderStatusPending}, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "order already processed")
		}

		order.Status = enums.OrderStatusProcessing
		order.ApprovedBy = &input.ActorID
		order.ApprovedAt = &now
		order.StartedAt = &now
		if input.Notes != nil {
			order.AdminNotes = input.Notes
		}
		updated = order

		return s.emitDecision(ctx, tx, enums.EventOrderApproved, input.ActorID, input.ActorRole, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionOrderApprove,
		EntityType: "order",
		EntityID:   updated.ID,
		Detail:     map[string]any{"status": updated.Status},
	})

	return updated, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	reason, err := s.requireReason(input.Reason)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "order already processed")
		}

		now := time.Now()
		updates := map[string]any{
			"status":           enums.OrderStatusCancelled,
			"rejected_by":      input.ActorID,
			"rejected_at":      now,
			"rejection_reason": reason,
		}
		if input.Notes != nil {
			updates["admin_notes"] = *input.Notes
		}

		claimed, err := repo.ClaimStatus(ctx, order.ID, []enums.OrderStatus{enums.OrderStatusPending}, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "order already processed")
		}

		order.Status = enums.OrderStatusCancelled
		order.RejectedBy = &input.ActorID
		order.RejectedAt = &now
		order.RejectionReason = &reason
		if input.Notes != nil {
			order.AdminNotes = input.Notes
		}
		updated = order

		return s.emitDecision(ctx, tx, enums.EventOrderRejected, input.ActorID, input.ActorRole, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionOrderReject,
		EntityType: "order",
		EntityID:   updated.ID,
		Detail:     map[string]any{"reason": reason},
	})

	return updated, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	reason, err := s.requireReason(input.Reason)
	if err != nil {
		return nil, err
	}

	refundable := []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusProcessing}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.IsRefundable() {
			return pkgerrors.New(pkgerrors.CodeNotRefundable, "order is not refundable in its current state")
		}

		updates := map[string]any{
			"status":        enums.OrderStatusRefunded,
			"refund_reason": reason,
			"updated_by":    input.ActorID,
		}

		claimed, err := repo.ClaimStatus(ctx, order.ID, refundable, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeNotRefundable, "order is not refundable in its current state")
		}

		// The refund is the explicit ledger-effecting operation: the buyer
		// gets the order amount back in the same atomic unit.
		if _, err := s.ledger.ApplyDelta(ctx, tx, order.UserID, order.Amount.Abs()); err != nil {
			return err
		}

		order.Status = enums.OrderStatusRefunded
		order.RefundReason = &reason
		order.UpdatedBy = &input.ActorID
		updated = order

		return s.emitDecision(ctx, tx, enums.EventOrderRefunded, input.ActorID, input.ActorRole, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionOrderRefund,
		EntityType: "order",
		EntityID:   updated.ID,
		Detail:     map[string]any{"reason": reason, "amount": updated.Amount},
	})

	return updated, nil
}

// SetStatus is the documented admin escape hatch: any valid status is
// settable without prior-state validation.
func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]any{
			"status":     input.Status,
			"updated_by": input.ActorID,
		}
		if input.Reason != nil {
			updates["admin_notes"] = *input.Reason
		}
		switch input.Status {
		case enums.OrderStatusCompleted:
			updates["completed_at"] = now
			updates["remaining_count"] = 0
		case enums.OrderStatusProcessing:
			if order.StartedAt == nil {
				updates["started_at"] = now
			}
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = input.Status
		order.UpdatedBy = &input.ActorID
		if input.Reason != nil {
			order.AdminNotes = input.Reason
		}
		switch input.Status {
		case enums.OrderStatusCompleted:
			order.CompletedAt = &now
			order.RemainingCount = 0
		case enums.OrderStatusProcessing:
			if order.StartedAt == nil {
				order.StartedAt = &now
			}
		}
		updated = order

		return s.emitDecision(ctx, tx, enums.EventOrderStatusChanged, input.ActorID, input.ActorRole, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionOrderSetStatus,
		EntityType: "order",
		EntityID:   updated.ID,
		Detail:     map[string]any{"status": updated.Status},
	})

	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.loadOrder(ctx, s.repo, id)
}

func (s *service) ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) ([]models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	cursor, err := pagination.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, status, cursor, pagination.Clamp(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) requireReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if len(trimmed) < s.minReason {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("reason must be at least %d characters", s.minReason))
	}
	return trimmed, nil
}

func (s *service) emitDecision(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, actorID uuid.UUID, actorRole string, order *models.Order) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: actorRole},
		Data: OrderDecisionEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Status:  order.Status,
			Amount:  order.Amount,
		},
	})
}
