package approvals

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/audit"
	"github.com/taskhive/taskhive-backend/internal/orders"
	"github.com/taskhive/taskhive-backend/internal/tasks"
	"github.com/taskhive/taskhive-backend/internal/transactions"
	"github.com/taskhive/taskhive-backend/pkg/db/models"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

// transactionDecider is the slice of the transaction service bulk needs.
type transactionDecider interface {
	Approve(ctx context.Context, input transactions.ApproveInput) (*models.Transaction, error)
	Reject(ctx context.Context, input transactions.RejectInput) (*models.Transaction, error)
}

// orderDecider is the slice of the order service bulk needs.
type orderDecider interface {
	Approve(ctx context.Context, input orders.ApproveInput) (*models.Order, error)
	Reject(ctx context.Context, input orders.RejectInput) (*models.Order, error)
}

// taskDecider is the slice of the task service bulk needs.
type taskDecider interface {
	Approve(ctx context.Context, input tasks.ApproveInput) (*models.Task, error)
	Reject(ctx context.Context, input tasks.RejectInput) (*models.Task, error)
}

// Service applies one action to many ids, collecting per-item outcomes.
type Service interface {
	Bulk(ctx context.Context, input BulkInput) (*BulkResult, error)
}

type service struct {
	transactions transactionDecider
	orders       orderDecider
	tasks        taskDecider
	audit        audit.Service
	metrics      *metrics.Metrics
}

// BulkInput describes a bulk admin action.
type BulkInput struct {
	Entity    enums.BulkEntity
	Action    enums.BulkAction
	IDs       []uuid.UUID
	Reason    string
	ActorID   uuid.UUID
	ActorRole string
}

// BulkItemResult is the outcome slot for a single id.
type BulkItemResult struct {
	ID     uuid.UUID            `json:"id"`
	Status enums.BulkItemStatus `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// BulkResult partitions the batch into successes and failures. One slot per
// requested id, in request order.
type BulkResult struct {
	Results   []BulkItemResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// NewService builds the bulk processor on top of the single-item services.
func NewService(txnSvc transactionDecider, orderSvc orderDecider, taskSvc taskDecider, auditSvc audit.Service, m *metrics.Metrics) (Service, error) {
	if txnSvc == nil {
		return nil, fmt.Errorf("transaction service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if taskSvc == nil {
		return nil, fmt.Errorf("task service required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	return &service{
		transactions: txnSvc,
		orders:       orderSvc,
		tasks:        taskSvc,
		audit:        auditSvc,
		metrics:      m,
	}, nil
}

// Bulk never aborts early: every id gets exactly one result slot, and each
// item's transition is its own atomic unit. There is no batch atomicity.
func (s *service) Bulk(ctx context.Context, input BulkInput) (*BulkResult, error) {
	if !input.Entity.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bulk entity")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid bulk action")
	}
	if len(input.IDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	apply, successStatus, err := s.resolve(input)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Results: make([]BulkItemResult, 0, len(input.IDs))}
	for _, id := range input.IDs {
		slot := BulkItemResult{ID: id, Status: successStatus}
		if err := apply(ctx, id); err != nil {
			slot.Status = enums.BulkItemStatusError
			slot.Error = itemError(err)
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Results = append(result.Results, slot)
		s.recordItem(input.Entity, slot.Status)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionBulk,
		EntityType: input.Entity.String(),
		EntityID:   uuid.Nil,
		Detail: map[string]any{
			"action":    input.Action,
			"requested": len(input.IDs),
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		},
	})

	return result, nil
}

// resolve maps (entity, action) onto the single-item operation. Cancel is
// the order-side synonym for reject; it has no meaning elsewhere.
func (s *service) resolve(input BulkInput) (func(ctx context.Context, id uuid.UUID) error, enums.BulkItemStatus, error) {
	switch input.Entity {
	case enums.BulkEntityTransactions:
		switch input.Action {
		case enums.BulkActionApprove:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.transactions.Approve(ctx, transactions.ApproveInput{
					TransactionID: id, ActorID: input.ActorID, ActorRole: input.ActorRole,
				})
				return err
			}, enums.BulkItemStatusApproved, nil
		case enums.BulkActionReject:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.transactions.Reject(ctx, transactions.RejectInput{
					TransactionID: id, ActorID: input.ActorID, ActorRole: input.ActorRole, Reason: input.Reason,
				})
				return err
			}, enums.BulkItemStatusRejected, nil
		}

	case enums.BulkEntityOrders:
		switch input.Action {
		case enums.BulkActionApprove:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.orders.Approve(ctx, orders.ApproveInput{
					OrderID: id, ActorID: input.ActorID, ActorRole: input.ActorRole,
				})
				return err
			}, enums.BulkItemStatusApproved, nil
		case enums.BulkActionReject, enums.BulkActionCancel:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.orders.Reject(ctx, orders.RejectInput{
					OrderID: id, ActorID: input.ActorID, ActorRole: input.ActorRole, Reason: input.Reason,
				})
				return err
			}, enums.BulkItemStatusRejected, nil
		}

	case enums.BulkEntityTasks:
		switch input.Action {
		case enums.BulkActionApprove:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.tasks.Approve(ctx, tasks.ApproveInput{
					TaskID: id, ActorID: input.ActorID, ActorRole: input.ActorRole,
				})
				return err
			}, enums.BulkItemStatusApproved, nil
		case enums.BulkActionReject:
			return func(ctx context.Context, id uuid.UUID) error {
				_, err := s.tasks.Reject(ctx, tasks.RejectInput{
					TaskID: id, ActorID: input.ActorID, ActorRole: input.ActorRole, Reason: input.Reason,
				})
				return err
			}, enums.BulkItemStatusRejected, nil
		}
	}

	return nil, "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("action %q not supported for %s", input.Action, input.Entity))
}

// itemError keeps the per-slot message short and typed where possible.
func itemError(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func (s *service) recordItem(entity enums.BulkEntity, status enums.BulkItemStatus) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordBulkItem(entity.String(), status.String())
}
