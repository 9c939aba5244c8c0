package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-backend/internal/audit"
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

// Service is the admin review gate for submitted tasks. Worker payout is a
// separate earnings flow; no balance moves here.
type Service interface {
	Approve(ctx context.Context, input ApproveInput) (*models.Task, error)
	Reject(ctx context.Context, input RejectInput) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByStatus(ctx context.Context, status enums.TaskStatus, params pagination.Params) ([]models.Task, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	audit     audit.Service
	minReason int
}

// ApproveInput carries the data for a task approval.
type ApproveInput struct {
	TaskID    uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
}

// RejectInput carries the data for a task rejection.
type RejectInput struct {
	TaskID    uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Reason    string
}

// TaskDecisionEvent is emitted when an admin reviews a task submission.
type TaskDecisionEvent struct {
	TaskID uuid.UUID        `json:"task_id"`
	UserID uuid.UUID        `json:"user_id"`
	Status enums.TaskStatus `json:"status"`
}

// NewService builds a task review service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, auditSvc audit.Service, minReason int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tasks repository required")
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
		tx:        tx,
		outbox:    outboxSvc,
		audit:     auditSvc,
		minReason: minReason,
	}, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.Task, error) {
	if input.TaskID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var updated *models.Task
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		task, err := s.loadTask(ctx, repo, input.TaskID)
		if err != nil {
			return err
		}
		if task.Status != enums.TaskStatusSubmitted {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "task already reviewed")
		}

		now := time.Now()
		updates := map[string]any{
			"status":            enums.TaskStatusApproved,
			"approved_at":       now,
			"admin_reviewed_by": input.ActorID,
			"admin_reviewed_at": now,
		}

		claimed, err := repo.ClaimSubmitted(ctx, task.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "task already reviewed")
		}

		task.Status = enums.TaskStatusApproved
		task.ApprovedAt = &now
		task.AdminReviewedBy = &input.ActorID
		task.AdminReviewedAt = &now
		updated = task

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTaskApproved,
			AggregateType: enums.AggregateTask,
			AggregateID:   task.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: input.ActorRole},
			Data:          TaskDecisionEvent{TaskID: task.ID, UserID: task.UserID, Status: task.Status},
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionTaskApprove,
		EntityType: "task",
		EntityID:   updated.ID,
		Detail:     map[string]any{"status": updated.Status},
	})

	return updated, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Task, error) {
	if input.TaskID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) < s.minReason {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rejection reason must be at least %d characters", s.minReason))
	}

	var updated *models.Task
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		task, err := s.loadTask(ctx, repo, input.TaskID)
		if err != nil {
			return err
		}
		if task.Status != enums.TaskStatusSubmitted {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "task already reviewed")
		}

		now := time.Now()
		updates := map[string]any{
			"status":            enums.TaskStatusRejected,
			"rejected_at":       now,
			"rejection_reason":  reason,
			"admin_reviewed_by": input.ActorID,
			"admin_reviewed_at": now,
		}

		claimed, err := repo.ClaimSubmitted(ctx, task.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task status")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "task already reviewed")
		}

		task.Status = enums.TaskStatusRejected
		task.RejectedAt = &now
		task.RejectionReason = &reason
		task.AdminReviewedBy = &input.ActorID
		task.AdminReviewedAt = &now
		updated = task

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTaskRejected,
			AggregateType: enums.AggregateTask,
			AggregateID:   task.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: input.ActorRole},
			Data:          TaskDecisionEvent{TaskID: task.ID, UserID: task.UserID, Status: task.Status},
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    input.ActorID,
		Action:     enums.AuditActionTaskReject,
		EntityType: "task",
		EntityID:   updated.ID,
		Detail:     map[string]any{"reason": reason},
	})

	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	return s.loadTask(ctx, s.repo, id)
}

func (s *service) ListByStatus(ctx context.Context, status enums.TaskStatus, params pagination.Params) ([]models.Task, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status")
	}
	cursor, err := pagination.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, status, cursor, pagination.Clamp(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tasks")
	}
	return rows, nil
}

func (s *service) loadTask(ctx context.Context, repo Repository, id uuid.UUID) (*models.Task, error) {
	task, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load task")
	}
	return task, nil
}
