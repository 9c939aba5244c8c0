package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-backend/internal/audit"
	"github.com/taskhive/taskhive-backend/internal/ledger"
	"github.com/taskhive/taskhive-backend/pkg/db/models"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	pkgerrors "github.com/taskhive/taskhive-backend/pkg/errors"
	"github.com/taskhive/taskhive-backend/pkg/outbox"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:orderstest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'buyer',
  balance NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  platform TEXT NOT NULL,
  service_type TEXT NOT NULL,
  target_url TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  start_count INTEGER NOT NULL DEFAULT 0,
  remaining_count INTEGER NOT NULL DEFAULT 0,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  admin_notes TEXT,
  approved_by TEXT,
  approved_at DATETIME,
  rejected_by TEXT,
  rejected_at DATETIME,
  rejection_reason TEXT,
  refund_reason TEXT,
  updated_by TEXT,
  started_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  actor_id TEXT NOT NULL,
  action TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  detail TEXT,
  created_at DATETIME
);`,
		`DELETE FROM users`,
		`DELETE FROM orders`,
		`DELETE FROM outbox_events`,
		`DELETE FROM audit_logs`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func newOrderService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(db))
	require.NoError(t, err)
	auditSvc, err := audit.NewService(db, nil)
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(db),
		ledgerSvc,
		testTxRunner{db: db},
		outbox.NewService(outbox.NewRepository(db), nil),
		auditSvc,
		5,
	)
	require.NoError(t, err)
	return svc
}

func seedOrderUser(t *testing.T, db *gorm.DB, balance string) uuid.UUID {
	t.Helper()

	user := models.User{
		ID:          uuid.New(),
		Email:       uuid.NewString() + "@taskhive.test",
		DisplayName: "test user",
		Balance:     decimal.RequireFromString(balance),
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, amount string, status enums.OrderStatus) uuid.UUID {
	t.Helper()

	order := models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Platform:       enums.PlatformInstagram,
		ServiceType:    enums.ServiceTypeLikes,
		TargetURL:      "https://instagram.com/p/abc",
		Quantity:       1000,
		RemainingCount: 1000,
		Amount:         decimal.RequireFromString(amount),
		Status:         status,
	}
	require.NoError(t, db.Create(&order).Error)
	return order.ID
}

func orderBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) decimal.Decimal {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	return user.Balance
}

func TestApproveMovesPendingToProcessing(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)
	actorID := uuid.New()

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	updated, err := svc.Approve(context.Background(), ApproveInput{OrderID: orderID, ActorID: actorID})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, actorID, *updated.ApprovedBy)
	assert.NotNil(t, updated.ApprovedAt)
	assert.NotNil(t, updated.StartedAt)
	assert.Nil(t, updated.RejectedAt)

	// Second approval observes the terminal state.
	_, err = svc.Approve(context.Background(), ApproveInput{OrderID: orderID, ActorID: actorID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAlreadyProcessed, pkgerrors.CodeOf(err))
}

func TestRejectRequiresReasonAndCancels(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	_, err := svc.Reject(context.Background(), RejectInput{OrderID: orderID, ActorID: uuid.New(), Reason: ""})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	updated, err := svc.Reject(context.Background(), RejectInput{OrderID: orderID, ActorID: uuid.New(), Reason: "bad url"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	require.NotNil(t, updated.RejectionReason)
	assert.Equal(t, "bad url", *updated.RejectionReason)
	assert.NotNil(t, updated.RejectedAt)
	assert.Nil(t, updated.ApprovedAt)
}

func TestRejectHasNoLedgerEffect(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "40.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	_, err := svc.Reject(context.Background(), RejectInput{OrderID: orderID, ActorID: uuid.New(), Reason: "wrong platform"})
	require.NoError(t, err)

	balance := orderBalance(t, db, userID)
	assert.True(t, balance.Equal(decimal.RequireFromString("40.00")), "got %s", balance)
}

func TestRefundPreconditionAndCredit(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "10.00")
	pendingID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)
	completedID := seedOrder(t, db, userID, "25.00", enums.OrderStatusCompleted)

	_, err := svc.Refund(context.Background(), RefundInput{OrderID: pendingID, ActorID: uuid.New(), Reason: "service outage"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotRefundable, pkgerrors.CodeOf(err))

	updated, err := svc.Refund(context.Background(), RefundInput{OrderID: completedID, ActorID: uuid.New(), Reason: "service outage"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRefunded, updated.Status)
	require.NotNil(t, updated.RefundReason)

	balance := orderBalance(t, db, userID)
	assert.True(t, balance.Equal(decimal.RequireFromString("35.00")), "got %s", balance)

	// A second refund attempt finds the order already refunded.
	_, err = svc.Refund(context.Background(), RefundInput{OrderID: completedID, ActorID: uuid.New(), Reason: "service outage"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotRefundable, pkgerrors.CodeOf(err))

	balance = orderBalance(t, db, userID)
	assert.True(t, balance.Equal(decimal.RequireFromString("35.00")), "got %s", balance)
}

func TestRefundProcessingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "15.00", enums.OrderStatusProcessing)

	updated, err := svc.Refund(context.Background(), RefundInput{OrderID: orderID, ActorID: uuid.New(), Reason: "buyer request"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRefunded, updated.Status)

	balance := orderBalance(t, db, userID)
	assert.True(t, balance.Equal(decimal.RequireFromString("15.00")), "got %s", balance)
}

func TestSetStatusSkipsPriorStateValidation(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)
	actorID := uuid.New()

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusCancelled)

	updated, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: orderID,
		ActorID: actorID,
		Status:  enums.OrderStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, 0, updated.RemainingCount)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, actorID, *updated.UpdatedBy)
}

func TestSetStatusProcessingStampsStart(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	updated, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: orderID,
		ActorID: uuid.New(),
		Status:  enums.OrderStatusProcessing,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.NotNil(t, updated.StartedAt)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: orderID,
		ActorID: uuid.New(),
		Status:  enums.OrderStatus("archived"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestApproveEmitsOutboxEvent(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrderService(t, db)

	userID := seedOrderUser(t, db, "0.00")
	orderID := seedOrder(t, db, userID, "25.00", enums.OrderStatusPending)

	_, err := svc.Approve(context.Background(), ApproveInput{OrderID: orderID, ActorID: uuid.New()})
	require.NoError(t, err)

	var event models.OutboxEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, enums.EventOrderApproved, event.EventType)
	assert.Equal(t, orderID, event.AggregateID)
}
