package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/approvals"
	"github.com/taskhive/taskhive-backend/internal/orders"
	"github.com/taskhive/taskhive-backend/internal/tasks"
	"github.com/taskhive/taskhive-backend/internal/transactions"
	"github.com/taskhive/taskhive-backend/internal/users"
	pkgauth "github.com/taskhive/taskhive-backend/pkg/auth"
	"github.com/taskhive/taskhive-backend/pkg/config"
	"github.com/taskhive/taskhive-backend/pkg/db/models"
	"github.com/taskhive/taskhive-backend/pkg/enums"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubTransactionsService struct{}

func (stubTransactionsService) Approve(ctx context.Context, input transactions.ApproveInput) (*models.Transaction, error) {
	return &models.Transaction{ID: input.TransactionID, Status: enums.TransactionStatusCompleted}, nil
}

func (stubTransactionsService) Reject(ctx context.Context, input transactions.RejectInput) (*models.Transaction, error) {
	return &models.Transaction{ID: input.TransactionID, Status: enums.TransactionStatusFailed}, nil
}

func (stubTransactionsService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return &models.Transaction{ID: id}, nil
}

func (stubTransactionsService) ListByStatus(ctx context.Context, status enums.TransactionStatus, params pagination.Params) ([]models.Transaction, error) {
	return nil, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Approve(ctx context.Context, input orders.ApproveInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusProcessing}, nil
}

func (stubOrdersService) Reject(ctx context.Context, input orders.RejectInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusCancelled}, nil
}

func (stubOrdersService) Refund(ctx context.Context, input orders.RefundInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: enums.OrderStatusRefunded}, nil
}

func (stubOrdersService) SetStatus(ctx context.Context, input orders.SetStatusInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: input.Status}, nil
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}

func (stubOrdersService) ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) ([]models.Order, error) {
	return nil, nil
}

type stubTasksService struct{}

func (stubTasksService) Approve(ctx context.Context, input tasks.ApproveInput) (*models.Task, error) {
	return &models.Task{ID: input.TaskID, Status: enums.TaskStatusApproved}, nil
}

func (stubTasksService) Reject(ctx context.Context, input tasks.RejectInput) (*models.Task, error) {
	return &models.Task{ID: input.TaskID, Status: enums.TaskStatusRejected}, nil
}

func (stubTasksService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return &models.Task{ID: id}, nil
}

func (stubTasksService) ListByStatus(ctx context.Context, status enums.TaskStatus, params pagination.Params) ([]models.Task, error) {
	return nil, nil
}

type stubApprovalsService struct{}

func (stubApprovalsService) Bulk(ctx context.Context, input approvals.BulkInput) (*approvals.BulkResult, error) {
	results := make([]approvals.BulkItemResult, 0, len(input.IDs))
	for _, id := range input.IDs {
		results = append(results, approvals.BulkItemResult{ID: id, Status: enums.BulkItemStatusApproved})
	}
	return &approvals.BulkResult{Results: results, Succeeded: len(results)}, nil
}

type stubUsersService struct{}

func (stubUsersService) Get(ctx context.Context, id uuid.UUID) (*users.Profile, error) {
	return &users.Profile{ID: id, Balance: "0.00"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "test", Port: "0"},
		JWT:      config.JWTConfig{Secret: "secret", Issuer: "taskhive"},
		Approval: config.ApprovalConfig{MinReasonLength: 5, IdempotencyTTL: time.Hour},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           stubPinger{},
		Redis:        stubPinger{},
		Transactions: stubTransactionsService{},
		Orders:       stubOrdersService{},
		Tasks:        stubTasksService{},
		Approvals:    stubApprovalsService{},
		Users:        stubUsersService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), uuid.New(), role, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, resp.Code)
		}
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleWorker))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestTaskApproveRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/tasks/"+uuid.NewString()+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderRejectRouteValidatesBody(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/"+uuid.NewString()+"/reject",
		strings.NewReader(`{"reason":"bad"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short reason, got %d", resp.Code)
	}
}

func TestBulkRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"entity":"orders","action":"approve","ids":["` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/bulk", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data approvals.BulkResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Succeeded != 1 {
		t.Fatalf("expected one success, got %+v", envelope.Data)
	}
}
