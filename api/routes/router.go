package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive-backend/api/controllers"
	admincontrollers "github.com/taskhive/taskhive-backend/api/controllers/admin"
	"github.com/taskhive/taskhive-backend/api/middleware"
	"github.com/taskhive/taskhive-backend/internal/approvals"
	"github.com/taskhive/taskhive-backend/internal/orders"
	"github.com/taskhive/taskhive-backend/internal/tasks"
	"github.com/taskhive/taskhive-backend/internal/transactions"
	"github.com/taskhive/taskhive-backend/internal/users"
	"github.com/taskhive/taskhive-backend/pkg/config"
	"github.com/taskhive/taskhive-backend/pkg/db"
	"github.com/taskhive/taskhive-backend/pkg/logger"
	"github.com/taskhive/taskhive-backend/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        db.Pinger
	Idempotency  middleware.IdempotencyStore
	Metrics      *metrics.Metrics
	Transactions transactions.Service
	Orders       orders.Service
	Tasks        tasks.Service
	Approvals    approvals.Service
	Users        users.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	m := deps.Metrics

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.Approval.IdempotencyTTL, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", admincontrollers.TransactionList(deps.Transactions, logg))
			r.Post("/{transactionId}/approve", admincontrollers.TransactionApprove(deps.Transactions, m, logg))
			r.Post("/{transactionId}/reject", admincontrollers.TransactionReject(deps.Transactions, m, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", admincontrollers.OrderList(deps.Orders, logg))
			r.Post("/{orderId}/approve", admincontrollers.OrderApprove(deps.Orders, m, logg))
			r.Post("/{orderId}/reject", admincontrollers.OrderReject(deps.Orders, m, logg))
			r.Post("/{orderId}/refund", admincontrollers.OrderRefund(deps.Orders, m, logg))
			r.Patch("/{orderId}/status", admincontrollers.OrderSetStatus(deps.Orders, m, logg))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", admincontrollers.TaskList(deps.Tasks, logg))
			r.Post("/{taskId}/approve", admincontrollers.TaskApprove(deps.Tasks, m, logg))
			r.Post("/{taskId}/reject", admincontrollers.TaskReject(deps.Tasks, m, logg))
		})

		r.Get("/users/{userId}", admincontrollers.UserGet(deps.Users, logg))

		r.Post("/bulk", admincontrollers.Bulk(deps.Approvals, m, logg))
	})

	return r
}
